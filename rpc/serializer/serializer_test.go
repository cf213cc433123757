package serializer

import (
	"github.com/ValentinKolb/xPeer/rpc/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

// TestJSONSerialize tests the payload produced for different states
func TestJSONSerialize(t *testing.T) {
	tests := []struct {
		name     string
		state    common.State
		expected string
	}{
		{name: "nil state", state: nil, expected: `{}`},
		{name: "flat state", state: common.State{"counter": 1}, expected: `{"counter":1}`},
		{name: "nested state", state: common.State{"a": common.State{"b": true}}, expected: `{"a":{"b":true}}`},
	}

	s := NewJSONSerializer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := s.Serialize(tt.state)
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, payload)
		})
	}
}

// TestJSONDeserialize tests decoding of relay payloads
func TestJSONDeserialize(t *testing.T) {
	s := NewJSONSerializer()

	state, err := s.Deserialize(`{"name":"room","players":["a","b"],"meta":{"round":3}}`)
	require.NoError(t, err)
	assert.Equal(t, "room", state["name"])
	assert.Equal(t, []any{"a", "b"}, state["players"])
	assert.Equal(t, map[string]any{"round": float64(3)}, state["meta"])
}

// TestJSONDeserializeInvalid tests that malformed payloads are reported as errors
func TestJSONDeserializeInvalid(t *testing.T) {
	s := NewJSONSerializer()

	for _, payload := range []string{"", "not json", `["list"]`, "null", " null "} {
		_, err := s.Deserialize(payload)
		assert.Error(t, err, "payload %q", payload)
	}

	_, err := s.Deserialize("null")
	assert.ErrorIs(t, err, ErrNullState)
}
