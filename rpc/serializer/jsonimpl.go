package serializer

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/xPeer/rpc/common"
	"github.com/goccy/go-json"
)

// ErrNullState is returned for a payload that decodes to no object, e.g. null
var ErrNullState = errors.New("state is null")

// NewJSONSerializer creates a new state serializer using json encoding
func NewJSONSerializer() IStateSerializer {
	return &jsonSerializerImpl{}
}

// jsonSerializerImpl implements the IStateSerializer interface using json encoding
type jsonSerializerImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IStateSerializer)
// --------------------------------------------------------------------------

func (j jsonSerializerImpl) Serialize(state common.State) (string, error) {
	if state == nil {
		state = common.State{}
	}
	b, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("failed to serialize state: %w", err)
	}
	return string(b), nil
}

func (j jsonSerializerImpl) Deserialize(payload string) (common.State, error) {
	state := common.State{}
	if err := json.Unmarshal([]byte(payload), &state); err != nil {
		return nil, fmt.Errorf("failed to deserialize state: %w", err)
	}
	if state == nil {
		return nil, ErrNullState
	}
	return state, nil
}
