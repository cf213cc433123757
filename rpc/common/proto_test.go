package common

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

const testID = "AAAAAAAAAAAAAAAAAAAAAA"

func TestParseBuildRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		msgType MessageType
		target  string
		payload string
	}{
		{"empty payload", MsgTPing, testID, ""},
		{"text payload", MsgTSendPeer, testID, "hello world"},
		{"payload with delimiter", MsgTRecvPeer, testID, "a::b::c"},
		{"json payload", MsgTPutState, testID, `{"a":1,"b":[1,2]}`},
		{"multi line payload", MsgTSendPeer, testID, "line one\nline two"},
		{"unicode payload", MsgTSendPeer, testID, "grüße ✓"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := Build(tt.msgType, tt.target, tt.payload)
			frame := Parse(raw)
			assert.Equal(t, Frame{Type: tt.msgType, Sender: tt.target, Payload: tt.payload}, frame)
			assert.Equal(t, raw, frame.String())
		})
	}
}

func TestBuild(t *testing.T) {
	assert.Equal(t, "sendPing::BBBBBBBBBBBBBBBBBBBBBB::", Build(MsgTPing, "BBBBBBBBBBBBBBBBBBBBBB", ""))
	assert.Equal(t, "sendPeer::BBBBBBBBBBBBBBBBBBBBBB::hi", Build(MsgTSendPeer, "BBBBBBBBBBBBBBBBBBBBBB", "hi"))
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"garbage", "garbage"},
		{"missing payload delimiter", "sendPing::" + testID},
		{"short sender", "sendPing::AAAA::payload"},
		{"short type", "ping::" + testID + "::"},
		{"wrong delimiter", "sendPing;;" + testID + "::"},
		{"newline in sender", "sendPing::AAAAAAAAAA\nAAAAAAAAAAA::"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := Parse(tt.raw)
			assert.True(t, frame.IsEmpty(), "expected empty frame, got %+v", frame)
		})
	}
}

func TestParseUnknownType(t *testing.T) {
	frame := Parse("whatever::" + testID + "::x")
	assert.Equal(t, MessageType("whatever"), frame.Type)
	assert.Equal(t, "unknown", frame.Type.String())
	assert.False(t, frame.IsEmpty())
}

func TestMessageTypeWidth(t *testing.T) {
	types := []MessageType{
		MsgTPing, MsgTPong, MsgTPeerID, MsgTRecvPeer, MsgTSuccess, MsgTError, MsgTStateUpdate,
		MsgTSendPeer, MsgTCreateVPeer, MsgTDeleteVPeer, MsgTConnectVPeer, MsgTDisconnectVPeer,
		MsgTPutState, MsgTPatchState,
	}
	for _, typ := range types {
		assert.Len(t, string(typ), TypeLength, "type %s", typ)
		assert.NotEqual(t, "unknown", typ.String())
	}
}
