package common

import (
	"strings"
)

// --------------------------------------------------------------------------
// Frame Structure
// --------------------------------------------------------------------------

// Frame represents a single protocol unit exchanged with the relay.
// Incoming and outgoing frames share the same layout:
//
//	<8-char type>::<22-char sender or target>::<payload>
//
// For incoming frames Sender holds the originating peer id, for outgoing
// frames it holds the addressed target.
type Frame struct {
	Type    MessageType
	Sender  string
	Payload string
}

const (
	// TypeLength is the fixed width of the type code
	TypeLength = 8
	// PeerIDLength is the fixed width of a relay assigned identity
	PeerIDLength = 22
	// Delimiter separates the three fields of a frame
	Delimiter = "::"

	senderOffset  = TypeLength + len(Delimiter)
	payloadOffset = senderOffset + PeerIDLength + len(Delimiter)
)

// --------------------------------------------------------------------------
// Codec
// --------------------------------------------------------------------------

// Parse converts a raw wire frame into a Frame.
// The parse is permissive: input that does not follow the fixed layout yields
// a Frame with empty type, sender and payload instead of an error.
// The payload is everything after the second delimiter and may itself contain "::".
func Parse(raw string) Frame {
	if len(raw) < payloadOffset ||
		raw[TypeLength:senderOffset] != Delimiter ||
		raw[senderOffset+PeerIDLength:payloadOffset] != Delimiter {
		return Frame{}
	}

	typ := raw[:TypeLength]
	sender := raw[senderOffset : senderOffset+PeerIDLength]

	// type and sender are single-line tokens
	if strings.ContainsAny(typ, "\r\n") || strings.ContainsAny(sender, "\r\n") {
		return Frame{}
	}

	return Frame{
		Type:    MessageType(typ),
		Sender:  sender,
		Payload: raw[payloadOffset:],
	}
}

// Build formats an outgoing frame. It is the inverse of Parse:
// Parse(Build(t, s, p)) == Frame{t, s, p} for every well-formed type and target.
func Build(msgType MessageType, target string, payload string) string {
	var sb strings.Builder
	sb.Grow(len(msgType) + len(target) + len(payload) + 2*len(Delimiter))
	sb.WriteString(string(msgType))
	sb.WriteString(Delimiter)
	sb.WriteString(target)
	sb.WriteString(Delimiter)
	sb.WriteString(payload)
	return sb.String()
}

// String returns the wire representation of the frame
func (f Frame) String() string {
	return Build(f.Type, f.Sender, f.Payload)
}

// IsEmpty reports whether the frame is the result of a malformed parse
func (f Frame) IsEmpty() bool {
	return f.Type == "" && f.Sender == "" && f.Payload == ""
}

// --------------------------------------------------------------------------
// Message Type
// --------------------------------------------------------------------------

// MessageType is the 8 character type code of a frame.
// Incoming and outgoing codes share one namespace.
type MessageType string

// String returns a human readable name of the message type
func (t MessageType) String() string {
	switch t {
	case MsgTPing:
		return "ping"
	case MsgTPong:
		return "pong"
	case MsgTPeerID:
		return "peer id"
	case MsgTRecvPeer:
		return "receive direct"
	case MsgTSendPeer:
		return "send direct"
	case MsgTSuccess:
		return "success"
	case MsgTError:
		return "error"
	case MsgTStateUpdate:
		return "state update"
	case MsgTCreateVPeer:
		return "create virtual peer"
	case MsgTDeleteVPeer:
		return "delete virtual peer"
	case MsgTConnectVPeer:
		return "connect virtual peer"
	case MsgTDisconnectVPeer:
		return "disconnect virtual peer"
	case MsgTPutState:
		return "put state"
	case MsgTPatchState:
		return "patch state"
	default:
		return "unknown"
	}
}

// --------------------------------------------------------------------------
// Message Type Constants
// --------------------------------------------------------------------------

const (
	// Liveness

	MsgTPing MessageType = "sendPing" // Liveness probe (in and out)
	MsgTPong MessageType = "sendPong" // Probe reply (in and out)

	// Incoming only

	MsgTPeerID      MessageType = "gPeerCId" // Identity assignment or virtual peer creation result
	MsgTRecvPeer    MessageType = "recvPeer" // Inbound direct application message
	MsgTSuccess     MessageType = "oprResOk" // Generic success ack
	MsgTError       MessageType = "errorMsg" // Generic error, payload is the reason
	MsgTStateUpdate MessageType = "stateMut" // Virtual peer state snapshot

	// Outgoing only

	MsgTSendPeer        MessageType = "sendPeer" // Outbound direct application message
	MsgTCreateVPeer     MessageType = "crtVPeer" // Create a virtual peer
	MsgTDeleteVPeer     MessageType = "delVPeer" // Delete a virtual peer
	MsgTConnectVPeer    MessageType = "conVPeer" // Connect to a virtual peer
	MsgTDisconnectVPeer MessageType = "disVPeer" // Disconnect from a virtual peer
	MsgTPutState        MessageType = "putState" // Replace the shared state
	MsgTPatchState      MessageType = "patState" // Patch the shared state
)
