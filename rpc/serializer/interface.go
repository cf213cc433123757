package serializer

import "github.com/ValentinKolb/xPeer/rpc/common"

// IStateSerializer is the interface for virtual peer state serializers.
// The encoded state is carried as the payload of a frame.
type IStateSerializer interface {
	// Serialize encodes a state into a frame payload
	// It returns the payload and an error if any
	Serialize(state common.State) (string, error)
	// Deserialize decodes a frame payload into a state
	// It returns the decoded state and an error if any
	Deserialize(payload string) (common.State, error)
}
