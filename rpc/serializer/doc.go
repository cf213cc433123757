// Package serializer provides the encoding of virtual peer state for the xPeer client.
// Shared state travels as the payload of putState, patState and stateMut frames.
//
// Key Components:
//
//   - IStateSerializer: Core interface that all state serializer implementations must satisfy.
//
//   - jsonSerializerImpl: Implementation using JSON encoding (github.com/goccy/go-json),
//     the encoding the relay expects for structured state.
//
// Thread Safety:
//
//	All serializer implementations are stateless and safe for concurrent use.
//
// Usage:
//
//	s := serializer.NewJSONSerializer()
//	payload, err := s.Serialize(common.State{"counter": 1})
//	state, err := s.Deserialize(payload)
package serializer
