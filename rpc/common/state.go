package common

// State is the replicated shared state of a virtual peer.
// Values are opaque structured values (numbers, strings, booleans, nested State or lists);
// the client does not validate their schema.
type State map[string]any
