// Package listener provides the publish/subscribe primitives of the xPeer client.
//
// The package contains:
//   - Manager: A generic keyed registry of cancelable handlers. The client uses one
//     Manager per event kind (messages, state updates) so every event carries its own
//     strongly-typed payload.
//   - Subscription: Returned by every registration. Cancel removes exactly that
//     registration and may be called any number of times.
//   - Router: Demultiplexes messages to routing slots (Sources). Each slot holds a guard
//     and a handler; every slot whose guard matches gets the message, and a fallback
//     handler runs if none matched.
//
// A peer handle owns a single Source for its whole lifetime and only swaps what the
// guard accepts, so exchanges never allocate router entries.
package listener
