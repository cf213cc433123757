// Package base provides the reconnecting client transport of the xPeer client,
// independent of the specific transport medium. It is extended with
// medium-specific connectors (see package ws).
//
// The package focuses on:
//   - Owning a single duplex connection and forwarding every inbound frame to one handler
//   - Buffering outbound frames until the connection is open
//   - Reconnecting with a bounded retry budget and a fixed interval
//
// Reconnect Policy:
//
//   - A successful open resets the retry budget to the configured value.
//   - A clean close (transport.ErrClosed) resets the budget, then schedules a reconnect.
//   - An unclean close or a failed connect consumes one retry and schedules a reconnect
//     after the retry interval while retries remain. Once the budget is exhausted the
//     transport gives up silently: queued frames stay queued.
//   - Close sets the remaining retries to zero, so no further reconnect is attempted.
//
// Transport errors are logged, never returned to callers of Send.
//
// Thread Safety:
//
//	All public methods are thread-safe. Inbound frames are delivered from a single
//	reader goroutine per connection, and connections never overlap, so the frame
//	handler is never called concurrently with itself.
package base
