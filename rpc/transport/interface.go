package transport

import (
	"context"
	"errors"
)

// ErrClosed is wrapped by IFrameConn.ReadFrame when the peer closed the connection cleanly.
// Any other read error counts as an unclean close.
var ErrClosed = errors.New("transport: connection closed")

// --------------------------------------------------------------------------
// Connector (transport medium, e.g. websocket)
// --------------------------------------------------------------------------

// IFrameConn is a single established duplex connection delivering discrete,
// ordered, complete text frames
type IFrameConn interface {
	// ReadFrame blocks until the next frame arrives
	ReadFrame() (string, error)
	// WriteFrame writes one frame. Must be safe to call concurrently with ReadFrame.
	WriteFrame(frame string) error
	// Close closes the connection cleanly
	Close() error
}

// IClientConnector establishes connections for a specific transport medium
type IClientConnector interface {
	// Connect establishes a single connection to the endpoint
	Connect(ctx context.Context, endpoint string) (IFrameConn, error)
	// GetName returns the name of the transport type (e.g. "websocket")
	GetName() string
}

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// FrameHandler receives every inbound frame. It is called from a single goroutine.
type FrameHandler func(raw string)

// IClientTransport is the reconnecting connection used by the client
type IClientTransport interface {
	// Start begins establishing the connection in the background
	Start()
	// Send queues a frame. It is written once the connection is open, waiting for a
	// (re)connect in progress. Returns an error only after Close.
	Send(frame string) error
	// SetFrameHandler sets the callback for inbound frames
	SetFrameHandler(handler FrameHandler)
	// WaitReady blocks until the connection is open, ctx ends or the transport is closed
	WaitReady(ctx context.Context) error
	// Close disables reconnection and tears down the connection
	Close() error
}
