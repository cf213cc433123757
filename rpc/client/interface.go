package client

import (
	"context"
	"github.com/ValentinKolb/xPeer/lib/listener"
	"github.com/ValentinKolb/xPeer/rpc/common"
	"github.com/ValentinKolb/xPeer/rpc/serializer"
)

// MessageHandler receives direct messages of a peer
type MessageHandler = listener.Handler[string, IPeer]

// StateHandler receives state updates of a virtual peer
type StateHandler = listener.Handler[common.State, *VirtualPeer]

// IPeer is a handle to a remote endpoint
type IPeer interface {
	// ID returns the relay assigned id of the peer
	ID() string
	// IsVirtual reports whether the peer is a virtual peer with shared state
	IsVirtual() bool
	// Ping probes the peer. Returns false if the relay reports an error.
	Ping(ctx context.Context) (bool, error)
	// SendMessage sends a direct message and waits for the relay's ack
	SendMessage(ctx context.Context, msg string) (Response, error)
	// OnMessage registers a listener for unsolicited direct messages of the peer
	OnMessage(handler MessageHandler) *listener.Subscription
	// OnceMessage registers a listener that is removed after its first invocation
	OnceMessage(handler MessageHandler) *listener.Subscription
	// Close removes all listeners and the routing entry of the handle
	Close()
}

// IOperationalClient is the capability a client hands to its peer handles.
// It allows sending, correlated exchanges and routing without exposing the client.
type IOperationalClient interface {
	// PeerID returns the identity of the client
	PeerID() string
	// Ping runs a liveness probe for id
	Ping(ctx context.Context, id string) (bool, error)
	// CreateMessageSource allocates a routing slot for application frames
	CreateMessageSource() *listener.Source[common.Frame]
	// ExecuteTask runs fn as one unit of the task queue
	ExecuteTask(ctx context.Context, fn ExchangeFunc) error
	// Send writes a frame without waiting for a reply and outside the task queue
	Send(frame string) error
	// Serializer returns the state serializer of the client
	Serializer() serializer.IStateSerializer
}
