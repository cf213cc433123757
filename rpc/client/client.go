package client

import (
	"context"
	"github.com/ValentinKolb/xPeer/lib/listener"
	"github.com/ValentinKolb/xPeer/lib/queue"
	"github.com/ValentinKolb/xPeer/rpc/common"
	"github.com/ValentinKolb/xPeer/rpc/serializer"
	"github.com/ValentinKolb/xPeer/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"sync"
)

const (
	// NoPeerID is the identity of a client the relay has not assigned an id to yet
	NoPeerID = "<<<no-peer-id>>>"

	// VirtualPeerMarker is the pong payload of a virtual peer
	VirtualPeerMarker = "virtual"
)

// -----------------------------------------------------------
// Options
// -----------------------------------------------------------

// Option configures a Client
type Option func(*Client)

// WithLogger sets the client logger
func WithLogger(log logger.ILogger) Option {
	return func(c *Client) {
		if log != nil {
			c.logger = log
		}
	}
}

// WithPeerLoggers sets the loggers handed to peer and virtual peer handles
func WithPeerLoggers(peerLog, vpeerLog logger.ILogger) Option {
	return func(c *Client) {
		if peerLog != nil {
			c.peerLogger = peerLog
		}
		if vpeerLog != nil {
			c.vpeerLogger = vpeerLog
		}
	}
}

// WithQueueLogger sets the logger of the task queue
func WithQueueLogger(log logger.ILogger) Option {
	return func(c *Client) {
		if log != nil {
			c.tasks = queue.NewTaskQueue(log)
		}
	}
}

// WithStateSerializer sets the serializer used for virtual peer state
func WithStateSerializer(s serializer.IStateSerializer) Option {
	return func(c *Client) {
		if s != nil {
			c.serializer = s
		}
	}
}

// -----------------------------------------------------------
// Client
// -----------------------------------------------------------

// messageHandler is one link of the general handler chain
type messageHandler struct {
	name    string
	matches func(frame common.Frame) bool
	handle  func(frame common.Frame)
}

// Client is the orchestration root of the xPeer protocol. It owns the transport,
// the task queue, the message router and the assigned identity.
//
// Every inbound frame is first offered to the active correlator (if an exchange is
// in flight); frames it declines run through the general chain:
// identity assignment, ping answering, application routing, default log.
type Client struct {
	config      common.ClientConfig
	transport   transport.IClientTransport
	tasks       *queue.TaskQueue
	router      *listener.Router[common.Frame]
	serializer  serializer.IStateSerializer
	logger      logger.ILogger
	peerLogger  logger.ILogger
	vpeerLogger logger.ILogger
	handlers    []messageHandler

	mu         sync.RWMutex
	peerID     string
	identified chan struct{}

	corrMu sync.Mutex
	active *correlation

	closeOnce sync.Once
	closedCh  chan struct{}
}

// NewClient creates a client on top of the given transport and starts connecting
func NewClient(config common.ClientConfig, t transport.IClientTransport, opts ...Option) *Client {
	c := &Client{
		config:      config,
		transport:   t,
		tasks:       queue.NewTaskQueue(nil),
		serializer:  serializer.NewJSONSerializer(),
		logger:      logger.GetLogger(common.LoggerClient),
		peerLogger:  logger.GetLogger(common.LoggerPeer),
		vpeerLogger: logger.GetLogger(common.LoggerVPeer),
		peerID:      NoPeerID,
		identified:  make(chan struct{}),
		closedCh:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.router = listener.NewRouter[common.Frame](c.handleDefault)
	c.handlers = []messageHandler{
		{name: "identity", matches: c.isIdentityAssignment, handle: c.handleIdentity},
		{name: "ping", matches: isType(common.MsgTPing), handle: c.handlePing},
		{name: "application", matches: isApplicationFrame, handle: c.handleApplication},
		{name: "default", matches: func(common.Frame) bool { return true }, handle: c.handleDefault},
	}

	t.SetFrameHandler(c.dispatch)
	t.Start()
	return c
}

// PeerID returns the identity assigned by the relay, or NoPeerID
func (c *Client) PeerID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.peerID
}

// AwaitIdentity blocks until the relay assigned an identity to this client
func (c *Client) AwaitIdentity(ctx context.Context) (string, error) {
	select {
	case <-c.identified:
		return c.PeerID(), nil
	case <-c.closedCh:
		return "", ErrClientClosed
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Send writes a frame without waiting for a reply
func (c *Client) Send(frame string) error {
	c.logger.Debugf("sending: %s", frame)
	return c.transport.Send(frame)
}

// CreateMessageSource allocates a routing slot for application frames
func (c *Client) CreateMessageSource() *listener.Source[common.Frame] {
	return c.router.CreateSource()
}

// Serializer returns the state serializer of the client
func (c *Client) Serializer() serializer.IStateSerializer {
	return c.serializer
}

// Disconnect closes the transport. Exchanges waiting for a reply return ErrClientClosed.
func (c *Client) Disconnect() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closedCh)
		err = c.transport.Close()
		c.logger.Infof("disconnected")
	})
	return err
}

// --------------------------------------------------------------------------
// Peer acquisition
// --------------------------------------------------------------------------

// Ping probes the peer with the given id. Returns true on a pong from exactly that peer,
// false if the relay answers with an error addressed to this client.
func (c *Client) Ping(ctx context.Context, id string) (bool, error) {
	found, _, err := c.probe(ctx, id)
	return found, err
}

// GetPeer probes the peer and returns a handle for it. The handle is a *VirtualPeer if
// the peer answered as a virtual peer. Returns nil without error if the peer is unavailable.
func (c *Client) GetPeer(ctx context.Context, id string) (IPeer, error) {
	found, payload, err := c.probe(ctx, id)
	if err != nil || !found {
		return nil, err
	}
	if payload == VirtualPeerMarker {
		return newVirtualPeer(id, c, c.vpeerLogger), nil
	}
	return newPeer(id, c, c.peerLogger), nil
}

// CreateVirtualPeer asks the relay to create a new virtual peer. On success the returned
// handle carries the newly assigned id, on failure the Response holds the relay's reason.
// The request names the client's own id, so it waits until the relay assigned one.
func (c *Client) CreateVirtualPeer(ctx context.Context) (*VirtualPeer, Response, error) {
	var newID, reason string

	self, err := c.AwaitIdentity(ctx)
	if err != nil {
		return nil, Response{}, err
	}

	err = c.ExecuteTask(ctx, func(ex *Exchange) error {
		ex.ReceiveMessage(func(frame common.Frame) bool {
			switch {
			case frame.Type == common.MsgTPeerID && frame.Sender != frame.Payload:
				newID = frame.Payload
				if newID == self {
					newID = frame.Sender
				}
				return true
			case frame.Type == common.MsgTError && frame.Sender == c.PeerID():
				reason = failureReason(frame.Payload)
				c.logger.Errorf("create virtual peer failed: %s", reason)
				return true
			}
			return false
		})
		if err := ex.Send(common.Build(common.MsgTCreateVPeer, self, "")); err != nil {
			return err
		}
		return ex.Await()
	})
	if err != nil {
		return nil, Response{}, err
	}

	resp := newResponse(reason)
	if !resp.Success {
		return nil, resp, nil
	}
	c.logger.Infof("created virtual peer %s", newID)
	return newVirtualPeer(newID, c, c.vpeerLogger), resp, nil
}

// probe runs one ping exchange and returns the pong payload on success
func (c *Client) probe(ctx context.Context, id string) (found bool, payload string, err error) {
	err = c.ExecuteTask(ctx, func(ex *Exchange) error {
		ex.ReceiveMessage(func(frame common.Frame) bool {
			switch {
			case frame.Type == common.MsgTPong && frame.Sender == id:
				c.logger.Debugf("ping ok %s", id)
				found, payload = true, frame.Payload
				return true
			case frame.Type == common.MsgTError && frame.Sender == c.PeerID():
				c.logger.Errorf("ping %s failed: %s", id, frame.Payload)
				return true
			}
			return false
		})
		if err := ex.Send(common.Build(common.MsgTPing, id, "")); err != nil {
			return err
		}
		return ex.Await()
	})
	return found, payload, err
}

// --------------------------------------------------------------------------
// Inbound dispatch
// --------------------------------------------------------------------------

// dispatch is the root handler of every inbound frame
func (c *Client) dispatch(raw string) {
	frame := common.Parse(raw)
	c.logger.Debugf("received: %s [%s] %q", frame.Type, frame.Sender, frame.Payload)

	if c.correlate(frame) {
		return
	}
	c.handle(frame)
}

// handle runs the general chain, the first matching handler wins
func (c *Client) handle(frame common.Frame) {
	for _, h := range c.handlers {
		if h.matches(frame) {
			h.handle(frame)
			return
		}
	}
}

// isIdentityAssignment matches a self-referential id assignment while no identity is set
func (c *Client) isIdentityAssignment(frame common.Frame) bool {
	if frame.Type != common.MsgTPeerID || frame.Sender != frame.Payload {
		return false
	}
	current := c.PeerID()
	return frame.Sender != current && current == NoPeerID
}

func (c *Client) handleIdentity(frame common.Frame) {
	c.mu.Lock()
	if c.peerID != NoPeerID {
		c.mu.Unlock()
		return
	}
	c.peerID = frame.Payload
	close(c.identified)
	c.mu.Unlock()

	c.logger.Infof("received id: %s", frame.Payload)
}

func (c *Client) handlePing(frame common.Frame) {
	c.logger.Debugf("received ping from %s", frame.Sender)
	if err := c.Send(common.Build(common.MsgTPong, frame.Sender, "")); err != nil {
		c.logger.Warningf("could not answer ping from %s: %v", frame.Sender, err)
	}
}

func (c *Client) handleApplication(frame common.Frame) {
	c.router.Distribute(frame)
}

func (c *Client) handleDefault(frame common.Frame) {
	c.logger.Infof("[%s] received %s", frame.Sender, frame.Payload)
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func isType(t common.MessageType) func(common.Frame) bool {
	return func(frame common.Frame) bool { return frame.Type == t }
}

// isApplicationFrame matches frames routed to peer handles
func isApplicationFrame(frame common.Frame) bool {
	return frame.Type == common.MsgTRecvPeer || frame.Type == common.MsgTStateUpdate
}
