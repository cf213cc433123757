package base

import (
	"context"
	"errors"
	"fmt"
	"github.com/ValentinKolb/xPeer/lib/queue"
	"github.com/ValentinKolb/xPeer/rpc/common"
	"github.com/ValentinKolb/xPeer/rpc/transport"
	"github.com/VictoriaMetrics/metrics"
	"github.com/benbjohnson/clock"
	"github.com/lni/dragonboat/v4/logger"
	"sync"
)

// ErrConnectionClosed is returned by Send and WaitReady after Close
var ErrConnectionClosed = errors.New("connection is closed")

var (
	framesIn   = metrics.GetOrCreateCounter(`xpeer_frames_total{direction="in"}`)
	framesOut  = metrics.GetOrCreateCounter(`xpeer_frames_total{direction="out"}`)
	reconnects = metrics.GetOrCreateCounter(`xpeer_reconnects_total`)
)

// -----------------------------------------------------------
// Options
// -----------------------------------------------------------

// Option configures the client transport
type Option func(*clientTransport)

// WithClock sets the clock used to schedule reconnects
func WithClock(clk clock.Clock) Option {
	return func(t *clientTransport) {
		if clk != nil {
			t.clock = clk
		}
	}
}

// WithLogger sets the logger of the transport
func WithLogger(log logger.ILogger) Option {
	return func(t *clientTransport) {
		if log != nil {
			t.logger = log
		}
	}
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// session is one established connection. dead is closed once its reader exited.
type session struct {
	conn transport.IFrameConn
	dead chan struct{}
}

// clientTransport owns the connection, buffers outbound frames until it is ready
// and reconnects with a bounded retry budget and a fixed interval
type clientTransport struct {
	connector transport.IClientConnector
	config    common.ClientConfig
	clock     clock.Clock
	logger    logger.ILogger

	mu          sync.Mutex
	session     *session      // nil while (re)connecting
	ready       chan struct{} // closed while a session is open
	retriesLeft int
	started     bool
	closed      bool
	handler     transport.FrameHandler

	outbox   *queue.MPSC[string]
	closedCh chan struct{}
}

// -----------------------------------------------------------
// Transport Factory Method
// -----------------------------------------------------------

// NewBaseClientTransport creates a reconnecting client transport for the given connector.
// The connection is not established before Start is called.
func NewBaseClientTransport(connector transport.IClientConnector, config common.ClientConfig, opts ...Option) transport.IClientTransport {
	t := &clientTransport{
		connector:   connector,
		config:      config,
		clock:       clock.New(),
		logger:      logger.GetLogger(common.LoggerSocket),
		ready:       make(chan struct{}),
		retriesLeft: config.Retries,
		handler:     func(string) {},
		outbox:      queue.NewMPSC[string](),
		closedCh:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IClientTransport)
// --------------------------------------------------------------------------

func (t *clientTransport) Start() {
	t.mu.Lock()
	if t.started || t.closed {
		t.mu.Unlock()
		return
	}
	t.started = true
	t.mu.Unlock()

	go t.writeFrames()
	go t.connect()
}

func (t *clientTransport) Send(frame string) error {
	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()

	if closed || !t.outbox.Push(frame) {
		return ErrConnectionClosed
	}
	return nil
}

func (t *clientTransport) SetFrameHandler(handler transport.FrameHandler) {
	if handler == nil {
		handler = func(string) {}
	}
	t.mu.Lock()
	t.handler = handler
	t.mu.Unlock()
}

func (t *clientTransport) WaitReady(ctx context.Context) error {
	for {
		sess, ready := t.current()
		if sess != nil {
			return nil
		}
		select {
		case <-ready:
		case <-t.closedCh:
			return ErrConnectionClosed
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (t *clientTransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.retriesLeft = 0
	sess := t.session
	t.session = nil
	close(t.closedCh)
	t.mu.Unlock()

	t.outbox.Close()
	if sess != nil {
		return sess.conn.Close()
	}
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// current returns the open session (nil while reconnecting) and the ready channel
func (t *clientTransport) current() (*session, chan struct{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.session, t.ready
}

// connect establishes a new session unless one is open or the transport is closed
func (t *clientTransport) connect() {
	t.mu.Lock()
	if t.closed || t.session != nil {
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()

	ctx := context.Background()
	if timeout := t.config.HandshakeTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	conn, err := t.connector.Connect(ctx, t.config.Endpoint)
	if err != nil {
		t.logger.Errorf("failed to connect to %s using %s transport: %v", t.config.Endpoint, t.connector.GetName(), err)
		t.handleClose(nil, false)
		return
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		_ = conn.Close()
		return
	}
	sess := &session{conn: conn, dead: make(chan struct{})}
	t.session = sess
	t.retriesLeft = t.config.Retries
	close(t.ready)
	t.mu.Unlock()

	t.logger.Infof("connected to %s", t.config.Endpoint)
	go t.readFrames(sess)
}

// readFrames forwards every inbound frame of a session to the frame handler
func (t *clientTransport) readFrames(sess *session) {
	defer close(sess.dead)

	for {
		raw, err := sess.conn.ReadFrame()
		if err != nil {
			clean := errors.Is(err, transport.ErrClosed)
			if !clean {
				t.logger.Errorf("read from %s failed: %v", t.config.Endpoint, err)
			}
			t.handleClose(sess, clean)
			return
		}

		framesIn.Inc()
		t.logger.Debugf("received from %s: %s", t.config.Endpoint, raw)

		t.mu.Lock()
		handler := t.handler
		t.mu.Unlock()
		handler(raw)
	}
}

// handleClose applies the reconnect policy after a session ended or a connect failed.
// A clean close resets the retry budget, every reconnect attempt consumes one retry.
func (t *clientTransport) handleClose(sess *session, clean bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}
	if sess != nil {
		if t.session != sess {
			return
		}
		t.session = nil
		t.ready = make(chan struct{})
	}

	if clean {
		t.logger.Infof("disconnected from %s", t.config.Endpoint)
		t.retriesLeft = t.config.Retries
	} else {
		t.logger.Warningf("connection died to %s", t.config.Endpoint)
	}
	t.logger.Debugf("retries left: %d", t.retriesLeft)

	if t.retriesLeft > 0 {
		t.retriesLeft--
		reconnects.Inc()
		t.logger.Infof("retrying in %s", t.config.RetryInterval())
		t.clock.AfterFunc(t.config.RetryInterval(), t.connect)
	}
}

// writeFrames writes queued frames in order, waiting for an open session before each write.
// A frame whose write fails is retried on the next session.
func (t *clientTransport) writeFrames() {
	for frame := range t.outbox.Recv() {
		if err := t.writeFrame(frame); err != nil {
			t.logger.Warningf("dropping frame: %v", err)
		}
	}
}

// writeFrame blocks until the frame has been written or the transport is closed
func (t *clientTransport) writeFrame(frame string) error {
	for {
		sess, ready := t.current()
		if sess == nil {
			select {
			case <-ready:
				continue
			case <-t.closedCh:
				return fmt.Errorf("%w before frame was written", ErrConnectionClosed)
			}
		}

		err := sess.conn.WriteFrame(frame)
		if err == nil {
			framesOut.Inc()
			return nil
		}

		t.logger.Errorf("write to %s failed: %v", t.config.Endpoint, err)
		// force the reader to notice, then wait for the next session
		_ = sess.conn.Close()
		select {
		case <-sess.dead:
		case <-t.closedCh:
			return fmt.Errorf("%w before frame was written", ErrConnectionClosed)
		}
	}
}
