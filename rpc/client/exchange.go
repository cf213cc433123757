package client

import (
	"context"
	"errors"
	"github.com/ValentinKolb/xPeer/lib/queue"
	"github.com/ValentinKolb/xPeer/rpc/common"
	"github.com/VictoriaMetrics/metrics"
	"time"
)

var (
	// ErrClientClosed is returned by exchanges after Disconnect
	ErrClientClosed = errors.New("client is disconnected")
	// ErrNoCorrelator is returned by Await if ReceiveMessage was never called
	ErrNoCorrelator = errors.New("no correlator installed")
)

var (
	exchangesTotal    = metrics.GetOrCreateCounter(`xpeer_exchanges_total`)
	exchangeErrors    = metrics.GetOrCreateCounter(`xpeer_exchange_errors_total`)
	exchangeDurations = metrics.GetOrCreateHistogram(`xpeer_exchange_duration_seconds`)
)

// Correlator inspects an inbound frame during an exchange.
// Returning true consumes the frame and ends the correlation, returning false
// declines it and the frame continues through the client's general handler chain.
type Correlator func(frame common.Frame) bool

// ExchangeFunc is the body of a correlated exchange
type ExchangeFunc func(ex *Exchange) error

// correlation is the active one-shot correlator of the client
type correlation struct {
	handle Correlator
	done   chan struct{}
}

// Exchange is handed to an ExchangeFunc while it owns the channel.
// Install the correlator with ReceiveMessage before sending the request, so the
// reply cannot overtake it.
type Exchange struct {
	client *Client
	ctx    context.Context
	corr   *correlation
}

// Send writes a frame to the relay
func (e *Exchange) Send(frame string) error {
	return e.client.Send(frame)
}

// ReceiveMessage installs handler as the active correlator of the client
func (e *Exchange) ReceiveMessage(handler Correlator) {
	corr := &correlation{handle: handler, done: make(chan struct{})}
	e.corr = corr
	e.client.setCorrelator(corr)
}

// Await blocks until the correlator consumed a frame, the exchange context ends or the
// client is disconnected. Without a context deadline a reply that never arrives blocks forever.
func (e *Exchange) Await() error {
	if e.corr == nil {
		return ErrNoCorrelator
	}
	select {
	case <-e.corr.done:
		return nil
	case <-e.ctx.Done():
		// a reply consumed right before the deadline still counts
		select {
		case <-e.corr.done:
			return nil
		default:
		}
		return e.ctx.Err()
	case <-e.client.closedCh:
		return ErrClientClosed
	}
}

// --------------------------------------------------------------------------
// Client side of the exchange
// --------------------------------------------------------------------------

// ExecuteTask runs fn on the task queue. The correlator fn installs is cleared when
// fn returns, whatever the outcome, so no correlator outlives its unit of work.
func (c *Client) ExecuteTask(ctx context.Context, fn ExchangeFunc) error {
	select {
	case <-c.closedCh:
		return ErrClientClosed
	default:
	}

	start := time.Now()
	taskErr, err := queue.Execute(ctx, c.tasks, func() error {
		defer c.clearCorrelator()
		return fn(&Exchange{client: c, ctx: ctx})
	})
	if err == nil {
		err = taskErr
	}

	exchangesTotal.Inc()
	exchangeDurations.UpdateDuration(start)
	if err != nil {
		exchangeErrors.Inc()
	}
	return err
}

// setCorrelator makes corr the active correlator
func (c *Client) setCorrelator(corr *correlation) {
	c.corrMu.Lock()
	c.active = corr
	c.corrMu.Unlock()
}

// clearCorrelator removes the active correlator. Once it returns no correlator is running.
func (c *Client) clearCorrelator() {
	c.corrMu.Lock()
	c.active = nil
	c.corrMu.Unlock()
}

// correlate offers the frame to the active correlator.
// Returns true if the frame was consumed.
func (c *Client) correlate(frame common.Frame) bool {
	c.corrMu.Lock()
	defer c.corrMu.Unlock()

	corr := c.active
	if corr == nil {
		return false
	}
	if !corr.handle(frame) {
		return false
	}
	c.active = nil
	close(corr.done)
	return true
}
