package client

import (
	"context"
	"github.com/ValentinKolb/xPeer/lib/listener"
	"github.com/ValentinKolb/xPeer/rpc/common"
	"github.com/lni/dragonboat/v4/logger"
)

// event is the closed set of listener kinds of a handle
type event uint8

const (
	eventMessage event = iota
	eventState
)

// Peer is the handle of a remote endpoint. It owns exactly one routing slot of the
// client for its whole lifetime and forwards direct messages to its listeners.
type Peer struct {
	id       string
	client   IOperationalClient
	source   *listener.Source[common.Frame]
	messages *listener.Manager[event, string, IPeer]
	logger   logger.ILogger

	// self is the handle passed to listeners, the embedding *VirtualPeer for virtual peers
	self IPeer
}

func newPeer(id string, client IOperationalClient, log logger.ILogger) *Peer {
	p := &Peer{
		id:       id,
		client:   client,
		source:   client.CreateMessageSource(),
		messages: listener.NewManager[event, string, IPeer](),
		logger:   log,
	}
	p.self = p
	p.source.SetGuard(func(frame common.Frame) bool {
		return frame.Sender == id && frame.Type == common.MsgTRecvPeer
	})
	p.source.SetHandler(p.receive)
	return p
}

// ID returns the relay assigned id of the peer
func (p *Peer) ID() string {
	return p.id
}

// IsVirtual is false for plain peers
func (p *Peer) IsVirtual() bool {
	return false
}

// Ping probes the peer
func (p *Peer) Ping(ctx context.Context) (bool, error) {
	return p.client.Ping(ctx, p.id)
}

// SendMessage sends msg to the peer and waits until the relay acknowledged it
func (p *Peer) SendMessage(ctx context.Context, msg string) (Response, error) {
	p.logger.Debugf("[%s] sending message", p.id)
	return p.ackExchange(ctx, common.Build(common.MsgTSendPeer, p.id, msg))
}

// OnMessage registers a listener for direct messages of the peer
func (p *Peer) OnMessage(handler MessageHandler) *listener.Subscription {
	return p.messages.Register(eventMessage, handler)
}

// OnceMessage registers a listener that is removed after the first direct message
func (p *Peer) OnceMessage(handler MessageHandler) *listener.Subscription {
	return p.messages.Once(eventMessage, handler)
}

// Close removes all listeners and the routing slot. The handle must not be used afterward.
func (p *Peer) Close() {
	p.messages.ClearAll()
	p.source.Destroy()
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// receive is the routing slot handler for unsolicited frames
func (p *Peer) receive(frame common.Frame) {
	p.logger.Debugf("[%s] received message", p.id)
	p.messages.Trigger(eventMessage, frame.Payload, p.self)
}

// ackExchange sends frame as one correlated exchange. The relay acknowledges with an
// oprResOk from the client's own identity naming this peer, or an errorMsg with the reason.
func (p *Peer) ackExchange(ctx context.Context, frame string) (Response, error) {
	var reason string

	err := p.client.ExecuteTask(ctx, func(ex *Exchange) error {
		ex.ReceiveMessage(func(reply common.Frame) bool {
			// the identity may arrive while the exchange is in flight
			self := p.client.PeerID()
			switch {
			case reply.Type == common.MsgTSuccess && reply.Sender == self && reply.Payload == p.id:
				p.logger.Debugf("[%s] operation successful", p.id)
				return true
			case reply.Type == common.MsgTError && reply.Sender == self:
				reason = failureReason(reply.Payload)
				p.logger.Errorf("[%s] %s", p.id, reason)
				return true
			}
			return false
		})
		if err := ex.Send(frame); err != nil {
			return err
		}
		return ex.Await()
	})
	if err != nil {
		return Response{}, err
	}
	return newResponse(reason), nil
}
