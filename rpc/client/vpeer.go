package client

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/xPeer/lib/listener"
	"github.com/ValentinKolb/xPeer/rpc/common"
	"github.com/lni/dragonboat/v4/logger"
	"maps"
	"sync"
)

// VirtualPeer is the handle of a peer with relay managed replicated state.
//
// The handle is unconnected until Connect succeeded. Disconnect and Destroy are terminal:
// they remove every listener and the routing slot, the handle must not be used afterward.
type VirtualPeer struct {
	*Peer
	states *listener.Manager[event, common.State, *VirtualPeer]

	mu        sync.RWMutex
	state     common.State // nil until the first state frame arrived
	connected bool
}

func newVirtualPeer(id string, client IOperationalClient, log logger.ILogger) *VirtualPeer {
	vp := &VirtualPeer{
		Peer:   newPeer(id, client, log),
		states: listener.NewManager[event, common.State, *VirtualPeer](),
	}
	vp.self = vp
	vp.source.SetGuard(func(frame common.Frame) bool {
		return frame.Sender == id &&
			(frame.Type == common.MsgTRecvPeer || frame.Type == common.MsgTStateUpdate)
	})
	vp.source.SetHandler(vp.receive)
	return vp
}

// IsVirtual is true for virtual peers
func (vp *VirtualPeer) IsVirtual() bool {
	return true
}

// State returns a copy of the current state, nil before the first state frame
func (vp *VirtualPeer) State() common.State {
	vp.mu.RLock()
	defer vp.mu.RUnlock()
	if vp.state == nil {
		return nil
	}
	return maps.Clone(vp.state)
}

// Connected reports whether Connect succeeded and the handle was not disconnected since
func (vp *VirtualPeer) Connected() bool {
	vp.mu.RLock()
	defer vp.mu.RUnlock()
	return vp.connected
}

// OnState registers a listener for state updates
func (vp *VirtualPeer) OnState(handler StateHandler) *listener.Subscription {
	return vp.states.Register(eventState, handler)
}

// OnceState registers a listener that is removed after the first state update
func (vp *VirtualPeer) OnceState(handler StateHandler) *listener.Subscription {
	return vp.states.Once(eventState, handler)
}

// Connect subscribes the client to the virtual peer. The relay answers with the current
// state, which is adopted and passed to the state listeners before any later frame is
// handled. Like every listener they run on the transport reader goroutine.
func (vp *VirtualPeer) Connect(ctx context.Context) (Response, error) {
	var reason string

	err := vp.client.ExecuteTask(ctx, func(ex *Exchange) error {
		ex.ReceiveMessage(func(reply common.Frame) bool {
			switch {
			case reply.Type == common.MsgTStateUpdate && reply.Sender == vp.id:
				state, err := vp.client.Serializer().Deserialize(reply.Payload)
				if err != nil {
					reason = fmt.Sprintf("invalid state: %v", err)
					vp.logger.Errorf("[virtual::%s] %s", vp.id, reason)
					return true
				}
				vp.mu.Lock()
				vp.connected = true
				vp.mu.Unlock()
				vp.updateState(state)
				return true
			case reply.Type == common.MsgTError && reply.Sender == vp.client.PeerID():
				reason = failureReason(reply.Payload)
				vp.logger.Errorf("[virtual::%s] connect failed: %s", vp.id, reason)
				return true
			}
			return false
		})
		if err := ex.Send(common.Build(common.MsgTConnectVPeer, vp.id, "")); err != nil {
			return err
		}
		return ex.Await()
	})
	if err != nil {
		return Response{}, err
	}

	resp := newResponse(reason)
	if resp.Success {
		vp.logger.Infof("[virtual::%s] connected", vp.id)
	}
	return resp, nil
}

// PatchState sends a partial state that the relay merges into the shared state
func (vp *VirtualPeer) PatchState(ctx context.Context, delta common.State) (Response, error) {
	return vp.stateExchange(ctx, common.MsgTPatchState, delta)
}

// PutState replaces the shared state
func (vp *VirtualPeer) PutState(ctx context.Context, state common.State) (Response, error) {
	return vp.stateExchange(ctx, common.MsgTPutState, state)
}

// Disconnect removes all listeners and the routing slot, then unsubscribes from the
// virtual peer and waits for the relay's ack
func (vp *VirtualPeer) Disconnect(ctx context.Context) (Response, error) {
	vp.teardown()
	return vp.ackExchange(ctx, common.Build(common.MsgTDisconnectVPeer, vp.id, ""))
}

// Destroy removes all listeners and the routing slot and asks the relay to delete the
// virtual peer. The request is not acknowledged.
func (vp *VirtualPeer) Destroy() error {
	vp.teardown()
	return vp.client.Send(common.Build(common.MsgTDeleteVPeer, vp.id, ""))
}

// Close removes all listeners and the routing slot without notifying the relay
func (vp *VirtualPeer) Close() {
	vp.teardown()
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

func (vp *VirtualPeer) stateExchange(ctx context.Context, msgType common.MessageType, state common.State) (Response, error) {
	payload, err := vp.client.Serializer().Serialize(state)
	if err != nil {
		return Response{}, fmt.Errorf("failed to serialize state: %w", err)
	}
	return vp.ackExchange(ctx, common.Build(msgType, vp.id, payload))
}

func (vp *VirtualPeer) teardown() {
	vp.mu.Lock()
	vp.connected = false
	vp.mu.Unlock()

	vp.states.ClearAll()
	vp.Peer.Close()
}

// receive is the routing slot handler for unsolicited frames of the virtual peer
func (vp *VirtualPeer) receive(frame common.Frame) {
	switch frame.Type {
	case common.MsgTRecvPeer:
		vp.logger.Debugf("[virtual::%s] received message", vp.id)
		vp.messages.Trigger(eventMessage, frame.Payload, vp)
	case common.MsgTStateUpdate:
		state, err := vp.client.Serializer().Deserialize(frame.Payload)
		if err != nil {
			vp.logger.Errorf("[virtual::%s] dropping invalid state: %v", vp.id, err)
			return
		}
		vp.logger.Debugf("[virtual::%s] received state", vp.id)
		vp.updateState(state)
	}
}

// updateState replaces the current state and notifies the state listeners
func (vp *VirtualPeer) updateState(state common.State) {
	vp.mu.Lock()
	vp.state = state
	vp.mu.Unlock()

	vp.states.Trigger(eventState, maps.Clone(state), vp)
}
