package client

import (
	"context"
	"github.com/ValentinKolb/xPeer/lib/listener"
	"github.com/ValentinKolb/xPeer/rpc/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func acquireVirtualPeer(t *testing.T, c *Client, relay *fakeRelay) *VirtualPeer {
	t.Helper()
	vp, ok := acquirePeer(t, c, relay, virtual, VirtualPeerMarker).(*VirtualPeer)
	require.True(t, ok)
	return vp
}

// connected returns a virtual peer after a successful Connect with the given state
func connected(t *testing.T, c *Client, relay *fakeRelay, state string) *VirtualPeer {
	t.Helper()
	vp := acquireVirtualPeer(t, c, relay)

	var resp Response
	done := async(func() (err error) {
		resp, err = vp.Connect(context.Background())
		return err
	})
	relay.expectSent(t, "conVPeer::VVVVVVVVVVVVVVVVVVVVVV::")
	relay.deliver(common.Build(common.MsgTStateUpdate, virtual, state))
	await(t, done)
	require.True(t, resp.Success)
	return vp
}

func TestVirtualPeerConnect(t *testing.T) {
	c, relay, _ := identified(t)
	vp := acquireVirtualPeer(t, c, relay)

	var states []common.State
	vp.OnState(func(state common.State, from *VirtualPeer, _ *listener.Subscription) {
		assert.Same(t, vp, from)
		states = append(states, state)
	})

	var resp Response
	done := async(func() (err error) {
		resp, err = vp.Connect(context.Background())
		return err
	})
	relay.expectSent(t, common.Build(common.MsgTConnectVPeer, virtual, ""))

	// state of another virtual peer is not the connect reply
	relay.deliver(common.Build(common.MsgTStateUpdate, peerB, `{"other":true}`))
	assertPending(t, done)

	relay.deliver(common.Build(common.MsgTStateUpdate, virtual, `{"count":1,"name":"room"}`))
	await(t, done)

	assert.True(t, resp.Success)
	assert.True(t, vp.Connected())
	want := common.State{"count": float64(1), "name": "room"}
	assert.Equal(t, want, vp.State())
	require.Len(t, states, 1)
	assert.Equal(t, want, states[0])
}

func TestVirtualPeerConnectThenUpdate(t *testing.T) {
	c, relay, _ := identified(t)
	vp := acquireVirtualPeer(t, c, relay)

	var order []any
	vp.OnState(func(state common.State, _ *VirtualPeer, _ *listener.Subscription) {
		order = append(order, state["v"])
	})

	done := async(func() error {
		_, err := vp.Connect(context.Background())
		return err
	})
	relay.expectSent(t, common.Build(common.MsgTConnectVPeer, virtual, ""))

	// the update right after the connect reply must win
	relay.deliver(common.Build(common.MsgTStateUpdate, virtual, `{"v":1}`))
	relay.deliver(common.Build(common.MsgTStateUpdate, virtual, `{"v":2}`))
	await(t, done)

	assert.True(t, vp.Connected())
	assert.Equal(t, common.State{"v": float64(2)}, vp.State())
	assert.Equal(t, []any{float64(1), float64(2)}, order)
}

func TestVirtualPeerConnectNullState(t *testing.T) {
	c, relay, _ := identified(t)
	vp := acquireVirtualPeer(t, c, relay)

	calls := 0
	vp.OnState(func(common.State, *VirtualPeer, *listener.Subscription) { calls++ })

	var resp Response
	done := async(func() (err error) {
		resp, err = vp.Connect(context.Background())
		return err
	})
	relay.expectSent(t, common.Build(common.MsgTConnectVPeer, virtual, ""))
	relay.deliver(common.Build(common.MsgTStateUpdate, virtual, "null"))
	await(t, done)

	assert.False(t, resp.Success)
	assert.False(t, vp.Connected())
	assert.Nil(t, vp.State())
	assert.Equal(t, 0, calls)
}

func TestVirtualPeerConnectError(t *testing.T) {
	c, relay, _ := identified(t)
	vp := acquireVirtualPeer(t, c, relay)

	var resp Response
	done := async(func() (err error) {
		resp, err = vp.Connect(context.Background())
		return err
	})
	relay.expectSent(t, common.Build(common.MsgTConnectVPeer, virtual, ""))
	relay.deliver(common.Build(common.MsgTError, selfID, "not allowed"))
	await(t, done)

	assert.False(t, resp.Success)
	assert.Equal(t, "not allowed", resp.Message)
	assert.False(t, vp.Connected())
	assert.Nil(t, vp.State())
}

func TestVirtualPeerConnectInvalidState(t *testing.T) {
	c, relay, _ := identified(t)
	vp := acquireVirtualPeer(t, c, relay)

	var resp Response
	done := async(func() (err error) {
		resp, err = vp.Connect(context.Background())
		return err
	})
	relay.expectSent(t, common.Build(common.MsgTConnectVPeer, virtual, ""))
	relay.deliver(common.Build(common.MsgTStateUpdate, virtual, "not json"))
	await(t, done)

	assert.False(t, resp.Success)
	assert.False(t, vp.Connected())
}

func TestVirtualPeerUnsolicitedState(t *testing.T) {
	c, relay, rec := identified(t)
	vp := connected(t, c, relay, `{"a":1}`)

	var got common.State
	vp.OnceState(func(state common.State, _ *VirtualPeer, _ *listener.Subscription) { got = state })

	relay.deliver(common.Build(common.MsgTStateUpdate, virtual, `{"b":"two"}`))
	assert.Equal(t, common.State{"b": "two"}, vp.State())
	assert.Equal(t, common.State{"b": "two"}, got)

	// listeners receive a copy, the handle owns its state
	got["b"] = "changed"
	assert.Equal(t, common.State{"b": "two"}, vp.State())

	// once listener is gone, the state is still replaced
	relay.deliver(common.Build(common.MsgTStateUpdate, virtual, `{"c":3}`))
	assert.Equal(t, common.State{"c": float64(3)}, vp.State())
	assert.Equal(t, common.State{"b": "changed"}, got)

	// invalid state is dropped without replacing the current one
	relay.deliver(common.Build(common.MsgTStateUpdate, virtual, "{broken"))
	assert.Equal(t, common.State{"c": float64(3)}, vp.State())
	assert.Equal(t, 0, rec.count("received {broken"))
}

func TestVirtualPeerMessages(t *testing.T) {
	c, relay, _ := identified(t)
	vp := connected(t, c, relay, `{}`)

	var from IPeer
	var msg string
	vp.OnMessage(func(m string, p IPeer, _ *listener.Subscription) { msg, from = m, p })

	relay.deliver(common.Build(common.MsgTRecvPeer, virtual, "hello"))
	assert.Equal(t, "hello", msg)
	assert.Same(t, vp, from)
}

func TestVirtualPeerPatchAndPut(t *testing.T) {
	tests := []struct {
		name    string
		msgType common.MessageType
		call    func(vp *VirtualPeer, state common.State) (Response, error)
	}{
		{
			name:    "patch",
			msgType: common.MsgTPatchState,
			call: func(vp *VirtualPeer, state common.State) (Response, error) {
				return vp.PatchState(context.Background(), state)
			},
		},
		{
			name:    "put",
			msgType: common.MsgTPutState,
			call: func(vp *VirtualPeer, state common.State) (Response, error) {
				return vp.PutState(context.Background(), state)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, relay, _ := identified(t)
			vp := connected(t, c, relay, `{}`)

			var resp Response
			done := async(func() (err error) {
				resp, err = tt.call(vp, common.State{"x": 1})
				return err
			})
			relay.expectSent(t, common.Build(tt.msgType, virtual, `{"x":1}`))
			relay.deliver(common.Build(common.MsgTSuccess, selfID, virtual))
			await(t, done)
			assert.True(t, resp.Success)

			done = async(func() (err error) {
				resp, err = tt.call(vp, common.State{"x": 2})
				return err
			})
			relay.expectSent(t, common.Build(tt.msgType, virtual, `{"x":2}`))
			relay.deliver(common.Build(common.MsgTError, selfID, "conflict"))
			await(t, done)
			assert.False(t, resp.Success)
			assert.Equal(t, "conflict", resp.Message)
		})
	}
}

func TestVirtualPeerPatchUnserializable(t *testing.T) {
	c, relay, _ := identified(t)
	vp := connected(t, c, relay, `{}`)

	_, err := vp.PatchState(context.Background(), common.State{"fn": func() {}})
	assert.Error(t, err)
	relay.expectSilence(t)
}

func TestVirtualPeerDisconnect(t *testing.T) {
	c, relay, rec := identified(t)
	vp := connected(t, c, relay, `{"a":1}`)

	calls := 0
	vp.OnState(func(common.State, *VirtualPeer, *listener.Subscription) { calls++ })
	vp.OnMessage(func(string, IPeer, *listener.Subscription) { calls++ })

	var resp Response
	done := async(func() (err error) {
		resp, err = vp.Disconnect(context.Background())
		return err
	})
	relay.expectSent(t, "disVPeer::VVVVVVVVVVVVVVVVVVVVVV::")
	relay.deliver(common.Build(common.MsgTSuccess, selfID, virtual))
	await(t, done)

	assert.True(t, resp.Success)
	assert.False(t, vp.Connected())

	// listeners and routing are gone
	relay.deliver(common.Build(common.MsgTStateUpdate, virtual, `{"a":2}`))
	relay.deliver(common.Build(common.MsgTRecvPeer, virtual, "late"))
	assert.Equal(t, 0, calls)
	assert.Equal(t, 1, rec.count("received late"))
}

func TestVirtualPeerDestroy(t *testing.T) {
	c, relay, rec := identified(t)
	vp := connected(t, c, relay, `{}`)

	calls := 0
	vp.OnMessage(func(string, IPeer, *listener.Subscription) { calls++ })

	require.NoError(t, vp.Destroy())
	relay.expectSent(t, "delVPeer::VVVVVVVVVVVVVVVVVVVVVV::")
	assert.False(t, vp.Connected())

	relay.deliver(common.Build(common.MsgTRecvPeer, virtual, "late"))
	assert.Equal(t, 0, calls)
	assert.Equal(t, 1, rec.count("received late"))
}
