// Package client implements the xPeer protocol client on top of a reconnecting transport.
//
// The Client owns one duplex connection to the relay. Request/response exchanges (ping,
// direct messages, virtual peer state operations) run one at a time through a task queue;
// while an exchange is in flight its correlator sees every inbound frame first and frames it
// declines continue through the general handler chain, so unsolicited traffic is never lost.
//
// Key Components:
//
//   - Client: Identity assignment, ping answering, routing of application frames to peer
//     handles and peer acquisition (Ping, GetPeer, CreateVirtualPeer).
//
//   - Peer: Handle of a remote endpoint. SendMessage waits for the relay's ack, OnMessage
//     and OnceMessage register listeners for direct messages.
//
//   - VirtualPeer: Handle of a peer with relay managed state. Connect, PatchState, PutState,
//     Disconnect and Destroy implement the state lifecycle, OnState listens for updates.
//
//   - Response: Outcome of a correlated operation. Protocol failures reported by the relay
//     are carried as a Response, Go errors are reserved for transport and context failures.
//
// Usage Example:
//
//	config := common.DefaultClientConfig("ws://localhost:8080/ws")
//	c := client.NewClient(config, ws.NewWebSocketClientTransport(config))
//	defer c.Disconnect()
//
//	id, _ := c.AwaitIdentity(ctx)
//	peer, _ := c.GetPeer(ctx, "BBBBBBBBBBBBBBBBBBBBBB")
//	if peer != nil {
//	  peer.OnMessage(func(msg string, from client.IPeer, _ *listener.Subscription) {
//	    fmt.Printf("%s -> %s: %s\n", from.ID(), id, msg)
//	  })
//	  resp, _ := peer.SendMessage(ctx, "hi")
//	  fmt.Println(resp)
//	}
//
// Handlers and listeners run on the transport's reader goroutine. They must not block and
// must not wait for another exchange of the same client.
package client
