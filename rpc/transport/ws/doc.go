// Package ws implements the websocket transport of the xPeer client on top of
// github.com/gorilla/websocket. Every websocket text message is one protocol frame.
//
// A close frame with status "normal closure" or "going away" is reported as a clean
// close (transport.ErrClosed), everything else as an unclean close that consumes
// a reconnect retry.
//
// Usage Example:
//
//	config := common.DefaultClientConfig("ws://localhost:8080/ws")
//	c := client.NewClient(config, ws.NewWebSocketClientTransport(config))
//	defer c.Disconnect()
package ws
