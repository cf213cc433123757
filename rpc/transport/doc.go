// Package transport defines the interfaces and abstractions for the connection
// between the xPeer client and its relay.
//
// The package focuses on:
//   - Separating the reconnecting connection (IClientTransport) from the
//     transport medium (IClientConnector / IFrameConn)
//   - Distinguishing clean from unclean closes (ErrClosed)
//
// Key Components:
//
//   - IFrameConn: One established duplex connection delivering discrete, ordered,
//     complete text frames.
//
//   - IClientConnector: Medium-specific dialer, e.g. the websocket connector in package ws.
//
//   - IClientTransport: The connection contract used by the client: buffered sends,
//     a single inbound frame handler, reconnection and close. Implemented by package base.
package transport
