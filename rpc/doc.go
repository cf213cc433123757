// Package rpc provides the client side of the xPeer relay protocol.
//
// The package is organized into several subpackages:
//
//   - common: The frame codec, message types, client configuration and logging.
//
//   - transport: Connection abstractions. The base subpackage implements the reconnecting
//     client transport, ws provides the websocket connector.
//
//   - serializer: Encoding of virtual peer state into frame payloads.
//
//   - client: The protocol client with its peer and virtual peer handles.
package rpc
