// Package common provides core data structures and utilities shared across
// the xPeer client. It defines the wire protocol, configuration structures
// and the logging integration used by the other packages.
//
// The package focuses on:
//   - Frame definition and the text codec (Parse / Build)
//   - Configuration for the client and its reconnect policy
//   - Custom logging implementation integrated with Dragonboat's logger package
//
// Key Components:
//
//   - Frame: One protocol unit with type, sender (or target) and payload. The wire
//     layout is "<8-char type>::<22-char peer id>::<payload>", the payload being
//     everything after the second delimiter.
//
//   - MessageType: The fixed-width type codes. Incoming and outgoing codes share
//     one namespace (e.g. "sendPing" is both sent and received).
//
//   - ClientConfig: Relay endpoint, reconnect budget and interval, log level.
//
//   - InitLoggers: Installs the xPeer logger factory and applies the configured log level
//     to every component logger (client, peer, vpeer, socket, queue).
package common
