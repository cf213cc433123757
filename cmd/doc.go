// Package cmd implements the command-line interface of the xPeer client.
// It provides commands to talk to peers and to manage virtual peer state.
//
// The package is organized into several subpackages:
//
//   - peer: Commands for plain peer operations (id, ping, send, create, listen, perf)
//   - state: Commands for virtual peer state (watch, put, patch, delete)
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See xpeer -help for a list of all commands.
package cmd
