// Package transport provides pluggable I/O transports for LSP communication:
// stdio, TCP, Unix domain sockets, WebSocket, Node.js IPC (VS Code extension
// host), and an in-memory pipe for tests.
package transport

import "io"

// Transport provides a bidirectional byte stream for JSON-RPC communication.
// Each implementation wraps a specific communication mechanism and exposes it
// as a simple reader/writer pair.
type Transport interface {
	io.ReadWriteCloser
}
