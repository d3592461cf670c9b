package transport

import "net"

type connTransport struct {
	conn net.Conn
}

func (t *connTransport) Read(p []byte) (int, error)  { return t.conn.Read(p) }
func (t *connTransport) Write(p []byte) (int, error) { return t.conn.Write(p) }
func (t *connTransport) Close() error                { return t.conn.Close() }

// TCP wraps an existing TCP connection as a transport.
func TCP(conn net.Conn) Transport {
	return &connTransport{conn: conn}
}

// ListenTCP starts a TCP listener and returns the first connection as a
// transport. This is the typical mode for LSP servers accepting a single
// client connection.
func ListenTCP(addr string) (Transport, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	defer ln.Close()
	conn, err := ln.Accept()
	if err != nil {
		return nil, err
	}
	return TCP(conn), nil
}
