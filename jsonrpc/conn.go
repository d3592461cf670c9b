// Package jsonrpc implements a bidirectional JSON-RPC 2.0 connection over
// Content-Length framed streams, as specified by the LSP base protocol.
package jsonrpc

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// Handler processes an incoming JSON-RPC request and returns its result.
type Handler func(ctx context.Context, method string, params RawMessage) (result interface{}, err error)

// NotificationHandler processes an incoming JSON-RPC notification.
type NotificationHandler func(ctx context.Context, method string, params RawMessage)

// Conn is a bidirectional JSON-RPC 2.0 connection over a framed byte stream.
type Conn struct {
	reader  *bufio.Reader
	writer  io.Writer
	wmu     sync.Mutex
	handler Handler
	notif   NotificationHandler

	pending   sync.Map // id key -> chan *Response
	nextID    atomic.Int64
	notifCh   chan *envelope
	closeOnce sync.Once
	done      chan struct{}
}

// NewConn creates a connection over the given streams with the given request
// and notification handlers.
func NewConn(r io.Reader, w io.Writer, handler Handler, notif NotificationHandler) *Conn {
	return &Conn{
		reader:  bufio.NewReaderSize(r, 64*1024),
		writer:  w,
		handler: handler,
		notif:   notif,
		notifCh: make(chan *envelope, 64),
		done:    make(chan struct{}),
	}
}

// Run reads messages from the connection until it is closed or an error
// occurs. Requests are served concurrently; notifications are delivered to
// the handler one at a time, in the order they arrived on the wire.
func (c *Conn) Run(ctx context.Context) error {
	go c.notifyLoop(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.done:
			return nil
		default:
		}

		data, err := c.readFrame()
		if err != nil {
			select {
			case <-c.done:
				return nil
			default:
				return fmt.Errorf("reading message: %w", err)
			}
		}

		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			continue
		}

		switch {
		case env.isRequest():
			go c.serveRequest(ctx, &env)
		case env.isNotification():
			select {
			case c.notifCh <- &env:
			case <-ctx.Done():
				return ctx.Err()
			case <-c.done:
				return nil
			}
		default:
			c.settle(&env)
		}
	}
}

func (c *Conn) serveRequest(ctx context.Context, env *envelope) {
	result, err := c.handler(ctx, env.Method, env.Params)
	resp := newResponse(*env.ID, result, err)
	data, merr := json.Marshal(resp)
	if merr != nil {
		return
	}
	_ = c.writeFrame(data)
}

// notifyLoop drains notifCh on a single goroutine so each notification
// handler runs to completion before the next one starts.
func (c *Conn) notifyLoop(ctx context.Context) {
	for {
		select {
		case env := <-c.notifCh:
			c.serveNotification(ctx, env)
		case <-ctx.Done():
			return
		case <-c.done:
			return
		}
	}
}

func (c *Conn) serveNotification(ctx context.Context, env *envelope) {
	if c.notif != nil {
		c.notif(ctx, env.Method, env.Params)
	} else if c.handler != nil {
		c.handler(ctx, env.Method, env.Params)
	}
}

func (c *Conn) settle(env *envelope) {
	id := ID{}
	if env.ID != nil {
		id = *env.ID
	}
	if ch, ok := c.pending.LoadAndDelete(idKey(id)); ok {
		ch.(chan *Response) <- &Response{
			JSONRPC: env.JSONRPC,
			ID:      id,
			Result:  env.Result,
			Error:   env.Error,
		}
	}
}

// Call sends a request and waits for the matching response.
func (c *Conn) Call(ctx context.Context, method string, params interface{}) (*Response, error) {
	id := IntID(c.nextID.Add(1))
	paramsData, err := marshalParams(params)
	if err != nil {
		return nil, err
	}

	req := envelope{JSONRPC: Version, ID: &id, Method: method, Params: paramsData}

	ch := make(chan *Response, 1)
	c.pending.Store(idKey(id), ch)
	defer c.pending.Delete(idKey(id))

	data, err := json.Marshal(&req)
	if err != nil {
		return nil, err
	}
	if err := c.writeFrame(data); err != nil {
		return nil, err
	}

	select {
	case resp := <-ch:
		return resp, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done:
		return nil, fmt.Errorf("connection closed")
	}
}

// Notify sends a notification (no response expected).
func (c *Conn) Notify(ctx context.Context, method string, params interface{}) error {
	paramsData, err := marshalParams(params)
	if err != nil {
		return err
	}
	data, err := json.Marshal(&envelope{JSONRPC: Version, Method: method, Params: paramsData})
	if err != nil {
		return err
	}
	return c.writeFrame(data)
}

// Close terminates the connection.
func (c *Conn) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// readFrame reads one Content-Length framed message from the stream.
func (c *Conn) readFrame() ([]byte, error) {
	contentLen := -1
	for {
		line, err := c.reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("reading header: %w", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		colon := strings.IndexByte(line, ':')
		if colon < 0 {
			continue
		}
		key := strings.TrimSpace(line[:colon])
		val := strings.TrimSpace(line[colon+1:])
		if strings.EqualFold(key, "Content-Length") {
			n, err := strconv.Atoi(val)
			if err != nil {
				return nil, fmt.Errorf("invalid Content-Length %q: %w", val, err)
			}
			contentLen = n
		}
	}

	if contentLen < 0 {
		return nil, fmt.Errorf("missing Content-Length header")
	}

	body := make([]byte, contentLen)
	if _, err := io.ReadFull(c.reader, body); err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	return body, nil
}

// writeFrame writes one Content-Length framed message to the stream.
func (c *Conn) writeFrame(data []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Content-Length: %d\r\n\r\n", len(data))
	buf.Write(data)

	_, err := c.writer.Write(buf.Bytes())
	return err
}

func marshalParams(v interface{}) (RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func idKey(id ID) string {
	switch v := id.Value().(type) {
	case int64:
		return fmt.Sprintf("n:%d", v)
	case string:
		return fmt.Sprintf("s:%s", v)
	default:
		return "null"
	}
}
