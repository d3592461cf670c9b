// Package scrutinytest provides testing utilities for scrutiny servers.
// It includes an in-memory client that communicates with a server without
// network I/O, plus assertion helpers for diagnostics and status messages.
package scrutinytest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/scrutiny-lsp/scrutiny"
	"github.com/scrutiny-lsp/scrutiny/jsonrpc"
	"github.com/scrutiny-lsp/scrutiny/protocol"
	"github.com/scrutiny-lsp/scrutiny/transport"
)

// Client is a test LSP client that talks to a server over an in-memory
// transport. It records every server notification for later inspection.
type Client struct {
	t    testing.TB
	conn *jsonrpc.Conn
	stop func()

	mu            sync.Mutex
	notifications []notification
}

type notification struct {
	Method string
	Params json.RawMessage
}

// NewClient creates a test client connected to the given server. The server
// runs in a background goroutine and is stopped when the test completes.
func NewClient(t testing.TB, s *scrutiny.Server) *Client {
	clientTransport, serverTransport := transport.MemoryPipe()

	ctx, cancel := context.WithCancel(context.Background())

	c := &Client{
		t:    t,
		stop: cancel,
	}

	go func() {
		err := scrutiny.Serve(s, scrutiny.WithTransport(serverTransport))
		if err != nil && ctx.Err() == nil {
			t.Logf("server error: %v", err)
		}
	}()

	c.conn = jsonrpc.NewConn(clientTransport, clientTransport,
		func(ctx context.Context, method string, params jsonrpc.RawMessage) (interface{}, error) {
			return nil, &jsonrpc.Error{Code: jsonrpc.CodeMethodNotFound, Message: "client does not handle requests"}
		},
		func(ctx context.Context, method string, params jsonrpc.RawMessage) {
			c.mu.Lock()
			c.notifications = append(c.notifications, notification{Method: method, Params: params})
			c.mu.Unlock()
		})

	go func() {
		c.conn.Run(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		c.conn.Close()
		clientTransport.Close()
	})

	c.Initialize()

	return c
}

// Initialize sends the initialize request and initialized notification.
func (c *Client) Initialize() *protocol.InitializeResult {
	c.t.Helper()
	var result protocol.InitializeResult
	c.call(protocol.MethodInitialize, &protocol.InitializeParams{}, &result)
	c.notify(protocol.MethodInitialized, &protocol.InitializedParams{})
	return &result
}

// Open sends a textDocument/didOpen notification with language "plaintext".
func (c *Client) Open(uri string, text string) {
	c.t.Helper()
	c.OpenWithLanguage(uri, "plaintext", text)
}

// OpenWithLanguage sends a textDocument/didOpen with a specific language ID.
func (c *Client) OpenWithLanguage(uri, languageID, text string) {
	c.t.Helper()
	c.notify(protocol.MethodDidOpen, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        protocol.DocumentURI(uri),
			LanguageID: languageID,
			Version:    1,
			Text:       text,
		},
	})
	// Give the server a moment to process
	time.Sleep(10 * time.Millisecond)
}

// Change sends a textDocument/didChange notification with full content
// replacement.
func (c *Client) Change(uri string, version int32, text string) {
	c.t.Helper()
	c.notify(protocol.MethodDidChange, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(uri)},
			Version:                version,
		},
		ContentChanges: []protocol.TextDocumentContentChangeEvent{{Text: text}},
	})
	time.Sleep(10 * time.Millisecond)
}

// ChangeIncremental sends a textDocument/didChange notification with an
// incremental edit (range-based replacement) rather than full content.
func (c *Client) ChangeIncremental(uri string, version int32, rng protocol.Range, text string) {
	c.t.Helper()
	c.notify(protocol.MethodDidChange, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(uri)},
			Version:                version,
		},
		ContentChanges: []protocol.TextDocumentContentChangeEvent{{Range: &rng, Text: text}},
	})
	time.Sleep(10 * time.Millisecond)
}

// Close sends a textDocument/didClose notification.
func (c *Client) Close(uri string) {
	c.t.Helper()
	c.notify(protocol.MethodDidClose, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(uri)},
	})
	time.Sleep(10 * time.Millisecond)
}

// Paste sends a scrutiny/paste notification for the given range.
func (c *Client) Paste(uri string, rng protocol.Range) {
	c.t.Helper()
	c.notify(protocol.MethodPaste, &protocol.PasteParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(uri)},
		Range:        rng,
	})
	time.Sleep(10 * time.Millisecond)
}

// SetMode sends a scrutiny/setMode notification.
func (c *Client) SetMode(mode protocol.Mode) {
	c.t.Helper()
	c.notify(protocol.MethodSetMode, &protocol.SetModeParams{Mode: mode})
	time.Sleep(10 * time.Millisecond)
}

// VisibleRanges sends a scrutiny/visibleRanges notification.
func (c *Client) VisibleRanges(uri string, ranges ...protocol.Range) {
	c.t.Helper()
	c.notify(protocol.MethodVisibleRanges, &protocol.VisibleRangesParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(uri)},
		Ranges:       ranges,
	})
	time.Sleep(10 * time.Millisecond)
}

// ActiveEditor sends a scrutiny/activeEditor notification.
func (c *Client) ActiveEditor(uri string) {
	c.t.Helper()
	c.notify(protocol.MethodActiveEditor, &protocol.ActiveEditorParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(uri)},
	})
	time.Sleep(10 * time.Millisecond)
}

// Diagnostics returns all published diagnostics notifications received so far.
func (c *Client) Diagnostics() []protocol.PublishDiagnosticsParams {
	c.t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	var result []protocol.PublishDiagnosticsParams
	for _, n := range c.notifications {
		if n.Method == protocol.MethodPublishDiagnostics {
			var p protocol.PublishDiagnosticsParams
			if json.Unmarshal(n.Params, &p) == nil {
				result = append(result, p)
			}
		}
	}
	return result
}

// LatestDiagnostics returns the most recent PublishDiagnostics for the given
// URI, or nil if none have been received.
func (c *Client) LatestDiagnostics(uri string) []protocol.Diagnostic {
	c.t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.notifications) - 1; i >= 0; i-- {
		n := c.notifications[i]
		if n.Method == protocol.MethodPublishDiagnostics {
			var p protocol.PublishDiagnosticsParams
			if json.Unmarshal(n.Params, &p) == nil && string(p.URI) == uri {
				return p.Diagnostics
			}
		}
	}
	return nil
}

// WaitForDiagnostics polls until a PublishDiagnostics notification matching
// the predicate arrives for the given URI, or fails the test on timeout. A
// nil predicate matches any notification for the URI.
func (c *Client) WaitForDiagnostics(uri string, timeout time.Duration, match func([]protocol.Diagnostic) bool) []protocol.Diagnostic {
	c.t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		diags := c.LatestDiagnostics(uri)
		if diags != nil && (match == nil || match(diags)) {
			return diags
		}
		time.Sleep(10 * time.Millisecond)
	}
	c.t.Fatalf("timed out waiting for diagnostics on %s", uri)
	return nil
}

// Statuses returns all scrutiny/status messages received so far, in order.
func (c *Client) Statuses() []string {
	c.t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	var result []string
	for _, n := range c.notifications {
		if n.Method == protocol.MethodStatus {
			var p protocol.StatusParams
			if json.Unmarshal(n.Params, &p) == nil {
				result = append(result, p.Message)
			}
		}
	}
	return result
}

// Shutdown sends the shutdown request.
func (c *Client) Shutdown() {
	c.t.Helper()
	c.call(protocol.MethodShutdown, nil, nil)
}

func (c *Client) call(method string, params, result interface{}) {
	c.t.Helper()
	if err := c.callErr(method, params, result); err != nil {
		c.t.Fatalf("call %s failed: %v", method, err)
	}
}

func (c *Client) callErr(method string, params, result interface{}) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := c.conn.Call(ctx, method, params)
	if err != nil {
		return err
	}
	if resp.Error != nil {
		return resp.Error
	}
	if result != nil && resp.Result != nil {
		if err := json.Unmarshal(resp.Result, result); err != nil {
			return fmt.Errorf("unmarshalling result: %w", err)
		}
	}
	return nil
}

func (c *Client) notify(method string, params interface{}) {
	c.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.conn.Notify(ctx, method, params); err != nil {
		c.t.Fatalf("notify %s failed: %v", method, err)
	}
}
