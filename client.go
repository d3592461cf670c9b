package scrutiny

import (
	"context"

	"github.com/scrutiny-lsp/scrutiny/jsonrpc"
	"github.com/scrutiny-lsp/scrutiny/protocol"
)

// ClientProxy sends notifications from server to client.
type ClientProxy struct {
	conn *jsonrpc.Conn
}

func newClientProxy(conn *jsonrpc.Conn) *ClientProxy {
	return &ClientProxy{conn: conn}
}

// PublishDiagnostics sends diagnostics for a document to the client.
func (c *ClientProxy) PublishDiagnostics(ctx context.Context, params *protocol.PublishDiagnosticsParams) error {
	return c.conn.Notify(ctx, protocol.MethodPublishDiagnostics, params)
}

// LogMessage sends a log message to the client.
func (c *ClientProxy) LogMessage(ctx context.Context, typ protocol.MessageType, message string) error {
	return c.conn.Notify(ctx, protocol.MethodLogMessage, &protocol.LogMessageParams{
		Type:    typ,
		Message: message,
	})
}

// ShowMessage sends a show message notification to the client.
func (c *ClientProxy) ShowMessage(ctx context.Context, typ protocol.MessageType, message string) error {
	return c.conn.Notify(ctx, protocol.MethodShowMessage, &protocol.ShowMessageParams{
		Type:    typ,
		Message: message,
	})
}

// Status sends a transient status-line message to the client. An empty
// message clears the status.
func (c *ClientProxy) Status(ctx context.Context, message string) error {
	return c.conn.Notify(ctx, protocol.MethodStatus, &protocol.StatusParams{Message: message})
}
