// Package middleware provides composable wrappers around the scrutiny
// JSON-RPC dispatch layer, so cross-cutting concerns like panic recovery and
// request logging apply uniformly to every handler.
package middleware

import (
	"context"

	"github.com/scrutiny-lsp/scrutiny/jsonrpc"
)

// Handler processes a JSON-RPC method call and returns a result.
type Handler func(ctx context.Context, method string, params jsonrpc.RawMessage) (any, error)

// Middleware wraps a Handler to add cross-cutting behavior.
type Middleware func(Handler) Handler

// Chain composes middleware into one. The first middleware in the slice is
// the outermost wrapper and executes first.
func Chain(mws ...Middleware) Middleware {
	return func(next Handler) Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}
