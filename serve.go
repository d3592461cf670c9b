package scrutiny

import (
	"context"
	"fmt"
	"time"

	"github.com/scrutiny-lsp/scrutiny/config"
	"github.com/scrutiny-lsp/scrutiny/diag"
	"github.com/scrutiny-lsp/scrutiny/jsonrpc"
	mw "github.com/scrutiny-lsp/scrutiny/middleware"
	"github.com/scrutiny-lsp/scrutiny/transport"
)

// Serve starts the LSP server using the given transport options.
// If no ServeOption is provided, stdio is used by default.
func Serve(s *Server, opts ...ServeOption) error {
	cfg := &serveConfig{}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.transport == nil && cfg.transportFactory != nil {
		var err error
		cfg.transport, err = cfg.transportFactory()
		if err != nil {
			return fmt.Errorf("creating transport: %w", err)
		}
	}
	if cfg.transport == nil {
		cfg.transport = transport.Stdio()
	}

	// Wrap dispatch with the middleware chain.
	handler := jsonrpc.Handler(s.dispatch)
	notifHandler := s.dispatchNotification
	if len(s.middlewares) > 0 {
		chain := mw.Chain(s.middlewares...)
		handler = jsonrpc.Handler(chain(mw.Handler(handler)))

		wrappedNotif := chain(func(ctx context.Context, method string, params jsonrpc.RawMessage) (any, error) {
			s.dispatchNotification(ctx, method, params)
			return nil, nil
		})
		notifHandler = func(ctx context.Context, method string, params jsonrpc.RawMessage) {
			wrappedNotif(ctx, method, params)
		}
	}

	conn := jsonrpc.NewConn(cfg.transport, cfg.transport, handler, notifHandler)
	s.conn = conn
	s.client = newClientProxy(conn)
	s.status = newStatusNotifier(s.client, func() time.Duration {
		return s.settings.Get().StatusTimeout()
	})

	// The engine needs the client proxy for publishing, so it is built here.
	s.engine = diag.NewEngine(s.docs, s.analyzer, s.publishFindings, s.status.Show, s.logger, engineOptions(s.settings.Get()))
	s.settings.OnChange(func(_, new_ *config.Settings) {
		s.engine.UpdateOptions(engineOptions(new_))
	})

	// The watcher is started lazily during initialize.
	defer func() {
		if s.watcher != nil {
			s.watcher.Close()
		}
	}()

	s.logger.Info("scrutiny server starting", "name", s.name, "version", s.version)

	if err := conn.Run(context.Background()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
