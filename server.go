package scrutiny

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/scrutiny-lsp/scrutiny/analysis"
	"github.com/scrutiny-lsp/scrutiny/config"
	"github.com/scrutiny-lsp/scrutiny/diag"
	"github.com/scrutiny-lsp/scrutiny/document"
	"github.com/scrutiny-lsp/scrutiny/jsonrpc"
	mw "github.com/scrutiny-lsp/scrutiny/middleware"
	"github.com/scrutiny-lsp/scrutiny/protocol"
)

// Server is the scrutiny LSP server. It owns the document store, the
// diagnostic refresh engine, and the connection lifecycle, and routes
// incoming LSP messages to the engine.
type Server struct {
	name    string
	version string
	logger  *slog.Logger

	// connection, client proxy, and status notifier (set during Serve)
	conn   *jsonrpc.Conn
	client *ClientProxy
	status *statusNotifier

	docs     *document.Store
	analyzer analysis.Analyzer
	engine   *diag.Engine

	settings   *config.Store[config.Settings]
	configPath string
	watcher    *config.Watcher

	middlewares []mw.Middleware

	mu          sync.Mutex // guards activeURI, initialized, shutdown
	activeURI   protocol.DocumentURI
	initialized bool
	shutdown    bool
}

// NewServer creates a scrutiny server with the given analyzer backend.
func NewServer(name, version string, analyzer analysis.Analyzer, opts ...Option) *Server {
	s := &Server{
		name:     name,
		version:  version,
		logger:   slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})),
		docs:     document.NewStore(),
		analyzer: analyzer,
		settings: config.NewStore(config.DefaultSettings()),
	}
	for _, o := range opts {
		o(s)
	}

	if s.configPath != "" {
		if cfg, err := config.LoadTOML(s.configPath, config.DefaultSettings()); err != nil {
			s.logger.Warn("config load failed, using defaults", "path", s.configPath, "error", err)
		} else {
			s.settings.Swap(cfg)
		}
	}
	return s
}

// Documents returns the document store.
func (s *Server) Documents() *document.Store { return s.docs }

// Engine returns the diagnostic refresh engine, or nil before Serve.
func (s *Server) Engine() *diag.Engine { return s.engine }

// Settings returns the live settings store.
func (s *Server) Settings() *config.Store[config.Settings] { return s.settings }

// Logger returns the server's logger.
func (s *Server) Logger() *slog.Logger { return s.logger }

// Conn returns the JSON-RPC connection, or nil before Serve.
func (s *Server) Conn() *jsonrpc.Conn { return s.conn }

// dispatch is the JSON-RPC request handler.
func (s *Server) dispatch(ctx context.Context, method string, params jsonrpc.RawMessage) (interface{}, error) {
	switch method {
	case protocol.MethodInitialize:
		return s.handleInitialize(params)
	case protocol.MethodShutdown:
		return s.handleShutdown()
	}

	if !s.isInitialized() {
		return nil, &jsonrpc.Error{Code: jsonrpc.CodeServerNotInitialized, Message: "server not initialized"}
	}

	return nil, &jsonrpc.Error{Code: jsonrpc.CodeMethodNotFound, Message: fmt.Sprintf("method not found: %s", method)}
}

// dispatchNotification is the JSON-RPC notification handler.
func (s *Server) dispatchNotification(ctx context.Context, method string, params jsonrpc.RawMessage) {
	switch method {
	case protocol.MethodInitialized:
		s.logger.Info("client initialized")
		return
	case protocol.MethodExit:
		s.logger.Info("received exit notification")
		if s.conn != nil {
			s.conn.Close()
		}
		if s.hasShutdown() {
			os.Exit(0)
		}
		os.Exit(1)
	case protocol.MethodSetTrace:
		return
	}

	if !s.isInitialized() {
		return
	}

	switch method {
	case protocol.MethodDidOpen:
		var p protocol.DidOpenTextDocumentParams
		if err := json.Unmarshal(params, &p); err != nil {
			s.logger.Warn("bad didOpen params", "error", err)
			return
		}
		doc := s.docs.Open(&p)
		s.setActive(p.TextDocument.URI)
		s.engine.HandleOpen(doc)

	case protocol.MethodDidChange:
		var p protocol.DidChangeTextDocumentParams
		if err := json.Unmarshal(params, &p); err != nil {
			s.logger.Warn("bad didChange params", "error", err)
			return
		}
		doc, deltas := s.docs.Change(&p)
		s.engine.HandleChange(doc, deltas)

	case protocol.MethodDidClose:
		var p protocol.DidCloseTextDocumentParams
		if err := json.Unmarshal(params, &p); err != nil {
			return
		}
		s.docs.Close(&p)
		s.engine.HandleClose(p.TextDocument.URI)

	case protocol.MethodPaste:
		var p protocol.PasteParams
		if err := json.Unmarshal(params, &p); err != nil {
			s.logger.Warn("bad paste params", "error", err)
			return
		}
		s.engine.HandlePaste(ctx, s.docs.Get(p.TextDocument.URI), p.Range)

	case protocol.MethodSetMode:
		var p protocol.SetModeParams
		if err := json.Unmarshal(params, &p); err != nil {
			s.logger.Warn("bad setMode params", "error", err)
			return
		}
		s.engine.SetMode(ctx, p.Mode, s.activeDocument())

	case protocol.MethodVisibleRanges:
		var p protocol.VisibleRangesParams
		if err := json.Unmarshal(params, &p); err != nil {
			return
		}
		s.engine.HandleVisibleRanges(s.docs.Get(p.TextDocument.URI), p.Ranges)

	case protocol.MethodActiveEditor:
		var p protocol.ActiveEditorParams
		if err := json.Unmarshal(params, &p); err != nil {
			return
		}
		s.setActive(p.TextDocument.URI)
		s.engine.HandleActiveEditor(s.docs.Get(p.TextDocument.URI))
	}
}

func (s *Server) handleInitialize(params jsonrpc.RawMessage) (interface{}, error) {
	var p protocol.InitializeParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, &jsonrpc.Error{Code: jsonrpc.CodeInvalidParams, Message: err.Error()}
	}

	s.mu.Lock()
	s.initialized = true
	s.mu.Unlock()

	if s.configPath != "" {
		s.startConfigWatcher()
	}

	s.logger.Info("server initialized", "name", s.name, "version", s.version)

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.SyncIncremental,
			},
		},
		ServerInfo: &protocol.ServerInfo{
			Name:    s.name,
			Version: s.version,
		},
	}, nil
}

func (s *Server) handleShutdown() (interface{}, error) {
	s.mu.Lock()
	s.shutdown = true
	s.mu.Unlock()
	s.logger.Info("server shutting down")
	return nil, nil
}

func (s *Server) isInitialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

func (s *Server) hasShutdown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdown
}

func (s *Server) startConfigWatcher() {
	reloader := config.NewReloader(s.settings, s.configPath, config.DefaultSettings())
	w, err := config.NewWatcher(s.configPath, func() {
		if err := reloader.Reload(); err != nil {
			s.logger.Warn("config reload failed", "path", s.configPath, "error", err)
		}
	}, config.WithWatcherLogger(s.logger))
	if err != nil {
		s.logger.Warn("config watcher failed to start", "path", s.configPath, "error", err)
		return
	}
	s.watcher = w
}

func (s *Server) setActive(uri protocol.DocumentURI) {
	s.mu.Lock()
	s.activeURI = uri
	s.mu.Unlock()
}

func (s *Server) activeDocument() *document.Document {
	s.mu.Lock()
	uri := s.activeURI
	s.mu.Unlock()
	if uri == "" {
		return nil
	}
	return s.docs.Get(uri)
}

// publishFindings converts stored findings to LSP diagnostics and pushes them
// to the client. This is the engine's publish callback: the store mirrors
// every mutation through here in the same logical step.
func (s *Server) publishFindings(uri protocol.DocumentURI, findings []diag.Finding) {
	params := &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	}
	if doc := s.docs.Get(uri); doc != nil {
		version := doc.Version()
		params.Version = &version
		text := doc.Text()
		for _, f := range findings {
			params.Diagnostics = append(params.Diagnostics, diagnosticFor(text, f))
		}
	}
	if err := s.client.PublishDiagnostics(context.Background(), params); err != nil {
		s.logger.Warn("publish failed", "uri", uri, "error", err)
	}
}

func diagnosticFor(text string, f diag.Finding) protocol.Diagnostic {
	msg := fmt.Sprintf("%q looks suspicious", f.ReferenceValue)
	if len(f.Candidates) > 0 {
		msg = fmt.Sprintf("%q looks suspicious; did you mean %q?", f.ReferenceValue, f.Candidates[0].Value)
	}
	data, _ := json.Marshal(f.Candidates)
	return protocol.Diagnostic{
		Range:    document.RangeOf(text, f.PrimarySpan),
		Severity: f.Severity,
		Code:     f.ReferenceValue,
		Source:   "scrutiny",
		Message:  msg,
		Data:     data,
	}
}

// engineOptions maps live settings to engine tuning values.
func engineOptions(st *config.Settings) diag.Options {
	return diag.Options{
		Mode:                protocol.Mode(st.Mode),
		DebounceDelay:       st.Debounce(),
		BackgroundThreshold: st.BackgroundThreshold,
		PasteThreshold:      st.PasteThreshold,
		MaxEditDistance:     st.MaxEditDistance,
	}
}
