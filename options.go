package scrutiny

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/scrutiny-lsp/scrutiny/config"
	"github.com/scrutiny-lsp/scrutiny/middleware"
	"github.com/scrutiny-lsp/scrutiny/transport"
)

// Option configures a Server during construction.
type Option func(*Server)

// ServeOption configures how the server is served.
type ServeOption func(*serveConfig)

type serveConfig struct {
	transport        transport.Transport
	transportFactory func() (transport.Transport, error)
}

// WithLogger sets a custom slog logger on the server.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithConfigFile loads settings from the given TOML file and hot-reloads
// them when the file changes.
func WithConfigFile(path string) Option {
	return func(s *Server) {
		s.configPath = path
	}
}

// WithSettings sets the initial settings directly, bypassing any file.
func WithSettings(st *config.Settings) Option {
	return func(s *Server) {
		s.settings = config.NewStore(st)
	}
}

// WithMiddleware adds middleware to the server's dispatch chain.
// Middleware is applied in order: the first middleware is outermost.
func WithMiddleware(mws ...middleware.Middleware) Option {
	return func(s *Server) {
		s.middlewares = append(s.middlewares, mws...)
	}
}

// WithStdio configures the server to communicate over stdin/stdout.
func WithStdio() ServeOption {
	return func(cfg *serveConfig) {
		cfg.transport = transport.Stdio()
	}
}

// WithTransport configures the server to use a specific transport.
func WithTransport(t transport.Transport) ServeOption {
	return func(cfg *serveConfig) {
		cfg.transport = t
	}
}

// WithTCP configures the server to listen on a TCP address (e.g., ":9257").
func WithTCP(addr string) ServeOption {
	return func(cfg *serveConfig) {
		cfg.transportFactory = func() (transport.Transport, error) {
			return transport.ListenTCP(addr)
		}
	}
}

// WithSocket configures the server to listen on a Unix domain socket.
func WithSocket(path string) ServeOption {
	return func(cfg *serveConfig) {
		cfg.transportFactory = func() (transport.Transport, error) {
			return transport.ListenSocket(path)
		}
	}
}

// WithWebSocket configures the server to listen for WebSocket connections.
func WithWebSocket(addr string) ServeOption {
	return func(cfg *serveConfig) {
		cfg.transportFactory = func() (transport.Transport, error) {
			return transport.ListenWebSocket(addr)
		}
	}
}

// WithNodeIPC configures the server for Node.js IPC (VS Code extension host).
func WithNodeIPC() ServeOption {
	return func(cfg *serveConfig) {
		cfg.transport = transport.NodeIPC()
	}
}

// FromArgs parses os.Args to determine the transport. Supported flags:
//
//	--stdio               (default)
//	--tcp :PORT
//	--socket PATH
//	--ws :PORT
//	--node-ipc
func FromArgs() ServeOption {
	return func(cfg *serveConfig) {
		args := os.Args[1:]
		for i := 0; i < len(args); i++ {
			arg := args[i]
			nextArg := func() string {
				if i+1 < len(args) {
					i++
					return args[i]
				}
				return ""
			}
			switch {
			case arg == "--stdio":
				cfg.transport = transport.Stdio()
				return
			case arg == "--tcp":
				addr := nextArg()
				if addr == "" {
					fmt.Fprintln(os.Stderr, "scrutiny: --tcp requires an address (e.g., :9257)")
					os.Exit(1)
				}
				cfg.transportFactory = func() (transport.Transport, error) {
					return transport.ListenTCP(addr)
				}
				return
			case strings.HasPrefix(arg, "--tcp="):
				addr := strings.TrimPrefix(arg, "--tcp=")
				cfg.transportFactory = func() (transport.Transport, error) {
					return transport.ListenTCP(addr)
				}
				return
			case arg == "--socket":
				path := nextArg()
				if path == "" {
					fmt.Fprintln(os.Stderr, "scrutiny: --socket requires a path")
					os.Exit(1)
				}
				cfg.transportFactory = func() (transport.Transport, error) {
					return transport.ListenSocket(path)
				}
				return
			case strings.HasPrefix(arg, "--socket="):
				path := strings.TrimPrefix(arg, "--socket=")
				cfg.transportFactory = func() (transport.Transport, error) {
					return transport.ListenSocket(path)
				}
				return
			case arg == "--ws":
				addr := nextArg()
				if addr == "" {
					fmt.Fprintln(os.Stderr, "scrutiny: --ws requires an address (e.g., :9258)")
					os.Exit(1)
				}
				cfg.transportFactory = func() (transport.Transport, error) {
					return transport.ListenWebSocket(addr)
				}
				return
			case strings.HasPrefix(arg, "--ws="):
				addr := strings.TrimPrefix(arg, "--ws=")
				cfg.transportFactory = func() (transport.Transport, error) {
					return transport.ListenWebSocket(addr)
				}
				return
			case arg == "--node-ipc":
				cfg.transport = transport.NodeIPC()
				return
			}
		}
		// Default: stdio
		cfg.transport = transport.Stdio()
	}
}
