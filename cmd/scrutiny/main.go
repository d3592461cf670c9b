// Command scrutiny runs the scrutiny LSP server over stdio (default), TCP,
// Unix socket, WebSocket, or Node IPC.
//
// Usage:
//
//	scrutiny [--config PATH] [--verbose] [--stdio | --tcp :PORT | --socket PATH | --ws :PORT | --node-ipc]
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/scrutiny-lsp/scrutiny"
	"github.com/scrutiny-lsp/scrutiny/analysis"
	"github.com/scrutiny-lsp/scrutiny/middleware"
)

const version = "0.1.0"

func main() {
	configPath := "scrutiny.toml"
	level := slog.LevelInfo

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--config" && i+1 < len(args):
			i++
			configPath = args[i]
		case strings.HasPrefix(args[i], "--config="):
			configPath = strings.TrimPrefix(args[i], "--config=")
		case args[i] == "--verbose":
			level = slog.LevelDebug
		case args[i] == "--version":
			fmt.Println("scrutiny", version)
			return
		}
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	analyzer := analysis.NewLocal(analysis.DefaultRegistry())

	srv := scrutiny.NewServer("scrutiny", version, analyzer,
		scrutiny.WithLogger(logger),
		scrutiny.WithConfigFile(configPath),
		scrutiny.WithMiddleware(
			middleware.Recovery(logger),
			middleware.Logging(logger),
		),
	)

	if err := scrutiny.Serve(srv, scrutiny.FromArgs()); err != nil {
		fmt.Fprintln(os.Stderr, "scrutiny:", err)
		os.Exit(1)
	}
}
