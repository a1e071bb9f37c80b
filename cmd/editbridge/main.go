// Command editbridge runs an embedded rich-text editing surface and exposes
// it to hosts over stdio MCP.
//
// Usage:
//
//	editbridge                          # defaults, headless
//	editbridge -config editbridge.yaml  # YAML session config
//	editbridge -history revisions.db    # journal document revisions
//	editbridge -mcp                     # serve editor tools over stdio MCP
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"editbridge/bridge"
	"editbridge/editor"
	"editbridge/history"
	"editbridge/surface"
)

const version = "0.3.0"

func main() {
	configPath := flag.String("config", "", "path to editbridge.yaml config file")
	historyPath := flag.String("history", "", "sqlite file for the revision journal")
	serveMCP := flag.Bool("mcp", false, "serve editor tools over stdio MCP")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *configPath, *historyPath, *serveMCP); err != nil {
		logger.Error("editbridge: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, configPath, historyPath string, serveMCP bool) error {
	cfg := &surface.Config{}
	if configPath != "" {
		loaded, err := surface.LoadFile(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	router := bridge.NewRouter(logger)
	if logger.Enabled(ctx, slog.LevelDebug) {
		router.Attach(bridge.DebugListener{Logger: logger})
	}
	session := surface.NewSession(cfg, router, logger)

	ctrl := editor.New(editor.Config{
		Invoker: bridge.NewRetryInvoker(session.Adapter(), 0, 0, logger),
		Logger:  logger,
	})
	router.Attach(ctrl)
	session.Adapter().OnReady(ctrl.SetReady)

	if historyPath != "" {
		store, err := history.Open(historyPath)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer store.Close()
		router.Attach(history.NewSink(store, session.ID, logger))
		logger.Info("editbridge: revision journal enabled", "path", historyPath)
	}

	if err := session.Start(ctx); err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.Close(context.Background())

	if serveMCP {
		srv := mcp.NewServer(&mcp.Implementation{Name: "editbridge", Version: version}, nil)
		ctrl.RegisterMCP(srv)
		logger.Info("editbridge: serving MCP on stdio")
		if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
			return fmt.Errorf("mcp: %w", err)
		}
		return nil
	}

	logger.Info("editbridge: running", "session", session.ID)
	<-ctx.Done()
	return nil
}
