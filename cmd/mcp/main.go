// Command mcp serves the conversation deviation analyzer over MCP stdio.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"deviation-analyzer/internal/app"
	"deviation-analyzer/internal/config"
	"deviation-analyzer/internal/mcptool"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	// stdout carries the MCP protocol.
	slog.SetDefault(app.NewLogger(cfg, os.Stderr))

	a, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("initializing: %w", err)
	}
	defer func() {
		_ = a.Close()
	}()

	s := mcptool.NewServer(a.Service)
	slog.Info("Starting MCP stdio server", "version", mcptool.Version)
	return server.ServeStdio(s)
}
