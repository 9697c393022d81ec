// Pipewarden: workflow validation MCP server for data pipeline builds.
//
// It gates an AI agent's build actions behind explicit prerequisites —
// concepts studied, real warehouse resources confirmed by the user —
// so generated pipeline configuration never references invented names.
//
// Usage:
//
//	pipewarden serve    # Start MCP server (stdio transport)
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	pwserver "github.com/pipewarden/pipewarden/internal/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("pipewarden v%s\n", pwserver.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func run() error {
	s, cleanup, err := pwserver.New()
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	// Graceful shutdown on interrupt. All diagnostics go to stderr —
	// stdout is the MCP transport.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		cancel()
	}()

	_ = ctx // stdio server manages its own lifecycle

	return server.ServeStdio(s)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Pipewarden v%s — Workflow Validation MCP Server

Usage:
  pipewarden serve    Start the MCP server (stdio transport)

Configuration:
  Add to your AI tool's MCP config:

  {
    "mcpServers": {
      "pipewarden": {
        "command": "pipewarden",
        "args": ["serve"]
      }
    }
  }

Environment:
  PIPEWARDEN_SITE_CONFIG           Path to the warehouse connections file
                                   (default ~/.pipewarden/siteconfig.yaml)
  PIPEWARDEN_DOCS_URL              Documentation retrieval service URL
  PIPEWARDEN_DOCS_TOKEN            Retrieval service auth token
  PIPEWARDEN_ANALYTICS_WRITE_KEY   Enables anonymous usage tracking
  PIPEWARDEN_ANALYTICS_DATA_PLANE  Tracking data plane URL
`, pwserver.Version)
}
