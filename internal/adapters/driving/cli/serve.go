package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/perplexity-mcp/internal/adapters/driven/perplexity"
	"github.com/custodia-labs/perplexity-mcp/internal/adapters/driving/mcp"
	"github.com/custodia-labs/perplexity-mcp/internal/core/services"
	"github.com/custodia-labs/perplexity-mcp/internal/logger"
)

// Transport entry points, replaced in tests.
var (
	runStdio = func(ctx context.Context, s *mcp.Server) error {
		return s.Run(ctx)
	}
	runSSE = func(ctx context.Context, s *mcp.Server, addr string, onReady func(net.Addr)) error {
		return s.RunSSE(ctx, addr, onReady)
	}
	stdinIsTerminal = func() bool {
		return term.IsTerminal(int(os.Stdin.Fd()))
	}
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server.

By default, the server communicates over stdio using JSON-RPC and is meant
to be spawned by an MCP host such as Claude Desktop.

Use --transport sse to serve HTTP instead:
  GET  /sse                      event stream, one session per client
  POST /messages?sessionId=<id>  client messages for that session
  GET  /health                   liveness and open session count

Examples:
  # Stdio mode (default)
  PERPLEXITY_API_KEY=pplx-... perplexity-mcp serve

  # Event-stream mode on port 3001 with the advanced model
  perplexity-mcp serve --transport sse --model sonar-pro

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "perplexity": {
        "command": "/path/to/perplexity-mcp",
        "args": ["serve", "--model", "sonar-pro"],
        "env": {"PERPLEXITY_API_KEY": "pplx-..."}
      }
    }
  }`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if !cfg.Server.HasAPIKey() {
		logger.Warn("PERPLEXITY_API_KEY is not set; every search will be rejected upstream")
	}

	gateway, err := perplexity.NewClient(cfg.Server, perplexity.Config{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return err
	}

	ports := &mcp.Ports{
		Search: services.NewSearchService(gateway),
		Tools:  services.NewToolRegistry(),
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	switch cfg.Transport {
	case transportSSE:
		err = runSSE(ctx, server, cfg.Addr(), func(addr net.Addr) {
			logger.Info("Perplexity MCP server (%s) listening on http://%s/sse", cfg.Server.Model, addr)
		})
	default:
		if stdinIsTerminal() {
			logger.Warn("stdin is a terminal; the stdio transport expects an MCP host on the other end")
		}
		logger.Info("Perplexity MCP server (%s) running on stdio", cfg.Server.Model)
		err = runStdio(ctx, server)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s transport: %w", cfg.Transport, err)
	}
	logger.Info("Perplexity MCP server stopped")
	return nil
}
