// Package cli provides the command-line interface for the Perplexity MCP server.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/perplexity-mcp/internal/adapters/driving/mcp"
	"github.com/custodia-labs/perplexity-mcp/internal/logger"
)

// version is overridden at build time with -ldflags "-X ...cli.version=...".
var version = mcp.Version

// cfg holds the configuration resolved before any command runs.
var cfg Config

var rootCmd = &cobra.Command{
	Use:   "perplexity-mcp",
	Short: "MCP server exposing Perplexity web search",
	Long: `perplexity-mcp is a Model Context Protocol server that exposes a single
"search" tool backed by the Perplexity chat-completions API.

The API key is read from PERPLEXITY_API_KEY. Running without a subcommand
is the same as "perplexity-mcp serve".`,
	SilenceUsage:      true,
	PersistentPreRunE: resolveConfig,
	RunE:              runServe,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("model", defaultModel.String(), "Perplexity model (sonar, sonar-pro)")
	flags.String("transport", defaultTransport, "Transport (stdio, sse)")
	flags.IntP("port", "p", defaultPort, "HTTP port for the sse transport")
	flags.String("config", "", "Config file (default ~/.perplexity-mcp/config.toml)")
	flags.BoolP("verbose", "v", false, "Write debug output to stderr")
}

// resolveConfig loads and validates configuration. An invalid model stops
// the process here, before any transport is bound.
func resolveConfig(cmd *cobra.Command, _ []string) error {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return err
	}
	logger.SetVerbose(verbose)

	resolved, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg = resolved

	logger.Section("Configuration")
	if cfg.ConfigPath != "" {
		logger.Debug("Config file: %s", cfg.ConfigPath)
	}
	logger.Debug("Model: %s (%s)", cfg.Server.Model, cfg.Server.Model.Description())
	logger.Debug("Base URL: %s, timeout %v", cfg.BaseURL, cfg.Timeout)
	logger.Debug("Transport: %s", cfg.Transport)
	return nil
}

// Execute runs the root command.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx, which is cancelled on shutdown.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
