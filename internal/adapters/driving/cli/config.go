package cli

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/perplexity-mcp/internal/adapters/driven/config/file"
	"github.com/custodia-labs/perplexity-mcp/internal/adapters/driven/perplexity"
	"github.com/custodia-labs/perplexity-mcp/internal/core/domain"
)

// Transports.
const (
	transportStdio = "stdio"
	transportSSE   = "sse"
)

// Defaults applied before any configuration source.
const (
	defaultModel     = domain.ModelSonar
	defaultPort      = 3001
	defaultTransport = transportStdio
)

// Config is the resolved process configuration.
type Config struct {
	Server    domain.ServerConfig
	BaseURL   string
	Timeout   time.Duration
	Port      int
	Transport string

	// ConfigPath is the file that was consulted, empty if none was found.
	ConfigPath string
}

// envConfig lists the environment variables the server reads.
// Zero values mean the variable was not set.
type envConfig struct {
	APIKey  string        `env:"PERPLEXITY_API_KEY"`
	Model   string        `env:"PERPLEXITY_MODEL"`
	BaseURL string        `env:"PERPLEXITY_BASE_URL"`
	Timeout time.Duration `env:"PERPLEXITY_TIMEOUT"`
	Port    int           `env:"PORT"`
}

// loadConfig resolves configuration for cmd.
// Precedence, lowest first: defaults, config file, environment, flags.
func loadConfig(cmd *cobra.Command) (Config, error) {
	model := defaultModel.String()
	baseURL := perplexity.DefaultBaseURL
	timeout := perplexity.DefaultTimeout
	port := defaultPort
	transport := defaultTransport

	flags := cmd.Flags()

	configPath, err := flags.GetString("config")
	if err != nil {
		return Config{}, fmt.Errorf("getting config flag: %w", err)
	}
	store, err := file.NewConfigStore(configPath)
	if err != nil {
		return Config{}, err
	}
	if v := store.GetString("model"); v != "" {
		model = v
	}
	if v := store.GetString("base_url"); v != "" {
		baseURL = v
	}
	if v := store.GetDuration("timeout"); v != 0 {
		timeout = v
	}
	if v := store.GetInt("port"); v != 0 {
		port = v
	}
	if v := store.GetString("transport"); v != "" {
		transport = v
	}

	var ec envConfig
	if err := env.Parse(&ec); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if ec.Model != "" {
		model = ec.Model
	}
	if ec.BaseURL != "" {
		baseURL = ec.BaseURL
	}
	if ec.Timeout != 0 {
		timeout = ec.Timeout
	}
	if ec.Port != 0 {
		port = ec.Port
	}

	if flags.Changed("model") {
		if model, err = flags.GetString("model"); err != nil {
			return Config{}, fmt.Errorf("getting model flag: %w", err)
		}
	}
	if flags.Changed("port") {
		if port, err = flags.GetInt("port"); err != nil {
			return Config{}, fmt.Errorf("getting port flag: %w", err)
		}
	}
	if flags.Changed("transport") {
		if transport, err = flags.GetString("transport"); err != nil {
			return Config{}, fmt.Errorf("getting transport flag: %w", err)
		}
	}

	server, err := domain.NewServerConfig(model, ec.APIKey)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Server:    server,
		BaseURL:   baseURL,
		Timeout:   timeout,
		Port:      port,
		Transport: transport,
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	if store.Loaded() {
		cfg.ConfigPath = store.Path()
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Transport {
	case transportStdio, transportSSE:
	default:
		return fmt.Errorf("invalid transport %q (expected one of: %s, %s)", c.Transport, transportStdio, transportSSE)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("invalid timeout %v", c.Timeout)
	}
	return nil
}

// Addr returns the listen address for the event-stream transport.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
