// Package config holds edgescout configuration: the model provider,
// the Kalshi endpoint, personas, and logging. Configuration loads from
// a YAML file with environment-variable overrides on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all edgescout configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// LLM provider for the research stages
	LLM LLMConfig `yaml:"llm"`

	// Kalshi market data API
	Kalshi KalshiConfig `yaml:"kalshi"`

	// Personas to generate recommendations for; empty means the
	// pipeline default set.
	Personas []string `yaml:"personas"`

	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig configures the model provider.
type LLMConfig struct {
	Provider string `yaml:"provider"` // anthropic, openai, gemini
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	Timeout  string `yaml:"timeout"`
}

// KalshiConfig configures the market data gateway.
type KalshiConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "edgescout",
		Version: "0.1.0",

		LLM: LLMConfig{
			Provider: "anthropic",
			Model:    "claude-sonnet-4-20250514",
			BaseURL:  "https://api.anthropic.com/v1",
			Timeout:  "120s",
		},

		Kalshi: KalshiConfig{
			BaseURL: "https://api.elections.kalshi.com/trade-api/v2",
			Timeout: "10s",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultConfigPath returns ~/.edgescout/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".edgescout", "config.yaml")
	}
	return filepath.Join(home, ".edgescout", "config.yaml")
}

// Load loads configuration from a YAML file and applies environment
// overrides. A missing file yields the defaults (plus overrides).
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to a YAML file, creating parent
// directories as needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides lets environment variables win over file values.
// Provider keys are checked in priority order: an explicit provider's
// key first, then ANTHROPIC > OPENAI > GEMINI detection when no key is
// configured at all.
func (c *Config) applyEnvOverrides() {
	type providerKey struct {
		provider string
		env      string
	}
	keys := []providerKey{
		{"anthropic", "ANTHROPIC_API_KEY"},
		{"openai", "OPENAI_API_KEY"},
		{"gemini", "GEMINI_API_KEY"},
	}

	// Explicitly configured provider takes its own env key.
	for _, pk := range keys {
		if c.LLM.Provider == pk.provider {
			if v := os.Getenv(pk.env); v != "" {
				c.LLM.APIKey = v
			}
		}
	}

	// No key anywhere: detect a provider from whichever key is set.
	if c.LLM.APIKey == "" {
		for _, pk := range keys {
			if v := os.Getenv(pk.env); v != "" {
				c.LLM.Provider = pk.provider
				c.LLM.APIKey = v
				break
			}
		}
	}

	if v := os.Getenv("EDGESCOUT_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("EDGESCOUT_KALSHI_URL"); v != "" {
		c.Kalshi.BaseURL = v
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("no API key configured: set %s_API_KEY or llm.api_key in %s",
			envPrefixFor(c.LLM.Provider), DefaultConfigPath())
	}
	switch c.LLM.Provider {
	case "anthropic", "openai", "gemini":
	default:
		return fmt.Errorf("unknown LLM provider %q", c.LLM.Provider)
	}
	if _, err := time.ParseDuration(c.LLM.Timeout); c.LLM.Timeout != "" && err != nil {
		return fmt.Errorf("invalid llm.timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.Kalshi.Timeout); c.Kalshi.Timeout != "" && err != nil {
		return fmt.Errorf("invalid kalshi.timeout: %w", err)
	}
	return nil
}

func envPrefixFor(provider string) string {
	switch provider {
	case "openai":
		return "OPENAI"
	case "gemini":
		return "GEMINI"
	default:
		return "ANTHROPIC"
	}
}

// LLMTimeout returns the parsed model-call timeout.
func (c *Config) LLMTimeout() time.Duration {
	return parseDurationOr(c.LLM.Timeout, 120*time.Second)
}

// KalshiTimeout returns the parsed gateway timeout.
func (c *Config) KalshiTimeout() time.Duration {
	return parseDurationOr(c.Kalshi.Timeout, 10*time.Second)
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
