// Package perception is the model-invocation boundary. Every pipeline
// stage makes exactly one synchronous call through LLMClient; providers
// differ only in wire format.
package perception

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// LLMClient defines the interface for model providers.
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Provider identifies a model provider.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderGemini    Provider = "gemini"
)

// Config holds provider-independent client settings.
type Config struct {
	Provider Provider
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
	Logger   *zap.Logger
}

// NewClient builds a client for the configured provider. Model and
// BaseURL fall back to per-provider defaults when empty.
func NewClient(cfg Config) (LLMClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key not configured for provider %q", cfg.Provider)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}

	switch cfg.Provider {
	case ProviderAnthropic, "":
		return newAnthropicClient(cfg), nil
	case ProviderOpenAI:
		return newOpenAIClient(cfg), nil
	case ProviderGemini:
		return newGeminiClient(cfg)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
