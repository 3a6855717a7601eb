package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Name != "edgescout" {
		t.Errorf("expected Name=edgescout, got %s", cfg.Name)
	}
	if cfg.LLM.Provider != "anthropic" {
		t.Errorf("expected Provider=anthropic, got %s", cfg.LLM.Provider)
	}
	if cfg.Kalshi.BaseURL == "" {
		t.Error("expected a default Kalshi base URL")
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	// Ensure no env vars interfere
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("EDGESCOUT_MODEL", "")
	t.Setenv("EDGESCOUT_KALSHI_URL", "")

	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.LLM.Provider = "openai"
	cfg.LLM.APIKey = "sk-test"
	cfg.Personas = []string{"risk_averse", "data_analyst"}

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.LLM.Provider != "openai" {
		t.Errorf("expected Provider=openai, got %s", loaded.LLM.Provider)
	}
	if loaded.LLM.APIKey != "sk-test" {
		t.Errorf("expected APIKey=sk-test, got %s", loaded.LLM.APIKey)
	}
	if len(loaded.Personas) != 2 {
		t.Errorf("expected 2 personas, got %d", len(loaded.Personas))
	}
}

func TestConfig_LoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LLM.Provider != "anthropic" {
		t.Errorf("expected default provider, got %s", cfg.LLM.Provider)
	}
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "env-anthropic-key")
	t.Setenv("EDGESCOUT_KALSHI_URL", "http://localhost:9999/v2")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	if cfg.LLM.APIKey != "env-anthropic-key" {
		t.Errorf("expected APIKey=env-anthropic-key, got %s", cfg.LLM.APIKey)
	}
	if cfg.Kalshi.BaseURL != "http://localhost:9999/v2" {
		t.Errorf("expected Kalshi override, got %s", cfg.Kalshi.BaseURL)
	}
}

func TestConfig_EnvProviderDetection(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "env-gemini-key")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	if cfg.LLM.Provider != "gemini" {
		t.Errorf("expected detected provider=gemini, got %s", cfg.LLM.Provider)
	}
	if cfg.LLM.APIKey != "env-gemini-key" {
		t.Errorf("expected detected key, got %s", cfg.LLM.APIKey)
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	// Default has no API key
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for missing API key")
	}

	cfg.LLM.APIKey = "sk-test"
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}

	cfg.LLM.Provider = "mystery"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for unknown provider")
	}
}

func TestConfig_Timeouts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.Timeout = "90s"
	cfg.Kalshi.Timeout = "bogus"

	if got := cfg.LLMTimeout(); got != 90*time.Second {
		t.Errorf("expected 90s, got %v", got)
	}
	if got := cfg.KalshiTimeout(); got != 10*time.Second {
		t.Errorf("expected fallback 10s, got %v", got)
	}
}
