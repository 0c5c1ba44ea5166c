package common

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfig_Defaults(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.API.BaseURL != "http://localhost:3000" {
		t.Errorf("API.BaseURL default = %q", cfg.API.BaseURL)
	}
	if cfg.Storage.Backend != "file" {
		t.Errorf("Storage.Backend default = %q, want file", cfg.Storage.Backend)
	}
	if cfg.Ledger.AllowOverdraft {
		t.Error("overdraft should be disabled by default")
	}
	if !cfg.DemoFallbackEnabled() {
		t.Error("demo fallback should be enabled outside production")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfig_Durations(t *testing.T) {
	api := APIConfig{Timeout: "3s", RetryDelay: "100ms"}
	if got := api.GetTimeout(); got != 3*time.Second {
		t.Errorf("GetTimeout = %v", got)
	}
	if got := api.GetRetryDelay(); got != 100*time.Millisecond {
		t.Errorf("GetRetryDelay = %v", got)
	}

	bad := APIConfig{Timeout: "soon", RetryDelay: ""}
	if got := bad.GetTimeout(); got != 15*time.Second {
		t.Errorf("GetTimeout fallback = %v", got)
	}
	if got := bad.GetRetryDelay(); got != 250*time.Millisecond {
		t.Errorf("GetRetryDelay fallback = %v", got)
	}

	gemini := GeminiConfig{}
	if got := gemini.GetTimeout(); got != 20*time.Second {
		t.Errorf("Gemini GetTimeout fallback = %v", got)
	}
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("GRIPVEST_API_BASE_URL", "https://api.example.com")
	t.Setenv("GRIPVEST_API_MAX_RETRIES", "5")
	t.Setenv("GRIPVEST_LOG_LEVEL", "debug")
	t.Setenv("GRIPVEST_DATA_PATH", "/var/lib/gripvest")
	t.Setenv("GRIPVEST_STORAGE_BACKEND", "SurrealDB")
	t.Setenv("GRIPVEST_STORAGE_ADDRESS", "ws://localhost:8000/rpc")
	t.Setenv("GRIPVEST_GEMINI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("GRIPVEST_ALLOW_OVERDRAFT", "true")
	t.Setenv("GRIPVEST_DEMO_FALLBACK", "false")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.API.BaseURL != "https://api.example.com" {
		t.Errorf("API.BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.MaxRetries != 5 {
		t.Errorf("API.MaxRetries = %d", cfg.API.MaxRetries)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
	if cfg.Storage.Path != "/var/lib/gripvest" {
		t.Errorf("Storage.Path = %q", cfg.Storage.Path)
	}
	if cfg.Storage.Backend != "surrealdb" {
		t.Errorf("Storage.Backend = %q, want lower-cased surrealdb", cfg.Storage.Backend)
	}
	if cfg.Clients.Gemini.APIKey != "gem-key" {
		t.Errorf("Gemini.APIKey = %q", cfg.Clients.Gemini.APIKey)
	}
	if !cfg.Ledger.AllowOverdraft {
		t.Error("AllowOverdraft override not applied")
	}
	if cfg.DemoFallbackEnabled() {
		t.Error("DemoFallback override not applied")
	}
}

func TestConfig_InvalidEnvIgnored(t *testing.T) {
	t.Setenv("GRIPVEST_API_MAX_RETRIES", "many")
	t.Setenv("GRIPVEST_ALLOW_OVERDRAFT", "perhaps")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.API.MaxRetries != 2 {
		t.Errorf("API.MaxRetries = %d, want default 2", cfg.API.MaxRetries)
	}
	if cfg.Ledger.AllowOverdraft {
		t.Error("unparseable bool should leave the default")
	}
}

func TestConfig_LoadFilesInOrder(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.toml")
	override := filepath.Join(dir, "override.toml")

	writeFile(t, base, `
environment = "staging"

[api]
base_url = "https://base.example.com"
rate_limit = 3

[ledger]
allow_overdraft = true
`)
	writeFile(t, override, `
[api]
base_url = "https://override.example.com"
`)

	cfg, err := LoadConfig(base, filepath.Join(dir, "missing.toml"), override)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.API.BaseURL != "https://override.example.com" {
		t.Errorf("later file should win: %q", cfg.API.BaseURL)
	}
	if cfg.API.RateLimit != 3 {
		t.Errorf("earlier value should survive: RateLimit = %d", cfg.API.RateLimit)
	}
	if cfg.Environment != "staging" || !cfg.Ledger.AllowOverdraft {
		t.Errorf("base values lost: %+v", cfg)
	}
}

func TestConfig_LoadInvalidToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	writeFile(t, path, "[api\nbase_url = ")
	if _, err := LoadConfig(path); err == nil || !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"empty base url", func(c *Config) { c.API.BaseURL = " " }, "api.base_url"},
		{"negative retries", func(c *Config) { c.API.MaxRetries = -1 }, "max_retries"},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "tape" }, "unknown storage backend"},
		{"surrealdb without address", func(c *Config) { c.Storage.Backend = "surrealdb" }, "storage.address"},
		{"memory backend", func(c *Config) { c.Storage.Backend = "memory" }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ProductionDisablesDemo(t *testing.T) {
	for _, env := range []string{"production", "PROD", " production "} {
		cfg := NewDefaultConfig()
		cfg.Environment = env
		if !cfg.IsProduction() {
			t.Errorf("IsProduction(%q) = false", env)
		}
		if cfg.DemoFallbackEnabled() {
			t.Errorf("demo fallback enabled in %q", env)
		}
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}
