// Package common provides shared utilities for gripvest
package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for gripvest
type Config struct {
	Environment string        `toml:"environment"`
	API         APIConfig     `toml:"api"`
	Storage     StorageConfig `toml:"storage"`
	Clients     ClientsConfig `toml:"clients"`
	Ledger      LedgerConfig  `toml:"ledger"`
	Auth        AuthConfig    `toml:"auth"`
	Logging     LoggingConfig `toml:"logging"`
}

// APIConfig holds the marketplace REST API configuration
type APIConfig struct {
	BaseURL    string `toml:"base_url"`
	Timeout    string `toml:"timeout"`
	MaxRetries int    `toml:"max_retries"`
	RetryDelay string `toml:"retry_delay"`
	RateLimit  int    `toml:"rate_limit"` // requests per second
	FanOut     int    `toml:"fan_out"`    // concurrent product lookups during enrichment
}

// GetTimeout parses and returns the timeout duration
func (c *APIConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 15 * time.Second
	}
	return d
}

// GetRetryDelay parses and returns the base delay between retries
func (c *APIConfig) GetRetryDelay() time.Duration {
	d, err := time.ParseDuration(c.RetryDelay)
	if err != nil {
		return 250 * time.Millisecond
	}
	return d
}

// StorageConfig selects and configures the local state store.
type StorageConfig struct {
	Backend   string `toml:"backend"` // "file" (default), "surrealdb" or "memory"
	Path      string `toml:"path"`    // file backend root
	Address   string `toml:"address"` // surrealdb backend RPC address
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
}

// ClientsConfig holds third-party client configurations
type ClientsConfig struct {
	Gemini GeminiConfig `toml:"gemini"`
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	Timeout string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *GeminiConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 20 * time.Second
	}
	return d
}

// LedgerConfig controls balance rules.
type LedgerConfig struct {
	// AllowOverdraft lets a purchase drive the balance below zero.
	AllowOverdraft bool `toml:"allow_overdraft"`
}

// AuthConfig controls login behaviour.
type AuthConfig struct {
	// DemoFallback accepts the demo accounts when the API is unreachable.
	// Never honoured in production.
	DemoFallback bool `toml:"demo_fallback"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "console" or "json"
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		API: APIConfig{
			BaseURL:    "http://localhost:3000",
			Timeout:    "15s",
			MaxRetries: 2,
			RetryDelay: "250ms",
			RateLimit:  10,
			FanOut:     4,
		},
		Storage: StorageConfig{
			Backend:   "file",
			Path:      defaultDataPath(),
			Namespace: "gripvest",
			Database:  "client",
		},
		Clients: ClientsConfig{
			Gemini: GeminiConfig{
				Model:   "gemini-2.0-flash",
				Timeout: "20s",
			},
		},
		Auth: AuthConfig{
			DemoFallback: true,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

func defaultDataPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "gripvest")
	}
	return "data"
}

// LoadConfig loads configuration from files with environment overrides.
// A .env file in the working directory is read first; variables already set
// in the environment win.
func LoadConfig(paths ...string) (*Config, error) {
	_ = godotenv.Load()

	config := NewDefaultConfig()

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("GRIPVEST_ENV"); env != "" {
		config.Environment = env
	}

	if v := os.Getenv("GRIPVEST_API_BASE_URL"); v != "" {
		config.API.BaseURL = v
	}
	if v := os.Getenv("GRIPVEST_API_TIMEOUT"); v != "" {
		config.API.Timeout = v
	}
	if v := os.Getenv("GRIPVEST_API_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.API.MaxRetries = n
		}
	}

	if level := os.Getenv("GRIPVEST_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("GRIPVEST_DATA_PATH"); path != "" {
		config.Storage.Path = path
	}
	if v := os.Getenv("GRIPVEST_STORAGE_BACKEND"); v != "" {
		config.Storage.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("GRIPVEST_STORAGE_ADDRESS"); v != "" {
		config.Storage.Address = v
	}

	for _, name := range []string{"GRIPVEST_GEMINI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		if v := os.Getenv(name); v != "" {
			config.Clients.Gemini.APIKey = v
			break
		}
	}

	if v := os.Getenv("GRIPVEST_ALLOW_OVERDRAFT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.Ledger.AllowOverdraft = b
		}
	}
	if v := os.Getenv("GRIPVEST_DEMO_FALLBACK"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.Auth.DemoFallback = b
		}
	}
}

// Validate rejects configurations that cannot work.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.API.MaxRetries < 0 {
		return fmt.Errorf("api.max_retries must be >= 0, got %d", c.API.MaxRetries)
	}
	switch c.Storage.Backend {
	case "", "file", "memory":
	case "surrealdb":
		if c.Storage.Address == "" {
			return fmt.Errorf("storage.address is required for the surrealdb backend")
		}
	default:
		return fmt.Errorf("unknown storage backend: %s (supported: file, surrealdb, memory)", c.Storage.Backend)
	}
	return nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// DemoFallbackEnabled reports whether demo accounts may be used.
func (c *Config) DemoFallbackEnabled() bool {
	return c.Auth.DemoFallback && !c.IsProduction()
}
