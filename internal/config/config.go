// Package config provides configuration loading for extractd.
//
// Configuration is loaded from a YAML file and then overridden by
// environment variables. Every section has working defaults: an empty
// config runs the daemon with the model pass disabled.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds the complete extractd configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Logging    LoggingConfig    `koanf:"logging"`
	Extraction ExtractionConfig `koanf:"extraction"`
	Metrics    MetricsConfig    `koanf:"metrics"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string   `koanf:"host"`
	Port            int      `koanf:"port"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
}

// LoggingConfig holds logger configuration.
type LoggingConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // json, console
}

// MetricsConfig holds the Prometheus endpoint configuration.
type MetricsConfig struct {
	Enabled bool `koanf:"enabled"`
	Port    int  `koanf:"port"`
}

// ExtractionConfig holds the extraction engine configuration.
type ExtractionConfig struct {
	// Provider selects the model pass backend: "anthropic", "openai" or
	// "disabled". Empty means disabled.
	Provider            string                    `koanf:"provider"`
	ConfidenceThreshold float64                   `koanf:"confidence_threshold"`
	ModelTimeout        Duration                  `koanf:"model_timeout"`
	DefaultTimezone     string                    `koanf:"default_timezone"`
	Providers           map[string]ProviderConfig `koanf:"providers"`
}

// ProviderConfig holds credentials and tuning for one model provider.
type ProviderConfig struct {
	Model     string   `koanf:"model"`
	APIKey    Secret   `koanf:"api_key"`
	BaseURL   string   `koanf:"base_url"`
	MaxTokens int      `koanf:"max_tokens"`
	Timeout   Duration `koanf:"timeout"`
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8620
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = Duration(10 * time.Second)
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9620
	}
	if cfg.Extraction.Provider == "" {
		cfg.Extraction.Provider = "disabled"
	}
	if cfg.Extraction.ConfidenceThreshold == 0 {
		cfg.Extraction.ConfidenceThreshold = 0.7
	}
	if cfg.Extraction.ModelTimeout == 0 {
		cfg.Extraction.ModelTimeout = Duration(30 * time.Second)
	}
	if cfg.Extraction.DefaultTimezone == "" {
		cfg.Extraction.DefaultTimezone = "Asia/Jerusalem"
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout.Duration() <= 0 {
		return errors.New("shutdown timeout must be positive")
	}
	if c.Metrics.Enabled && (c.Metrics.Port < 1 || c.Metrics.Port > 65535) {
		return fmt.Errorf("invalid metrics port: %d (must be 1-65535)", c.Metrics.Port)
	}
	if c.Metrics.Enabled && c.Metrics.Port == c.Server.Port {
		return errors.New("metrics port must differ from server port")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format: %q", c.Logging.Format)
	}

	if t := c.Extraction.ConfidenceThreshold; t < 0 || t > 1 {
		return fmt.Errorf("confidence threshold %v out of range [0, 1]", t)
	}
	if _, err := time.LoadLocation(c.Extraction.DefaultTimezone); err != nil {
		return fmt.Errorf("invalid default timezone %q: %w", c.Extraction.DefaultTimezone, err)
	}

	switch p := c.Extraction.Provider; p {
	case "disabled":
	case "anthropic", "openai":
		pc, ok := c.Extraction.Providers[p]
		if !ok || !pc.APIKey.IsSet() {
			return fmt.Errorf("provider %q selected but no api_key configured", p)
		}
	default:
		return fmt.Errorf("unknown extraction provider: %q", p)
	}

	return nil
}
