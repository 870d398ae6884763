package app

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ManifestPaths []string // hcl files or directories

	// Profiles are used at startup. Empty means every autoload profile.
	Profiles []string
	// Wait bounds how long Run waits for dependency groups. Zero waits until
	// every group settles.
	Wait time.Duration
	// Listen is the address Serve binds to.
	Listen string

	LogFormat string
	LogLevel  string
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.ManifestPaths) == 0 {
		return nil, errors.New("at least one manifest path is required")
	}
	for _, p := range cfg.ManifestPaths {
		if strings.TrimSpace(p) == "" {
			return nil, errors.New("manifest path must not be empty")
		}
	}

	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid log format '%s': must be 'text' or 'json'", cfg.LogFormat)
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log level '%s': must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}

	if cfg.Wait < 0 {
		return nil, errors.New("wait must not be negative")
	}
	for _, name := range cfg.Profiles {
		if name == "" {
			return nil, errors.New("profile name must not be empty")
		}
	}

	return &cfg, nil
}
