// Package config provides configuration management for squad-console.
//
// Configuration is loaded from multiple sources with the following precedence:
// 1. Command-line flags (highest priority)
// 2. Environment variables
// 3. Configuration file
// 4. Default values (lowest priority)
//
// Example usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("API: %s\n", cfg.API.BaseURL)
package config

import (
	"net/url"
	"time"
)

// Config represents the complete application configuration.
//
// Invariants:
// - API.BaseURL is an absolute http(s) URL
// - API.Timeout, Session.ProfileTimeout and Query.DebounceInterval are > 0
// - API.RateLimit and API.Burst are >= 0
// - Query.PageSize is > 0.
type Config struct {
	// REST API settings
	API APIConfig `yaml:"api"`

	// Session settings
	Session SessionConfig `yaml:"session"`

	// List screen settings
	Query QueryConfig `yaml:"query"`

	// Display settings
	Display DisplayConfig `yaml:"display"`

	// Storage settings
	Storage StorageConfig `yaml:"storage"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig contains REST client settings.
type APIConfig struct {
	// API root, e.g. http://localhost:5000/api
	BaseURL string `yaml:"base_url"`

	// Per-request timeout
	Timeout time.Duration `yaml:"timeout"`

	// Sustained requests per second (0 disables throttling)
	RateLimit float64 `yaml:"rate_limit"`

	// Requests allowed at once
	Burst int `yaml:"burst"`
}

// SessionConfig contains session settings.
type SessionConfig struct {
	// Bound on the startup profile check
	ProfileTimeout time.Duration `yaml:"profile_timeout"`
}

// QueryConfig contains list screen settings.
type QueryConfig struct {
	// Quiet period before a search or filter change is fetched
	DebounceInterval time.Duration `yaml:"debounce_interval"`

	// Items per page
	PageSize int `yaml:"page_size"`
}

// DisplayConfig contains display-related settings.
type DisplayConfig struct {
	// Output format (table, json, simple)
	Format string `yaml:"format"`

	// Compact tables
	Compact bool `yaml:"compact"`
}

// StorageConfig contains storage-related settings.
type StorageConfig struct {
	// Path to the token database file
	DBPath string `yaml:"db_path"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Log level (debug, info, warn, error)
	Level string `yaml:"level"`

	// Log output destination (stdout, stderr, file path)
	Output string `yaml:"output"`

	// Log format (text, json)
	Format string `yaml:"format"`
}

// Validate checks if the configuration satisfies all invariants.
//
// Thread-safety: This method is read-only and thread-safe.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidBaseURL
	}
	if c.API.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.API.RateLimit < 0 || c.API.Burst < 0 {
		return ErrInvalidRateLimit
	}

	if c.Session.ProfileTimeout <= 0 {
		return ErrInvalidProfileTimeout
	}

	if c.Query.DebounceInterval <= 0 {
		return ErrInvalidDebounce
	}
	if c.Query.PageSize <= 0 {
		return ErrInvalidPageSize
	}

	validFormats := map[string]bool{
		"table":  true,
		"json":   true,
		"simple": true,
	}
	if !validFormats[c.Display.Format] {
		return ErrInvalidDisplayFormat
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.Logging.Format] {
		return ErrInvalidLogFormat
	}

	return nil
}

// Default returns a configuration with sensible default values.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   "http://localhost:5000/api",
			Timeout:   15 * time.Second,
			RateLimit: 10,
			Burst:     5,
		},
		Session: SessionConfig{
			ProfileTimeout: 10 * time.Second,
		},
		Query: QueryConfig{
			DebounceInterval: 300 * time.Millisecond,
			PageSize:         10,
		},
		Display: DisplayConfig{
			Format: "table",
		},
		Storage: StorageConfig{
			DBPath: defaultDBPath(),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: "stderr",
			Format: "text",
		},
	}
}
