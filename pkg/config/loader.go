package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables consulted by the loader.
const (
	EnvConfig   = "SQUAD_CONFIG"
	EnvAPIURL   = "SQUAD_API_URL"
	EnvDB       = "SQUAD_DB"
	EnvLogLevel = "SQUAD_LOG_LEVEL"
	EnvDebounce = "SQUAD_DEBOUNCE"
)

// Loader provides methods for loading configuration from various sources.
type Loader interface {
	// Load loads configuration with the following precedence:
	// 1. Environment variables
	// 2. Configuration file
	// 3. Default values
	//
	// Returns the merged configuration or an error if validation fails.
	Load() (*Config, error)

	// LoadFromFile loads configuration from a specific file.
	LoadFromFile(path string) (*Config, error)

	// Path returns the file Load reads, or the path a new file would be
	// written to when none exists yet.
	Path() string
}

// loader implements the Loader interface.
type loader struct {
	configPath string
}

// NewLoader creates a new configuration loader.
//
// If configPath is empty, SQUAD_CONFIG is consulted, then the config file is
// searched for in:
// 1. ./config.yaml (current directory)
// 2. ~/.config/squad-console/config.yaml.
func NewLoader(configPath string) Loader {
	if configPath == "" {
		configPath = os.Getenv(EnvConfig)
	}
	return &loader{
		configPath: configPath,
	}
}

// Load implements Loader.Load.
func (l *loader) Load() (*Config, error) {
	cfg := Default()

	configPath := l.configPath
	if configPath == "" {
		configPath = l.findConfigFile()
	}

	if configPath != "" {
		fileCfg, err := l.LoadFromFile(configPath)
		if err != nil {
			// An explicit path must load; a discovered one may be skipped.
			if l.configPath != "" {
				return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
			}
		} else {
			cfg = l.mergeConfigs(cfg, fileCfg)
		}
	}

	cfg = l.applyEnvVars(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadFromFile implements Loader.LoadFromFile.
func (l *loader) LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) // nolint:gosec
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	return &cfg, nil
}

// Path implements Loader.Path.
func (l *loader) Path() string {
	if l.configPath != "" {
		return l.configPath
	}
	if found := l.findConfigFile(); found != "" {
		return found
	}
	return DefaultPath()
}

// findConfigFile searches for a config file in standard locations.
//
// Returns empty string if no config file is found.
func (l *loader) findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		DefaultPath(),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// mergeConfigs merges file configuration into default configuration.
//
// File values override defaults, but only if they are non-zero.
func (l *loader) mergeConfigs(base, override *Config) *Config {
	result := *base

	// API
	if override.API.BaseURL != "" {
		result.API.BaseURL = strings.TrimRight(override.API.BaseURL, "/")
	}
	if override.API.Timeout > 0 {
		result.API.Timeout = override.API.Timeout
	}
	if override.API.RateLimit != 0 {
		result.API.RateLimit = override.API.RateLimit
	}
	if override.API.Burst != 0 {
		result.API.Burst = override.API.Burst
	}

	// Session
	if override.Session.ProfileTimeout > 0 {
		result.Session.ProfileTimeout = override.Session.ProfileTimeout
	}

	// Query
	if override.Query.DebounceInterval > 0 {
		result.Query.DebounceInterval = override.Query.DebounceInterval
	}
	if override.Query.PageSize != 0 {
		result.Query.PageSize = override.Query.PageSize
	}

	// Display
	if override.Display.Format != "" {
		result.Display.Format = override.Display.Format
	}
	// Compact is a bool, so we always take the override value
	result.Display.Compact = override.Display.Compact

	// Storage
	if override.Storage.DBPath != "" {
		result.Storage.DBPath = override.Storage.DBPath
	}

	// Logging
	if override.Logging.Level != "" {
		result.Logging.Level = override.Logging.Level
	}
	if override.Logging.Output != "" {
		result.Logging.Output = override.Logging.Output
	}
	if override.Logging.Format != "" {
		result.Logging.Format = override.Logging.Format
	}

	return &result
}

// applyEnvVars applies environment variable overrides to the configuration.
//
// Supported environment variables:
//   - SQUAD_CONFIG: Path to config file (read by NewLoader)
//   - SQUAD_API_URL: API base URL
//   - SQUAD_DB: Path to token database file
//   - SQUAD_LOG_LEVEL: Log level
//   - SQUAD_DEBOUNCE: Search debounce interval, e.g. 250ms
func (l *loader) applyEnvVars(cfg *Config) *Config {
	result := *cfg

	if apiURL := os.Getenv(EnvAPIURL); apiURL != "" {
		result.API.BaseURL = strings.TrimRight(apiURL, "/")
	}

	if dbPath := os.Getenv(EnvDB); dbPath != "" {
		result.Storage.DBPath = dbPath
	}

	if logLevel := os.Getenv(EnvLogLevel); logLevel != "" {
		result.Logging.Level = strings.ToLower(logLevel)
	}

	if raw := os.Getenv(EnvDebounce); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			result.Query.DebounceInterval = d
		} else if ms, err := strconv.Atoi(raw); err == nil {
			result.Query.DebounceInterval = time.Duration(ms) * time.Millisecond
		}
	}

	return &result
}

// Load is a convenience function that creates a loader and loads configuration.
//
// Equivalent to:
//
//	loader := NewLoader("")
//	return loader.Load()
func Load() (*Config, error) {
	return NewLoader("").Load()
}

// LoadFromFile is a convenience function that loads configuration from a file.
//
// Equivalent to:
//
//	loader := NewLoader(path)
//	return loader.Load()
func LoadFromFile(path string) (*Config, error) {
	return NewLoader(path).Load()
}

// Save writes the configuration to a YAML file.
//
// Creates parent directories if they don't exist.
// File is created with 0600 permissions (read/write for owner only).
func Save(cfg *Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
