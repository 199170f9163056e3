package config

import (
	"os"
	"path/filepath"
)

// appDir returns ~/.config/squad-console, or "." without a home directory.
func appDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(homeDir, ".config", "squad-console")
}

// defaultDBPath returns the default token database path.
//
// Returns: ~/.config/squad-console/session.db.
func defaultDBPath() string {
	return filepath.Join(appDir(), "session.db")
}

// DefaultPath returns the default configuration file path.
//
// Returns: ~/.config/squad-console/config.yaml.
func DefaultPath() string {
	return filepath.Join(appDir(), "config.yaml")
}
