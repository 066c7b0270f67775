// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/pulse-chat/pulse/internal/constants"
	"github.com/pulse-chat/pulse/internal/safe"
)

// Loader handles loading and saving configuration files.
type Loader struct {
	homeDir string
	workDir string
}

// NewLoader creates a new config loader.
// The base directory is resolved in this order:
//  1. PULSE_CONFIG environment variable.
//  2. User home directory (~/).
//  3. /tmp/pulse-fallback (containers without a home dir).
//
// The .env file is looked up in the current working directory.
func NewLoader() (*Loader, error) {
	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve working directory: %w", err)
	}

	if baseDir := os.Getenv(constants.ConfigDirEnv); baseDir != "" {
		return &Loader{homeDir: baseDir, workDir: workDir}, nil
	}

	homeDir, err := os.UserHomeDir()
	if err == nil {
		return &Loader{homeDir: homeDir, workDir: workDir}, nil
	}

	// Config files won't exist here, so Load returns defaults + env overrides.
	return &Loader{homeDir: "/tmp/pulse-fallback", workDir: workDir}, nil
}

// ConfigPath returns the path to the config file.
func (l *Loader) ConfigPath() string {
	return filepath.Join(l.homeDir, constants.DefaultDir, constants.ConfigFile)
}

// DotEnvPath returns the path of the optional .env file.
func (l *Loader) DotEnvPath() string {
	return filepath.Join(l.workDir, constants.DotEnvFile)
}

// Load reads the configuration from every layer except flags.
// Returns defaults plus environment overrides if the file doesn't exist.
func (l *Loader) Load() (*Config, error) {
	cfg, _, err := l.LoadLayered(nil)
	return cfg, err
}

// readFile decodes the config file over cfg. It reports false when there is
// no file.
func (l *Loader) readFile(cfg *Config) (bool, error) {
	path := l.ConfigPath()

	data, err := safe.ReadFile(path, nil)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return false, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return true, nil
}

// Save writes cfg to ConfigPath.
func (l *Loader) Save(cfg *Config) error {
	path := l.ConfigPath()

	//nolint:gosec // G301: Directory needs standard permissions for traversal
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The webhook URL may embed a secret path, so keep the file private.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
