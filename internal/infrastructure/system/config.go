// Package system provides infrastructure for system-level configuration.
// This covers the user config file (~/.qmcchain/config.yaml): default profile
// files and output preferences.
package system

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

// Config represents the global configuration file (~/.qmcchain/config.yaml).
// This is infrastructure-level configuration separate from request files.
type Config struct {
	// Profiles lists profile files merged over the built-in defaults for every
	// request, in order. Relative paths resolve against the config file's directory.
	Profiles []string     `yaml:"profiles"`
	Output   OutputConfig `yaml:"output"`
	Logging  LogConfig    `yaml:"logging"`
}

// OutputConfig holds output preferences. Command-line flags take precedence.
type OutputConfig struct {
	Format string `yaml:"format"`
	Indent bool   `yaml:"indent"`
	// Color is nil when unset so an explicit false can be told apart.
	Color *bool `yaml:"color"`
}

// LogConfig controls the default log level.
type LogConfig struct {
	Level string `yaml:"level"`
}

// ColorEnabled reports whether colored table output is on, defaulting to true.
func (o OutputConfig) ColorEnabled() bool {
	return o.Color == nil || *o.Color
}

// ConfigLoader loads system configuration from disk.
type ConfigLoader struct{}

// NewConfigLoader creates a new system config loader.
func NewConfigLoader() *ConfigLoader {
	return &ConfigLoader{}
}

// DefaultConfig returns a Config with defaults for all fields.
// This is used when no system config file exists.
func DefaultConfig() *Config {
	return &Config{
		Profiles: []string{},
		Output: OutputConfig{
			Format: "table",
		},
		Logging: LogConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns ~/.qmcchain/config.yaml, or "" when the home
// directory is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".qmcchain", "config.yaml")
}

// Load loads the system configuration from the specified path.
// If the file does not exist, returns DefaultConfig().
// This allows qmcchain to work out-of-the-box without configuration.
func (l *ConfigLoader) Load(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	//nolint:gosec // G304: path is user-provided config file, validated to exist above
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read system config: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse system config: %w", err)
	}

	dir := filepath.Dir(path)
	for i, p := range config.Profiles {
		if !filepath.IsAbs(p) {
			config.Profiles[i] = filepath.Join(dir, p)
		}
	}
	return config, nil
}
