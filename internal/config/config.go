// Package config loads the client configuration file.
//
// The file is YAML, located by (in order): the --config flag, the
// KANWORK_CONFIG environment variable, or the default path under the
// XDG config dir.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the client configuration.
type Config struct {
	// APIBaseURL is the task-tracking API root, e.g. "http://localhost:8000".
	APIBaseURL string `yaml:"api_base_url"`

	// Token is the bearer token. Optional; a token stored from a
	// previous session takes precedence when present.
	Token string `yaml:"token,omitempty"`

	// LogLevel is one of debug, info, warn, error. Defaults to info.
	LogLevel string `yaml:"log_level,omitempty"`
}

// EnvVar names the environment variable overriding the config path.
const EnvVar = "KANWORK_CONFIG"

// DefaultPath returns the config file path under the XDG config dir.
func DefaultPath() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "kanwork", "config.yaml"), nil
}

// Resolve picks the config path: flag value, then environment, then
// the default location.
func Resolve(flagPath string) (string, error) {
	if flagPath != "" {
		return flagPath, nil
	}
	if env := os.Getenv(EnvVar); env != "" {
		return env, nil
	}
	return DefaultPath()
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("config: %s: api_base_url is required", path)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return &cfg, nil
}
