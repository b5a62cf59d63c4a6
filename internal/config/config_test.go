package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, "api_base_url: http://localhost:8000\ntoken: abc\nlog_level: debug\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", cfg.APIBaseURL)
	assert.Equal(t, "abc", cfg.Token)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadDefaultsLogLevel(t *testing.T) {
	path := writeConfig(t, "api_base_url: http://localhost:8000\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadRequiresBaseURL(t *testing.T) {
	path := writeConfig(t, "token: abc\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_base_url")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "api_base_url: [unclosed\n")

	_, err := Load(path)
	require.Error(t, err)
}

func TestResolveOrder(t *testing.T) {
	t.Setenv(EnvVar, "/env/config.yaml")

	// flag wins over environment
	path, err := Resolve("/flag/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "/flag/config.yaml", path)

	// environment wins over the default
	path, err = Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "/env/config.yaml", path)
}

func TestResolveDefault(t *testing.T) {
	t.Setenv(EnvVar, "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")

	path, err := Resolve("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/xdg", "kanwork", "config.yaml"), path)
}
