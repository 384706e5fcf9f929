package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.AppPort)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "localhost:3500", cfg.DaprHost)
}

func TestLoad_YAMLFileOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app_port: \"7070\"\nlog_level: warn\n"), 0o644))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("APP_PORT", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.AppPort)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_TOMLFileOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.toml")
	require.NoError(t, os.WriteFile(path, []byte("app_port = \"6060\"\n"), 0o644))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("APP_PORT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "6060", cfg.AppPort)
}
