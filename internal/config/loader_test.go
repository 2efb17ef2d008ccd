package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, usedPath, err := Load(nil, path)
	require.NoError(t, err)
	assert.Equal(t, path, usedPath)
	assert.Equal(t, Default(), cfg)

	// The default file was materialized for the operator to edit.
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestLoadReadsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("addr: \":9999\"\nround_duration: 10s\nlog_level: debug\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, _, err := Load(nil, path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, 10*time.Second, cfg.RoundDuration)
	assert.Equal(t, "debug", cfg.LogLevel)
	// Untouched keys keep their defaults.
	assert.Equal(t, Default().ReadyDuration, cfg.ReadyDuration)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":9999\"\n"), 0o600))
	t.Setenv("PRICEPARTY_ADDR", ":7777")

	cfg, _, err := Load(nil, path)
	require.NoError(t, err)
	assert.Equal(t, ":7777", cfg.Addr)
}
