package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setTempHome points HOME at a fresh directory and returns the cortexd
// config dir inside it.
func setTempHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	configDir := filepath.Join(home, ".config", "cortexd")
	require.NoError(t, os.MkdirAll(configDir, 0700))
	return configDir
}

func writeConfigFile(t *testing.T, dir, content string, perm os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
	return path
}

func TestLoadWithFile_MissingFileUsesDefaults(t *testing.T) {
	setTempHome(t)

	cfg, err := LoadWithFile("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 60*time.Second, cfg.Approval.Timeout.Duration())
	assert.Equal(t, 3, cfg.Healing.MaxRetries)
}

func TestLoadWithFile_ReadsYAML(t *testing.T) {
	dir := setTempHome(t)
	path := writeConfigFile(t, dir, `
server:
  port: 8080
approval:
  timeout: 5s
surfaces:
  figma:
    token: figd_abc123
    file_key: F1LE
`, 0600)

	cfg, err := LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Approval.Timeout.Duration())
	assert.Equal(t, "figd_abc123", cfg.Surfaces.Figma.Token.Value())
	assert.Equal(t, "F1LE", cfg.Surfaces.Figma.FileKey)
	// Untouched sections still get defaults.
	assert.Equal(t, 3, cfg.Healing.MaxRetries)
}

func TestLoadWithFile_EnvOverridesFile(t *testing.T) {
	dir := setTempHome(t)
	path := writeConfigFile(t, dir, `
approval:
  timeout: 5s
`, 0600)

	t.Setenv("APPROVAL_TIMEOUT", "2s")

	cfg, err := LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.Approval.Timeout.Duration())
}

func TestLoadWithFile_RejectsWorldReadableFile(t *testing.T) {
	dir := setTempHome(t)
	path := writeConfigFile(t, dir, "server:\n  port: 8080\n", 0644)

	_, err := LoadWithFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permissions")
}

func TestLoadWithFile_RejectsPathOutsideAllowedDirs(t *testing.T) {
	setTempHome(t)
	outside := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(outside, []byte("server:\n  port: 8080\n"), 0600))

	_, err := LoadWithFile(outside)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file must be in")
}

func TestLoadWithFile_InvalidValuesFailValidation(t *testing.T) {
	dir := setTempHome(t)
	path := writeConfigFile(t, dir, `
healing:
  max_retries: -2
`, 0600)

	_, err := LoadWithFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_retries")
}

func TestEnsureConfigDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	require.NoError(t, EnsureConfigDir())

	info, err := os.Stat(filepath.Join(home, ".config", "cortexd"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
