package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoader(t *testing.T) {
	loader := NewLoader()
	require.NotNil(t, loader)
	require.NotNil(t, loader.v)
}

func TestLoad_NoConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	loader := NewLoaderWith(viper.New())
	cfg, err := loader.Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// Defaults apply when no file is found.
	assert.Equal(t, 416, cfg.Input.Width)
	assert.Equal(t, BoundsAllow, cfg.Dataset.BoundsPolicy)
}

func TestLoadWithFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "yolodata.yaml")
	content := `
log_level: debug
input:
  width: 320
  height: 320
dataset:
  dir: /data/receipts
  class_id: 1
  bounds_policy: clamp
  seed: 42
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	loader := NewLoaderWith(viper.New())
	cfg, err := loader.LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 320, cfg.Input.Width)
	assert.Equal(t, "/data/receipts", cfg.Dataset.Dir)
	assert.Equal(t, BoundsClamp, cfg.Dataset.BoundsPolicy)
	assert.Equal(t, int64(42), cfg.Dataset.Seed)
	// Untouched keys keep their defaults.
	assert.Equal(t, 256, cfg.Classify.WordSize)
}

func TestLoadWithFile_Missing(t *testing.T) {
	loader := NewLoaderWith(viper.New())
	_, err := loader.LoadWithFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadWithFile_InvalidValues(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "yolodata.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dataset:\n  bounds_policy: shrink\n"), 0o600))

	loader := NewLoaderWith(viper.New())
	_, err := loader.LoadWithFile(path)
	assert.Error(t, err)
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)
	t.Setenv("YOLODATA_LOG_LEVEL", "warn")

	loader := NewLoaderWith(viper.New())
	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}
