package correlate

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "correlate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("full config", func(t *testing.T) {
		path := writeConfigFile(t, `
correlation:
  defaultTTL: 10m
  cleanupInterval: 45s
icons:
  clockIconPath: assets/pending.svg
  arrowIconPath: assets/go.svg
  disabledClockIconPath: assets/disabled.svg
  iconSize: 20
`)

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 10*time.Minute, cfg.Correlation.DefaultTTL)
		assert.Equal(t, 45*time.Second, cfg.Correlation.CleanupInterval)
		assert.Equal(t, "assets/pending.svg", cfg.Icons.ClockIconPath)
		assert.Equal(t, float64(20), cfg.Icons.IconSize)
	})

	t.Run("partial config fills defaults", func(t *testing.T) {
		path := writeConfigFile(t, `
correlation:
  defaultTTL: 2m
`)

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 2*time.Minute, cfg.Correlation.DefaultTTL)
		assert.Equal(t, DefaultCleanupInterval, cfg.Correlation.CleanupInterval)
		assert.Equal(t, DefaultIconConfiguration().ClockIconPath, cfg.Icons.ClockIconPath)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeConfigFile(t, "correlation: [not a mapping")

		_, err := LoadConfig(path)
		assert.Error(t, err)
	})

	t.Run("invalid values rejected", func(t *testing.T) {
		path := writeConfigFile(t, `
correlation:
  defaultTTL: -5m
`)

		_, err := LoadConfig(path)
		assert.Error(t, err)
	})

	t.Run("negative icon size rejected", func(t *testing.T) {
		path := writeConfigFile(t, `
icons:
  iconSize: -3
`)

		_, err := LoadConfig(path)
		assert.Error(t, err)
	})
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultTTL, cfg.Correlation.DefaultTTL)
	assert.Equal(t, DefaultCleanupInterval, cfg.Correlation.CleanupInterval)
}
