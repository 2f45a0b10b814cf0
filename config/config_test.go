package config

import (
	"os"
	"testing"

	"github.com/bcdannyboy/stocsim/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.LogPretty)
	assert.Equal(t, uint64(0), cfg.Seed)
	assert.GreaterOrEqual(t, cfg.Workers, 1)
	assert.Equal(t, models.DefaultWarnThreshold, cfg.JumpWarnThreshold)
	assert.Equal(t, models.DefaultLimits().MaxSteps, cfg.Limits.MaxSteps)
	assert.Greater(t, cfg.Limits.MaxSamples, 0)
	assert.LessOrEqual(t, cfg.Limits.MaxSamples, models.DefaultLimits().MaxSamples)
	assert.Empty(t, cfg.StoreDir)
}

func TestLoadFromEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("STOCSIM_LOG_LEVEL", "debug")
	t.Setenv("STOCSIM_LOG_PRETTY", "true")
	t.Setenv("STOCSIM_SEED", "12345")
	t.Setenv("STOCSIM_WORKERS", "3")
	t.Setenv("STOCSIM_MAX_STEPS", "1000")
	t.Setenv("STOCSIM_MAX_SAMPLES", "50000")
	t.Setenv("STOCSIM_JUMP_WARN_THRESHOLD", "0.25")
	t.Setenv("STOCSIM_STORE_DIR", "/tmp/paths")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.LogPretty)
	assert.Equal(t, uint64(12345), cfg.Seed)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, models.Limits{MaxSteps: 1000, MaxSamples: 50000}, cfg.Limits)
	assert.Equal(t, 0.25, cfg.JumpWarnThreshold)
	assert.Equal(t, "/tmp/paths", cfg.StoreDir)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("STOCSIM_SEED", "not-a-number")
	t.Setenv("STOCSIM_LOG_PRETTY", "maybe")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), cfg.Seed)
	assert.False(t, cfg.LogPretty)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("STOCSIM_WORKERS", "0")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("STOCSIM_WORKERS", "2")
	t.Setenv("STOCSIM_JUMP_WARN_THRESHOLD", "-1")
	_, err = Load()
	assert.Error(t, err)
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
