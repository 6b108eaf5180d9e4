package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.InDelta(t, 80.0, cfg.DefaultCutoffCm, 1e-9)
	assert.Equal(t, int64(100), cfg.FinishThresholdSheets)
	assert.Equal(t, 5, cfg.MaxCommitRetries)
	assert.Equal(t, 20*time.Millisecond, cfg.CommitBackoff())
	assert.Equal(t, 10*time.Second, cfg.ReelLockTTL())
	assert.True(t, cfg.EventsEnabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("DEFAULT_CUTOFF_CM", "72.5")
	t.Setenv("FINISH_THRESHOLD_SHEETS", "250")
	t.Setenv("MAX_COMMIT_RETRIES", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.InDelta(t, 72.5, cfg.DefaultCutoffCm, 1e-9)
	assert.Equal(t, int64(250), cfg.FinishThresholdSheets)
	assert.Equal(t, 2, cfg.MaxCommitRetries)
}
