package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, ":7070", cfg.LiveAddr)
	assert.Equal(t, 50*time.Second, cfg.Sync.TimeBudget)
	assert.Equal(t, 343, cfg.Sync.FederalTarget)
	assert.Equal(t, 10, cfg.Sync.ProvincialBatch)
	assert.Equal(t, 12*time.Hour, cfg.Auth.JWTDuration)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("INTEGRITYWATCH_SYNC_TIME_BUDGET", "2m")
	t.Setenv("INTEGRITYWATCH_DB_PATH", "/tmp/iw.db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2*time.Minute, cfg.Sync.TimeBudget)
	assert.Equal(t, "/tmp/iw.db", cfg.DBPath)
}
