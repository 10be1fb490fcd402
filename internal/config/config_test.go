package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8090", cfg.Server.Port)
	assert.Equal(t, 5*time.Minute, cfg.Inventory.TTL)
	assert.Equal(t, 0.6, cfg.Resolver.Threshold)
	assert.Equal(t, 256, cfg.Resolver.MemoSize)
	assert.Equal(t, 5, cfg.Confirm.MaxAttempts)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("VOXLAUNCH_PORT", "9999")
	t.Setenv("VOXLAUNCH_INVENTORY_TTL", "30s")
	t.Setenv("VOXLAUNCH_RESOLVER_THRESHOLD", "0.8")
	t.Setenv("VOXLAUNCH_LOG_DEV", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Inventory.TTL)
	assert.Equal(t, 0.8, cfg.Resolver.Threshold)
	assert.True(t, cfg.Logging.Development)
}

func TestLoadInvalidValue(t *testing.T) {
	t.Setenv("VOXLAUNCH_INVENTORY_TTL", "not-a-duration")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadOrDefaultFallsBack(t *testing.T) {
	t.Setenv("VOXLAUNCH_CONFIRM_MAX_ATTEMPTS", "banana")

	cfg := LoadOrDefault()
	assert.Equal(t, 5, cfg.Confirm.MaxAttempts)
}

func TestDefaultMatchesTagDefaults(t *testing.T) {
	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), loaded)
}
