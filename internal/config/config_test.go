package config_test

import (
	"testing"
	"time"

	"github.com/mira/workspace-hub/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 24, cfg.JWTExpirationHours)
	assert.Equal(t, 1000, cfg.AdjustmentCeilingMinutes)
	assert.Equal(t, time.Minute, cfg.RoleCacheTTL)
	assert.Equal(t, 30, cfg.AdjustmentRateLimit)
}

func TestLoad_RejectsNonPositiveCeiling(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ADJUSTMENT_CEILING_MINUTES", "0")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "9090")
	t.Setenv("ROLE_CACHE_TTL_SECONDS", "5")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.RoleCacheTTL)
}
