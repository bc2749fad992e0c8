package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := FromViper(newViper())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.True(t, cfg.Database.RunMigrations)
	assert.Equal(t, 5*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 24*time.Hour, cfg.JWT.RefreshTTL)
	assert.Equal(t, 10, cfg.MaxSessionsPerUser)
	assert.False(t, cfg.Redis.Enabled())
	assert.True(t, cfg.MetricsEnabled)
}

func TestFromViper_EnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DB_DRIVER", "POSTGRES")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("ACCESS_TOKEN_TTL", "90s")
	t.Setenv("MAX_SESSIONS_PER_USER", "3")
	t.Setenv("CORS_ENABLED", "true")

	cfg, err := FromViper(newViper())
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "cache:6380", cfg.Redis.Addr())
	assert.Equal(t, 90*time.Second, cfg.JWT.AccessTTL)
	assert.Equal(t, 3, cfg.MaxSessionsPerUser)
	assert.True(t, cfg.CORSEnabled)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
}

func TestFromViper_MissingSecret(t *testing.T) {
	t.Run("development falls back to dev secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		t.Setenv("APP_ENV", "development")

		cfg, err := FromViper(newViper())
		require.NoError(t, err)
		assert.Equal(t, devJWTSecret, cfg.JWT.Secret)
	})

	t.Run("production refuses to start", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		t.Setenv("APP_ENV", EnvProduction)

		cfg, err := FromViper(newViper())
		assert.ErrorIs(t, err, ErrMissingJWTSecret)
		assert.Nil(t, cfg)
	})
}
