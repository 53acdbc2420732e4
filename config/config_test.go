package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("CACHE_TTL", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("APP_ENV", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 1000, cfg.Slug.MaxAttempts)
	assert.Equal(t, "development", cfg.App.Environment)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://studio.example, ,https://admin.studio.example")
	t.Setenv("SLUG_MAX_ATTEMPTS", "50")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, []string{"https://studio.example", "https://admin.studio.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 50, cfg.Slug.MaxAttempts)
	assert.Equal(t, 0, cfg.Redis.DB, "invalid integers fall back to the default")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: "8080"},
			Database: DatabaseConfig{Host: "localhost"},
			Cache:    CacheConfig{TTL: time.Minute},
			Contact:  ContactConfig{RatePerMinute: 5},
			Slug:     SlugConfig{MaxAttempts: 10},
			App:      AppConfig{Environment: "development"},
		}
	}

	t.Run("valid config", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("production requires admin key", func(t *testing.T) {
		cfg := valid()
		cfg.App.Environment = "production"
		assert.Error(t, cfg.Validate())

		cfg.Server.AdminAPIKey = "secret"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("rejects zero slug attempts", func(t *testing.T) {
		cfg := valid()
		cfg.Slug.MaxAttempts = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects malformed trusted proxies", func(t *testing.T) {
		cfg := valid()
		cfg.Server.TrustedProxies = []string{"10.0.0.0/8", "load-balancer"}
		assert.Error(t, cfg.Validate())

		cfg.Server.TrustedProxies = []string{"10.0.0.0/8", "192.168.1.4"}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("requires a database location", func(t *testing.T) {
		cfg := valid()
		cfg.Database.Host = ""
		assert.Error(t, cfg.Validate())

		cfg.Database.DSN = "postgres://localhost/studio"
		assert.NoError(t, cfg.Validate())
	})
}

func TestLoad_TrustedProxies(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.Server.TrustedProxies)

	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 172.16.0.1")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0/8", "172.16.0.1"}, cfg.Server.TrustedProxies)
}

func TestLoad_ContactAndMigrationSettings(t *testing.T) {
	t.Setenv("CONTACT_MAX_PER_HOUR", "0")
	t.Setenv("DB_MIGRATE_ON_START", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Contact.MaxPerHour)
	assert.True(t, cfg.Database.MigrateOnStart)

	t.Setenv("DB_MIGRATE_ON_START", "sometimes")
	cfg, err = Load()
	require.NoError(t, err)
	assert.False(t, cfg.Database.MigrateOnStart)
}
