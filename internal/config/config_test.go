package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)
	t.Setenv("FOODCART_STORE_DATABASE_URL", "postgres://localhost/foodcart")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/foodcart", cfg.Store.DatabaseURL)
	assert.Equal(t, "data/foodcart.db", cfg.Store.SqlitePath)
	assert.Equal(t, "https://geocode-maps.yandex.ru/1.x", cfg.Geocoder.BaseURL)
	assert.Equal(t, 10, cfg.Geocoder.TimeoutSecs)
	assert.Equal(t, 10*time.Second, cfg.Geocoder.Timeout())
	assert.InDelta(t, 10.0, cfg.Geocoder.RateLimit, 0.001)
	assert.Equal(t, 3, cfg.Geocoder.MaxAttempts)
	assert.Equal(t, 3, cfg.GeocodeCache.StaleAfterDays)
	assert.Equal(t, 72*time.Hour, cfg.GeocodeCache.StaleAfter())
	assert.Equal(t, "store", cfg.GeocodeCache.Backend)
	assert.Equal(t, "redis://localhost:6379/0", cfg.GeocodeCache.RedisURL)
	assert.Equal(t, 30*24*time.Hour, cfg.GeocodeCache.RedisTTL())
	assert.Equal(t, 5, cfg.Routing.GeocodeConcurrency)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
  sqlite_path: /tmp/test.db
geocoder:
  api_key: secret
  timeout_secs: 4
geocode_cache:
  stale_after_days: 7
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "/tmp/test.db", cfg.Store.SqlitePath)
	assert.Equal(t, "secret", cfg.Geocoder.APIKey)
	assert.Equal(t, 4*time.Second, cfg.Geocoder.Timeout())
	assert.Equal(t, 7, cfg.GeocodeCache.StaleAfterDays)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Defaults still apply for unset values
	assert.Equal(t, 5, cfg.Routing.GeocodeConcurrency)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
geocode_cache:
  stale_after_days: 7
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))
	t.Setenv("FOODCART_GEOCODE_CACHE_STALE_AFTER_DAYS", "1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.GeocodeCache.StaleAfterDays)
}

func TestLoadRequiresDatabaseURLForPostgres(t *testing.T) {
	chdirTemp(t)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database_url")
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Store:        StoreConfig{Driver: "sqlite", SqlitePath: "x.db"},
			Geocoder:     GeocoderConfig{TimeoutSecs: 1, MaxAttempts: 1, RateLimit: 1},
			GeocodeCache: GeocodeCacheConfig{StaleAfterDays: 1, Backend: "store"},
			Routing:      RoutingConfig{GeocodeConcurrency: 1},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown driver", func(c *Config) { c.Store.Driver = "mysql" }, "unknown store.driver"},
		{"zero staleness", func(c *Config) { c.GeocodeCache.StaleAfterDays = 0 }, "stale_after_days"},
		{"zero timeout", func(c *Config) { c.Geocoder.TimeoutSecs = 0 }, "timeout_secs"},
		{"zero attempts", func(c *Config) { c.Geocoder.MaxAttempts = 0 }, "max_attempts"},
		{"zero rate", func(c *Config) { c.Geocoder.RateLimit = 0 }, "rate_limit"},
		{"zero concurrency", func(c *Config) { c.Routing.GeocodeConcurrency = 0 }, "geocode_concurrency"},
		{"unknown cache backend", func(c *Config) { c.GeocodeCache.Backend = "memcached" }, "unknown geocode_cache.backend"},
		{"redis without url", func(c *Config) { c.GeocodeCache.Backend = "redis" }, "redis_url"},
		{"redis ttl shorter than staleness", func(c *Config) {
			c.GeocodeCache.Backend = "redis"
			c.GeocodeCache.RedisURL = "redis://localhost:6379/0"
			c.GeocodeCache.StaleAfterDays = 5
			c.GeocodeCache.RedisTTLDays = 2
		}, "redis_ttl_days"},
		{"redis", func(c *Config) {
			c.GeocodeCache.Backend = "redis"
			c.GeocodeCache.RedisURL = "redis://localhost:6379/0"
			c.GeocodeCache.RedisTTLDays = 30
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestInitLogger(t *testing.T) {
	prev := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(prev) })

	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.True(t, zap.L().Core().Enabled(zap.DebugLevel))

	require.NoError(t, InitLogger(LogConfig{Level: "warn", Format: "json"}))
	assert.False(t, zap.L().Core().Enabled(zap.InfoLevel))

	assert.Error(t, InitLogger(LogConfig{Level: "loud"}))
}
