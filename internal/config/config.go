// Package config loads service configuration from config.yaml, .env and the environment.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store        StoreConfig        `yaml:"store" mapstructure:"store"`
	Geocoder     GeocoderConfig     `yaml:"geocoder" mapstructure:"geocoder"`
	GeocodeCache GeocodeCacheConfig `yaml:"geocode_cache" mapstructure:"geocode_cache"`
	Routing      RoutingConfig      `yaml:"routing" mapstructure:"routing"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SqlitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// GeocoderConfig holds the external geocoding API settings.
type GeocoderConfig struct {
	APIKey      string  `yaml:"api_key" mapstructure:"api_key"`
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	MaxAttempts int     `yaml:"max_attempts" mapstructure:"max_attempts"`
}

// Timeout is the per-call deadline for one geocode request.
func (c GeocoderConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// GeocodeCacheConfig configures where coordinates are cached and when they go stale.
// Backend "store" keeps them next to orders; "redis" uses RedisURL.
type GeocodeCacheConfig struct {
	StaleAfterDays int    `yaml:"stale_after_days" mapstructure:"stale_after_days"`
	Backend        string `yaml:"backend" mapstructure:"backend"`
	RedisURL       string `yaml:"redis_url" mapstructure:"redis_url"`
	RedisTTLDays   int    `yaml:"redis_ttl_days" mapstructure:"redis_ttl_days"`
}

func (c GeocodeCacheConfig) StaleAfter() time.Duration {
	return time.Duration(c.StaleAfterDays) * 24 * time.Hour
}

func (c GeocodeCacheConfig) RedisTTL() time.Duration {
	return time.Duration(c.RedisTTLDays) * 24 * time.Hour
}

// RoutingConfig configures the order routing pass.
type RoutingConfig struct {
	GeocodeConcurrency int `yaml:"geocode_concurrency" mapstructure:"geocode_concurrency"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("FOODCART")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.sqlite_path", "data/foodcart.db")
	v.SetDefault("geocoder.api_key", "")
	v.SetDefault("geocoder.base_url", "https://geocode-maps.yandex.ru/1.x")
	v.SetDefault("geocoder.timeout_secs", 10)
	v.SetDefault("geocoder.rate_limit", 10)
	v.SetDefault("geocoder.max_attempts", 3)
	v.SetDefault("geocode_cache.stale_after_days", 3)
	v.SetDefault("geocode_cache.backend", "store")
	v.SetDefault("geocode_cache.redis_url", "redis://localhost:6379/0")
	v.SetDefault("geocode_cache.redis_ttl_days", 30)
	v.SetDefault("routing.geocode_concurrency", 5)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values that have no sensible fallback.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "postgres":
		if strings.TrimSpace(c.Store.DatabaseURL) == "" {
			return eris.New("config: store.database_url is required for the postgres driver")
		}
	case "sqlite":
		if strings.TrimSpace(c.Store.SqlitePath) == "" {
			return eris.New("config: store.sqlite_path is required for the sqlite driver")
		}
	default:
		return eris.Errorf("config: unknown store.driver %q", c.Store.Driver)
	}

	if c.GeocodeCache.StaleAfterDays < 1 {
		return eris.New("config: geocode_cache.stale_after_days must be at least 1")
	}
	switch c.GeocodeCache.Backend {
	case "store":
	case "redis":
		if strings.TrimSpace(c.GeocodeCache.RedisURL) == "" {
			return eris.New("config: geocode_cache.redis_url is required for the redis backend")
		}
		if c.GeocodeCache.RedisTTLDays < c.GeocodeCache.StaleAfterDays {
			return eris.New("config: geocode_cache.redis_ttl_days must not be shorter than stale_after_days")
		}
	default:
		return eris.Errorf("config: unknown geocode_cache.backend %q", c.GeocodeCache.Backend)
	}
	if c.Geocoder.TimeoutSecs < 1 {
		return eris.New("config: geocoder.timeout_secs must be at least 1")
	}
	if c.Geocoder.MaxAttempts < 1 {
		return eris.New("config: geocoder.max_attempts must be at least 1")
	}
	if c.Geocoder.RateLimit <= 0 {
		return eris.New("config: geocoder.rate_limit must be positive")
	}
	if c.Routing.GeocodeConcurrency < 1 {
		return eris.New("config: routing.geocode_concurrency must be at least 1")
	}

	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
