// Package store opens the configured persistence backend and exposes it through the ports.
package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"foodcart-routing-service/internal/adapters/cache"
	"foodcart-routing-service/internal/adapters/repositories"
	"foodcart-routing-service/internal/config"
	"foodcart-routing-service/internal/platform/db"
	"foodcart-routing-service/internal/ports"
)

// Store bundles the adapters of one backend.
type Store struct {
	Driver       string
	Orders       ports.OrderRepository
	Restaurants  ports.RestaurantRepository
	Products     ports.ProductRepository
	GeocodeCache ports.GeocodeCache

	pool  *pgxpool.Pool
	sql   *sql.DB
	redis *redis.Client
}

// Open connects to the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig) (*Store, error) {
	switch cfg.Driver {
	case "postgres":
		pool, err := db.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, eris.Wrap(err, "store: open postgres")
		}
		return newPostgresStore(pool), nil

	case "sqlite":
		if dir := filepath.Dir(cfg.SqlitePath); dir != "." && cfg.SqlitePath != ":memory:" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, eris.Wrapf(err, "store: create directory %q", dir)
			}
		}
		conn, err := db.OpenSQLite(cfg.SqlitePath)
		if err != nil {
			return nil, eris.Wrap(err, "store: open sqlite")
		}
		return newSqliteStore(conn), nil

	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}

func newPostgresStore(pool *pgxpool.Pool) *Store {
	repo := repositories.NewPostgresRepository(pool)
	return &Store{
		Driver:       "postgres",
		Orders:       repo,
		Restaurants:  repo,
		Products:     repo,
		GeocodeCache: cache.NewPostgresGeocodeCache(pool),
		pool:         pool,
	}
}

func newSqliteStore(conn *sql.DB) *Store {
	repo := repositories.NewSqliteRepository(conn)
	return &Store{
		Driver:       "sqlite",
		Orders:       repo,
		Restaurants:  repo,
		Products:     repo,
		GeocodeCache: cache.NewSqliteGeocodeCache(conn),
		sql:          conn,
	}
}

// Migrate creates any missing tables.
func (s *Store) Migrate(ctx context.Context) error {
	var err error
	if s.pool != nil {
		err = repositories.InitPostgresSchema(ctx, s.pool)
	} else {
		err = repositories.InitSqliteSchema(s.sql)
	}
	if err != nil {
		return eris.Wrapf(err, "store: migrate %s", s.Driver)
	}
	zap.L().Info("schema ready", zap.String("driver", s.Driver))
	return nil
}

// Seed loads demo data, replacing rows with the same ids.
func (s *Store) Seed(ctx context.Context, seed *repositories.Seed) error {
	var err error
	if s.pool != nil {
		err = repositories.SeedPostgres(ctx, s.pool, seed)
	} else {
		err = repositories.SeedSqlite(ctx, s.sql, seed)
	}
	if err != nil {
		return eris.Wrapf(err, "store: seed %s", s.Driver)
	}
	zap.L().Info("seed loaded",
		zap.String("driver", s.Driver),
		zap.Int("restaurants", len(seed.Restaurants)),
		zap.Int("products", len(seed.Products)),
		zap.Int("orders", len(seed.Orders)),
	)
	return nil
}

// UseGeocodeCache switches the geocode cache to the configured backend.
// The "store" backend keeps the cache opened with the store.
func (s *Store) UseGeocodeCache(ctx context.Context, cfg config.GeocodeCacheConfig) error {
	if cfg.Backend != "redis" {
		return nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return eris.Wrap(err, "store: parse redis url")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return eris.Wrap(err, "store: ping redis")
	}

	s.redis = client
	s.GeocodeCache = cache.NewRedisGeocodeCache(client, cfg.RedisTTL())
	zap.L().Info("geocode cache on redis", zap.String("addr", opts.Addr))
	return nil
}

func (s *Store) Close() {
	if s.redis != nil {
		_ = s.redis.Close()
	}
	if s.pool != nil {
		s.pool.Close()
	}
	if s.sql != nil {
		_ = s.sql.Close()
	}
}
