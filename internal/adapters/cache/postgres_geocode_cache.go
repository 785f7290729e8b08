package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"foodcart-routing-service/internal/domain"
	"foodcart-routing-service/internal/platform/db"
	"foodcart-routing-service/internal/platform/obs"
)

// PostgresGeocodeCache is a Postgres-backed cache mapping addresses to coordinates.
// Rows with NULL lat/lon record addresses the geocoder could not match.
type PostgresGeocodeCache struct {
	Pool db.Pool
}

func NewPostgresGeocodeCache(pool db.Pool) *PostgresGeocodeCache {
	return &PostgresGeocodeCache{Pool: pool}
}

// Fetch cached entries for the given addresses.
func (s *PostgresGeocodeCache) GetMany(
	ctx context.Context,
	addresses []string,
) (_ map[string]domain.GeocodeEntry, err error) {
	defer obs.Time(ctx, "geocode.cache.GetMany")(&err)

	if s.Pool == nil {
		return nil, errors.New("geocode cache: pool is nil")
	}

	uniq := uniqueAddresses(addresses)
	if len(uniq) == 0 {
		return map[string]domain.GeocodeEntry{}, nil
	}

	q := `
	SELECT address, lat, lon, updated_at
	FROM geocode_cache
	WHERE address = ANY($1::text[]);
	`

	rows, err := s.Pool.Query(ctx, q, uniq)
	if err != nil {
		return nil, fmt.Errorf("get geocode cache: query geocode_cache table: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.GeocodeEntry, len(uniq))
	for rows.Next() {
		var addr string
		var lat, lon *float64
		var updatedAt time.Time
		if err := rows.Scan(&addr, &lat, &lon, &updatedAt); err != nil {
			return nil, fmt.Errorf("get geocode cache: scan rows: %w", err)
		}
		out[addr] = domain.GeocodeEntry{
			Address:   addr,
			Coords:    toCoords(lat, lon),
			UpdatedAt: updatedAt,
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get geocode cache: row iteration: %w", err)
	}

	return out, nil
}

// Fetch the cached entry for a single address.
func (s *PostgresGeocodeCache) Get(ctx context.Context, address string) (domain.GeocodeEntry, bool, error) {
	if s.Pool == nil {
		return domain.GeocodeEntry{}, false, errors.New("geocode cache: pool is nil")
	}

	var lat, lon *float64
	var updatedAt time.Time
	err := s.Pool.QueryRow(ctx, `
	SELECT lat, lon, updated_at
	FROM geocode_cache
	WHERE address = $1;
	`, address).Scan(&lat, &lon, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.GeocodeEntry{}, false, nil
	}
	if err != nil {
		return domain.GeocodeEntry{}, false, fmt.Errorf("get geocode cache address=%q: %w", address, err)
	}

	return domain.GeocodeEntry{
		Address:   address,
		Coords:    toCoords(lat, lon),
		UpdatedAt: updatedAt,
	}, true, nil
}

// Insert or refresh the entry for entry.Address.
func (s *PostgresGeocodeCache) Upsert(ctx context.Context, entry domain.GeocodeEntry) error {
	if s.Pool == nil {
		return errors.New("geocode cache: pool is nil")
	}

	if strings.TrimSpace(entry.Address) == "" {
		return errors.New("insert geocode cache: empty address key")
	}

	lat, lon := fromCoords(entry.Coords)
	_, err := s.Pool.Exec(ctx, `
	INSERT INTO geocode_cache (address, lat, lon, updated_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (address) DO UPDATE
	SET lat = EXCLUDED.lat,
		lon = EXCLUDED.lon,
		updated_at = EXCLUDED.updated_at;
	`, entry.Address, lat, lon, entry.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert geocode cache address=%q: %w", entry.Address, err)
	}

	return nil
}
