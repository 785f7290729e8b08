package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"foodcart-routing-service/internal/domain"
	"foodcart-routing-service/internal/platform/obs"
)

// SQLite backed cache mapping address strings to geographic coordinates.
// updated_at is stored as unix nanoseconds.
type SqliteGeocodeCache struct {
	DB *sql.DB
}

func NewSqliteGeocodeCache(db *sql.DB) *SqliteGeocodeCache {
	return &SqliteGeocodeCache{DB: db}
}

// Fetch cached entries for the given addresses.
func (s *SqliteGeocodeCache) GetMany(
	ctx context.Context,
	addresses []string,
) (_ map[string]domain.GeocodeEntry, err error) {
	defer obs.Time(ctx, "geocode.cache.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("geocode cache: db is nil")
	}

	uniq := uniqueAddresses(addresses)
	if len(uniq) == 0 {
		return map[string]domain.GeocodeEntry{}, nil
	}

	ph := make([]string, 0, len(uniq))
	args := make([]any, 0, len(uniq))
	for _, a := range uniq {
		ph = append(ph, "?")
		args = append(args, a)
	}

	// SQLite does not support binding slices directly in an IN (...) clause.
	// Only the placeholder structure is interpolated; all values remain parameterized.
	q := fmt.Sprintf(`
	SELECT address, lat, lon, updated_at
	FROM geocode_cache
	WHERE address IN (%s);
	`, strings.Join(ph, ","))

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("get geocode cache: query geocode_cache table: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.GeocodeEntry, len(uniq))
	for rows.Next() {
		var addr string
		var lat, lon sql.NullFloat64
		var updatedAt int64
		if err := rows.Scan(&addr, &lat, &lon, &updatedAt); err != nil {
			return nil, fmt.Errorf("get geocode cache: scan rows: %w", err)
		}
		out[addr] = domain.GeocodeEntry{
			Address:   addr,
			Coords:    nullCoords(lat, lon),
			UpdatedAt: time.Unix(0, updatedAt).UTC(),
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get geocode cache: row iteration: %w", err)
	}

	return out, nil
}

// Fetch the cached entry for a single address.
func (s *SqliteGeocodeCache) Get(ctx context.Context, address string) (domain.GeocodeEntry, bool, error) {
	if s.DB == nil {
		return domain.GeocodeEntry{}, false, errors.New("geocode cache: db is nil")
	}

	var lat, lon sql.NullFloat64
	var updatedAt int64
	err := s.DB.QueryRowContext(ctx, `
	SELECT lat, lon, updated_at
	FROM geocode_cache
	WHERE address = ?;
	`, address).Scan(&lat, &lon, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.GeocodeEntry{}, false, nil
	}
	if err != nil {
		return domain.GeocodeEntry{}, false, fmt.Errorf("get geocode cache address=%q: %w", address, err)
	}

	return domain.GeocodeEntry{
		Address:   address,
		Coords:    nullCoords(lat, lon),
		UpdatedAt: time.Unix(0, updatedAt).UTC(),
	}, true, nil
}

// Insert or replace the entry for entry.Address.
func (s *SqliteGeocodeCache) Upsert(ctx context.Context, entry domain.GeocodeEntry) error {
	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}

	if strings.TrimSpace(entry.Address) == "" {
		return errors.New("insert geocode cache: empty address key")
	}

	lat, lon := fromCoords(entry.Coords)
	_, err := s.DB.ExecContext(ctx, `
	INSERT OR REPLACE INTO geocode_cache (
		address,
		lat,
		lon,
		updated_at
	)
	VALUES (?, ?, ?, ?);
	`, entry.Address, lat, lon, entry.UpdatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("insert geocode cache address=%q: %w", entry.Address, err)
	}

	return nil
}

func nullCoords(lat, lon sql.NullFloat64) *domain.Coordinates {
	if !lat.Valid || !lon.Valid {
		return nil
	}
	return &domain.Coordinates{Lat: lat.Float64, Lon: lon.Float64}
}
