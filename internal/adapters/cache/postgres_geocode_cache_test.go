package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodcart-routing-service/internal/domain"
)

func ptr(f float64) *float64 { return &f }

func TestPostgresGetMany(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	updated := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM geocode_cache\s+WHERE address = ANY`).
		WithArgs([]string{"Moscow, Tverskaya 1", "Nowhere"}).
		WillReturnRows(
			pgxmock.NewRows([]string{"address", "lat", "lon", "updated_at"}).
				AddRow("Moscow, Tverskaya 1", ptr(55.75), ptr(37.61), updated).
				AddRow("Nowhere", (*float64)(nil), (*float64)(nil), updated),
		)

	c := NewPostgresGeocodeCache(mock)
	got, err := c.GetMany(context.Background(), []string{"Moscow, Tverskaya 1", "", "Nowhere", "Moscow, Tverskaya 1"})
	require.NoError(t, err)
	require.Len(t, got, 2)

	hit := got["Moscow, Tverskaya 1"]
	require.NotNil(t, hit.Coords)
	assert.InDelta(t, 55.75, hit.Coords.Lat, 1e-9)
	assert.InDelta(t, 37.61, hit.Coords.Lon, 1e-9)
	assert.True(t, hit.UpdatedAt.Equal(updated))

	assert.Nil(t, got["Nowhere"].Coords)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetManyEmptyInputSkipsQuery(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	c := NewPostgresGeocodeCache(mock)
	got, err := c.GetMany(context.Background(), []string{" ", ""})
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetManyQueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM geocode_cache`).
		WithArgs([]string{"a"}).
		WillReturnError(errors.New("connection reset"))

	c := NewPostgresGeocodeCache(mock)
	_, err = c.GetMany(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestPostgresGet(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	updated := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM geocode_cache\s+WHERE address = `).
		WithArgs("Moscow").
		WillReturnRows(
			pgxmock.NewRows([]string{"lat", "lon", "updated_at"}).
				AddRow(ptr(55.75), ptr(37.61), updated),
		)
	mock.ExpectQuery(`FROM geocode_cache\s+WHERE address = `).
		WithArgs("Unknown").
		WillReturnRows(pgxmock.NewRows([]string{"lat", "lon", "updated_at"}))

	c := NewPostgresGeocodeCache(mock)

	entry, ok, err := c.Get(context.Background(), "Moscow")
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, entry.Coords)
	assert.Equal(t, "Moscow", entry.Address)
	assert.InDelta(t, 55.75, entry.Coords.Lat, 1e-9)

	_, ok, err = c.Get(context.Background(), "Unknown")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	mock.ExpectExec(`INSERT INTO geocode_cache`).
		WithArgs("Moscow", pgxmock.AnyArg(), pgxmock.AnyArg(), now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`ON CONFLICT \(address\) DO UPDATE`).
		WithArgs("Nowhere", (*float64)(nil), (*float64)(nil), now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	c := NewPostgresGeocodeCache(mock)
	require.NoError(t, c.Upsert(context.Background(), domain.GeocodeEntry{
		Address:   "Moscow",
		Coords:    &domain.Coordinates{Lat: 55.75, Lon: 37.61},
		UpdatedAt: now,
	}))
	require.NoError(t, c.Upsert(context.Background(), domain.GeocodeEntry{
		Address:   "Nowhere",
		UpdatedAt: now,
	}))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpsertRejectsEmptyAddress(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	c := NewPostgresGeocodeCache(mock)
	err = c.Upsert(context.Background(), domain.GeocodeEntry{Address: "  "})
	assert.Error(t, err)
}

func TestPostgresNilPool(t *testing.T) {
	c := NewPostgresGeocodeCache(nil)
	_, err := c.GetMany(context.Background(), []string{"a"})
	assert.Error(t, err)
	_, _, err = c.Get(context.Background(), "a")
	assert.Error(t, err)
	assert.Error(t, c.Upsert(context.Background(), domain.GeocodeEntry{Address: "a"}))
}
