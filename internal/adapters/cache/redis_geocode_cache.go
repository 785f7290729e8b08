package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"foodcart-routing-service/internal/domain"
	"foodcart-routing-service/internal/platform/obs"
)

const redisKeyPrefix = "foodcart:geocode:"

type redisEntry struct {
	Lat       *float64  `json:"lat"`
	Lon       *float64  `json:"lon"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RedisGeocodeCache keeps geocode entries in Redis, one JSON value per address.
// TTL only bounds memory; staleness is still decided from UpdatedAt.
type RedisGeocodeCache struct {
	Client redis.Cmdable
	TTL    time.Duration
}

func NewRedisGeocodeCache(client redis.Cmdable, ttl time.Duration) *RedisGeocodeCache {
	return &RedisGeocodeCache{Client: client, TTL: ttl}
}

func redisKey(address string) string {
	return redisKeyPrefix + address
}

// Fetch cached entries for the given addresses.
func (s *RedisGeocodeCache) GetMany(
	ctx context.Context,
	addresses []string,
) (_ map[string]domain.GeocodeEntry, err error) {
	defer obs.Time(ctx, "geocode.cache.GetMany")(&err)

	if s.Client == nil {
		return nil, errors.New("geocode cache: redis client is nil")
	}

	uniq := uniqueAddresses(addresses)
	if len(uniq) == 0 {
		return map[string]domain.GeocodeEntry{}, nil
	}

	keys := make([]string, 0, len(uniq))
	for _, a := range uniq {
		keys = append(keys, redisKey(a))
	}

	vals, err := s.Client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get geocode cache: mget: %w", err)
	}

	out := make(map[string]domain.GeocodeEntry, len(uniq))
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		e, ok := decodeRedisEntry(uniq[i], raw)
		if ok {
			out[uniq[i]] = e
		}
	}

	return out, nil
}

// Fetch the entry for one address; ok is false on a miss.
func (s *RedisGeocodeCache) Get(ctx context.Context, address string) (domain.GeocodeEntry, bool, error) {
	if s.Client == nil {
		return domain.GeocodeEntry{}, false, errors.New("geocode cache: redis client is nil")
	}

	raw, err := s.Client.Get(ctx, redisKey(address)).Result()
	if errors.Is(err, redis.Nil) {
		return domain.GeocodeEntry{}, false, nil
	}
	if err != nil {
		return domain.GeocodeEntry{}, false, fmt.Errorf("get geocode cache address=%q: %w", address, err)
	}

	e, ok := decodeRedisEntry(address, raw)
	return e, ok, nil
}

// Insert or refresh the entry for entry.Address.
func (s *RedisGeocodeCache) Upsert(ctx context.Context, entry domain.GeocodeEntry) error {
	if s.Client == nil {
		return errors.New("geocode cache: redis client is nil")
	}

	if strings.TrimSpace(entry.Address) == "" {
		return errors.New("insert geocode cache: empty address key")
	}

	lat, lon := fromCoords(entry.Coords)
	b, err := json.Marshal(redisEntry{Lat: lat, Lon: lon, UpdatedAt: entry.UpdatedAt.UTC()})
	if err != nil {
		return fmt.Errorf("insert geocode cache address=%q: encode: %w", entry.Address, err)
	}

	if err := s.Client.Set(ctx, redisKey(entry.Address), b, s.TTL).Err(); err != nil {
		return fmt.Errorf("insert geocode cache address=%q: %w", entry.Address, err)
	}

	return nil
}

// A corrupt value reads as a miss so the address gets geocoded again.
func decodeRedisEntry(address, raw string) (domain.GeocodeEntry, bool) {
	var e redisEntry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		zap.L().Warn("geocode cache: dropping undecodable redis value",
			zap.String("address", address),
			zap.Error(err),
		)
		return domain.GeocodeEntry{}, false
	}
	return domain.GeocodeEntry{
		Address:   address,
		Coords:    toCoords(e.Lat, e.Lon),
		UpdatedAt: e.UpdatedAt,
	}, true
}
