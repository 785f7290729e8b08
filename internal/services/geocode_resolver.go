package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"foodcart-routing-service/internal/domain"
	"foodcart-routing-service/internal/platform/metrics"
	"foodcart-routing-service/internal/platform/obs"
	"foodcart-routing-service/internal/ports"
)

const (
	DefaultStaleAfter         = 3 * 24 * time.Hour
	DefaultGeocodeConcurrency = 5
)

// GeocodeResolver turns addresses into coordinates through a persistent
// cache, calling the geocoder only for missing or stale entries.
type GeocodeResolver struct {
	cache       ports.GeocodeCache
	geocoder    ports.Geocoder
	staleAfter  time.Duration
	concurrency int
	now         func() time.Time
	group       singleflight.Group
}

type ResolverOption func(*GeocodeResolver)

// WithStaleAfter sets the age at which a cached entry is refreshed.
func WithStaleAfter(d time.Duration) ResolverOption {
	return func(r *GeocodeResolver) {
		if d > 0 {
			r.staleAfter = d
		}
	}
}

// WithConcurrency bounds parallel geocoder calls in ResolveMany.
func WithConcurrency(n int) ResolverOption {
	return func(r *GeocodeResolver) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) ResolverOption {
	return func(r *GeocodeResolver) { r.now = now }
}

func NewGeocodeResolver(cache ports.GeocodeCache, geocoder ports.Geocoder, opts ...ResolverOption) *GeocodeResolver {
	r := &GeocodeResolver{
		cache:       cache,
		geocoder:    geocoder,
		staleAfter:  DefaultStaleAfter,
		concurrency: DefaultGeocodeConcurrency,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns coordinates for one address, or nil when it is unresolved.
// A non-nil error means the cache could not be read or ctx ended first.
//
// Concurrent callers for the same address share one lookup. The lookup is not
// cancelled with the caller that started it; the geocoder timeout bounds it.
func (r *GeocodeResolver) Resolve(ctx context.Context, address string) (*domain.Coordinates, error) {
	key := domain.NormalizeAddress(address)
	if key == "" {
		return nil, nil
	}

	shared := context.WithoutCancel(ctx)
	ch := r.group.DoChan(key, func() (any, error) {
		return r.resolve(shared, key)
	})

	select {
	case <-ctx.Done():
		return nil, eris.Wrapf(ctx.Err(), "geocode resolver: resolve %q", key)
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.Coordinates), nil
	}
}

// Fresh returns the cached entries younger than the staleness window.
// It never calls the geocoder.
func (r *GeocodeResolver) Fresh(ctx context.Context, addresses []string) (map[string]domain.GeocodeEntry, error) {
	keys := normalizedKeys(addresses)
	if len(keys) == 0 {
		return map[string]domain.GeocodeEntry{}, nil
	}

	entries, err := r.cache.GetMany(ctx, keys)
	if err != nil {
		return nil, eris.Wrap(err, "geocode resolver: read cache")
	}

	now := r.now()
	fresh := make(map[string]domain.GeocodeEntry, len(entries))
	for k, e := range entries {
		if e.Fresh(now, r.staleAfter) {
			fresh[k] = e
		}
	}
	return fresh, nil
}

// ResolveMany resolves every distinct address once. The result is keyed by
// normalized address; unresolved addresses map to nil. Per-address failures
// are logged and leave that address unresolved.
func (r *GeocodeResolver) ResolveMany(ctx context.Context, addresses []string) (_ map[string]*domain.Coordinates, err error) {
	defer obs.Time(ctx, "geocode.ResolveMany")(&err)

	keys := normalizedKeys(addresses)
	out := make(map[string]*domain.Coordinates, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	fresh, err := r.Fresh(ctx, keys)
	if err != nil {
		zap.L().Warn("geocode resolver: bulk cache read failed, resolving one by one", zap.Error(err))
		fresh = map[string]domain.GeocodeEntry{}
	}

	pending := make([]string, 0, len(keys))
	for _, k := range keys {
		if e, ok := fresh[k]; ok {
			metrics.GeocodeCacheLookups.WithLabelValues("hit").Inc()
			out[k] = e.Coords
			continue
		}
		pending = append(pending, k)
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(r.concurrency)

	for _, k := range pending {
		g.Go(func() error {
			coords, err := r.Resolve(ctx, k)
			if err != nil {
				zap.L().Warn("geocode resolver: address left unresolved",
					zap.String("req_id", obs.RequestID(ctx)),
					zap.String("address", k),
					zap.Error(err),
				)
				coords = nil
			}
			mu.Lock()
			out[k] = coords
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return out, nil
}

func (r *GeocodeResolver) resolve(ctx context.Context, key string) (*domain.Coordinates, error) {
	prev, ok, err := r.cache.Get(ctx, key)
	if err != nil {
		return nil, eris.Wrapf(err, "geocode resolver: read cache for %q", key)
	}

	if ok && prev.Fresh(r.now(), r.staleAfter) {
		metrics.GeocodeCacheLookups.WithLabelValues("hit").Inc()
		return prev.Coords, nil
	}
	if ok {
		metrics.GeocodeCacheLookups.WithLabelValues("stale").Inc()
	} else {
		metrics.GeocodeCacheLookups.WithLabelValues("miss").Inc()
	}

	coords, err := r.geocoder.Geocode(ctx, key)
	switch {
	case err == nil:
		r.store(ctx, key, &coords)
		return &coords, nil

	case errors.Is(err, ports.ErrNotFound):
		r.store(ctx, key, nil)
		return nil, nil

	default:
		// Transient: keep whatever the cache already had.
		zap.L().Warn("geocode resolver: upstream failure",
			zap.String("address", key),
			zap.Bool("has_previous", ok),
			zap.Error(err),
		)
		if ok {
			return prev.Coords, nil
		}
		return nil, nil
	}
}

// store records a geocoder answer. Write failures are logged only; the
// caller keeps using the answer.
func (r *GeocodeResolver) store(ctx context.Context, key string, coords *domain.Coordinates) {
	err := r.cache.Upsert(ctx, domain.GeocodeEntry{
		Address:   key,
		Coords:    coords,
		UpdatedAt: r.now(),
	})
	if err != nil {
		zap.L().Warn("geocode resolver: cache write failed",
			zap.String("req_id", obs.RequestID(ctx)),
			zap.String("address", key),
			zap.Error(err),
		)
	}
}

// normalizedKeys drops blanks and duplicates, preserving first-seen order.
func normalizedKeys(addresses []string) []string {
	seen := make(map[string]struct{}, len(addresses))
	keys := make([]string, 0, len(addresses))
	for _, a := range addresses {
		k := domain.NormalizeAddress(a)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}
