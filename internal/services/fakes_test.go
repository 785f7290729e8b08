package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"foodcart-routing-service/internal/domain"
	"foodcart-routing-service/internal/ports"
)

// fakeGeocoder answers from a fixed table and counts calls per address.
// Addresses missing from both tables are reported as not found.
type fakeGeocoder struct {
	mu     sync.Mutex
	known  map[string]domain.Coordinates
	failed map[string]bool
	calls  map[string]int
}

func newFakeGeocoder(known map[string]domain.Coordinates) *fakeGeocoder {
	if known == nil {
		known = map[string]domain.Coordinates{}
	}
	return &fakeGeocoder{known: known, failed: map[string]bool{}, calls: map[string]int{}}
}

func (g *fakeGeocoder) Geocode(_ context.Context, address string) (domain.Coordinates, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls[address]++

	if g.failed[address] {
		return domain.Coordinates{}, &ports.UpstreamError{Address: address, Err: errors.New("status 503")}
	}
	if c, ok := g.known[address]; ok {
		return c, nil
	}
	return domain.Coordinates{}, ports.ErrNotFound
}

func (g *fakeGeocoder) fail(address string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failed[address] = true
}

func (g *fakeGeocoder) callsFor(address string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[address]
}

func (g *fakeGeocoder) totalCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, c := range g.calls {
		n += c
	}
	return n
}

// gatedGeocoder blocks every lookup until release is closed and fails like the
// real client when its context ends first.
type gatedGeocoder struct {
	answer  domain.Coordinates
	started chan struct{}
	release chan struct{}
	once    sync.Once
	calls   atomic.Int32
}

func newGatedGeocoder(answer domain.Coordinates) *gatedGeocoder {
	return &gatedGeocoder{answer: answer, started: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedGeocoder) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	g.calls.Add(1)
	g.once.Do(func() { close(g.started) })
	select {
	case <-ctx.Done():
		return domain.Coordinates{}, &ports.UpstreamError{Address: address, Err: ctx.Err()}
	case <-g.release:
		return g.answer, nil
	}
}

// fakeCache is an in-memory ports.GeocodeCache.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string]domain.GeocodeEntry
	writes  int
	readErr error
	bulkErr error
	putErr  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]domain.GeocodeEntry{}}
}

func (c *fakeCache) GetMany(_ context.Context, addresses []string) (map[string]domain.GeocodeEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bulkErr != nil {
		return nil, c.bulkErr
	}
	out := make(map[string]domain.GeocodeEntry)
	for _, a := range addresses {
		if e, ok := c.entries[a]; ok {
			out[a] = e
		}
	}
	return out, nil
}

func (c *fakeCache) Get(_ context.Context, address string) (domain.GeocodeEntry, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.readErr != nil {
		return domain.GeocodeEntry{}, false, c.readErr
	}
	e, ok := c.entries[address]
	return e, ok, nil
}

func (c *fakeCache) Upsert(_ context.Context, e domain.GeocodeEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.putErr != nil {
		return c.putErr
	}
	c.writes++
	c.entries[e.Address] = e
	return nil
}

func (c *fakeCache) put(address string, coords *domain.Coordinates, updated time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[address] = domain.GeocodeEntry{Address: address, Coords: coords, UpdatedAt: updated}
}

func (c *fakeCache) entry(address string) (domain.GeocodeEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[address]
	return e, ok
}

// clock is a settable time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeOrderRepo struct {
	orders    []*domain.Order
	err       error
	createErr error
	created   []domain.Order
}

func (r *fakeOrderRepo) ListActiveOrders(context.Context) ([]*domain.Order, error) {
	return r.orders, r.err
}

func (r *fakeOrderRepo) CreateOrder(_ context.Context, o *domain.Order) error {
	if r.createErr != nil {
		return r.createErr
	}
	o.ID = int64(100 + len(r.created))
	r.created = append(r.created, *o)
	return nil
}

type fakeRestaurantRepo struct {
	restaurants []domain.Restaurant
	menu        []domain.MenuItem
	err         error
}

func (r *fakeRestaurantRepo) ListRestaurants(context.Context) ([]domain.Restaurant, error) {
	return r.restaurants, r.err
}

func (r *fakeRestaurantRepo) ListMenuItems(context.Context) ([]domain.MenuItem, error) {
	return r.menu, r.err
}

type fakeProductRepo struct {
	products []domain.Product
	err      error
}

func (r *fakeProductRepo) ListProducts(context.Context) ([]domain.Product, error) {
	return r.products, r.err
}

func coordsPtr(lat, lon float64) *domain.Coordinates {
	return &domain.Coordinates{Lat: lat, Lon: lon}
}

func restaurantID(id int64) *int64 { return &id }
