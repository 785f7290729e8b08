package services

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"foodcart-routing-service/internal/domain"
	"foodcart-routing-service/internal/platform/metrics"
	"foodcart-routing-service/internal/platform/obs"
	"foodcart-routing-service/internal/ports"
)

// AddressResolver resolves a batch of addresses, keyed by normalized address.
// *GeocodeResolver implements it.
type AddressResolver interface {
	ResolveMany(ctx context.Context, addresses []string) (map[string]*domain.Coordinates, error)
}

// RoutingPass computes, for every active order, the restaurants able to
// fulfil it ranked by distance to the delivery address.
type RoutingPass struct {
	resolver AddressResolver
}

func NewRoutingPass(resolver AddressResolver) *RoutingPass {
	return &RoutingPass{resolver: resolver}
}

// Run evaluates orders against the restaurant roster. Restaurants are
// considered in the given order, which also breaks distance ties.
// A failure to resolve any single address never aborts the pass.
func (p *RoutingPass) Run(
	ctx context.Context,
	orders []*domain.Order,
	restaurants []domain.Restaurant,
	menu []domain.MenuItem,
) (_ *domain.RoutingReport, err error) {
	defer obs.Time(ctx, "routing.Run")(&err)
	start := time.Now()
	defer func() {
		metrics.RoutingPassDuration.Observe(time.Since(start).Seconds())
	}()

	report := domain.NewRoutingReport(len(orders))

	unassigned := 0
	for _, o := range orders {
		if !o.Assigned() {
			unassigned++
		}
	}

	var coords map[string]*domain.Coordinates
	if unassigned > 0 {
		addresses := make([]string, 0, unassigned+len(restaurants))
		for _, o := range orders {
			if !o.Assigned() {
				addresses = append(addresses, o.Address)
			}
		}
		for _, r := range restaurants {
			addresses = append(addresses, r.Address)
		}

		coords, err = p.resolver.ResolveMany(ctx, addresses)
		if err != nil {
			return nil, eris.Wrap(err, "routing pass: resolve addresses")
		}
	}

	restaurantCoords := make(map[int64]*domain.Coordinates, len(restaurants))
	for _, r := range restaurants {
		restaurantCoords[r.ID] = coords[domain.NormalizeAddress(r.Address)]
	}

	idx := BuildAvailabilityIndex(restaurants, menu)

	for _, o := range orders {
		res := routeOrder(o, restaurants, idx, coords, restaurantCoords)
		metrics.RoutingResults.WithLabelValues(string(res.Status)).Inc()
		report.Add(res)
	}

	zap.L().Info("routing pass done",
		zap.String("req_id", obs.RequestID(ctx)),
		zap.Int("orders", len(orders)),
		zap.Int("unassigned", unassigned),
		zap.Int("restaurants", len(restaurants)),
		zap.Int64("dur_ms", time.Since(start).Milliseconds()),
	)

	return report, nil
}

func routeOrder(
	o *domain.Order,
	restaurants []domain.Restaurant,
	idx AvailabilityIndex,
	coords map[string]*domain.Coordinates,
	restaurantCoords map[int64]*domain.Coordinates,
) domain.RoutingResult {
	if o.Assigned() {
		return domain.RoutingResult{OrderID: o.ID, Status: domain.RoutingAssigned}
	}

	origin := coords[domain.NormalizeAddress(o.Address)]
	if origin == nil {
		return domain.RoutingResult{OrderID: o.ID, Status: domain.RoutingGeoFailed}
	}

	eligible := EligibleRestaurants(o.Lines, restaurants, idx)
	return domain.RoutingResult{
		OrderID:    o.ID,
		Status:     domain.RoutingRanked,
		Candidates: RankByDistance(*origin, eligible, restaurantCoords),
	}
}

// RoutedOrders is the manager's order view: active orders with their routing results.
type RoutedOrders struct {
	Orders      []*domain.Order
	Restaurants []domain.Restaurant
	Report      *domain.RoutingReport
}

// RouteActiveOrders loads active orders and the restaurant roster, then runs one pass.
func RouteActiveOrders(
	ctx context.Context,
	orderRepo ports.OrderRepository,
	restaurantRepo ports.RestaurantRepository,
	pass *RoutingPass,
) (*RoutedOrders, error) {
	var (
		orders      []*domain.Order
		restaurants []domain.Restaurant
		menu        []domain.MenuItem
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = orderRepo.ListActiveOrders(gctx)
		return eris.Wrap(err, "route active orders: list orders")
	})
	g.Go(func() error {
		var err error
		restaurants, err = restaurantRepo.ListRestaurants(gctx)
		return eris.Wrap(err, "route active orders: list restaurants")
	})
	g.Go(func() error {
		var err error
		menu, err = restaurantRepo.ListMenuItems(gctx)
		return eris.Wrap(err, "route active orders: list menu items")
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report, err := pass.Run(ctx, orders, restaurants, menu)
	if err != nil {
		return nil, err
	}

	return &RoutedOrders{Orders: orders, Restaurants: restaurants, Report: report}, nil
}

// ProductAvailabilityView loads the catalogue and menus and builds the availability matrix.
func ProductAvailabilityView(
	ctx context.Context,
	productRepo ports.ProductRepository,
	restaurantRepo ports.RestaurantRepository,
) (AvailabilityMatrix, error) {
	products, err := productRepo.ListProducts(ctx)
	if err != nil {
		return AvailabilityMatrix{}, eris.Wrap(err, "product availability: list products")
	}
	restaurants, err := restaurantRepo.ListRestaurants(ctx)
	if err != nil {
		return AvailabilityMatrix{}, eris.Wrap(err, "product availability: list restaurants")
	}
	menu, err := restaurantRepo.ListMenuItems(ctx)
	if err != nil {
		return AvailabilityMatrix{}, eris.Wrap(err, "product availability: list menu items")
	}

	return BuildAvailabilityMatrix(products, restaurants, menu), nil
}
