package ports

import (
	"context"

	"foodcart-routing-service/internal/domain"
)

// Port: access to orders.
type OrderRepository interface {
	// Retrieve orders in an active status with their lines, ordered by status then id.
	ListActiveOrders(ctx context.Context) ([]*domain.Order, error)
	// Persist a new order with its lines atomically and set o.ID.
	CreateOrder(ctx context.Context, o *domain.Order) error
}

// Port: read access to restaurants and their menus.
type RestaurantRepository interface {
	// Retrieve all restaurants ordered by name.
	ListRestaurants(ctx context.Context) ([]domain.Restaurant, error)
	// Retrieve every explicit (restaurant, product) menu entry.
	ListMenuItems(ctx context.Context) ([]domain.MenuItem, error)
}

// Port: read access to the product catalogue.
type ProductRepository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
}
