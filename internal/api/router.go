package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"foodcart-routing-service/internal/api/handlers"
	"foodcart-routing-service/internal/platform/metrics"
	"foodcart-routing-service/internal/ports"
	"foodcart-routing-service/internal/services"
)

// Deps are the ports the HTTP handlers need.
type Deps struct {
	Orders      ports.OrderRepository
	Restaurants ports.RestaurantRepository
	Products    ports.ProductRepository
	Pass        *services.RoutingPass
	CORSOrigins []string
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: deps.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))

	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	orderHandler := &handlers.OrderHandler{
		Orders:      deps.Orders,
		Restaurants: deps.Restaurants,
		Pass:        deps.Pass,
		Intake:      services.NewOrderIntake(deps.Orders, deps.Products),
	}
	restaurantHandler := &handlers.RestaurantHandler{
		Restaurants: deps.Restaurants,
		Products:    deps.Products,
	}

	r.Get("/health", handlers.Health)
	r.Get("/orders", orderHandler.List)
	r.Post("/orders", orderHandler.Create)
	r.Get("/restaurants", restaurantHandler.List)
	r.Get("/products/availability", restaurantHandler.ProductAvailability)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	return r
}
