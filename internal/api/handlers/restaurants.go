package handlers

import (
	"net/http"

	"foodcart-routing-service/internal/api/dto"
	"foodcart-routing-service/internal/domain"
	"foodcart-routing-service/internal/ports"
	"foodcart-routing-service/internal/services"
)

// RestaurantHandler exposes the roster and the product availability matrix.
type RestaurantHandler struct {
	Restaurants ports.RestaurantRepository
	Products    ports.ProductRepository
}

func (h *RestaurantHandler) List(w http.ResponseWriter, r *http.Request) {
	restaurants, err := h.Restaurants.ListRestaurants(r.Context())
	if err != nil {
		internalError(w, r, "list restaurants", err)
		return
	}

	res := dto.ListRestaurantsResponse{Restaurants: toRestaurantResponses(restaurants)}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *RestaurantHandler) ProductAvailability(w http.ResponseWriter, r *http.Request) {
	m, err := services.ProductAvailabilityView(r.Context(), h.Products, h.Restaurants)
	if err != nil {
		internalError(w, r, "product availability", err)
		return
	}

	res := dto.ProductAvailabilityResponse{
		Restaurants: toRestaurantResponses(m.Restaurants),
		Products:    make([]dto.ProductAvailabilityRow, 0, len(m.Rows)),
	}
	for _, row := range m.Rows {
		res.Products = append(res.Products, dto.ProductAvailabilityRow{
			ProductID:    row.Product.ID,
			Name:         row.Product.Name,
			Price:        row.Product.Price.StringFixed(2),
			Availability: row.Available,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

func toRestaurantResponses(restaurants []domain.Restaurant) []dto.RestaurantResponse {
	out := make([]dto.RestaurantResponse, 0, len(restaurants))
	for _, r := range restaurants {
		out = append(out, dto.RestaurantResponse{
			ID:           r.ID,
			Name:         r.Name,
			Address:      r.Address,
			ContactPhone: r.ContactPhone,
		})
	}
	return out
}
