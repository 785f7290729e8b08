package dto

type RestaurantResponse struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Address      string `json:"address"`
	ContactPhone string `json:"contact_phone"`
}

type ListRestaurantsResponse struct {
	Restaurants []RestaurantResponse `json:"restaurants"`
}

type ProductAvailabilityRow struct {
	ProductID    int64  `json:"product_id"`
	Name         string `json:"name"`
	Price        string `json:"price"`
	Availability []bool `json:"availability"`
}

// ProductAvailabilityResponse: Availability[i] of each product refers to Restaurants[i].
type ProductAvailabilityResponse struct {
	Restaurants []RestaurantResponse     `json:"restaurants"`
	Products    []ProductAvailabilityRow `json:"products"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
