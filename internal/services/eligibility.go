package services

import "foodcart-routing-service/internal/domain"

// EligibleRestaurants returns, in roster order, the restaurants that have every
// product of the order available. An order without lines fits every restaurant.
func EligibleRestaurants(lines []domain.OrderLine, restaurants []domain.Restaurant, idx AvailabilityIndex) []domain.Restaurant {
	needed := make([]int64, 0, len(lines))
	seen := make(map[int64]struct{}, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.ProductID]; ok {
			continue
		}
		seen[l.ProductID] = struct{}{}
		needed = append(needed, l.ProductID)
	}

	eligible := make([]domain.Restaurant, 0, len(restaurants))
	for _, r := range restaurants {
		if offersAll(idx, r.ID, needed) {
			eligible = append(eligible, r)
		}
	}
	return eligible
}

func offersAll(idx AvailabilityIndex, restaurantID int64, products []int64) bool {
	for _, p := range products {
		if !idx.Offers(restaurantID, p) {
			return false
		}
	}
	return true
}
