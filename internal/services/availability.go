package services

import (
	"cmp"
	"slices"

	"foodcart-routing-service/internal/domain"
)

// AvailabilityIndex maps a restaurant id to the set of products it can serve now.
type AvailabilityIndex map[int64]map[int64]struct{}

// BuildAvailabilityIndex keeps only explicit available entries.
// Restaurants without any such entry get an empty set.
func BuildAvailabilityIndex(restaurants []domain.Restaurant, menu []domain.MenuItem) AvailabilityIndex {
	idx := make(AvailabilityIndex, len(restaurants))
	for _, r := range restaurants {
		idx[r.ID] = make(map[int64]struct{})
	}
	for _, m := range menu {
		if !m.Available {
			continue
		}
		set, ok := idx[m.RestaurantID]
		if !ok {
			set = make(map[int64]struct{})
			idx[m.RestaurantID] = set
		}
		set[m.ProductID] = struct{}{}
	}
	return idx
}

// Offers reports whether the restaurant can currently serve the product.
func (idx AvailabilityIndex) Offers(restaurantID, productID int64) bool {
	_, ok := idx[restaurantID][productID]
	return ok
}

// ProductAvailability is one row of the manager's product view.
type ProductAvailability struct {
	Product   domain.Product
	Available []bool
}

// AvailabilityMatrix shows which restaurant can serve which product.
// Available[i] in each row refers to Restaurants[i].
type AvailabilityMatrix struct {
	Restaurants []domain.Restaurant
	Rows        []ProductAvailability
}

// BuildAvailabilityMatrix orders restaurants by name; a missing menu entry reads as unavailable.
func BuildAvailabilityMatrix(products []domain.Product, restaurants []domain.Restaurant, menu []domain.MenuItem) AvailabilityMatrix {
	roster := slices.Clone(restaurants)
	slices.SortStableFunc(roster, func(a, b domain.Restaurant) int {
		return cmp.Compare(a.Name, b.Name)
	})

	idx := BuildAvailabilityIndex(roster, menu)
	rows := make([]ProductAvailability, 0, len(products))
	for _, p := range products {
		row := ProductAvailability{Product: p, Available: make([]bool, len(roster))}
		for i, r := range roster {
			row.Available[i] = idx.Offers(r.ID, p.ID)
		}
		rows = append(rows, row)
	}

	return AvailabilityMatrix{Restaurants: roster, Rows: rows}
}
