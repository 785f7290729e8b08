package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"foodcart-routing-service/internal/domain"
)

const (
	productA = int64(1)
	productB = int64(2)
	productC = int64(3)
)

func lines(products ...int64) []domain.OrderLine {
	out := make([]domain.OrderLine, 0, len(products))
	for _, p := range products {
		out = append(out, domain.OrderLine{ProductID: p, Quantity: 1})
	}
	return out
}

func names(rs []domain.Restaurant) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Name)
	}
	return out
}

func TestEligibleRestaurantsRequiresEveryProduct(t *testing.T) {
	roster := []domain.Restaurant{{ID: 10, Name: "AB"}}
	idx := BuildAvailabilityIndex(roster, []domain.MenuItem{
		{RestaurantID: 10, ProductID: productA, Available: true},
		{RestaurantID: 10, ProductID: productB, Available: true},
	})

	assert.Equal(t, []string{"AB"}, names(EligibleRestaurants(lines(productA), roster, idx)))
	assert.Empty(t, EligibleRestaurants(lines(productA, productC), roster, idx))
}

func TestEligibleRestaurantsPizzaAndCola(t *testing.T) {
	const pizza, cola = int64(100), int64(200)
	roster := []domain.Restaurant{{ID: 1, Name: "X"}, {ID: 2, Name: "Y"}}
	idx := BuildAvailabilityIndex(roster, []domain.MenuItem{
		{RestaurantID: 1, ProductID: pizza, Available: true},
		{RestaurantID: 1, ProductID: cola, Available: true},
		{RestaurantID: 2, ProductID: pizza, Available: true},
		{RestaurantID: 2, ProductID: cola, Available: false},
	})

	got := EligibleRestaurants(lines(pizza, cola), roster, idx)
	assert.Equal(t, []string{"X"}, names(got))
}

func TestEligibleRestaurantsNoLinesMatchesAll(t *testing.T) {
	roster := []domain.Restaurant{{ID: 2, Name: "B"}, {ID: 1, Name: "A"}}
	idx := BuildAvailabilityIndex(roster, nil)

	assert.Equal(t, []string{"B", "A"}, names(EligibleRestaurants(nil, roster, idx)))
}

func TestEligibleRestaurantsKeepsRosterOrderAndIgnoresRepeats(t *testing.T) {
	roster := []domain.Restaurant{{ID: 3, Name: "C"}, {ID: 1, Name: "A"}, {ID: 2, Name: "B"}}
	menu := []domain.MenuItem{}
	for _, r := range roster {
		menu = append(menu, domain.MenuItem{RestaurantID: r.ID, ProductID: productA, Available: true})
	}
	idx := BuildAvailabilityIndex(roster, menu)

	got := EligibleRestaurants(lines(productA, productA, productA), roster, idx)
	assert.Equal(t, []string{"C", "A", "B"}, names(got))
}
