package repositories

import (
	"cmp"
	"slices"

	"foodcart-routing-service/internal/domain"
)

// sortByStatus orders by lifecycle stage, then by id.
func sortByStatus(orders []*domain.Order) {
	slices.SortStableFunc(orders, func(a, b *domain.Order) int {
		if c := cmp.Compare(a.Status.Rank(), b.Status.Rank()); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
