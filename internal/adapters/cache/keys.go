package cache

import (
	"strings"

	"foodcart-routing-service/internal/domain"
)

// uniqueAddresses drops blanks and duplicates, preserving first-seen order.
func uniqueAddresses(addresses []string) []string {
	seen := make(map[string]struct{}, len(addresses))
	uniq := make([]string, 0, len(addresses))
	for _, a := range addresses {
		if strings.TrimSpace(a) == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		uniq = append(uniq, a)
	}
	return uniq
}

func toCoords(lat, lon *float64) *domain.Coordinates {
	if lat == nil || lon == nil {
		return nil
	}
	return &domain.Coordinates{Lat: *lat, Lon: *lon}
}

// fromCoords returns nil pointers for unresolved coordinates so they are stored as NULL.
func fromCoords(c *domain.Coordinates) (lat, lon *float64) {
	if c == nil {
		return nil, nil
	}
	la, lo := c.Lat, c.Lon
	return &la, &lo
}
