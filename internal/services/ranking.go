package services

import (
	"cmp"
	"math"
	"slices"

	"github.com/jftuga/geodist"

	"foodcart-routing-service/internal/domain"
)

// Distance returns the geodesic distance in kilometres on the WGS-84 ellipsoid.
// Vincenty can fail to converge for near-antipodal points; Haversine covers that case.
func Distance(a, b domain.Coordinates) float64 {
	p1 := geodist.Coord{Lat: a.Lat, Lon: a.Lon}
	p2 := geodist.Coord{Lat: b.Lat, Lon: b.Lon}

	_, km, err := geodist.VincentyDistance(p1, p2)
	if err != nil {
		_, km = geodist.HaversineDistance(p1, p2)
	}
	return km
}

// RoundKm rounds a distance to two decimals, the precision shown to managers.
func RoundKm(km float64) float64 {
	return math.Round(km*100) / 100
}

// RankByDistance orders candidates by distance from origin, nearest first.
// Candidates without resolved coordinates are dropped. Distances equal after
// rounding keep the input order.
func RankByDistance(origin domain.Coordinates, candidates []domain.Restaurant, coords map[int64]*domain.Coordinates) []domain.Candidate {
	ranked := make([]domain.Candidate, 0, len(candidates))
	for _, r := range candidates {
		c := coords[r.ID]
		if c == nil {
			continue
		}
		ranked = append(ranked, domain.Candidate{
			RestaurantID:   r.ID,
			RestaurantName: r.Name,
			DistanceKm:     Distance(origin, *c),
		})
	}

	slices.SortStableFunc(ranked, func(a, b domain.Candidate) int {
		return cmp.Compare(RoundKm(a.DistanceKm), RoundKm(b.DistanceKm))
	})
	return ranked
}
