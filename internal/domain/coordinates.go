package domain

import (
	"strings"
	"time"
)

// Immutable geographic coordinates (latitude, longitude).
// A nil *Coordinates means the address could not be resolved.
type Coordinates struct {
	Lat float64
	Lon float64
}

// GeocodeEntry is a cached geocoding outcome for one address.
// Coords is nil when the last lookup found no match.
type GeocodeEntry struct {
	Address   string
	Coords    *Coordinates
	UpdatedAt time.Time
}

// Fresh reports whether the entry is younger than maxAge at now.
func (e GeocodeEntry) Fresh(now time.Time, maxAge time.Duration) bool {
	return now.Sub(e.UpdatedAt) < maxAge
}

// NormalizeAddress collapses runs of whitespace and trims the ends.
// The result is the geocode cache key.
func NormalizeAddress(address string) string {
	return strings.Join(strings.Fields(address), " ")
}
