package ports

import (
	"context"
	"errors"
	"fmt"

	"foodcart-routing-service/internal/domain"
)

// ErrNotFound reports that the geocoding service has no match for an address.
// It is a definitive answer and may be cached.
var ErrNotFound = errors.New("geocode: address not found")

// UpstreamError reports that the geocoding service could not answer
// (network failure, timeout, non-success status, malformed body).
// It is transient and must not be cached.
type UpstreamError struct {
	Address string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("geocode upstream failure for %q: %v", e.Address, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Contract for resolving a single address through an external service.
type Geocoder interface {
	// Return coordinates of the first candidate, ErrNotFound, or an *UpstreamError.
	Geocode(ctx context.Context, address string) (domain.Coordinates, error)
}
