package ports

import (
	"context"

	"foodcart-routing-service/internal/domain"
)

// Port: persistent address -> coordinates store.
// Address keys are expected to be normalized by the caller.
type GeocodeCache interface {
	// Return entries stored for the given addresses, regardless of age.
	GetMany(ctx context.Context, addresses []string) (map[string]domain.GeocodeEntry, error)
	// Return the entry for one address; ok is false when none exists.
	Get(ctx context.Context, address string) (entry domain.GeocodeEntry, ok bool, err error)
	// Insert or replace the entry keyed by entry.Address.
	Upsert(ctx context.Context, entry domain.GeocodeEntry) error
}
