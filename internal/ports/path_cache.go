package ports

import (
	"context"
	"delivery-simulation/internal/domain"
)

// Optional persistent store for computed paths, keyed by endpoint locations.
type PathCache interface {
	// Return the cached hop locations and whether the pair was present.
	Get(ctx context.Context, from, to domain.Location) ([]domain.Location, bool, error)
	// Store the hop locations for a pair.
	Put(ctx context.Context, from, to domain.Location, hops []domain.Location) error
}
