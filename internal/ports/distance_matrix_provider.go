package ports

import "delivery-simulation/internal/domain"

// Optional extension of DistanceProvider that supports one-to-many lookups.
type DistanceMatrixProvider interface {
	DistanceProvider
	// Return durations from one node to many, keyed by location. Unreachable
	// nodes map to math.MaxInt64.
	Distances(from *domain.Node, to []*domain.Node) map[domain.Location]int64
}
