package ports

import "delivery-simulation/internal/domain"

// Contract for travel time between two nodes, in ticks.
type DistanceProvider interface {
	// Return the duration of the shortest path, or math.MaxInt64 when "to" is unreachable.
	Distance(from, to *domain.Node) int64
}
