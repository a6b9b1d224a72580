package ports

import "delivery-simulation/internal/domain"

// Contract for computing the route a vehicle follows between two nodes.
type PathCalculator interface {
	// Return the nodes to traverse from "from" to "to". Implementations may or may
	// not include "from" as the first element; callers only rely on the trailing hops.
	// The result must be deterministic for a given region.
	GetPath(from, to *domain.Node) ([]*domain.Node, error)
}
