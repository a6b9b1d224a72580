package services

import (
	"delivery-simulation/internal/domain"
	"delivery-simulation/internal/ports"
	"math"
	"slices"
)

// StopOrder decides the order a vehicle standing at "from" visits its
// delivery stops in. It returns a permutation of stops.
type StopOrder func(from *domain.Node, stops []*domain.Node) []*domain.Node

// InLoadOrder visits stops in the order their first order was loaded.
func InLoadOrder(_ *domain.Node, stops []*domain.Node) []*domain.Node {
	return slices.Clone(stops)
}

// NearestNeighborStops visits the remaining stop with the shortest travel
// time next.
//
// It minimizes the immediate leg only and makes no attempt at global route
// optimization. Equal durations go to the smaller location, so the order is
// deterministic; unreachable stops end up last.
func NearestNeighborStops(distances ports.DistanceMatrixProvider) StopOrder {
	return func(from *domain.Node, stops []*domain.Node) []*domain.Node {
		remaining := slices.Clone(stops)
		out := make([]*domain.Node, 0, len(stops))

		current := from
		for len(remaining) > 0 {
			legs := distances.Distances(current, remaining)

			best := -1
			minDuration := int64(math.MaxInt64)
			for i, n := range remaining {
				d := legs[n.Location()]
				if best == -1 || d < minDuration || (d == minDuration && n.Location().Less(remaining[best].Location())) {
					best = i
					minDuration = d
				}
			}

			current = remaining[best]
			out = append(out, current)
			remaining = slices.Delete(remaining, best, best+1)
		}
		return out
	}
}
