package pathing

import (
	"delivery-simulation/internal/domain"
	"fmt"
)

type MockRoute struct {
	From, To domain.Location
	Hops     []domain.Location
}

// MockPathCalculator answers from a fixed table of routes and counts lookups.
type MockPathCalculator struct {
	region *domain.Region
	routes map[[2]domain.Location][]domain.Location
	Calls  int
}

func NewMockPathCalculator(region *domain.Region, routes []MockRoute) *MockPathCalculator {
	m := make(map[[2]domain.Location][]domain.Location, len(routes))
	for _, r := range routes {
		m[[2]domain.Location{r.From, r.To}] = r.Hops
	}
	return &MockPathCalculator{region: region, routes: m}
}

func (p *MockPathCalculator) GetPath(from, to *domain.Node) ([]*domain.Node, error) {
	p.Calls++
	hops, ok := p.routes[[2]domain.Location{from.Location(), to.Location()}]
	if !ok {
		return nil, fmt.Errorf("missing route %s -> %s", from.Location(), to.Location())
	}
	return resolve(p.region, hops)
}

// resolve maps hop locations back to the region's nodes.
func resolve(region *domain.Region, hops []domain.Location) ([]*domain.Node, error) {
	out := make([]*domain.Node, 0, len(hops))
	for _, loc := range hops {
		n, ok := region.Node(loc)
		if !ok {
			return nil, fmt.Errorf("resolve hop %s: %w", loc, domain.ErrMissingEndpoint)
		}
		out = append(out, n)
	}
	return out, nil
}
