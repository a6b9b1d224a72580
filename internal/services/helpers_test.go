package services

import (
	"delivery-simulation/internal/adapters/pathing"
	"delivery-simulation/internal/domain"
	"delivery-simulation/internal/simulation"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var (
	diner = domain.Location{X: 0, Y: 0}
	hills = domain.Location{X: 1, Y: 0}
	grill = domain.Location{X: 3, Y: 3}
)

// testRegion is restaurant Diner(0,0) one tick away from neighborhood
// Hills(1,0), plus a second restaurant Grill(3,3) joined to Hills.
func testRegion(t *testing.T) *domain.Region {
	t.Helper()
	r, err := domain.NewBuilder().
		AddRestaurant("Diner", diner, "pizza").
		AddNeighborhood("Hills", hills).
		AddRestaurant("Grill", grill, "steak").
		AddEdge("Main", diner, hills, 1).
		AddEdge("Long", hills, grill, 3).
		Build()
	require.NoError(t, err)
	return r
}

func newDelivery(t *testing.T, r *domain.Region) *BasicDeliveryService {
	t.Helper()
	paths, err := pathing.NewDijkstraPathCalculator(r)
	require.NoError(t, err)
	m, err := simulation.NewManager(r, paths, zerolog.Nop())
	require.NoError(t, err)
	s, err := NewBasicDeliveryService(m, zerolog.Nop())
	require.NoError(t, err)
	return s
}

func order(t *testing.T, r *domain.Region, id int, from, to domain.Location, start int64, weight float64) *domain.ConfirmedOrder {
	t.Helper()
	restaurant, ok := r.Node(from)
	require.True(t, ok)
	o, err := domain.NewConfirmedOrder(id, to, restaurant, domain.TickInterval{Start: start, End: start + 20}, restaurant.AvailableFood(), weight)
	require.NoError(t, err)
	return o
}

func types(events []domain.Event) []domain.EventType {
	out := make([]domain.EventType, 0, len(events))
	for _, e := range events {
		out = append(out, e.Type)
	}
	return out
}

func orderIDs(orders []*domain.ConfirmedOrder) []int {
	out := make([]int, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.ID())
	}
	return out
}
