package simulation

import (
	"delivery-simulation/internal/adapters/pathing"
	"delivery-simulation/internal/domain"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var (
	locA = domain.Location{X: 0, Y: 0}
	locN = domain.Location{X: 1, Y: 0}
	locB = domain.Location{X: 2, Y: 0}
)

// twoNodeRegion is restaurant A(0,0) joined to neighborhood B(1,0).
func twoNodeRegion(t *testing.T, duration int64) *domain.Region {
	t.Helper()
	b := domain.Location{X: 1, Y: 0}
	r, err := domain.NewBuilder().
		AddRestaurant("A", locA, "pizza").
		AddNeighborhood("B", b).
		AddEdge("A-B", locA, b, duration).
		Build()
	require.NoError(t, err)
	return r
}

// lineRegion is restaurant A(0,0) - plain N(1,0) - neighborhood B(2,0) plus an
// isolated plain node D(5,5).
func lineRegion(t *testing.T) *domain.Region {
	t.Helper()
	r, err := domain.NewBuilder().
		AddRestaurant("A", locA, "pizza", "soup").
		AddNode("N", locN).
		AddNeighborhood("B", locB).
		AddNode("D", domain.Location{X: 5, Y: 5}).
		AddEdge("A-N", locA, locN, 2).
		AddEdge("N-B", locN, locB, 2).
		Build()
	require.NoError(t, err)
	return r
}

func newManager(t *testing.T, r *domain.Region) *Manager {
	t.Helper()
	paths, err := pathing.NewDijkstraPathCalculator(r)
	require.NoError(t, err)
	m, err := NewManager(r, paths, zerolog.Nop())
	require.NoError(t, err)
	return m
}

func node(t *testing.T, r *domain.Region, loc domain.Location) *domain.Node {
	t.Helper()
	n, ok := r.Node(loc)
	require.True(t, ok, "no node at %s", loc)
	return n
}

func tick(t *testing.T, m *Manager, at int64) []domain.Event {
	t.Helper()
	events, err := m.Tick(at)
	require.NoError(t, err)
	return events
}

func newOrder(t *testing.T, id int, to domain.Location, from *domain.Node, start int64, weight float64) *domain.ConfirmedOrder {
	t.Helper()
	o, err := domain.NewConfirmedOrder(id, to, from, domain.TickInterval{Start: start, End: start + 10}, []string{"pizza"}, weight)
	require.NoError(t, err)
	return o
}

func allRecords(m *Manager) []*Occupied {
	return append(m.OccupiedNodes(), m.OccupiedEdges()...)
}
