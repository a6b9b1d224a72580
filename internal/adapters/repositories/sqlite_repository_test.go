package repositories

import (
	"context"
	"delivery-simulation/internal/domain"
	"delivery-simulation/internal/platform/db"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSeed() Seed {
	return Seed{
		Nodes: []NodeSeed{
			{Name: "Diner", Location: LocationSeed{X: 0, Y: 0}, Kind: "restaurant", Food: []string{"burger", "fries"}},
			{Name: "Cross", Location: LocationSeed{X: 1, Y: 0}, Kind: "node"},
			{Name: "Hills", Location: LocationSeed{X: 2, Y: 0}, Kind: "neighborhood"},
		},
		Edges: []EdgeSeed{
			{Name: "Main", A: LocationSeed{X: 1, Y: 0}, B: LocationSeed{X: 0, Y: 0}, Duration: 2},
			{Name: "Second", A: LocationSeed{X: 1, Y: 0}, B: LocationSeed{X: 2, Y: 0}, Duration: 1},
		},
		Orders: []OrderSeed{
			{OrderID: 2, ReceivedAt: 3, Restaurant: LocationSeed{X: 0, Y: 0}, Destination: LocationSeed{X: 2, Y: 0}, WindowStart: 3, WindowEnd: 9, Foods: []string{"fries"}, Weight: 1},
			{OrderID: 1, ReceivedAt: 0, Restaurant: LocationSeed{X: 0, Y: 0}, Destination: LocationSeed{X: 2, Y: 0}, WindowStart: 0, WindowEnd: 5, Foods: []string{"burger"}, Weight: 2.5},
		},
	}
}

func openSeeded(t *testing.T, seed Seed) *SqliteRegionRepository {
	t.Helper()
	conn, err := db.OpenSqlite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, InitSchema(conn))
	require.NoError(t, SeedRegion(conn, seed))
	return NewSqliteRegionRepository(conn)
}

func TestSqliteRegionRepositoryLoadRegion(t *testing.T) {
	repo := openSeeded(t, testSeed())

	got, err := repo.LoadRegion(context.Background())
	require.NoError(t, err)

	want, err := domain.NewBuilder().
		AddRestaurant("Diner", domain.Location{X: 0, Y: 0}, "burger", "fries").
		AddNode("Cross", domain.Location{X: 1, Y: 0}).
		AddNeighborhood("Hills", domain.Location{X: 2, Y: 0}).
		AddEdge("Main", domain.Location{X: 0, Y: 0}, domain.Location{X: 1, Y: 0}, 2).
		AddEdge("Second", domain.Location{X: 1, Y: 0}, domain.Location{X: 2, Y: 0}, 1).
		Build()
	require.NoError(t, err)

	assert.True(t, want.Equal(got))
	diner, ok := got.Node(domain.Location{X: 0, Y: 0})
	require.True(t, ok)
	assert.True(t, diner.IsRestaurant())
	assert.Equal(t, []string{"burger", "fries"}, diner.AvailableFood())
}

func TestSqliteRegionRepositoryRejectsDanglingEdge(t *testing.T) {
	seed := testSeed()
	seed.Edges = append(seed.Edges, EdgeSeed{Name: "Nowhere", A: LocationSeed{X: 2, Y: 0}, B: LocationSeed{X: 9, Y: 9}, Duration: 1})
	repo := openSeeded(t, seed)

	_, err := repo.LoadRegion(context.Background())
	assert.ErrorIs(t, err, domain.ErrMissingEndpoint)
}

func TestSqliteOrderRepositoryListOrders(t *testing.T) {
	regions := openSeeded(t, testSeed())
	region, err := regions.LoadRegion(context.Background())
	require.NoError(t, err)

	orders, err := NewSqliteOrderRepository(regions.DB).ListOrders(context.Background(), region)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	first := orders[0]
	assert.Equal(t, int64(0), first.ReceivedAt)
	assert.Equal(t, 1, first.Order.ID())
	assert.Equal(t, domain.Location{X: 2, Y: 0}, first.Order.Location())
	assert.Equal(t, "Diner", first.Order.Restaurant().Name())
	assert.Equal(t, domain.TickInterval{Start: 0, End: 5}, first.Order.DeliveryInterval())
	assert.Equal(t, []string{"burger"}, first.Order.Foods())
	assert.InDelta(t, 2.5, first.Order.Weight(), 1e-9)
	assert.Equal(t, 2, orders[1].Order.ID())
}

func TestSeedValidation(t *testing.T) {
	conn, err := db.OpenSqlite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, InitSchema(conn))

	bad := testSeed()
	bad.Nodes[1].Kind = "castle"
	assert.Error(t, SeedRegion(conn, bad))

	bad = testSeed()
	bad.Edges[0].Duration = 0
	assert.Error(t, SeedRegion(conn, bad))

	bad = testSeed()
	bad.Orders[0].OrderID = 0
	assert.Error(t, SeedRegion(conn, bad))
}

func TestSeedFromJSON(t *testing.T) {
	conn, err := db.OpenSqlite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, InitSchema(conn))

	path := filepath.Join(t.TempDir(), "region.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"nodes": [
			{"name": "Diner", "location": {"x": 0, "y": 0}, "kind": "restaurant", "food": ["soup"]},
			{"name": "Hills", "location": {"x": 0, "y": 1}, "kind": "neighborhood"}
		],
		"edges": [{"name": "Lane", "a": {"x": 0, "y": 0}, "b": {"x": 0, "y": 1}, "duration": 3}],
		"orders": []
	}`), 0o644))

	require.NoError(t, SeedFromJSON(conn, path))

	region, err := NewSqliteRegionRepository(conn).LoadRegion(context.Background())
	require.NoError(t, err)
	e, ok := region.Edge(domain.Location{X: 0, Y: 1}, domain.Location{X: 0, Y: 0})
	require.True(t, ok)
	assert.Equal(t, int64(3), e.Duration())

	assert.Error(t, SeedFromJSON(conn, filepath.Join(t.TempDir(), "missing.json")))
}
