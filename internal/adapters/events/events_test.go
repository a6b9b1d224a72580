package events

import (
	"context"
	"delivery-simulation/internal/adapters/repositories"
	"delivery-simulation/internal/domain"
	"delivery-simulation/internal/platform/db"
	"delivery-simulation/internal/ports"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvents(t *testing.T) []domain.Event {
	t.Helper()
	a := domain.Location{X: 0, Y: 0}
	b := domain.Location{X: 1, Y: 0}
	r, err := domain.NewBuilder().
		AddRestaurant("Diner", a, "pizza").
		AddNeighborhood("Hills", b).
		AddEdge("Main", a, b, 1).
		Build()
	require.NoError(t, err)

	diner, _ := r.Node(a)
	hills, _ := r.Node(b)
	road, _ := r.Edge(a, b)
	order, err := domain.NewConfirmedOrder(7, b, diner, domain.TickInterval{Start: 0, End: 5}, []string{"pizza"}, 1)
	require.NoError(t, err)

	return []domain.Event{
		{Tick: 3, Type: domain.EventOrderReceived, VehicleID: domain.NoVehicle, Node: diner, Order: order},
		{Tick: 3, Type: domain.EventArrivedAtEdge, VehicleID: 0, Edge: road, Previous: diner},
		{Tick: 3, Type: domain.EventArrivedAtNeighborhood, VehicleID: 1, Node: hills, Previous: road},
	}
}

func TestFlatten(t *testing.T) {
	records := Flatten("run-1", 3, sampleEvents(t))
	require.Len(t, records, 3)

	assert.Equal(t, "order_received", records[0].Type)
	assert.Equal(t, domain.NoVehicle, records[0].VehicleID)
	assert.Equal(t, "Diner", records[0].Component)
	require.NotNil(t, records[0].OrderID)
	assert.Equal(t, 7, *records[0].OrderID)
	assert.Empty(t, records[0].Previous)

	assert.Equal(t, "Main", records[1].Component)
	assert.Equal(t, "Diner", records[1].Previous)
	assert.Nil(t, records[1].OrderID)

	for i, r := range records {
		assert.Equal(t, i, r.Seq)
		assert.Equal(t, "run-1", r.RunID)
		assert.Equal(t, int64(3), r.Tick)
	}

	assert.Empty(t, Flatten("run-1", 4, nil))
}

func TestMemorySink(t *testing.T) {
	s := NewMemorySink()
	ctx := context.Background()
	evs := sampleEvents(t)

	require.NoError(t, s.Publish(ctx, "r", 3, evs))
	require.NoError(t, s.Publish(ctx, "r", 4, evs[:1]))

	assert.Len(t, s.Events(), 4)
	assert.Len(t, s.Records(0), 4)
	last := s.Records(1)
	require.Len(t, last, 1)
	assert.Equal(t, int64(4), last[0].Tick)
	assert.Len(t, s.Records(99), 4)

	s.Reset()
	assert.Empty(t, s.Events())
	assert.Empty(t, s.Records(0))
}

func TestLogEventSink(t *testing.T) {
	s := NewLogEventSink(zerolog.Nop())
	assert.NoError(t, s.Publish(context.Background(), "r", 3, sampleEvents(t)))
}

type countingSink struct {
	n   atomic.Int32
	err error
}

func (c *countingSink) Publish(context.Context, string, int64, []domain.Event) error {
	c.n.Add(1)
	return c.err
}

func TestFanoutSink(t *testing.T) {
	a, b := &countingSink{}, NewMemorySink()
	var sink ports.EventSink = NewFanoutSink(a, b)

	require.NoError(t, sink.Publish(context.Background(), "r", 3, sampleEvents(t)))
	assert.Equal(t, int32(1), a.n.Load())
	assert.Len(t, b.Records(0), 3)

	boom := errors.New("boom")
	failing := NewFanoutSink(&countingSink{}, &countingSink{err: boom})
	err := failing.Publish(context.Background(), "r", 3, nil)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "sink #2")
}

func TestSqliteEventSink(t *testing.T) {
	conn, err := db.OpenSqlite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, repositories.InitSchema(conn))

	s := NewSqliteEventSink(conn)
	ctx := context.Background()
	evs := sampleEvents(t)

	require.NoError(t, s.Publish(ctx, "run-1", 3, evs))
	require.NoError(t, s.Publish(ctx, "run-1", 4, nil))
	require.NoError(t, s.Publish(ctx, "run-2", 5, evs[:1]))
	// republishing a tick is idempotent
	require.NoError(t, s.Publish(ctx, "run-1", 3, evs))

	got, err := s.ListRecords(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, Flatten("run-1", 3, evs), got)

	got, err = s.ListRecords(ctx, "run-2")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = s.ListRecords(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNilDB(t *testing.T) {
	ctx := context.Background()
	assert.Error(t, NewSqliteEventSink(nil).Publish(ctx, "r", 1, nil))
	assert.Error(t, NewSQLEventSink(nil).Publish(ctx, "r", 1, nil))
}

func TestRecentSinkKeepsLast(t *testing.T) {
	s := NewRecentSink(2)
	ctx := context.Background()
	evs := sampleEvents(t)

	require.NoError(t, s.Publish(ctx, "r", 3, evs))
	require.NoError(t, s.Publish(ctx, "r", 4, evs[:1]))

	recs := s.Records(0)
	require.Len(t, recs, 2)
	assert.Equal(t, int64(3), recs[0].Tick)
	assert.Equal(t, 2, recs[0].Seq)
	assert.Equal(t, int64(4), recs[1].Tick)
	assert.Len(t, s.Events(), 2)
}
