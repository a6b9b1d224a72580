package services

import (
	"context"
	"delivery-simulation/internal/adapters/events"
	"delivery-simulation/internal/adapters/orders"
	"delivery-simulation/internal/domain"
	"delivery-simulation/internal/platform/obs"
	"delivery-simulation/internal/ports"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
)

func newSimulation(t *testing.T, sink ports.EventSink) (*Simulation, *domain.Region) {
	t.Helper()
	r := testRegion(t)
	delivery := newDelivery(t, r)
	gen := orders.NewScheduledOrderGenerator([]ports.ScheduledOrder{
		{ReceivedAt: 1, Order: order(t, r, 1, diner, hills, 1, 1)},
		{ReceivedAt: 1, Order: order(t, r, 2, grill, hills, 1, 1)},
	})
	metrics, err := obs.NewSimMetrics(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	sim, err := NewSimulation(delivery, gen, sink, WithLogger(zerolog.Nop()), WithMetrics(metrics))
	require.NoError(t, err)
	return sim, r
}

func TestSimulationRun(t *testing.T) {
	sink := events.NewMemorySink()
	sim, _ := newSimulation(t, sink)

	id, err := sim.AddVehicle(diner, 5)
	require.NoError(t, err)
	assert.Equal(t, 0, id)

	results, err := sim.Run(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, results, 4)
	for i, res := range results {
		assert.Equal(t, int64(i), res.Tick)
		assert.Equal(t, sim.RunID(), res.RunID)
	}

	assert.Equal(t, []domain.EventType{domain.EventSpawn}, types(results[0].Events))
	assert.Equal(t, []domain.EventType{
		domain.EventOrderReceived,
		domain.EventOrderReceived,
		domain.EventLoadOrder,
	}, types(results[1].Events))
	assert.Equal(t, []domain.EventType{domain.EventArrivedAtEdge}, types(results[2].Events))
	assert.Equal(t, []domain.EventType{
		domain.EventArrivedAtNeighborhood,
		domain.EventDeliverOrder,
	}, types(results[3].Events))

	assert.Len(t, sink.Events(), 7)
	records := sink.Records(0)
	require.Len(t, records, 7)
	assert.Equal(t, "spawn", records[0].Type)
	assert.Equal(t, int64(3), records[6].Tick)
	assert.Equal(t, 1, records[6].Seq)

	snap := sim.Snapshot()
	assert.Equal(t, int64(4), snap.Tick)
	// the Grill order waits for a vehicle
	assert.Equal(t, 1, snap.Pending)
	require.Len(t, snap.Vehicles, 1)
	assert.Equal(t, "Hills", snap.Vehicles[0].At)
	assert.False(t, snap.Vehicles[0].OnEdge)
	assert.True(t, snap.Vehicles[0].Spawned)
	assert.Empty(t, snap.Vehicles[0].Orders)
	assert.Equal(t, 1, snap.Vehicles[0].Stops)
	assert.Equal(t, []OccupancySnapshot{{Name: "Hills", Kind: "neighborhood", Vehicles: []int{0}}}, snap.Occupancy)
}

func TestSimulationReset(t *testing.T) {
	sim, _ := newSimulation(t, events.NewMemorySink())
	_, err := sim.AddVehicle(diner, 5)
	require.NoError(t, err)

	_, err = sim.Run(context.Background(), 3)
	require.NoError(t, err)
	before := sim.RunID()

	after := sim.Reset()
	assert.NotEqual(t, before, after)
	assert.Equal(t, after, sim.RunID())

	snap := sim.Snapshot()
	assert.Equal(t, int64(0), snap.Tick)
	assert.Zero(t, snap.Pending)
	require.Len(t, snap.Vehicles, 1)
	assert.False(t, snap.Vehicles[0].Spawned)
	assert.Empty(t, snap.Occupancy)

	res, err := sim.Step(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Tick)
	assert.Equal(t, []domain.EventType{domain.EventSpawn}, types(res.Events))
}

func TestSimulationAddVehicleErrors(t *testing.T) {
	sim, _ := newSimulation(t, events.NewMemorySink())

	_, err := sim.AddVehicle(hills, 5)
	assert.Error(t, err)
	_, err = sim.AddVehicle(domain.Location{X: 7, Y: 7}, 5)
	assert.Error(t, err)
}

type failingSink struct{ err error }

func (f failingSink) Publish(context.Context, string, int64, []domain.Event) error { return f.err }

func TestSimulationStopsOnSinkError(t *testing.T) {
	boom := errors.New("sink down")
	sim, _ := newSimulation(t, failingSink{err: boom})

	results, err := sim.Run(context.Background(), 3)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, results)
	assert.Equal(t, int64(0), sim.Snapshot().Tick)
	assert.Contains(t, sim.Snapshot().Failed, "sink down")
}

// failOnceSink fails the first publish of tick and forwards everything else.
type failOnceSink struct {
	*events.MemorySink
	tick   int64
	failed bool
}

func (f *failOnceSink) Publish(ctx context.Context, runID string, tick int64, evs []domain.Event) error {
	if tick == f.tick && !f.failed {
		f.failed = true
		return errors.New("sink down")
	}
	return f.MemorySink.Publish(ctx, runID, tick, evs)
}

func TestSimulationRefusesStepAfterFailedTick(t *testing.T) {
	sink := &failOnceSink{MemorySink: events.NewMemorySink(), tick: 1}
	sim, _ := newSimulation(t, sink)
	_, err := sim.AddVehicle(diner, 5)
	require.NoError(t, err)

	results, err := sim.Run(context.Background(), 3)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRunFailed)
	require.Len(t, results, 1)

	// tick 1 already took its orders; running it again would receive them twice
	pending := sim.Snapshot().Pending
	_, err = sim.Step(context.Background())
	assert.ErrorIs(t, err, ErrRunFailed)
	results, err = sim.Run(context.Background(), 2)
	assert.ErrorIs(t, err, ErrRunFailed)
	assert.Empty(t, results)

	snap := sim.Snapshot()
	assert.Equal(t, int64(1), snap.Tick)
	assert.Equal(t, pending, snap.Pending)
	assert.Len(t, sink.Events(), 1)

	sim.Reset()
	assert.Empty(t, sim.Snapshot().Failed)
	results, err = sim.Run(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []domain.EventType{
		domain.EventOrderReceived,
		domain.EventOrderReceived,
		domain.EventLoadOrder,
	}, types(results[1].Events))
}

func TestSimulationRunCancelled(t *testing.T) {
	sim, _ := newSimulation(t, events.NewMemorySink())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := sim.Run(ctx, 5)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
}

func TestNewSimulationRequiresCollaborators(t *testing.T) {
	_, err := NewSimulation(nil, nil, nil)
	assert.Error(t, err)
}
