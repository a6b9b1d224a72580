package api

import (
	"bytes"
	"context"
	"delivery-simulation/internal/adapters/events"
	"delivery-simulation/internal/adapters/orders"
	"delivery-simulation/internal/adapters/pathing"
	"delivery-simulation/internal/api/dto"
	"delivery-simulation/internal/domain"
	"delivery-simulation/internal/ports"
	"delivery-simulation/internal/services"
	"delivery-simulation/internal/simulation"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	handler http.Handler
	sim     *services.Simulation
	sink    *events.MemorySink
	logs    *bytes.Buffer
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	return newFixtureWithSink(t, events.NewMemorySink(), nil)
}

// newFixtureWithSink publishes through wrap(sink) when wrap is set.
func newFixtureWithSink(t *testing.T, sink *events.MemorySink, wrap func(ports.EventSink) ports.EventSink) fixture {
	t.Helper()
	diner := domain.Location{X: 0, Y: 0}
	hills := domain.Location{X: 1, Y: 0}
	r, err := domain.NewBuilder().
		AddRestaurant("Diner", diner, "pizza").
		AddNeighborhood("Hills", hills).
		AddEdge("Main", diner, hills, 1).
		Build()
	require.NoError(t, err)

	paths, err := pathing.NewDijkstraPathCalculator(r)
	require.NoError(t, err)
	m, err := simulation.NewManager(r, paths, zerolog.Nop())
	require.NoError(t, err)
	delivery, err := services.NewBasicDeliveryService(m, zerolog.Nop())
	require.NoError(t, err)

	restaurant, _ := r.Node(diner)
	o, err := domain.NewConfirmedOrder(1, hills, restaurant, domain.TickInterval{Start: 0, End: 9}, []string{"pizza"}, 1)
	require.NoError(t, err)
	gen := orders.NewScheduledOrderGenerator([]ports.ScheduledOrder{{ReceivedAt: 0, Order: o}})

	var publish ports.EventSink = sink
	if wrap != nil {
		publish = wrap(sink)
	}
	sim, err := services.NewSimulation(delivery, gen, publish)
	require.NoError(t, err)

	logs := &bytes.Buffer{}
	return fixture{
		handler: NewRouter(sim, sink, 50, zerolog.New(logs)),
		sim:     sim,
		sink:    sink,
		logs:    logs,
	}
}

func (f fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/health", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodGet, rec.Header().Get("Allow"))
}

func TestTicksRunsSimulation(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/vehicles", `{"x":0,"y":0,"capacity":5}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 0, decode[dto.AddVehicleResponse](t, rec).VehicleID)

	rec = f.do(t, http.MethodPost, "/ticks", `{"count":3}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[dto.TicksResponse](t, rec)

	assert.Equal(t, f.sim.RunID(), res.RunID)
	require.Len(t, res.Ticks, 3)
	first := res.Ticks[0]
	require.Len(t, first.Events, 3)
	assert.Equal(t, "spawn", first.Events[0].Type)
	require.NotNil(t, first.Events[0].VehicleID)
	assert.Equal(t, 0, *first.Events[0].VehicleID)
	assert.Equal(t, "order_received", first.Events[1].Type)
	assert.Nil(t, first.Events[1].VehicleID)
	assert.Equal(t, "load_order", first.Events[2].Type)

	last := res.Ticks[2]
	require.Len(t, last.Events, 2)
	assert.Equal(t, "deliver_order", last.Events[1].Type)
	require.NotNil(t, last.Events[1].OrderID)
	assert.Equal(t, 1, *last.Events[1].OrderID)
	assert.Equal(t, "Main", last.Events[0].Previous)
}

func TestTicksDefaultsToOne(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/ticks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[dto.TicksResponse](t, rec).Ticks, 1)
	assert.Equal(t, int64(1), f.sim.Snapshot().Tick)
}

type failAtTick struct {
	ports.EventSink
	tick int64
}

func (f failAtTick) Publish(ctx context.Context, runID string, tick int64, evs []domain.Event) error {
	if tick == f.tick {
		return errors.New("sink down")
	}
	return f.EventSink.Publish(ctx, runID, tick, evs)
}

func TestTicksReportsCompletedTicksOnFailure(t *testing.T) {
	f := newFixtureWithSink(t, events.NewMemorySink(), func(s ports.EventSink) ports.EventSink {
		return failAtTick{EventSink: s, tick: 2}
	})
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/vehicles", `{"x":0,"y":0,"capacity":5}`).Code)

	rec := f.do(t, http.MethodPost, "/ticks", `{"count":4}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	res := decode[dto.TicksResponse](t, rec)
	require.Len(t, res.Ticks, 2)
	assert.Equal(t, int64(1), res.Ticks[1].Tick)
	assert.Equal(t, "simulation tick failed", res.Error)

	rec = f.do(t, http.MethodPost, "/ticks", "")
	require.Equal(t, http.StatusConflict, rec.Code)
	res = decode[dto.TicksResponse](t, rec)
	assert.Empty(t, res.Ticks)
	assert.Contains(t, res.Error, "reset required")

	state := decode[dto.StateResponse](t, f.do(t, http.MethodGet, "/state", ""))
	assert.Equal(t, int64(2), state.Tick)
	assert.Contains(t, state.Failed, "sink down")

	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/reset", "").Code)
	rec = f.do(t, http.MethodPost, "/ticks", `{"count":2}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, decode[dto.StateResponse](t, f.do(t, http.MethodGet, "/state", "")).Failed)
}

func TestTicksValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		body string
	}{
		{"negative", `{"count":-1}`},
		{"too many", `{"count":5000}`},
		{"unknown field", `{"ticks":2}`},
		{"malformed", `{"count":`},
		{"two objects", `{"count":1}{"count":2}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/ticks", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	assert.Equal(t, int64(0), f.sim.Snapshot().Tick)
}

func TestAddVehicleRejectsNonRestaurant(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/vehicles", `{"x":1,"y":0,"capacity":5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "restaurant")

	rec = f.do(t, http.MethodDelete, "/vehicles", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestStateAndVehicles(t *testing.T) {
	f := newFixture(t)
	_, err := f.sim.AddVehicle(domain.Location{X: 0, Y: 0}, 5)
	require.NoError(t, err)

	rec := f.do(t, http.MethodGet, "/vehicles", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[dto.ListVehiclesResponse](t, rec)
	require.Len(t, list.Vehicles, 1)
	assert.False(t, list.Vehicles[0].Spawned)

	f.do(t, http.MethodPost, "/ticks", `{"count":2}`)

	rec = f.do(t, http.MethodGet, "/state", "")
	require.Equal(t, http.StatusOK, rec.Code)
	state := decode[dto.StateResponse](t, rec)
	assert.Equal(t, int64(2), state.Tick)
	assert.Zero(t, state.PendingOrders)
	require.Len(t, state.Vehicles, 1)
	assert.True(t, state.Vehicles[0].OnEdge)
	assert.Equal(t, "Main", state.Vehicles[0].At)
	assert.Equal(t, []int{1}, state.Vehicles[0].OrderIDs)
	assert.Equal(t, []dto.OccupancyResponse{{Name: "Main", Kind: "edge", VehicleIDs: []int{0}}}, state.Occupancy)
}

func TestResetStartsNewRun(t *testing.T) {
	f := newFixture(t)
	before := f.sim.RunID()
	f.do(t, http.MethodPost, "/ticks", `{"count":2}`)

	rec := f.do(t, http.MethodPost, "/reset", "")
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[dto.ResetResponse](t, rec)
	assert.NotEqual(t, before, res.RunID)
	assert.Equal(t, int64(0), f.sim.Snapshot().Tick)
}

func TestEvents(t *testing.T) {
	f := newFixture(t)
	_, err := f.sim.AddVehicle(domain.Location{X: 0, Y: 0}, 5)
	require.NoError(t, err)
	f.do(t, http.MethodPost, "/ticks", `{"count":3}`)

	rec := f.do(t, http.MethodGet, "/events", "")
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[dto.ListEventsResponse](t, rec)
	assert.Len(t, all.Events, 6)

	rec = f.do(t, http.MethodGet, "/events?limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	last := decode[dto.ListEventsResponse](t, rec)
	require.Len(t, last.Events, 2)
	assert.Equal(t, int64(2), last.Events[1].Tick)
	assert.Equal(t, "deliver_order", last.Events[1].Type)

	rec = f.do(t, http.MethodGet, "/events?limit=zero", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoggingMiddlewareTagsRequests(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(f.logs.Bytes(), &line))
	assert.Equal(t, "request", line["message"])
	assert.Equal(t, "abc-123", line["req_id"])
	assert.Equal(t, "/health", line["path"])
	assert.Equal(t, float64(200), line["status"])

	rec = f.do(t, http.MethodGet, "/health", "")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
