package services

import (
	"context"
	"delivery-simulation/internal/domain"
	"delivery-simulation/internal/platform/obs"
	"delivery-simulation/internal/ports"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// StepResult is the outcome of one simulated tick.
type StepResult struct {
	RunID  string
	Tick   int64
	Events []domain.Event
}

type VehicleSnapshot struct {
	ID       int
	Capacity float64
	Load     float64
	At       string
	OnEdge   bool
	Orders   []int
	Stops    int
	Spawned  bool
}

type OccupancySnapshot struct {
	Name     string
	Kind     string
	Vehicles []int
}

type Snapshot struct {
	RunID     string
	Tick      int64
	Pending   int
	Failed    string
	Vehicles  []VehicleSnapshot
	Occupancy []OccupancySnapshot
}

// Simulation drives a single run: orders in, delivery tick, events out.
// All methods are safe for concurrent use.
type Simulation struct {
	mu sync.Mutex

	delivery DeliveryService
	orders   ports.OrderGenerator
	sink     ports.EventSink
	metrics  *obs.SimMetrics
	log      zerolog.Logger

	runID  string
	tick   int64
	failed error
}

// ErrRunFailed is returned by Step and Run once a tick has failed; the run
// stays failed until Reset.
var ErrRunFailed = errors.New("simulation run failed")

type SimulationOption func(*Simulation)

func WithLogger(l zerolog.Logger) SimulationOption {
	return func(s *Simulation) { s.log = l }
}

func WithMetrics(m *obs.SimMetrics) SimulationOption {
	return func(s *Simulation) { s.metrics = m }
}

func NewSimulation(
	delivery DeliveryService,
	orders ports.OrderGenerator,
	sink ports.EventSink,
	opts ...SimulationOption,
) (*Simulation, error) {
	if delivery == nil || orders == nil || sink == nil {
		return nil, errors.New("new simulation: delivery, orders and sink are required")
	}
	s := &Simulation{
		delivery: delivery,
		orders:   orders,
		sink:     sink,
		log:      zerolog.Nop(),
		runID:    uuid.NewString(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Step runs the next tick.
func (s *Simulation) Step(ctx context.Context) (StepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step(ctx)
}

// Run runs n ticks, stopping early on error or cancellation.
func (s *Simulation) Run(ctx context.Context, n int) (_ []StepResult, err error) {
	defer obs.Time(ctx, "simulation.Run")(&err)

	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]StepResult, 0, n)
	for range n {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := s.step(ctx)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *Simulation) step(ctx context.Context) (_ StepResult, err error) {
	if s.failed != nil {
		return StepResult{}, fmt.Errorf("%w at tick %d: %w", ErrRunFailed, s.tick, s.failed)
	}
	// a tick that errors has already changed vehicle and order state
	defer func() {
		if err != nil {
			s.failed = err
		}
	}()

	tick := s.tick

	orders, err := s.orders.GenerateOrders(tick)
	if err != nil {
		return StepResult{}, fmt.Errorf("simulation tick %d: generate orders: %w", tick, err)
	}

	events, err := s.delivery.Tick(tick, orders)
	if err != nil {
		return StepResult{}, fmt.Errorf("simulation tick %d: %w", tick, err)
	}

	if err := s.sink.Publish(ctx, s.runID, tick, events); err != nil {
		return StepResult{}, fmt.Errorf("simulation tick %d: publish events: %w", tick, err)
	}
	s.metrics.RecordTick(ctx, events)

	s.log.Debug().Str("run", s.runID).Int64("tick", tick).Int("orders", len(orders)).Int("events", len(events)).Msg("tick")
	s.tick++
	return StepResult{RunID: s.runID, Tick: tick, Events: events}, nil
}

// Reset starts a new run from tick 0 with the same vehicles.
func (s *Simulation) Reset() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.delivery.Reset()
	s.tick = 0
	s.failed = nil
	s.runID = uuid.NewString()
	s.log.Info().Str("run", s.runID).Msg("simulation reset")
	return s.runID
}

// AddVehicle queues a vehicle at the restaurant at loc; it spawns on the next step.
func (s *Simulation) AddVehicle(loc domain.Location, capacity float64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.delivery.Manager().AddVehicle(loc, capacity)
	if err != nil {
		return 0, err
	}
	return v.ID(), nil
}

func (s *Simulation) RunID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runID
}

// Snapshot copies the observable state between ticks.
func (s *Simulation) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.delivery.Manager()
	snap := Snapshot{
		RunID:   s.runID,
		Tick:    s.tick,
		Pending: len(s.delivery.PendingOrders()),
	}
	if s.failed != nil {
		snap.Failed = s.failed.Error()
	}

	spawned := map[int]bool{}
	for _, v := range m.Vehicles() {
		spawned[v.ID()] = true
	}
	for _, v := range m.AllVehicles() {
		vs := VehicleSnapshot{
			ID:       v.ID(),
			Capacity: v.Capacity(),
			Load:     v.Load(),
			Stops:    len(v.Paths()),
			Spawned:  spawned[v.ID()],
		}
		if occ := v.Occupied(); occ != nil {
			vs.At = occ.Name()
			vs.OnEdge = occ.IsEdge()
		}
		for _, o := range v.Orders() {
			vs.Orders = append(vs.Orders, o.ID())
		}
		snap.Vehicles = append(snap.Vehicles, vs)
	}

	records := append(m.OccupiedNodes(), m.OccupiedEdges()...)
	for _, occ := range records {
		if occ.Empty() {
			continue
		}
		row := OccupancySnapshot{Name: occ.Name(), Kind: occ.Kind().String()}
		for _, v := range occ.Vehicles() {
			row.Vehicles = append(row.Vehicles, v.ID())
		}
		snap.Occupancy = append(snap.Occupancy, row)
	}
	return snap
}

var _ DeliveryService = (*BasicDeliveryService)(nil)
