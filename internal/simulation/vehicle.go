package simulation

import (
	"delivery-simulation/internal/domain"
	"fmt"
	"slices"
)

// ArrivalAction runs when a vehicle reaches the end of a queued path segment.
// Returned events are added to the events of the current tick.
type ArrivalAction func(v *Vehicle, tick int64) []domain.Event

type pathSegment struct {
	nodes     []*domain.Node
	onArrival ArrivalAction
}

// Path is a read-only view of one queued path segment.
type Path struct {
	Nodes            []*domain.Node
	HasArrivalAction bool
}

// Vehicle carries orders along queued paths. Its position is a key into the
// Manager's occupancy records; only the Manager moves it between them.
type Vehicle struct {
	id       int
	capacity float64
	orders   []*domain.ConfirmedOrder
	queue    []*pathSegment

	start    domain.ComponentKey
	occupied domain.ComponentKey

	m *Manager
}

func (v *Vehicle) ID() int           { return v.id }
func (v *Vehicle) Capacity() float64 { return v.capacity }

// Orders returns the carried orders in load order.
func (v *Vehicle) Orders() []*domain.ConfirmedOrder { return slices.Clone(v.orders) }

// Load is the total weight currently carried.
func (v *Vehicle) Load() float64 { return domain.TotalWeight(v.orders) }

// Carries reports whether order is on board.
func (v *Vehicle) Carries(order *domain.ConfirmedOrder) bool {
	return slices.Contains(v.orders, order)
}

// Paths returns a snapshot of the queued segments, head first.
func (v *Vehicle) Paths() []Path {
	out := make([]Path, 0, len(v.queue))
	for _, seg := range v.queue {
		out = append(out, Path{Nodes: slices.Clone(seg.nodes), HasArrivalAction: seg.onArrival != nil})
	}
	return out
}

// Idle reports whether nothing is queued.
func (v *Vehicle) Idle() bool { return len(v.queue) == 0 }

// Occupied returns the record the vehicle is currently in.
func (v *Vehicle) Occupied() *Occupied { return v.m.records[v.occupied] }

// StartingNode returns the restaurant record the vehicle spawns at.
func (v *Vehicle) StartingNode() *Occupied { return v.m.records[v.start] }

// PreviousOccupied returns the record the vehicle came from, or nil right after spawning.
func (v *Vehicle) PreviousOccupied() *Occupied {
	stats, ok := v.Occupied().Stats(v)
	if !ok {
		return nil
	}
	return stats.Previous
}

// MoveQueued appends a segment from the end of the current queue (or the
// current node when the queue is empty) to target. onArrival may be nil.
func (v *Vehicle) MoveQueued(target *domain.Node, onArrival ArrivalAction) error {
	return v.MoveQueuedTrip([]Stop{{Target: target, OnArrival: onArrival}})
}

// Stop is one leg of a queued trip.
type Stop struct {
	Target    *domain.Node
	OnArrival ArrivalAction
}

// MoveQueuedTrip routes every stop in turn and appends the segments only when
// all of them routed. On error the queue is unchanged.
func (v *Vehicle) MoveQueuedTrip(stops []Stop) error {
	from, err := v.endpoint()
	if err != nil {
		if len(stops) > 0 {
			return fmt.Errorf("move vehicle %d to %s: %w", v.id, stops[0].Target.Name(), err)
		}
		return fmt.Errorf("move vehicle %d: %w", v.id, err)
	}
	segs := make([]*pathSegment, 0, len(stops))
	for _, stop := range stops {
		hops, err := v.route(from, stop.Target)
		if err != nil {
			return fmt.Errorf("move vehicle %d to %s: %w", v.id, stop.Target.Name(), err)
		}
		segs = append(segs, &pathSegment{nodes: hops, onArrival: stop.OnArrival})
		from = stop.Target
	}
	v.queue = append(v.queue, segs...)
	return nil
}

// MoveDirect drops the queued segments and heads for target. A vehicle on an
// edge first finishes that edge.
func (v *Vehicle) MoveDirect(target *domain.Node, onArrival ArrivalAction) error {
	if !v.occupied.Edge {
		from, ok := v.m.region.Node(v.occupied.A)
		if !ok {
			return fmt.Errorf("move vehicle %d to %s: %s: %w", v.id, target.Name(), v.occupied, ErrUntracked)
		}
		hops, err := v.route(from, target)
		if err != nil {
			return fmt.Errorf("move vehicle %d to %s: %w", v.id, target.Name(), err)
		}
		v.queue = []*pathSegment{{nodes: hops, onArrival: onArrival}}
		return nil
	}

	dest, err := v.edgeDestination()
	if err != nil {
		return fmt.Errorf("move vehicle %d to %s: %w", v.id, target.Name(), err)
	}
	finish := &pathSegment{nodes: []*domain.Node{dest}}
	if dest.Location() == target.Location() {
		finish.onArrival = onArrival
		v.queue = []*pathSegment{finish}
		return nil
	}
	hops, err := v.route(dest, target)
	if err != nil {
		return fmt.Errorf("move vehicle %d to %s: %w", v.id, target.Name(), err)
	}
	v.queue = []*pathSegment{finish, {nodes: hops, onArrival: onArrival}}
	return nil
}

// LoadOrder adds order unless it would push the load over capacity.
func (v *Vehicle) LoadOrder(order *domain.ConfirmedOrder) error {
	weight := v.Load() + order.Weight()
	if weight > v.capacity {
		return &OverloadError{VehicleID: v.id, Capacity: v.capacity, Weight: weight}
	}
	v.orders = append(v.orders, order)
	return nil
}

// UnloadOrder removes order; absent orders are ignored.
func (v *Vehicle) UnloadOrder(order *domain.ConfirmedOrder) {
	if i := slices.Index(v.orders, order); i >= 0 {
		v.orders = slices.Delete(v.orders, i, i+1)
	}
}

func (v *Vehicle) String() string {
	return fmt.Sprintf("vehicle %d at %s (%.2f/%.2f)", v.id, v.occupied, v.Load(), v.capacity)
}

func (v *Vehicle) reset() {
	v.queue = nil
	v.orders = nil
	v.occupied = v.start
}

// endpoint is the node the vehicle will stand on once its queue is done.
func (v *Vehicle) endpoint() (*domain.Node, error) {
	for i := len(v.queue) - 1; i >= 0; i-- {
		if nodes := v.queue[i].nodes; len(nodes) > 0 {
			return nodes[len(nodes)-1], nil
		}
	}
	if v.occupied.Edge {
		return nil, fmt.Errorf("vehicle %d on %s has no destination: %w", v.id, v.occupied, ErrNoPath)
	}
	n, ok := v.m.region.Node(v.occupied.A)
	if !ok {
		return nil, fmt.Errorf("%s: %w", v.occupied, ErrUntracked)
	}
	return n, nil
}

// edgeDestination is the node at the far end of the edge the vehicle is on.
func (v *Vehicle) edgeDestination() (*domain.Node, error) {
	for _, seg := range v.queue {
		if len(seg.nodes) > 0 {
			return seg.nodes[0], nil
		}
	}
	return nil, fmt.Errorf("vehicle %d on %s has no destination: %w", v.id, v.occupied, ErrNoPath)
}

// route asks the path calculator for the hops after from, ending at to.
func (v *Vehicle) route(from, to *domain.Node) ([]*domain.Node, error) {
	if from.Location() == to.Location() {
		return nil, fmt.Errorf("%s: %w", to.Name(), ErrInvalidMove)
	}
	path, err := v.m.paths.GetPath(from, to)
	if err != nil {
		return nil, fmt.Errorf("path %s -> %s: %w", from.Name(), to.Name(), err)
	}
	if len(path) > 0 && path[0].Location() == from.Location() {
		path = path[1:]
	}
	if len(path) == 0 || path[len(path)-1].Location() != to.Location() {
		return nil, fmt.Errorf("path %s -> %s: %w", from.Name(), to.Name(), ErrNoPath)
	}
	return slices.Clone(path), nil
}
