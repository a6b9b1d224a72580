package simulation

import (
	"delivery-simulation/internal/domain"
	"fmt"
	"slices"
)

// OccupiedKind tags the graph element an Occupied record tracks.
type OccupiedKind int

const (
	OccupiedPlain OccupiedKind = iota
	OccupiedRestaurant
	OccupiedNeighborhood
	OccupiedEdge
)

func (k OccupiedKind) String() string {
	switch k {
	case OccupiedPlain:
		return "node"
	case OccupiedRestaurant:
		return "restaurant"
	case OccupiedNeighborhood:
		return "neighborhood"
	case OccupiedEdge:
		return "edge"
	}
	return fmt.Sprintf("occupied(%d)", int(k))
}

// VehicleStats records when a vehicle entered an element and where it came from.
// Previous is nil for a freshly spawned vehicle.
type VehicleStats struct {
	ArrivedAt int64
	Previous  *Occupied
}

type occupant struct {
	vehicle *Vehicle
	stats   VehicleStats
}

// Occupied is the occupancy record of a single node or edge. Records are created
// by the Manager, one per graph element, and live as long as the Manager does.
type Occupied struct {
	key  domain.ComponentKey
	kind OccupiedKind
	node *domain.Node
	edge *domain.Edge

	vehicles map[int]*occupant
}

func newOccupiedNode(n *domain.Node) *Occupied {
	kind := OccupiedPlain
	switch n.Kind() {
	case domain.KindRestaurant:
		kind = OccupiedRestaurant
	case domain.KindNeighborhood:
		kind = OccupiedNeighborhood
	}
	return &Occupied{key: n.Key(), kind: kind, node: n, vehicles: map[int]*occupant{}}
}

func newOccupiedEdge(e *domain.Edge) *Occupied {
	return &Occupied{key: e.Key(), kind: OccupiedEdge, edge: e, vehicles: map[int]*occupant{}}
}

func (o *Occupied) Key() domain.ComponentKey { return o.key }
func (o *Occupied) Kind() OccupiedKind       { return o.kind }
func (o *Occupied) IsEdge() bool             { return o.kind == OccupiedEdge }

// Node is nil for edge records.
func (o *Occupied) Node() *domain.Node { return o.node }

// Edge is nil for node records.
func (o *Occupied) Edge() *domain.Edge { return o.edge }

// Component returns the tracked node or edge.
func (o *Occupied) Component() domain.Component {
	if o.edge != nil {
		return o.edge
	}
	return o.node
}

func (o *Occupied) Name() string { return o.Component().Name() }

func (o *Occupied) Len() int { return len(o.vehicles) }

func (o *Occupied) Empty() bool { return len(o.vehicles) == 0 }

// Vehicles returns the vehicles present, ordered by id.
func (o *Occupied) Vehicles() []*Vehicle {
	out := make([]*Vehicle, 0, len(o.vehicles))
	for _, id := range o.vehicleIDs() {
		out = append(out, o.vehicles[id].vehicle)
	}
	return out
}

// Contains reports whether v is currently at this element.
func (o *Occupied) Contains(v *Vehicle) bool {
	occ, ok := o.vehicles[v.id]
	return ok && occ.vehicle == v
}

// Stats returns the arrival record of v, if present.
func (o *Occupied) Stats(v *Vehicle) (VehicleStats, bool) {
	occ, ok := o.vehicles[v.id]
	if !ok || occ.vehicle != v {
		return VehicleStats{}, false
	}
	return occ.stats, true
}

// Food lists what a restaurant record serves; nil for other kinds.
func (o *Occupied) Food() []string {
	if o.kind != OccupiedRestaurant {
		return nil
	}
	return o.node.AvailableFood()
}

// LoadOrder puts order on v while v waits at this restaurant.
func (o *Occupied) LoadOrder(v *Vehicle, order *domain.ConfirmedOrder, tick int64) (domain.Event, error) {
	if o.kind != OccupiedRestaurant {
		return domain.Event{}, fmt.Errorf("load order %d at %s: %w", order.ID(), o.Name(), ErrNotRestaurant)
	}
	if !o.Contains(v) {
		return domain.Event{}, fmt.Errorf("load order %d at %s: vehicle %d: %w", order.ID(), o.Name(), v.id, ErrVehicleNotPresent)
	}
	if order.Restaurant() == nil || order.Restaurant().Location() != o.node.Location() {
		return domain.Event{}, fmt.Errorf("load order %d at %s: %w", order.ID(), o.Name(), ErrForeignOrder)
	}
	if err := v.LoadOrder(order); err != nil {
		return domain.Event{}, fmt.Errorf("load order %d at %s: %w", order.ID(), o.Name(), err)
	}
	return domain.Event{Tick: tick, Type: domain.EventLoadOrder, VehicleID: v.id, Node: o.node, Order: order}, nil
}

// DeliverOrder hands order over at this neighborhood and removes it from v.
func (o *Occupied) DeliverOrder(v *Vehicle, order *domain.ConfirmedOrder, tick int64) (domain.Event, error) {
	if o.kind != OccupiedNeighborhood {
		return domain.Event{}, fmt.Errorf("deliver order %d at %s: %w", order.ID(), o.Name(), ErrNotNeighborhood)
	}
	if !o.Contains(v) {
		return domain.Event{}, fmt.Errorf("deliver order %d at %s: vehicle %d: %w", order.ID(), o.Name(), v.id, ErrVehicleNotPresent)
	}
	if order.Location() != o.node.Location() {
		return domain.Event{}, fmt.Errorf("deliver order %d at %s: %w", order.ID(), o.Name(), ErrForeignOrder)
	}
	if !v.Carries(order) {
		return domain.Event{}, fmt.Errorf("deliver order %d at %s: vehicle %d: %w", order.ID(), o.Name(), v.id, ErrOrderNotCarried)
	}
	v.UnloadOrder(order)
	return domain.Event{Tick: tick, Type: domain.EventDeliverOrder, VehicleID: v.id, Node: o.node, Order: order}, nil
}

func (o *Occupied) String() string {
	return fmt.Sprintf("%s %s (%d vehicles)", o.kind, o.Name(), len(o.vehicles))
}

func (o *Occupied) vehicleIDs() []int {
	ids := make([]int, 0, len(o.vehicles))
	for id := range o.vehicles {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (o *Occupied) add(v *Vehicle, stats VehicleStats) {
	o.vehicles[v.id] = &occupant{vehicle: v, stats: stats}
}

func (o *Occupied) remove(v *Vehicle) {
	delete(o.vehicles, v.id)
}

func (o *Occupied) reset() {
	clear(o.vehicles)
}

// readyToLeave reports whether a vehicle that entered an edge at arrivedAt may
// move on at tick. The entry tick counts towards the duration, but a vehicle
// never leaves an edge during the tick it entered it.
func readyToLeave(arrivedAt, duration, tick int64) bool {
	return tick > arrivedAt && tick >= arrivedAt+duration-1
}
