package simulation

import (
	"delivery-simulation/internal/domain"
	"delivery-simulation/internal/ports"
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog"
)

// Manager owns the occupancy records of a region and every vehicle on it,
// and drives the per-tick movement cycle.
type Manager struct {
	region *domain.Region
	paths  ports.PathCalculator
	log    zerolog.Logger

	records map[domain.ComponentKey]*Occupied
	nodes   []*Occupied // by location
	edges   []*Occupied // canonical edge order

	vehicles []*Vehicle
	toSpawn  []*Vehicle
	events   eventBuffer
}

// NewManager creates one occupancy record per node and per edge of region.
func NewManager(region *domain.Region, paths ports.PathCalculator, log zerolog.Logger) (*Manager, error) {
	if region == nil {
		return nil, errors.New("new manager: region is nil")
	}
	if paths == nil {
		return nil, errors.New("new manager: path calculator is nil")
	}
	m := &Manager{
		region:  region,
		paths:   paths,
		log:     log.With().Str("component", "manager").Logger(),
		records: map[domain.ComponentKey]*Occupied{},
	}
	for _, n := range region.Nodes() {
		occ := newOccupiedNode(n)
		m.records[occ.key] = occ
		m.nodes = append(m.nodes, occ)
	}
	for _, e := range region.Edges() {
		occ := newOccupiedEdge(e)
		m.records[occ.key] = occ
		m.edges = append(m.edges, occ)
	}
	return m, nil
}

func (m *Manager) Region() *domain.Region               { return m.region }
func (m *Manager) PathCalculator() ports.PathCalculator { return m.paths }

// AddVehicle queues a vehicle that spawns at the restaurant at start on the next tick.
func (m *Manager) AddVehicle(start domain.Location, capacity float64) (*Vehicle, error) {
	key := domain.ComponentKey{A: start, B: start}
	occ, ok := m.records[key]
	if !ok {
		return nil, fmt.Errorf("add vehicle at %s: %w", start, ErrUntracked)
	}
	if occ.kind != OccupiedRestaurant {
		return nil, fmt.Errorf("add vehicle at %s: %w", start, ErrNotRestaurant)
	}
	if capacity < 0 {
		return nil, fmt.Errorf("add vehicle at %s: negative capacity %.2f", start, capacity)
	}
	v := &Vehicle{
		id:       len(m.vehicles) + len(m.toSpawn),
		capacity: capacity,
		start:    key,
		occupied: key,
		m:        m,
	}
	m.toSpawn = append(m.toSpawn, v)
	return v, nil
}

// Tick spawns pending vehicles, advances vehicles on nodes, then those on
// edges, and returns the events of this tick. Nodes always go first so a
// vehicle that just entered an edge is not advanced again in the same tick.
func (m *Manager) Tick(tick int64) ([]domain.Event, error) {
	for _, v := range m.toSpawn {
		m.spawn(v, tick)
	}
	m.toSpawn = nil

	for _, occ := range m.nodes {
		if err := m.tickRecord(occ, tick); err != nil {
			m.events.drain()
			return nil, fmt.Errorf("tick %d: %w", tick, err)
		}
	}
	for _, occ := range m.edges {
		if err := m.tickRecord(occ, tick); err != nil {
			m.events.drain()
			return nil, fmt.Errorf("tick %d: %w", tick, err)
		}
	}

	events := m.events.drain()
	m.log.Debug().Int64("tick", tick).Int("events", len(events)).Msg("tick done")
	return events, nil
}

// Reset empties every record and re-queues all vehicles for spawning.
func (m *Manager) Reset() {
	for _, occ := range m.records {
		occ.reset()
	}
	all := m.AllVehicles()
	for _, v := range all {
		v.reset()
	}
	m.vehicles = nil
	m.toSpawn = all
	m.events.drain()
}

// Vehicles returns the spawned vehicles by id.
func (m *Manager) Vehicles() []*Vehicle { return slices.Clone(m.vehicles) }

// AllVehicles returns spawned and pending vehicles by id.
func (m *Manager) AllVehicles() []*Vehicle {
	all := make([]*Vehicle, 0, len(m.vehicles)+len(m.toSpawn))
	all = append(all, m.vehicles...)
	all = append(all, m.toSpawn...)
	slices.SortFunc(all, func(a, b *Vehicle) int { return a.id - b.id })
	return all
}

// OccupiedNodes returns the node records ordered by location.
func (m *Manager) OccupiedNodes() []*Occupied { return slices.Clone(m.nodes) }

// OccupiedEdges returns the edge records in canonical edge order.
func (m *Manager) OccupiedEdges() []*Occupied { return slices.Clone(m.edges) }

// Occupied returns the record of a node or edge of the managed region.
func (m *Manager) Occupied(c domain.Component) (*Occupied, error) {
	if isNilComponent(c) {
		return nil, fmt.Errorf("occupied: nil component: %w", ErrUntracked)
	}
	if c.Region() != m.region.ID() {
		return nil, fmt.Errorf("occupied %s: %w", c.Name(), ErrUntracked)
	}
	occ, ok := m.records[c.Key()]
	if !ok {
		return nil, fmt.Errorf("occupied %s: %w", c.Name(), ErrUntracked)
	}
	return occ, nil
}

func isNilComponent(c domain.Component) bool {
	switch c := c.(type) {
	case nil:
		return true
	case *domain.Node:
		return c == nil
	case *domain.Edge:
		return c == nil
	}
	return false
}

// OccupiedAt returns the node record at loc.
func (m *Manager) OccupiedAt(loc domain.Location) (*Occupied, error) {
	occ, ok := m.records[domain.ComponentKey{A: loc, B: loc}]
	if !ok {
		return nil, fmt.Errorf("occupied %s: %w", loc, ErrUntracked)
	}
	return occ, nil
}

func (m *Manager) OccupiedRestaurant(n *domain.Node) (*Occupied, error) {
	occ, err := m.Occupied(n)
	if err != nil {
		return nil, err
	}
	if occ.kind != OccupiedRestaurant {
		return nil, fmt.Errorf("occupied restaurant %s: %w", n.Name(), ErrNotRestaurant)
	}
	return occ, nil
}

func (m *Manager) OccupiedNeighborhood(n *domain.Node) (*Occupied, error) {
	occ, err := m.Occupied(n)
	if err != nil {
		return nil, err
	}
	if occ.kind != OccupiedNeighborhood {
		return nil, fmt.Errorf("occupied neighborhood %s: %w", n.Name(), ErrNotNeighborhood)
	}
	return occ, nil
}

func (m *Manager) OccupiedRestaurants() []*Occupied   { return m.nodesOfKind(OccupiedRestaurant) }
func (m *Manager) OccupiedNeighborhoods() []*Occupied { return m.nodesOfKind(OccupiedNeighborhood) }

func (m *Manager) nodesOfKind(kind OccupiedKind) []*Occupied {
	var out []*Occupied
	for _, occ := range m.nodes {
		if occ.kind == kind {
			out = append(out, occ)
		}
	}
	return out
}

func (m *Manager) spawn(v *Vehicle, tick int64) {
	occ := m.records[v.start]
	v.occupied = v.start
	occ.add(v, VehicleStats{ArrivedAt: tick})
	m.vehicles = append(m.vehicles, v)
	m.events.push(domain.Event{Tick: tick, Type: domain.EventSpawn, VehicleID: v.id, Node: occ.node})
}

// tickRecord advances the vehicles present in occ. The id snapshot is taken
// first because advancing moves vehicles out of occ.
func (m *Manager) tickRecord(occ *Occupied, tick int64) error {
	if occ.Empty() {
		return nil
	}
	for _, id := range occ.vehicleIDs() {
		o, ok := occ.vehicles[id]
		if !ok {
			continue
		}
		if occ.edge != nil && !readyToLeave(o.stats.ArrivedAt, occ.edge.Duration(), tick) {
			continue
		}
		if err := m.advance(o.vehicle, tick); err != nil {
			return err
		}
	}
	return nil
}

// advance moves v by at most one hop. Exhausted segments without an arrival
// action are skipped in the same call; the loop ends because every iteration
// either returns or removes one segment from the queue.
func (m *Manager) advance(v *Vehicle, tick int64) error {
	for len(v.queue) > 0 {
		seg := v.queue[0]
		if len(seg.nodes) == 0 {
			v.queue = v.queue[1:]
			if seg.onArrival != nil {
				m.events.push(seg.onArrival(v, tick)...)
				return nil
			}
			continue
		}

		next := seg.nodes[0]
		here := m.records[v.occupied]
		if here.edge == nil {
			e, ok := m.region.EdgeBetween(here.node, next)
			if !ok {
				return fmt.Errorf("vehicle %d: %s -> %s: %w", v.id, here.Name(), next.Name(), ErrNoEdge)
			}
			m.enter(m.records[e.Key()], v, tick)
			return nil
		}

		if !here.edge.Connects(next.Location()) {
			return fmt.Errorf("vehicle %d: %s -> %s: %w", v.id, here.Name(), next.Name(), ErrNoEdge)
		}
		dest, ok := m.records[next.Key()]
		if !ok {
			return fmt.Errorf("vehicle %d: %s: %w", v.id, next.Name(), ErrUntracked)
		}
		m.enter(dest, v, tick)
		seg.nodes = seg.nodes[1:]
		if len(seg.nodes) == 0 {
			v.queue = v.queue[1:]
			if seg.onArrival != nil {
				m.events.push(seg.onArrival(v, tick)...)
			}
		}
		return nil
	}
	return nil
}

// enter moves v from its current record into occ and records the arrival.
func (m *Manager) enter(occ *Occupied, v *Vehicle, tick int64) {
	prev := m.records[v.occupied]
	prev.remove(v)
	occ.add(v, VehicleStats{ArrivedAt: tick, Previous: prev})
	v.occupied = occ.key

	ev := domain.Event{Tick: tick, VehicleID: v.id, Previous: prev.Component()}
	switch occ.kind {
	case OccupiedEdge:
		ev.Type = domain.EventArrivedAtEdge
		ev.Edge = occ.edge
	case OccupiedRestaurant:
		ev.Type = domain.EventArrivedAtRestaurant
		ev.Node = occ.node
	case OccupiedNeighborhood:
		ev.Type = domain.EventArrivedAtNeighborhood
		ev.Node = occ.node
	default:
		ev.Type = domain.EventArrivedAtNode
		ev.Node = occ.node
	}
	m.events.push(ev)
}
