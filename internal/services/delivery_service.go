package services

import (
	"cmp"
	"delivery-simulation/internal/domain"
	"delivery-simulation/internal/simulation"
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog"
)

var ErrUndeliverable = errors.New("order destination is not a neighborhood of the region")

// DeliveryService assigns orders to vehicles on top of a Manager tick.
type DeliveryService interface {
	Tick(tick int64, newOrders []*domain.ConfirmedOrder) ([]domain.Event, error)
	Manager() *simulation.Manager
	PendingOrders() []*domain.ConfirmedOrder
	Reset()
}

// BasicDeliveryService is a greedy FIFO policy.
//
// Pending orders are kept sorted by delivery window start. Every idle vehicle
// waiting at a restaurant takes that restaurant's earliest orders while they
// fit, then drives them out one neighborhood at a time and returns home.
// No attempt is made to optimise routes or respect delivery windows.
type BasicDeliveryService struct {
	manager   *simulation.Manager
	pending   []*domain.ConfirmedOrder
	stopOrder StopOrder
	log       zerolog.Logger

	// failures raised inside arrival actions during the current tick
	failures []error
}

type DeliveryOption func(*BasicDeliveryService)

// WithStopOrder sets how a dispatched vehicle orders its stops. The default
// is InLoadOrder.
func WithStopOrder(order StopOrder) DeliveryOption {
	return func(s *BasicDeliveryService) { s.stopOrder = order }
}

func NewBasicDeliveryService(
	manager *simulation.Manager,
	log zerolog.Logger,
	opts ...DeliveryOption,
) (*BasicDeliveryService, error) {
	if manager == nil {
		return nil, errors.New("new delivery service: manager is nil")
	}
	s := &BasicDeliveryService{
		manager:   manager,
		stopOrder: InLoadOrder,
		log:       log.With().Str("component", "delivery").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *BasicDeliveryService) Manager() *simulation.Manager { return s.manager }

// PendingOrders returns the orders not yet loaded, earliest window first.
func (s *BasicDeliveryService) PendingOrders() []*domain.ConfirmedOrder {
	return slices.Clone(s.pending)
}

// Reset resets the manager and drops all pending orders.
func (s *BasicDeliveryService) Reset() {
	s.manager.Reset()
	s.pending = nil
	s.failures = nil
}

// Tick advances the manager, records newOrders, loads idle vehicles and
// dispatches them. Events come back in that order.
func (s *BasicDeliveryService) Tick(tick int64, newOrders []*domain.ConfirmedOrder) ([]domain.Event, error) {
	region := s.manager.Region()
	for _, o := range newOrders {
		n, ok := region.Node(o.Location())
		if !ok || !n.IsNeighborhood() {
			return nil, fmt.Errorf("delivery tick %d: order %d to %s: %w", tick, o.ID(), o.Location(), ErrUndeliverable)
		}
	}

	events, err := s.manager.Tick(tick)
	if err != nil {
		s.failures = nil
		return nil, fmt.Errorf("delivery tick %d: %w", tick, err)
	}
	if len(s.failures) > 0 {
		err := errors.Join(s.failures...)
		s.failures = nil
		return nil, fmt.Errorf("delivery tick %d: %w", tick, err)
	}

	for _, o := range newOrders {
		events = append(events, domain.Event{
			Tick:      tick,
			Type:      domain.EventOrderReceived,
			VehicleID: domain.NoVehicle,
			Node:      o.Restaurant(),
			Order:     o,
		})
	}
	s.pending = append(s.pending, newOrders...)
	slices.SortStableFunc(s.pending, func(a, b *domain.ConfirmedOrder) int {
		return cmp.Compare(a.DeliveryInterval().Start, b.DeliveryInterval().Start)
	})

	loaded, err := s.load(tick)
	if err != nil {
		return nil, fmt.Errorf("delivery tick %d: %w", tick, err)
	}
	events = append(events, loaded...)

	if err := s.dispatch(); err != nil {
		return nil, fmt.Errorf("delivery tick %d: %w", tick, err)
	}

	return events, nil
}

// load fills idle vehicles at each restaurant with that restaurant's pending
// orders, earliest window first. A vehicle stops taking orders at the first
// one that does not fit.
func (s *BasicDeliveryService) load(tick int64) ([]domain.Event, error) {
	var events []domain.Event
	for _, restaurant := range s.manager.OccupiedRestaurants() {
		loc := restaurant.Node().Location()
		for _, v := range restaurant.Vehicles() {
			if !v.Idle() {
				continue
			}
			for i := 0; i < len(s.pending); {
				o := s.pending[i]
				if o.Restaurant().Location() != loc {
					i++
					continue
				}
				if v.Load()+o.Weight() > v.Capacity() {
					break
				}
				ev, err := restaurant.LoadOrder(v, o, tick)
				if err != nil {
					return nil, err
				}
				events = append(events, ev)
				s.pending = slices.Delete(s.pending, i, i+1)
			}
		}
	}
	return events, nil
}

// dispatch sends every idle vehicle that carries orders on a delivery round:
// one stop per destination, ordered by stopOrder, then back to where it stands.
func (s *BasicDeliveryService) dispatch() error {
	region := s.manager.Region()
	for _, v := range s.manager.Vehicles() {
		if !v.Idle() || len(v.Orders()) == 0 {
			continue
		}
		home := v.Occupied().Node()
		if home == nil {
			continue
		}

		var stops []*domain.Node
		byStop := map[domain.Location][]*domain.ConfirmedOrder{}
		for _, o := range v.Orders() {
			if _, ok := byStop[o.Location()]; !ok {
				target, ok := region.Node(o.Location())
				if !ok {
					return fmt.Errorf("dispatch vehicle %d: %s: %w", v.ID(), o.Location(), ErrUndeliverable)
				}
				stops = append(stops, target)
			}
			byStop[o.Location()] = append(byStop[o.Location()], o)
		}

		trip := make([]simulation.Stop, 0, len(stops)+1)
		for _, target := range s.stopOrder(home, stops) {
			trip = append(trip, simulation.Stop{Target: target, OnArrival: s.deliverAll(byStop[target.Location()])})
		}
		trip = append(trip, simulation.Stop{Target: home})
		if err := v.MoveQueuedTrip(trip); err != nil {
			return fmt.Errorf("dispatch vehicle %d: %w", v.ID(), err)
		}
		s.log.Debug().Int("vehicle", v.ID()).Int("stops", len(stops)).Str("home", home.Name()).Msg("dispatched")
	}
	return nil
}

// deliverAll hands over orders at the neighborhood the vehicle arrived at.
// Failures are reported by the Tick that triggered the arrival.
func (s *BasicDeliveryService) deliverAll(orders []*domain.ConfirmedOrder) simulation.ArrivalAction {
	return func(v *simulation.Vehicle, tick int64) []domain.Event {
		var events []domain.Event
		for _, o := range orders {
			ev, err := v.Occupied().DeliverOrder(v, o, tick)
			if err != nil {
				s.failures = append(s.failures, err)
				continue
			}
			events = append(events, ev)
		}
		return events
	}
}
