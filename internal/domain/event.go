package domain

import "strconv"

// EventType tags the fact an Event records.
type EventType int

const (
	EventSpawn EventType = iota
	EventArrivedAtNode
	EventArrivedAtRestaurant
	EventArrivedAtNeighborhood
	EventArrivedAtEdge
	EventOrderReceived
	EventLoadOrder
	EventDeliverOrder
)

var eventTypeNames = [...]string{
	EventSpawn:                 "spawn",
	EventArrivedAtNode:         "arrived_at_node",
	EventArrivedAtRestaurant:   "arrived_at_restaurant",
	EventArrivedAtNeighborhood: "arrived_at_neighborhood",
	EventArrivedAtEdge:         "arrived_at_edge",
	EventOrderReceived:         "order_received",
	EventLoadOrder:             "load_order",
	EventDeliverOrder:          "deliver_order",
}

func (t EventType) String() string {
	if t >= 0 && int(t) < len(eventTypeNames) {
		return eventTypeNames[t]
	}
	return "event(" + strconv.Itoa(int(t)) + ")"
}

// IsArrival reports whether the event records a vehicle entering a component.
func (t EventType) IsArrival() bool {
	switch t {
	case EventArrivedAtNode, EventArrivedAtRestaurant, EventArrivedAtNeighborhood, EventArrivedAtEdge:
		return true
	}
	return false
}

// NoVehicle is the VehicleID of events not tied to a vehicle.
const NoVehicle = -1

// Event is a tick-stamped fact produced during a simulation tick.
// Fields that do not apply to the event type are left zero.
type Event struct {
	Tick      int64
	Type      EventType
	VehicleID int

	// Node is set for spawn, node arrivals, load and deliver events.
	Node *Node
	// Edge is set for edge arrivals.
	Edge *Edge
	// Previous is the component the vehicle left, nil on spawn.
	Previous Component
	Order    *ConfirmedOrder
}

// ComponentName returns the name of the node or edge the event happened at.
func (e Event) ComponentName() string {
	switch {
	case e.Node != nil:
		return e.Node.Name()
	case e.Edge != nil:
		return e.Edge.Name()
	}
	return ""
}
