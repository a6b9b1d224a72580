package simulation

import (
	"errors"
	"fmt"
)

var (
	// Invalid moves.
	ErrInvalidMove = errors.New("vehicle cannot move to its own position")
	ErrNoPath      = errors.New("no path between nodes")
	ErrNoEdge      = errors.New("no edge between consecutive path nodes")

	// Capacity.
	ErrCapacityExceeded = errors.New("vehicle capacity exceeded")

	// Lookup misses.
	ErrUntracked         = errors.New("component is not tracked by this manager")
	ErrNotRestaurant     = errors.New("node is not a restaurant")
	ErrNotNeighborhood   = errors.New("node is not a neighborhood")
	ErrVehicleNotPresent = errors.New("vehicle is not at this component")
	ErrForeignOrder      = errors.New("order does not belong to this component")
	ErrOrderNotCarried   = errors.New("vehicle does not carry the order")
)

// OverloadError reports a load that would push a vehicle over its capacity.
type OverloadError struct {
	VehicleID int
	Capacity  float64
	Weight    float64
}

func (e *OverloadError) Error() string {
	return fmt.Sprintf("vehicle %d overloaded: weight %.2f exceeds capacity %.2f", e.VehicleID, e.Weight, e.Capacity)
}

func (e *OverloadError) Unwrap() error { return ErrCapacityExceeded }
