package events

import (
	"delivery-simulation/internal/domain"
)

// Record is the flat, storable form of a domain event.
type Record struct {
	RunID     string
	Tick      int64
	Seq       int
	Type      string
	VehicleID int
	Component string
	Previous  string
	OrderID   *int
}

// Flatten converts the events of one tick, numbering them in emission order.
func Flatten(runID string, tick int64, events []domain.Event) []Record {
	out := make([]Record, 0, len(events))
	for i, e := range events {
		r := Record{
			RunID:     runID,
			Tick:      tick,
			Seq:       i,
			Type:      e.Type.String(),
			VehicleID: e.VehicleID,
			Component: e.ComponentName(),
		}
		if e.Previous != nil {
			r.Previous = e.Previous.Name()
		}
		if e.Order != nil {
			id := e.Order.ID()
			r.OrderID = &id
		}
		out = append(out, r)
	}
	return out
}
