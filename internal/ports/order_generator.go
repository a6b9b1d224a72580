package ports

import "delivery-simulation/internal/domain"

// Source of the orders that arrive during a tick.
type OrderGenerator interface {
	// Return the orders received at the given tick. Called once per tick.
	GenerateOrders(tick int64) ([]*domain.ConfirmedOrder, error)
}
