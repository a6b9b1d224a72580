package ports

import (
	"context"
	"delivery-simulation/internal/domain"
)

// Port: a boundary for materialising the road graph from a data source.
type RegionRepository interface {
	LoadRegion(ctx context.Context) (*domain.Region, error)
}

// Port: a boundary for retrieving the scheduled orders of a region.
type OrderRepository interface {
	// Retrieve all orders, resolving restaurants against the given region.
	ListOrders(ctx context.Context, region *domain.Region) ([]ScheduledOrder, error)
}

// An order together with the tick it is received at.
type ScheduledOrder struct {
	ReceivedAt int64
	Order      *domain.ConfirmedOrder
}
