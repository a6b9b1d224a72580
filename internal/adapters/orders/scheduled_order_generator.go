package orders

import (
	"cmp"
	"context"
	"delivery-simulation/internal/domain"
	"delivery-simulation/internal/ports"
	"fmt"
	"slices"
)

// ScheduledOrderGenerator replays a fixed order schedule: each order is
// returned at the tick it was scheduled for. It is stateless, so a reset run
// sees the same orders again.
type ScheduledOrderGenerator struct {
	byTick map[int64][]*domain.ConfirmedOrder
	total  int
}

func NewScheduledOrderGenerator(schedule []ports.ScheduledOrder) *ScheduledOrderGenerator {
	g := &ScheduledOrderGenerator{byTick: make(map[int64][]*domain.ConfirmedOrder)}
	for _, s := range schedule {
		g.byTick[s.ReceivedAt] = append(g.byTick[s.ReceivedAt], s.Order)
		g.total++
	}
	for _, orders := range g.byTick {
		slices.SortStableFunc(orders, func(a, b *domain.ConfirmedOrder) int { return cmp.Compare(a.ID(), b.ID()) })
	}
	return g
}

// LoadScheduledOrderGenerator reads the schedule from repo.
func LoadScheduledOrderGenerator(
	ctx context.Context,
	repo ports.OrderRepository,
	region *domain.Region,
) (*ScheduledOrderGenerator, error) {
	schedule, err := repo.ListOrders(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("load order schedule: %w", err)
	}
	return NewScheduledOrderGenerator(schedule), nil
}

func (g *ScheduledOrderGenerator) GenerateOrders(tick int64) ([]*domain.ConfirmedOrder, error) {
	return slices.Clone(g.byTick[tick]), nil
}

// Len is the number of scheduled orders.
func (g *ScheduledOrderGenerator) Len() int { return g.total }
