package domain

import (
	"fmt"
	"slices"
)

// TickInterval is a closed range of ticks.
type TickInterval struct {
	Start int64
	End   int64
}

func (i TickInterval) Duration() int64 { return i.End - i.Start }

func (i TickInterval) Contains(tick int64) bool { return tick >= i.Start && tick <= i.End }

func (i TickInterval) String() string { return fmt.Sprintf("[%d,%d]", i.Start, i.End) }

// ConfirmedOrder is an accepted delivery request. It is immutable once created.
type ConfirmedOrder struct {
	id         int
	location   Location
	restaurant *Node
	interval   TickInterval
	foods      []string
	weight     float64
}

func NewConfirmedOrder(
	id int,
	location Location,
	restaurant *Node,
	interval TickInterval,
	foods []string,
	weight float64,
) (*ConfirmedOrder, error) {
	if restaurant == nil || !restaurant.IsRestaurant() {
		return nil, fmt.Errorf("new order %d: source must be a restaurant: %w", id, ErrInvalidOrder)
	}
	if interval.Start > interval.End {
		return nil, fmt.Errorf("new order %d: interval %s is reversed: %w", id, interval, ErrInvalidOrder)
	}
	if weight < 0 {
		return nil, fmt.Errorf("new order %d: negative weight %v: %w", id, weight, ErrInvalidOrder)
	}

	return &ConfirmedOrder{
		id:         id,
		location:   location,
		restaurant: restaurant,
		interval:   interval,
		foods:      slices.Clone(foods),
		weight:     weight,
	}, nil
}

func (o *ConfirmedOrder) ID() int                        { return o.id }
func (o *ConfirmedOrder) Location() Location             { return o.location }
func (o *ConfirmedOrder) Restaurant() *Node              { return o.restaurant }
func (o *ConfirmedOrder) DeliveryInterval() TickInterval { return o.interval }
func (o *ConfirmedOrder) Foods() []string                { return slices.Clone(o.foods) }
func (o *ConfirmedOrder) Weight() float64                { return o.weight }

func (o *ConfirmedOrder) String() string {
	return fmt.Sprintf("Order(id=%d, to=%s, from=%s, interval=%s, weight=%.2f)",
		o.id, o.location, o.restaurant.Location(), o.interval, o.weight)
}

// TotalWeight sums the weight of the given orders.
func TotalWeight(orders []*ConfirmedOrder) float64 {
	total := 0.0
	for _, o := range orders {
		total += o.weight
	}
	return total
}
