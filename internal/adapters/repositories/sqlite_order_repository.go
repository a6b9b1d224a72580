package repositories

import (
	"context"
	"database/sql"
	"delivery-simulation/internal/domain"
	"delivery-simulation/internal/ports"
	"encoding/json"
	"errors"
	"fmt"
)

// SQLite-backed implementation of the OrderRepository port.
type SqliteOrderRepository struct{ DB *sql.DB }

func NewSqliteOrderRepository(db *sql.DB) *SqliteOrderRepository {
	return &SqliteOrderRepository{DB: db}
}

// Return all scheduled orders, resolving restaurants against region.
func (s *SqliteOrderRepository) ListOrders(ctx context.Context, region *domain.Region) ([]ports.ScheduledOrder, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite order repository: DB is nil")
	}
	if region == nil {
		return nil, errors.New("list orders: region is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT
		order_id,
		received_at,
		restaurant_x,
		restaurant_y,
		destination_x,
		destination_y,
		window_start,
		window_end,
		foods,
		weight
	FROM orders
	ORDER BY received_at, order_id;
	`)
	if err != nil {
		return nil, fmt.Errorf("list orders: query orders table: %w", err)
	}
	defer rows.Close()

	out := make([]ports.ScheduledOrder, 0, 64)
	for rows.Next() {
		var (
			id          int
			receivedAt  int64
			restaurant  domain.Location
			destination domain.Location
			window      domain.TickInterval
			foodsJSON   string
			weight      float64
		)
		if err := rows.Scan(
			&id, &receivedAt,
			&restaurant.X, &restaurant.Y,
			&destination.X, &destination.Y,
			&window.Start, &window.End,
			&foodsJSON, &weight,
		); err != nil {
			return nil, fmt.Errorf("list orders: scan row: %w", err)
		}

		var foods []string
		if err := json.Unmarshal([]byte(foodsJSON), &foods); err != nil {
			return nil, fmt.Errorf("list orders: order_id=%d: decode foods: %w", id, err)
		}

		source, ok := region.Node(restaurant)
		if !ok {
			return nil, fmt.Errorf("list orders: order_id=%d: restaurant %s: %w", id, restaurant, domain.ErrMissingEndpoint)
		}
		order, err := domain.NewConfirmedOrder(id, destination, source, window, foods, weight)
		if err != nil {
			return nil, fmt.Errorf("list orders: %w", err)
		}
		out = append(out, ports.ScheduledOrder{ReceivedAt: receivedAt, Order: order})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: row iteration: %w", err)
	}

	return out, nil
}
