package repositories

import (
	"context"
	"database/sql"
	"delivery-simulation/internal/domain"
	"delivery-simulation/internal/platform/obs"
	"errors"
	"fmt"
	"strings"
)

func parseKind(kind string) (domain.NodeKind, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "node", "plain":
		return domain.KindPlain, nil
	case "restaurant":
		return domain.KindRestaurant, nil
	case "neighborhood":
		return domain.KindNeighborhood, nil
	}
	return 0, fmt.Errorf("unknown node kind %q", kind)
}

// SQLite-backed implementation of the RegionRepository port.
type SqliteRegionRepository struct{ DB *sql.DB }

func NewSqliteRegionRepository(db *sql.DB) *SqliteRegionRepository {
	return &SqliteRegionRepository{DB: db}
}

// LoadRegion rebuilds the region, running the usual node and edge validation.
func (s *SqliteRegionRepository) LoadRegion(ctx context.Context) (_ *domain.Region, err error) {
	defer obs.Time(ctx, "region.repo.LoadRegion")(&err)

	if s.DB == nil {
		return nil, errors.New("sqlite region repository: DB is nil")
	}

	food, err := s.loadFood(ctx)
	if err != nil {
		return nil, err
	}

	b := domain.NewBuilder()
	// Each query's rows are closed before the next one starts; in-memory
	// databases run on a single connection.
	if err := s.loadNodes(ctx, b, food); err != nil {
		return nil, err
	}
	if err := s.loadEdges(ctx, b); err != nil {
		return nil, err
	}

	region, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("load region: %w", err)
	}
	return region, nil
}

func (s *SqliteRegionRepository) loadFood(ctx context.Context) (map[domain.Location][]string, error) {
	rows, err := s.DB.QueryContext(ctx, `
	SELECT
		x,
		y,
		food
	FROM restaurant_food
	ORDER BY x, y, position;
	`)
	if err != nil {
		return nil, fmt.Errorf("load region: query restaurant_food table: %w", err)
	}
	defer rows.Close()

	out := make(map[domain.Location][]string)
	for rows.Next() {
		var loc domain.Location
		var food string
		if err := rows.Scan(&loc.X, &loc.Y, &food); err != nil {
			return nil, fmt.Errorf("load region: scan food row: %w", err)
		}
		out[loc] = append(out[loc], food)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load region: food iteration: %w", err)
	}

	return out, nil
}

func (s *SqliteRegionRepository) loadNodes(ctx context.Context, b *domain.Builder, food map[domain.Location][]string) error {
	rows, err := s.DB.QueryContext(ctx, `
	SELECT
		x,
		y,
		name,
		kind
	FROM nodes
	ORDER BY x, y;
	`)
	if err != nil {
		return fmt.Errorf("load region: query nodes table: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var loc domain.Location
		var name, kind string
		if err := rows.Scan(&loc.X, &loc.Y, &name, &kind); err != nil {
			return fmt.Errorf("load region: scan node row: %w", err)
		}
		k, err := parseKind(kind)
		if err != nil {
			return fmt.Errorf("load region: node %q: %w", name, err)
		}
		switch k {
		case domain.KindRestaurant:
			b.AddRestaurant(name, loc, food[loc]...)
		case domain.KindNeighborhood:
			b.AddNeighborhood(name, loc)
		default:
			b.AddNode(name, loc)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load region: node iteration: %w", err)
	}

	return nil
}

func (s *SqliteRegionRepository) loadEdges(ctx context.Context, b *domain.Builder) error {
	rows, err := s.DB.QueryContext(ctx, `
	SELECT
		a_x,
		a_y,
		b_x,
		b_y,
		name,
		duration
	FROM edges
	ORDER BY a_x, a_y, b_x, b_y;
	`)
	if err != nil {
		return fmt.Errorf("load region: query edges table: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var from, to domain.Location
		var name string
		var duration int64
		if err := rows.Scan(&from.X, &from.Y, &to.X, &to.Y, &name, &duration); err != nil {
			return fmt.Errorf("load region: scan edge row: %w", err)
		}
		b.AddEdge(name, from, to, duration)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load region: edge iteration: %w", err)
	}

	return nil
}
