package cache

import (
	"context"
	"database/sql"
	"delivery-simulation/internal/domain"
	"delivery-simulation/internal/platform/obs"
	"errors"
	"fmt"
)

// SQLPathCache is a Postgres-backed cache of computed paths.
type SQLPathCache struct {
	DB        *sql.DB
	Namespace string
}

func NewSQLPathCache(db *sql.DB, namespace string) *SQLPathCache {
	return &SQLPathCache{DB: db, Namespace: namespace}
}

// Fetch the cached hops from one location to another.
func (s *SQLPathCache) Get(
	ctx context.Context,
	from, to domain.Location,
) (_ []domain.Location, _ bool, err error) {
	defer obs.Time(ctx, "path.cache.Get")(&err)

	if s.DB == nil {
		return nil, false, errors.New("path cache: db is nil")
	}

	q := `
	SELECT hops
	FROM path_cache
	WHERE origin = $1
		AND destination = $2;
	`

	var raw string
	err = s.DB.QueryRowContext(ctx, q, locationKey(s.Namespace, from), locationKey(s.Namespace, to)).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get path cache: query path_cache table: %w", err)
	}

	hops, err := decodeHops(raw)
	if err != nil {
		return nil, false, fmt.Errorf("get path cache: %w", err)
	}
	return hops, true, nil
}

// Store the hops from one location to another.
func (s *SQLPathCache) Put(ctx context.Context, from, to domain.Location, hops []domain.Location) error {
	if s.DB == nil {
		return errors.New("path cache: db is nil")
	}

	raw, err := encodeHops(hops)
	if err != nil {
		return fmt.Errorf("insert path cache: %w", err)
	}

	_, err = s.DB.ExecContext(ctx, `
	INSERT INTO path_cache (origin, destination, hops)
	VALUES ($1, $2, $3)
	ON CONFLICT (origin, destination) DO UPDATE
	SET hops = EXCLUDED.hops;
	`, locationKey(s.Namespace, from), locationKey(s.Namespace, to), raw)
	if err != nil {
		return fmt.Errorf("insert path cache %s -> %s: %w", from, to, err)
	}

	return nil
}
