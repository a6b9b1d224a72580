package cache

import (
	"context"
	"database/sql"
	"delivery-simulation/internal/domain"
	"errors"
	"fmt"
)

// SQLite backed cache of computed paths.
type SqlitePathCache struct {
	DB        *sql.DB
	Namespace string
}

func NewSqlitePathCache(db *sql.DB, namespace string) *SqlitePathCache {
	return &SqlitePathCache{DB: db, Namespace: namespace}
}

func (s *SqlitePathCache) Get(ctx context.Context, from, to domain.Location) ([]domain.Location, bool, error) {
	if s.DB == nil {
		return nil, false, errors.New("path cache: db is nil")
	}

	var raw string
	err := s.DB.QueryRowContext(ctx, `
	SELECT hops
	FROM path_cache
	WHERE origin = ?
		AND destination = ?;
	`, locationKey(s.Namespace, from), locationKey(s.Namespace, to)).Scan(&raw)
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

func (s *SqlitePathCache) Put(ctx context.Context, from, to domain.Location, hops []domain.Location) error {
	if s.DB == nil {
		return errors.New("path cache: db is nil")
	}

	raw, err := encodeHops(hops)
	if err != nil {
		return fmt.Errorf("insert path cache: %w", err)
	}

	_, err = s.DB.ExecContext(ctx, `
	INSERT OR REPLACE INTO path_cache (
		origin,
		destination,
		hops
	)
	VALUES (?, ?, ?);
	`, locationKey(s.Namespace, from), locationKey(s.Namespace, to), raw)
	if err != nil {
		return fmt.Errorf("insert path cache %s -> %s: %w", from, to, err)
	}

	return nil
}
