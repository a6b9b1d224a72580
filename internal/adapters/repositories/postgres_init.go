package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the Postgres event store and path cache tables.
func InitPostgresSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init postgres schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init postgres schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	statements := []string{
		`
	CREATE TABLE IF NOT EXISTS sim_events (
		run_id TEXT NOT NULL,
		tick BIGINT NOT NULL,
		seq INTEGER NOT NULL,
		event_type TEXT NOT NULL,
		vehicle_id INTEGER NOT NULL,
		component TEXT NOT NULL,
		previous TEXT NOT NULL,
		order_id INTEGER,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (run_id, tick, seq)
	);
	`,
		`
	CREATE TABLE IF NOT EXISTS path_cache (
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		hops TEXT NOT NULL,
		PRIMARY KEY (origin, destination)
	);
	`,
		`
	CREATE INDEX IF NOT EXISTS idx_sim_events_type
	ON sim_events(run_id, event_type);
	`,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init postgres schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init postgres schema: commit tx: %w", err)
	}

	return nil
}
