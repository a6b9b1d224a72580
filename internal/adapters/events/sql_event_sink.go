package events

import (
	"context"
	"database/sql"
	"delivery-simulation/internal/domain"
	"delivery-simulation/internal/platform/obs"
	"errors"
	"fmt"
)

// SQLEventSink stores events in the Postgres sim_events table.
type SQLEventSink struct {
	DB *sql.DB
}

func NewSQLEventSink(db *sql.DB) *SQLEventSink {
	return &SQLEventSink{DB: db}
}

func (s *SQLEventSink) Publish(ctx context.Context, runID string, tick int64, events []domain.Event) (err error) {
	defer obs.Time(ctx, "events.sql.Publish")(&err)

	if s.DB == nil {
		return errors.New("event sink: db is nil")
	}
	if len(events) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert events: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO sim_events (run_id, tick, seq, event_type, vehicle_id, component, previous, order_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (run_id, tick, seq) DO NOTHING;
	`)
	if err != nil {
		return fmt.Errorf("insert events: db prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range Flatten(runID, tick, events) {
		if _, err := stmt.ExecContext(ctx, r.RunID, r.Tick, r.Seq, r.Type, r.VehicleID, r.Component, r.Previous, r.OrderID); err != nil {
			return fmt.Errorf("insert events tick=%d seq=%d: %w", r.Tick, r.Seq, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert events commit: %w", err)
	}

	return nil
}
