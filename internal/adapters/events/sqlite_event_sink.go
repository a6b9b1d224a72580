package events

import (
	"context"
	"database/sql"
	"delivery-simulation/internal/domain"
	"errors"
	"fmt"
)

// SQLite backed event store, same layout as the Postgres sim_events table.
type SqliteEventSink struct {
	DB *sql.DB
}

func NewSqliteEventSink(db *sql.DB) *SqliteEventSink {
	return &SqliteEventSink{DB: db}
}

func (s *SqliteEventSink) Publish(ctx context.Context, runID string, tick int64, events []domain.Event) error {
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
	INSERT OR REPLACE INTO sim_events (
		run_id,
		tick,
		seq,
		event_type,
		vehicle_id,
		component,
		previous,
		order_id
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?);
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

// ListRecords reads back the stored events of a run in emission order.
func (s *SqliteEventSink) ListRecords(ctx context.Context, runID string) ([]Record, error) {
	if s.DB == nil {
		return nil, errors.New("event sink: db is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT
		run_id,
		tick,
		seq,
		event_type,
		vehicle_id,
		component,
		previous,
		order_id
	FROM sim_events
	WHERE run_id = ?
	ORDER BY tick, seq;
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("list events: query sim_events table: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var orderID sql.NullInt64
		if err := rows.Scan(&r.RunID, &r.Tick, &r.Seq, &r.Type, &r.VehicleID, &r.Component, &r.Previous, &orderID); err != nil {
			return nil, fmt.Errorf("list events: scan row: %w", err)
		}
		if orderID.Valid {
			id := int(orderID.Int64)
			r.OrderID = &id
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: row iteration: %w", err)
	}

	return out, nil
}
