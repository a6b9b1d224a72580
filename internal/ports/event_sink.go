package ports

import (
	"context"
	"delivery-simulation/internal/domain"
)

// Consumer of the per-tick event list (telemetry, persistence, raters).
type EventSink interface {
	// Receive the events of one tick of the run identified by runID.
	Publish(ctx context.Context, runID string, tick int64, events []domain.Event) error
}
