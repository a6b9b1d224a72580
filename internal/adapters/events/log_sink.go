package events

import (
	"context"
	"delivery-simulation/internal/domain"

	"github.com/rs/zerolog"
)

// LogEventSink writes one debug line per event.
type LogEventSink struct {
	log zerolog.Logger
}

func NewLogEventSink(log zerolog.Logger) *LogEventSink {
	return &LogEventSink{log: log.With().Str("component", "events").Logger()}
}

func (s *LogEventSink) Publish(_ context.Context, runID string, tick int64, events []domain.Event) error {
	for _, r := range Flatten(runID, tick, events) {
		ev := s.log.Debug().
			Str("run", r.RunID).
			Int64("tick", r.Tick).
			Int("seq", r.Seq).
			Str("type", r.Type).
			Str("at", r.Component)
		if r.VehicleID != domain.NoVehicle {
			ev = ev.Int("vehicle", r.VehicleID)
		}
		if r.Previous != "" {
			ev = ev.Str("from", r.Previous)
		}
		if r.OrderID != nil {
			ev = ev.Int("order", *r.OrderID)
		}
		ev.Msg("event")
	}
	return nil
}
