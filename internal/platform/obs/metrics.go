package obs

import (
	"context"
	"delivery-simulation/internal/domain"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "delivery-simulation/internal/platform/obs"

func Meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// SimMetrics counts simulated ticks and the events they produce.
type SimMetrics struct {
	ticks  metric.Int64Counter
	events metric.Int64Counter
}

// NewSimMetrics registers the counters on m. Use Meter() for the global
// provider, which is a no-op until one is installed.
func NewSimMetrics(m metric.Meter) (*SimMetrics, error) {
	var (
		s   SimMetrics
		err error
	)

	s.ticks, err = m.Int64Counter(
		"sim.ticks",
		metric.WithDescription("Total simulation ticks executed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ticks counter: %w", err)
	}

	s.events, err = m.Int64Counter(
		"sim.events",
		metric.WithDescription("Total simulation events by type"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating events counter: %w", err)
	}

	return &s, nil
}

// RecordTick adds one tick and the per-type event counts.
func (s *SimMetrics) RecordTick(ctx context.Context, events []domain.Event) {
	if s == nil {
		return
	}
	s.ticks.Add(ctx, 1)

	counts := make(map[domain.EventType]int64)
	for _, e := range events {
		counts[e.Type]++
	}
	for typ, n := range counts {
		s.events.Add(ctx, n, metric.WithAttributes(attribute.String("type", typ.String())))
	}
}
