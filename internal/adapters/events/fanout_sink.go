package events

import (
	"context"
	"delivery-simulation/internal/domain"
	"delivery-simulation/internal/ports"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// FanoutSink publishes to several sinks concurrently and waits for all of them.
type FanoutSink struct {
	sinks []ports.EventSink
}

func NewFanoutSink(sinks ...ports.EventSink) *FanoutSink {
	return &FanoutSink{sinks: sinks}
}

func (f *FanoutSink) Publish(ctx context.Context, runID string, tick int64, events []domain.Event) error {
	g, ctx := errgroup.WithContext(ctx)
	for i, s := range f.sinks {
		g.Go(func() error {
			if err := s.Publish(ctx, runID, tick, events); err != nil {
				return fmt.Errorf("sink #%d: %w", i+1, err)
			}
			return nil
		})
	}
	return g.Wait()
}
