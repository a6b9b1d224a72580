package events

import (
	"context"
	"delivery-simulation/internal/domain"
	"slices"
	"sync"
)

// MemorySink keeps published events in memory. Used by tests and the API's
// recent-events view.
type MemorySink struct {
	mu      sync.Mutex
	limit   int
	records []Record
	events  []domain.Event
}

// NewMemorySink keeps every event.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// NewRecentSink keeps only the last limit events.
func NewRecentSink(limit int) *MemorySink {
	return &MemorySink{limit: limit}
}

func (m *MemorySink) Publish(_ context.Context, runID string, tick int64, events []domain.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = append(m.events, events...)
	m.records = append(m.records, Flatten(runID, tick, events)...)
	if m.limit > 0 && len(m.records) > m.limit {
		drop := len(m.records) - m.limit
		m.records = slices.Delete(m.records, 0, drop)
		m.events = slices.Delete(m.events, 0, drop)
	}
	return nil
}

func (m *MemorySink) Events() []domain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.events)
}

// Records returns the last n records, or all of them when n <= 0.
func (m *MemorySink) Records(n int) []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n <= 0 || n > len(m.records) {
		return slices.Clone(m.records)
	}
	return slices.Clone(m.records[len(m.records)-n:])
}

func (m *MemorySink) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = nil
	m.events = nil
}
