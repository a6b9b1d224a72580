package simulation

import "delivery-simulation/internal/domain"

// eventBuffer collects the events of the tick in progress.
type eventBuffer struct {
	events []domain.Event
}

func (b *eventBuffer) push(events ...domain.Event) {
	b.events = append(b.events, events...)
}

// drain hands out everything queued so far and leaves the buffer empty.
func (b *eventBuffer) drain() []domain.Event {
	out := b.events
	b.events = nil
	if out == nil {
		return []domain.Event{}
	}
	return out
}
