package events

import (
	"slices"
	"time"
)

// DomainEvent is a fact an aggregate announces after a state change.
type DomainEvent interface {
	EventName() string
	AggregateID() string
	OccurredAt() time.Time
}

// Recorder is embedded by aggregates. Events stay buffered until the
// application layer drains them into the outbox.
type Recorder struct {
	buffered []DomainEvent
}

func (r *Recorder) Record(ev DomainEvent) {
	if ev != nil {
		r.buffered = append(r.buffered, ev)
	}
}

// PendingEvents returns a copy of the buffer without consuming it.
func (r *Recorder) PendingEvents() []DomainEvent { return slices.Clone(r.buffered) }

func (r *Recorder) DrainEvents() []DomainEvent {
	out := r.buffered
	r.buffered = nil
	return out
}

func (r *Recorder) ClearEvents() { r.buffered = nil }
