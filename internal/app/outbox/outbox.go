package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"

	"gowaay/internal/domain/shared/events"
)

// EventRecord is a domain event serialized for the relay. ID doubles as the
// CloudEvent id downstream.
type EventRecord struct {
	ID         string
	Name       string
	Payload    []byte
	OccurredAt time.Time
	Aggregate  string
	Headers    map[string]string
}

// Outbox stages records during a command and persists them on Flush, inside
// the command's unit.
type Outbox interface {
	Add(ctx context.Context, record EventRecord) error
	Flush(ctx context.Context) error
}

type EventEncoder interface {
	Encode(ctx context.Context, ev events.DomainEvent) (EventRecord, error)
}

// JSONEventEncoder marshals events as JSON. Headers, when set, contributes
// per-request metadata such as a correlation id.
type JSONEventEncoder struct {
	NewID   func() string
	Headers func(ctx context.Context) map[string]string
}

func (e JSONEventEncoder) Encode(ctx context.Context, ev events.DomainEvent) (EventRecord, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return EventRecord{}, fmt.Errorf("encode %s: %w", ev.EventName(), err)
	}
	newID := e.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	headers := map[string]string{"event-type": ev.EventName()}
	if e.Headers != nil {
		maps.Copy(headers, e.Headers(ctx))
	}
	return EventRecord{
		ID:         newID(),
		Name:       ev.EventName(),
		Payload:    payload,
		OccurredAt: ev.OccurredAt(),
		Aggregate:  ev.AggregateID(),
		Headers:    headers,
	}, nil
}

// Aggregate is anything that buffers domain events.
type Aggregate interface {
	DrainEvents() []events.DomainEvent
}

// RecordAggregates drains aggs in order and stages their events. Nil
// aggregates are skipped.
func RecordAggregates(ctx context.Context, box Outbox, encoder EventEncoder, aggs ...Aggregate) error {
	if box == nil {
		return nil
	}
	if encoder == nil {
		encoder = JSONEventEncoder{}
	}
	for _, agg := range aggs {
		if agg == nil {
			continue
		}
		for _, ev := range agg.DrainEvents() {
			rec, err := encoder.Encode(ctx, ev)
			if err != nil {
				return err
			}
			if err := box.Add(ctx, rec); err != nil {
				return err
			}
		}
	}
	return nil
}
