package outbox

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	defaultInterval  = 500 * time.Millisecond
	defaultBatchSize = 50
	defaultRetry     = 5 * time.Second
	defaultSource    = "app://gowaay"
)

type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// Queue is the claim side of the outbox store.
type Queue interface {
	Claim(ctx context.Context, workerID string) (*EventDocument, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error
}

// Worker polls the queue and relays due events to the broker keyed by
// aggregate id. Backoff[i] is the delay after the (i+1)th failed attempt; the
// last entry repeats.
type Worker struct {
	Store       Queue
	Producer    Producer
	Interval    time.Duration
	BatchSize   int
	TopicPrefix string
	Source      string
	ID          string
	Backoff     []time.Duration
	Logger      *slog.Logger
}

var ErrWorkerNotConfigured = errors.New("outbox: worker missing dependencies")

func (w *Worker) Run(ctx context.Context) error {
	if w.Store == nil || w.Producer == nil {
		return ErrWorkerNotConfigured
	}
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	ticker := time.NewTicker(orDefault(w.Interval, defaultInterval))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		if _, err := w.Drain(ctx); err != nil && ctx.Err() == nil {
			w.log().WarnContext(ctx, "outbox drain failed", "error", err)
		}
	}
}

// Drain relays up to BatchSize due events and reports how many it handled,
// including those that failed and were rescheduled.
func (w *Worker) Drain(ctx context.Context) (int, error) {
	limit := w.BatchSize
	if limit <= 0 {
		limit = defaultBatchSize
	}
	for n := 0; n < limit; n++ {
		doc, err := w.Store.Claim(ctx, w.ID)
		if err != nil || doc == nil {
			return n, err
		}
		if err := w.relay(ctx, doc); err != nil {
			return n, err
		}
	}
	return limit, nil
}

func (w *Worker) relay(ctx context.Context, doc *EventDocument) error {
	body, headers, err := envelope(doc, w.source())
	if err == nil {
		err = w.Producer.Publish(ctx, topicFor(w.TopicPrefix, doc.Name), doc.Aggregate, body, headers)
	}
	if err == nil {
		return w.Store.MarkSent(ctx, doc.ID)
	}
	w.log().WarnContext(ctx, "outbox publish failed",
		"event_id", doc.ID, "event", doc.Name, "attempts", doc.Attempts+1, "error", err)
	return w.Store.MarkFailed(ctx, doc.ID, time.Now().Add(w.delay(doc.Attempts)), err.Error())
}

func (w *Worker) delay(attempts int) time.Duration {
	switch {
	case len(w.Backoff) == 0:
		return defaultRetry
	case attempts < len(w.Backoff):
		return w.Backoff[attempts]
	default:
		return w.Backoff[len(w.Backoff)-1]
	}
}

func (w *Worker) source() string {
	if w.Source != "" {
		return w.Source
	}
	return defaultSource
}

func (w *Worker) log() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.Default()
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}
