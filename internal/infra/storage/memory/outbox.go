package memory

import (
	"context"
	"slices"
	"sync"

	appoutbox "gowaay/internal/app/outbox"
)

// outboxHistory caps the flushed records kept for inspection.
const outboxHistory = 1000

// Outbox stages records until Flush and then keeps a bounded history of
// flushed ones. Nothing is relayed to a broker.
type Outbox struct {
	mu      sync.Mutex
	staged  []appoutbox.EventRecord
	flushed []appoutbox.EventRecord
}

func NewOutbox() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Add(_ context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.staged = append(o.staged, record)
	return nil
}

func (o *Outbox) Flush(_ context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.flushed = append(o.flushed, o.staged...)
	o.staged = nil
	if extra := len(o.flushed) - outboxHistory; extra > 0 {
		o.flushed = slices.Delete(o.flushed, 0, extra)
	}
	return nil
}

// Records returns flushed records followed by those still staged.
func (o *Outbox) Records() []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Concat(o.flushed, o.staged)
}

var _ appoutbox.Outbox = (*Outbox)(nil)
