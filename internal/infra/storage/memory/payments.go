package memory

import (
	"context"
	"sort"
	"sync"

	domainbooking "gowaay/internal/domain/booking"
	domainpayments "gowaay/internal/domain/payments"
	"gowaay/internal/domain/shared/events"
)

type PaymentRepository struct {
	mu    sync.RWMutex
	items map[domainpayments.ID]*domainpayments.Transaction
}

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{items: make(map[domainpayments.ID]*domainpayments.Transaction)}
}

func (r *PaymentRepository) ByID(ctx context.Context, id domainpayments.ID) (*domainpayments.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tx, ok := r.items[id]
	if !ok {
		return nil, domainpayments.ErrNotFound
	}
	return clonePayment(tx), nil
}

func (r *PaymentRepository) Save(ctx context.Context, tx *domainpayments.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.items[tx.ID]; ok && existing.Version != tx.Version {
		return domainpayments.ErrConcurrentUpdate
	}
	tx.Version++
	r.items[tx.ID] = clonePayment(tx)
	return nil
}

func (r *PaymentRepository) ListByOrder(ctx context.Context, orderID domainbooking.ID) ([]*domainpayments.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainpayments.Transaction, 0)
	for _, tx := range r.items {
		if tx.OrderID == orderID {
			out = append(out, clonePayment(tx))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func clonePayment(tx *domainpayments.Transaction) *domainpayments.Transaction {
	c := *tx
	c.Recorder = events.Recorder{}
	c.Products = append([]domainpayments.Product(nil), tx.Products...)
	if tx.Details != nil {
		c.Details = make(map[string]any, len(tx.Details))
		for k, v := range tx.Details {
			c.Details[k] = v
		}
	}
	return &c
}

var _ domainpayments.Repository = (*PaymentRepository)(nil)
