package payments

import (
	"context"
	"errors"
	"strings"
	"time"

	"gowaay/internal/domain/booking"
	"gowaay/internal/domain/shared/events"
	"gowaay/internal/domain/shared/money"
)

var (
	ErrNotFound         = errors.New("payments: transaction not found")
	ErrOrderRequired    = errors.New("payments: order id is required")
	ErrUserRequired     = errors.New("payments: user id is required")
	ErrInvalidMethod    = errors.New("payments: unsupported payment method")
	ErrConcurrentUpdate = errors.New("payments: concurrent update detected")
)

type ID string

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

type Method string

const (
	MethodSSLCommerz Method = "sslcommerz"
	MethodManual     Method = "manual"
)

// ParseMethod accepts the mobile banking labels guests type in as manual transfers.
func ParseMethod(raw string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "sslcommerz":
		return MethodSSLCommerz, nil
	case "manual", "bkash", "nagad", "rocket":
		return MethodManual, nil
	}
	return "", ErrInvalidMethod
}

type Product struct {
	Name     string `json:"name" bson:"name"`
	Category string `json:"category,omitempty" bson:"category,omitempty"`
	Quantity int    `json:"quantity" bson:"quantity"`
	PriceTk  int64  `json:"price" bson:"price_tk"`
}

// GatewaySession is what the payment gateway returns when a checkout session opens.
type GatewaySession struct {
	GatewayURL string
	SessionKey string
}

// Transaction is one payment attempt for a booking (OrderID).
type Transaction struct {
	ID                ID
	UserID            string
	OrderID           booking.ID
	Amount            money.Money
	Method            Method
	Status            Status
	Products          []Product
	Session           GatewaySession
	TransactionID     string
	BankTransactionID string
	Details           map[string]any
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Version           int64
	events.Recorder
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Transaction, error)
	Save(ctx context.Context, tx *Transaction) error
	ListByOrder(ctx context.Context, orderID booking.ID) ([]*Transaction, error)
}

type CreateParams struct {
	ID       ID
	UserID   string
	OrderID  booking.ID
	Amount   money.Money
	Method   Method
	Products []Product
	Now      time.Time
}

// NewTransaction opens a pending attempt.
func NewTransaction(params CreateParams) (*Transaction, error) {
	if strings.TrimSpace(string(params.OrderID)) == "" {
		return nil, ErrOrderRequired
	}
	if strings.TrimSpace(params.UserID) == "" {
		return nil, ErrUserRequired
	}
	amount, err := money.Positive(params.Amount.Amount, params.Amount.Currency)
	if err != nil {
		return nil, err
	}
	switch params.Method {
	case MethodSSLCommerz, MethodManual:
	default:
		return nil, ErrInvalidMethod
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	tx := &Transaction{
		ID:        params.ID,
		UserID:    strings.TrimSpace(params.UserID),
		OrderID:   params.OrderID,
		Amount:    amount,
		Method:    params.Method,
		Status:    StatusPending,
		Products:  append([]Product(nil), params.Products...),
		Details:   map[string]any{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	tx.Record(StatusChanged{TransactionID: tx.ID, OrderID: tx.OrderID, Method: tx.Method, Status: tx.Status, AmountTk: amount.Amount, At: now})
	return tx, nil
}

func (t *Transaction) AttachSession(session GatewaySession, now time.Time) {
	t.Session = session
	t.UpdatedAt = now.UTC()
}

func (t *Transaction) OwnedBy(userID string) bool {
	return t.UserID != "" && t.UserID == userID
}

// LatestPendingManual picks the newest pending manual attempt, if any.
func LatestPendingManual(txs []*Transaction) *Transaction {
	var latest *Transaction
	for _, tx := range txs {
		if tx.Method != MethodManual || tx.Status != StatusPending {
			continue
		}
		if latest == nil || tx.CreatedAt.After(latest.CreatedAt) {
			latest = tx
		}
	}
	return latest
}

type StatusChanged struct {
	TransactionID ID         `json:"transaction_id"`
	OrderID       booking.ID `json:"order_id"`
	Method        Method     `json:"method"`
	Status        Status     `json:"status"`
	AmountTk      int64      `json:"amount_tk"`
	At            time.Time  `json:"at"`
}

func (e StatusChanged) EventName() string     { return "payment." + string(e.Status) }
func (e StatusChanged) AggregateID() string   { return string(e.TransactionID) }
func (e StatusChanged) OccurredAt() time.Time { return e.At }
