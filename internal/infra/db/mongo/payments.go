package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "gowaay/internal/domain/booking"
	domainpayments "gowaay/internal/domain/payments"
	"gowaay/internal/domain/shared/money"
)

type PaymentRepository struct {
	col *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database) *PaymentRepository {
	return &PaymentRepository{col: db.Collection("payment_transactions")}
}

func (r *PaymentRepository) ByID(ctx context.Context, id domainpayments.ID) (*domainpayments.Transaction, error) {
	doc, err := findOne[paymentDocument](ctx, r.col, bson.M{"_id": string(id)}, domainpayments.ErrNotFound)
	if err != nil {
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *PaymentRepository) Save(ctx context.Context, tx *domainpayments.Transaction) error {
	doc, err := toBSON(newPaymentDocument(tx))
	if err != nil {
		return err
	}
	version, err := saveVersioned(ctx, r.col, string(tx.ID), tx.Version, doc, domainpayments.ErrConcurrentUpdate)
	if err != nil {
		return err
	}
	tx.Version = version
	return nil
}

// ListByOrder returns attempts for a booking oldest first.
func (r *PaymentRepository) ListByOrder(ctx context.Context, orderID domainbooking.ID) ([]*domainpayments.Transaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"order_id": string(orderID)}, opts)
	if err != nil {
		return nil, err
	}
	var docs []paymentDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainpayments.Transaction, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toAggregate())
	}
	return out, nil
}

type paymentDocument struct {
	ID                string                   `bson:"_id"`
	UserID            string                   `bson:"user_id"`
	OrderID           string                   `bson:"order_id"`
	Amount            money.Money              `bson:"amount"`
	Method            string                   `bson:"method"`
	Status            string                   `bson:"status"`
	Products          []domainpayments.Product `bson:"products,omitempty"`
	GatewayURL        string                   `bson:"gateway_url,omitempty"`
	SessionKey        string                   `bson:"session_key,omitempty"`
	TransactionID     string                   `bson:"transaction_id,omitempty"`
	BankTransactionID string                   `bson:"bank_transaction_id,omitempty"`
	Details           bson.M                   `bson:"details,omitempty"`
	CreatedAt         time.Time                `bson:"created_at"`
	UpdatedAt         time.Time                `bson:"updated_at"`
	Version           int64                    `bson:"version"`
}

func newPaymentDocument(tx *domainpayments.Transaction) paymentDocument {
	var details bson.M
	if len(tx.Details) > 0 {
		details = make(bson.M, len(tx.Details))
		for k, v := range tx.Details {
			details[k] = v
		}
	}
	return paymentDocument{
		ID:                string(tx.ID),
		UserID:            tx.UserID,
		OrderID:           string(tx.OrderID),
		Amount:            tx.Amount,
		Method:            string(tx.Method),
		Status:            string(tx.Status),
		Products:          tx.Products,
		GatewayURL:        tx.Session.GatewayURL,
		SessionKey:        tx.Session.SessionKey,
		TransactionID:     tx.TransactionID,
		BankTransactionID: tx.BankTransactionID,
		Details:           details,
		CreatedAt:         utc(tx.CreatedAt),
		UpdatedAt:         utc(tx.UpdatedAt),
		Version:           tx.Version,
	}
}

func (d paymentDocument) toAggregate() *domainpayments.Transaction {
	var details map[string]any
	if len(d.Details) > 0 {
		details = make(map[string]any, len(d.Details))
		for k, v := range d.Details {
			details[k] = v
		}
	}
	return &domainpayments.Transaction{
		ID:                domainpayments.ID(d.ID),
		UserID:            d.UserID,
		OrderID:           domainbooking.ID(d.OrderID),
		Amount:            d.Amount,
		Method:            domainpayments.Method(d.Method),
		Status:            domainpayments.Status(d.Status),
		Products:          d.Products,
		Session:           domainpayments.GatewaySession{GatewayURL: d.GatewayURL, SessionKey: d.SessionKey},
		TransactionID:     d.TransactionID,
		BankTransactionID: d.BankTransactionID,
		Details:           details,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
		Version:           d.Version,
	}
}

var _ domainpayments.Repository = (*PaymentRepository)(nil)
