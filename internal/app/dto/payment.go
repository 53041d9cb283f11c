package dto

import (
	"time"

	domainpayments "gowaay/internal/domain/payments"
)

type Payment struct {
	ID                string    `json:"id"`
	OrderID           string    `json:"orderId"`
	UserID            string    `json:"userId"`
	Amount            int64     `json:"amount"`
	Currency          string    `json:"currency"`
	PaymentMethod     string    `json:"paymentMethod"`
	Status            string    `json:"status"`
	TransactionID     string    `json:"transactionId,omitempty"`
	BankTransactionID string    `json:"bankTransactionId,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func MapPayment(tx *domainpayments.Transaction) Payment {
	if tx == nil {
		return Payment{}
	}
	return Payment{
		ID:                string(tx.ID),
		OrderID:           string(tx.OrderID),
		UserID:            tx.UserID,
		Amount:            tx.Amount.Amount,
		Currency:          tx.Amount.Currency,
		PaymentMethod:     string(tx.Method),
		Status:            string(tx.Status),
		TransactionID:     tx.TransactionID,
		BankTransactionID: tx.BankTransactionID,
		CreatedAt:         tx.CreatedAt,
		UpdatedAt:         tx.UpdatedAt,
	}
}

// PaymentSession is returned when a gateway checkout opens.
type PaymentSession struct {
	PaymentID  string `json:"paymentId"`
	GatewayURL string `json:"gatewayUrl"`
	SessionKey string `json:"sessionId"`
}
