package dto

// PaymentVerification is returned by the verify endpoint; Valid drives the HTTP status.
type PaymentVerification struct {
	PaymentID     string         `json:"paymentId"`
	OrderID       string         `json:"orderId"`
	Status        string         `json:"status"`
	TransactionID string         `json:"transactionId,omitempty"`
	Valid         bool           `json:"-"`
	Verification  map[string]any `json:"verification"`
}
