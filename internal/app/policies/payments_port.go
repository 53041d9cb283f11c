package policies

import (
	"context"
	"errors"

	"gowaay/internal/domain/payments"
	"gowaay/internal/domain/shared/money"
)

// ErrGatewayUnavailable covers gateway timeouts, transport failures and refused sessions.
var ErrGatewayUnavailable = errors.New("payments: gateway unavailable")

type Customer struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

type CheckoutRequest struct {
	TranID   string
	Amount   money.Money
	Products []payments.Product
	Customer Customer
}

// Validation is the gateway's answer for a val_id.
type Validation struct {
	Status     string
	TranID     string
	ValID      string
	BankTranID string
	Amount     string
	Raw        map[string]any
}

type PaymentGateway interface {
	InitSession(ctx context.Context, req CheckoutRequest) (payments.GatewaySession, error)
	Validate(ctx context.Context, valID string) (Validation, error)
}
