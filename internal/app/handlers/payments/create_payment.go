package payments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"gowaay/internal/app/commands"
	"gowaay/internal/app/dto"
	"gowaay/internal/app/handlers/support"
	"gowaay/internal/app/middleware"
	"gowaay/internal/app/policies"
	"gowaay/internal/app/uow"
	domainbooking "gowaay/internal/domain/booking"
	"gowaay/internal/domain/ledger"
	domainpayments "gowaay/internal/domain/payments"
	"gowaay/internal/domain/shared/money"
)

const createPaymentKey = "payments.create"

// SessionFailureReason is stored in the payment details when the gateway session cannot open.
const SessionFailureReason = "SSL Commerce initialization failed"

type CreatePaymentCommand struct {
	UserID   string `validate:"required"`
	OrderID  string `validate:"required"`
	Amount   int64  `validate:"gt=0"`
	Currency string `validate:"required,len=3"`
	Products []domainpayments.Product
	Customer policies.Customer
}

func (c CreatePaymentCommand) Key() string { return createPaymentKey }

func (c CreatePaymentCommand) ManagesOwnTransaction() bool { return true }

type CreatePaymentHandler struct {
	UoWFactory uow.UoWFactory
	Gateway    policies.PaymentGateway
	Timeout    time.Duration
	Settler
}

func (h *CreatePaymentHandler) Handle(ctx context.Context, cmd CreatePaymentCommand) (*dto.PaymentSession, error) {
	var tx *domainpayments.Transaction
	err := support.RunInUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		b, err := unit.Bookings().ByID(ctx, domainbooking.ID(cmd.OrderID))
		if err != nil {
			return err
		}
		if b.UserID != cmd.UserID {
			return ErrNotBookingOwner
		}
		if err := b.AcceptsPayment(); err != nil {
			return err
		}
		amount, err := money.Positive(cmd.Amount, cmd.Currency)
		if err != nil {
			return err
		}
		if same, err := amount.Equal(b.Amount); err != nil || !same {
			return domainbooking.ErrAmountMismatch
		}
		tx, err = domainpayments.NewTransaction(domainpayments.CreateParams{
			ID:       domainpayments.ID(uuid.NewString()),
			UserID:   cmd.UserID,
			OrderID:  b.ID,
			Amount:   amount,
			Method:   domainpayments.MethodSSLCommerz,
			Products: cmd.Products,
			Now:      h.now(),
		})
		if err != nil {
			return err
		}
		_, err = h.Settle(ctx, unit, tx, nil, ledger.Event{Kind: ledger.SessionCreated})
		return err
	})
	if err != nil {
		return nil, err
	}

	session, gwErr := h.openSession(ctx, tx, cmd)
	if gwErr != nil {
		if h.Logger != nil {
			h.Logger.ErrorContext(ctx, "payment session init failed", "payment_id", tx.ID, "order_id", tx.OrderID, "error", gwErr)
		}
		stampErr := support.RunInUnit(context.WithoutCancel(ctx), h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
			current, err := unit.Payments().ByID(ctx, tx.ID)
			if err != nil {
				return err
			}
			_, err = h.Settle(ctx, unit, current, nil, ledger.Event{
				Kind:    ledger.SessionFailed,
				Reason:  SessionFailureReason,
				Payload: map[string]any{"error": SessionFailureReason},
			})
			return err
		})
		if stampErr != nil && h.Logger != nil {
			h.Logger.ErrorContext(ctx, "cannot mark payment failed", "payment_id", tx.ID, "error", stampErr)
		}
		return nil, fmt.Errorf("%w: %v", policies.ErrGatewayUnavailable, gwErr)
	}

	err = support.RunInUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		current, err := unit.Payments().ByID(ctx, tx.ID)
		if err != nil {
			return err
		}
		current.AttachSession(session, h.now())
		return unit.Payments().Save(ctx, current)
	})
	if err != nil {
		return nil, err
	}
	return &dto.PaymentSession{
		PaymentID:  string(tx.ID),
		GatewayURL: session.GatewayURL,
		SessionKey: session.SessionKey,
	}, nil
}

func (h *CreatePaymentHandler) openSession(ctx context.Context, tx *domainpayments.Transaction, cmd CreatePaymentCommand) (domainpayments.GatewaySession, error) {
	if h.Gateway == nil {
		return domainpayments.GatewaySession{}, policies.ErrGatewayUnavailable
	}
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	session, err := h.Gateway.InitSession(callCtx, policies.CheckoutRequest{
		TranID:   string(tx.ID),
		Amount:   tx.Amount,
		Products: tx.Products,
		Customer: cmd.Customer,
	})
	if err != nil {
		return domainpayments.GatewaySession{}, err
	}
	if strings.TrimSpace(session.GatewayURL) == "" {
		return domainpayments.GatewaySession{}, fmt.Errorf("gateway returned no checkout url")
	}
	return session, nil
}

var _ commands.Handler[CreatePaymentCommand, *dto.PaymentSession] = (*CreatePaymentHandler)(nil)
var _ middleware.SelfManagedTransaction = CreatePaymentCommand{}
