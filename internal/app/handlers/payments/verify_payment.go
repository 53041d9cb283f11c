package payments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gowaay/internal/app/commands"
	"gowaay/internal/app/dto"
	"gowaay/internal/app/handlers/support"
	"gowaay/internal/app/middleware"
	"gowaay/internal/app/policies"
	"gowaay/internal/app/uow"
	"gowaay/internal/domain/ledger"
	domainpayments "gowaay/internal/domain/payments"
)

const verifyPaymentKey = "payments.verify"

// tranIDMismatch marks a validation that answered for another transaction.
const tranIDMismatch = "TRAN_ID_MISMATCH"

type VerifyPaymentCommand struct {
	ValID  string
	TranID string
}

func (c VerifyPaymentCommand) Key() string { return verifyPaymentKey }

func (c VerifyPaymentCommand) ManagesOwnTransaction() bool { return true }

type VerifyPaymentHandler struct {
	UoWFactory uow.UoWFactory
	Gateway    policies.PaymentGateway
	Timeout    time.Duration
	Settler
}

func (h *VerifyPaymentHandler) Handle(ctx context.Context, cmd VerifyPaymentCommand) (*dto.PaymentVerification, error) {
	valID := strings.TrimSpace(cmd.ValID)
	tranID := strings.TrimSpace(cmd.TranID)
	if valID == "" || tranID == "" {
		return nil, ErrMissingParams
	}

	if err := h.ensureExists(ctx, domainpayments.ID(tranID)); err != nil {
		return nil, err
	}

	validation, err := h.validate(ctx, valID)
	if err != nil {
		if h.Logger != nil {
			h.Logger.ErrorContext(ctx, "payment validation failed", "payment_id", tranID, "error", err)
		}
		return nil, fmt.Errorf("%w: %v", policies.ErrGatewayUnavailable, err)
	}

	ev := ledger.Event{
		Kind:              ledger.GatewayVerified,
		GatewayStatus:     validation.Status,
		TransactionID:     validation.TranID,
		BankTransactionID: validation.BankTranID,
		Payload:           validation.Raw,
	}
	if validation.TranID != "" && validation.TranID != tranID {
		ev.GatewayStatus = tranIDMismatch
		ev.TransactionID = ""
	}
	if ev.Payload == nil {
		ev.Payload = map[string]any{"status": validation.Status, "tran_id": validation.TranID, "val_id": validation.ValID}
	}

	result := &dto.PaymentVerification{Valid: ev.Succeeded(), Verification: ev.Payload}
	err = support.RunInUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		tx, err := unit.Payments().ByID(ctx, domainpayments.ID(tranID))
		if err != nil {
			return err
		}
		b, err := loadOrder(ctx, unit, tx)
		if err != nil {
			return err
		}
		if _, err := h.Settle(ctx, unit, tx, b, ev); err != nil {
			return err
		}
		result.PaymentID = string(tx.ID)
		result.OrderID = string(tx.OrderID)
		result.Status = string(tx.Status)
		result.TransactionID = tx.TransactionID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (h *VerifyPaymentHandler) ensureExists(ctx context.Context, id domainpayments.ID) error {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}
	_, err = unit.Payments().ByID(execCtx, id)
	return err
}

func (h *VerifyPaymentHandler) validate(ctx context.Context, valID string) (policies.Validation, error) {
	if h.Gateway == nil {
		return policies.Validation{}, policies.ErrGatewayUnavailable
	}
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return h.Gateway.Validate(callCtx, valID)
}

var _ commands.Handler[VerifyPaymentCommand, *dto.PaymentVerification] = (*VerifyPaymentHandler)(nil)
var _ middleware.SelfManagedTransaction = VerifyPaymentCommand{}
