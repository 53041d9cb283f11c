package payments

import (
	"context"
	"strings"

	"gowaay/internal/app/commands"
	"gowaay/internal/app/uow"
	"gowaay/internal/domain/ledger"
	domainpayments "gowaay/internal/domain/payments"
)

const handleIPNKey = "payments.ipn"

// HandleIPNCommand carries the gateway's instant payment notification.
type HandleIPNCommand struct {
	TranID     string
	ValID      string
	Status     string
	BankTranID string
	Payload    map[string]any
}

func (c HandleIPNCommand) Key() string { return handleIPNKey }

type IPNResult struct {
	PaymentID string `json:"paymentId"`
	Status    string `json:"status"`
}

type HandleIPNHandler struct {
	Settler
}

func (h *HandleIPNHandler) Handle(ctx context.Context, cmd HandleIPNCommand) (*IPNResult, error) {
	tranID := strings.TrimSpace(cmd.TranID)
	if tranID == "" {
		return nil, ErrMissingParams
	}
	unit, err := uow.Current(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := unit.Payments().ByID(ctx, domainpayments.ID(tranID))
	if err != nil {
		return nil, err
	}
	b, err := loadOrder(ctx, unit, tx)
	if err != nil {
		return nil, err
	}
	ev := ledger.Event{
		Kind:              ledger.IPNReceived,
		GatewayStatus:     cmd.Status,
		TransactionID:     strings.TrimSpace(cmd.ValID),
		BankTransactionID: strings.TrimSpace(cmd.BankTranID),
		Payload:           cmd.Payload,
	}
	if !ev.Succeeded() {
		ev.TransactionID = ""
		ev.BankTransactionID = ""
	}
	if _, err := h.Settle(ctx, unit, tx, b, ev); err != nil {
		return nil, err
	}
	return &IPNResult{PaymentID: string(tx.ID), Status: string(tx.Status)}, nil
}

var _ commands.Handler[HandleIPNCommand, *IPNResult] = (*HandleIPNHandler)(nil)
