package ginserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"gowaay/internal/app/commands"
	"gowaay/internal/app/dto"
	paymentsapp "gowaay/internal/app/handlers/payments"
	"gowaay/internal/app/policies"
	"gowaay/internal/app/queries"
	domainpayments "gowaay/internal/domain/payments"
)

type PaymentHTTP interface {
	Create(c *gin.Context)
	Verify(c *gin.Context)
	IPN(c *gin.Context)
	ConfirmManual(c *gin.Context)
	Status(c *gin.Context)
}

type PaymentHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type createPaymentRequest struct {
	Amount   int64                    `json:"amount"`
	Currency string                   `json:"currency"`
	OrderID  string                   `json:"orderId"`
	Products []domainpayments.Product `json:"products"`
	Customer *customerRequest         `json:"customer"`
}

type customerRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type manualPaymentRequest struct {
	BookingID string `json:"bookingId"`
	TxnID     string `json:"txnId"`
	Amount    int64  `json:"amount"`
	Method    string `json:"method"`
}

func (h PaymentHandler) Create(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	var req createPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFailure(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	customer := policies.Customer{Name: p.User.Name, Email: p.User.Email, Phone: p.User.Phone}
	if req.Customer != nil {
		customer = mergeCustomer(customer, *req.Customer)
	}
	cmd := paymentsapp.CreatePaymentCommand{
		UserID:   p.ID(),
		OrderID:  req.OrderID,
		Amount:   req.Amount,
		Currency: strings.ToUpper(strings.TrimSpace(req.Currency)),
		Products: req.Products,
		Customer: customer,
	}
	result, err := commands.Dispatch[paymentsapp.CreatePaymentCommand, *dto.PaymentSession](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, "Payment session created successfully", result)
}

func mergeCustomer(base policies.Customer, req customerRequest) policies.Customer {
	if v := strings.TrimSpace(req.Name); v != "" {
		base.Name = v
	}
	if v := strings.TrimSpace(req.Email); v != "" {
		base.Email = v
	}
	if v := strings.TrimSpace(req.Phone); v != "" {
		base.Phone = v
	}
	if v := strings.TrimSpace(req.Address); v != "" {
		base.Address = v
	}
	return base
}

// Verify is called by the frontend after the gateway redirect; it needs no session.
func (h PaymentHandler) Verify(c *gin.Context) {
	cmd := paymentsapp.VerifyPaymentCommand{ValID: c.Query("val_id"), TranID: c.Query("tran_id")}
	result, err := commands.Dispatch[paymentsapp.VerifyPaymentCommand, *dto.PaymentVerification](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	if !result.Valid {
		c.JSON(http.StatusBadRequest, envelope{Success: false, Message: "Payment verification failed", Data: result})
		return
	}
	respond(c, http.StatusOK, "Payment verified successfully", result)
}

// IPN always answers 200 so the gateway does not redeliver; failures are logged.
func (h PaymentHandler) IPN(c *gin.Context) {
	payload, err := ipnPayload(c)
	if err != nil {
		h.logIPN(c, "ipn payload unreadable", err)
		respond(c, http.StatusOK, "IPN received successfully", nil)
		return
	}
	cmd := paymentsapp.HandleIPNCommand{
		TranID:     stringField(payload, "tran_id"),
		ValID:      stringField(payload, "val_id"),
		Status:     stringField(payload, "status"),
		BankTranID: stringField(payload, "bank_tran_id"),
		Payload:    payload,
	}
	if _, err := commands.Dispatch[paymentsapp.HandleIPNCommand, *paymentsapp.IPNResult](c.Request.Context(), h.Commands, cmd); err != nil {
		h.logIPN(c, "ipn processing failed", err, "tran_id", cmd.TranID, "status", cmd.Status)
	}
	respond(c, http.StatusOK, "IPN received successfully", nil)
}

func (h PaymentHandler) logIPN(c *gin.Context, msg string, err error, attrs ...any) {
	if h.Logger == nil {
		return
	}
	h.Logger.WarnContext(c.Request.Context(), msg, append(attrs, "error", err)...)
}

// ipnPayload accepts the gateway's form post as well as JSON bodies.
func ipnPayload(c *gin.Context) (map[string]any, error) {
	if c.ContentType() == gin.MIMEJSON {
		payload := map[string]any{}
		if err := json.NewDecoder(c.Request.Body).Decode(&payload); err != nil {
			return nil, err
		}
		return payload, nil
	}
	if err := c.Request.ParseMultipartForm(1 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, err
	}
	payload := make(map[string]any, len(c.Request.PostForm))
	for key, values := range c.Request.PostForm {
		if len(values) > 0 {
			payload[key] = values[0]
		}
	}
	return payload, nil
}

func stringField(payload map[string]any, key string) string {
	switch v := payload[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	default:
		b, _ := json.Marshal(v)
		return strings.Trim(string(b), `"`)
	}
}

func (h PaymentHandler) ConfirmManual(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	var req manualPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFailure(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	cmd := paymentsapp.SubmitManualPaymentCommand{
		UserID:          p.ID(),
		BookingID:       req.BookingID,
		TxnID:           req.TxnID,
		AmountTk:        req.Amount,
		Method:          req.Method,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[paymentsapp.SubmitManualPaymentCommand, *dto.Booking](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, "Payment submitted for verification", result)
}

func (h PaymentHandler) Status(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	query := paymentsapp.PaymentStatusQuery{UserID: p.ID(), PaymentID: c.Param("id")}
	result, err := queries.Ask[paymentsapp.PaymentStatusQuery, *dto.Payment](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, "Payment status retrieved", result)
}

var _ PaymentHTTP = PaymentHandler{}
