package sslcommerz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gowaay/internal/app/policies"
	domainpayments "gowaay/internal/domain/payments"
)

const (
	sandboxBaseURL = "https://sandbox.sslcommerz.com"
	liveBaseURL    = "https://securepay.sslcommerz.com"

	initPath     = "/gwprocess/v4/api.php"
	validatePath = "/validator/api/validationserverAPI.php"
)

var (
	ErrNotConfigured  = errors.New("sslcommerz: store credentials missing")
	ErrSessionRefused = errors.New("sslcommerz: session refused")
)

// Config is injected at construction; the client never reads the environment.
type Config struct {
	StoreID       string
	StorePassword string
	Sandbox       bool
	// BaseURL overrides the sandbox/live host, mainly for tests.
	BaseURL     string
	SuccessURL  string
	FailURL     string
	CancelURL   string
	IPNURL      string
	ProductName string
}

// CallbackURLs derives the gateway redirect targets from the public base URLs.
func (c Config) CallbackURLs(frontendURL, backendURL string) Config {
	c.SuccessURL = frontendURL + "/payment/success"
	c.FailURL = frontendURL + "/payment/fail"
	c.CancelURL = frontendURL + "/payment/cancel"
	c.IPNURL = backendURL + "/api/v1/payments/ipn"
	return c
}

type Observer interface {
	ObserveGateway(operation string, took time.Duration, err error)
}

type Client struct {
	HTTP     *http.Client
	Config   Config
	Logger   *slog.Logger
	Observer Observer
}

func NewClient(cfg Config, logger *slog.Logger, observer Observer) *Client {
	return &Client{
		HTTP:     &http.Client{Timeout: 45 * time.Second},
		Config:   cfg,
		Logger:   logger,
		Observer: observer,
	}
}

type initResponse struct {
	Status         string `json:"status"`
	FailedReason   string `json:"failedreason"`
	SessionKey     string `json:"sessionkey"`
	GatewayPageURL string `json:"GatewayPageURL"`
}

// InitSession opens a hosted checkout session for one transaction.
func (c *Client) InitSession(ctx context.Context, req policies.CheckoutRequest) (session domainpayments.GatewaySession, err error) {
	defer c.observe("init", time.Now(), &err)
	if err := c.ready(); err != nil {
		return session, err
	}

	form := url.Values{}
	form.Set("store_id", c.Config.StoreID)
	form.Set("store_passwd", c.Config.StorePassword)
	form.Set("total_amount", strconv.FormatInt(req.Amount.Amount, 10))
	form.Set("currency", req.Amount.Currency)
	form.Set("tran_id", req.TranID)
	form.Set("success_url", c.Config.SuccessURL)
	form.Set("fail_url", c.Config.FailURL)
	form.Set("cancel_url", c.Config.CancelURL)
	form.Set("ipn_url", c.Config.IPNURL)
	form.Set("shipping_method", "NO")
	form.Set("num_of_item", strconv.Itoa(max(len(req.Products), 1)))
	form.Set("product_name", c.productName(req.Products))
	form.Set("product_category", "Accommodation")
	form.Set("product_profile", "general")
	setCustomer(form, req.Customer)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL()+initPath, strings.NewReader(form.Encode()))
	if err != nil {
		return session, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var out initResponse
	if err := c.do(httpReq, &out); err != nil {
		c.logError(ctx, "sslcommerz init failed", req.TranID, err)
		return session, err
	}
	if !strings.EqualFold(out.Status, "SUCCESS") || out.GatewayPageURL == "" {
		err := fmt.Errorf("%w: %s", ErrSessionRefused, out.FailedReason)
		c.logError(ctx, "sslcommerz init refused", req.TranID, err)
		return session, err
	}
	return domainpayments.GatewaySession{GatewayURL: out.GatewayPageURL, SessionKey: out.SessionKey}, nil
}

// Validate asks the validation API about a val_id. The raw answer is kept verbatim.
func (c *Client) Validate(ctx context.Context, valID string) (v policies.Validation, err error) {
	defer c.observe("validate", time.Now(), &err)
	if err := c.ready(); err != nil {
		return v, err
	}
	q := url.Values{}
	q.Set("val_id", valID)
	q.Set("store_id", c.Config.StoreID)
	q.Set("store_passwd", c.Config.StorePassword)
	q.Set("format", "json")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL()+validatePath+"?"+q.Encode(), nil)
	if err != nil {
		return v, err
	}
	raw := map[string]any{}
	if err := c.do(httpReq, &raw); err != nil {
		c.logError(ctx, "sslcommerz validation failed", valID, err)
		return v, err
	}
	return policies.Validation{
		Status:     field(raw, "status"),
		TranID:     field(raw, "tran_id"),
		ValID:      field(raw, "val_id"),
		BankTranID: field(raw, "bank_tran_id"),
		Amount:     field(raw, "amount"),
		Raw:        raw,
	}, nil
}

func (c *Client) do(req *http.Request, out any) error {
	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sslcommerz returned status %d: %s", resp.StatusCode, string(snippet))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("sslcommerz decode: %w", err)
	}
	return nil
}

func (c *Client) ready() error {
	if c == nil || c.Config.StoreID == "" || c.Config.StorePassword == "" {
		return ErrNotConfigured
	}
	return nil
}

func (c *Client) baseURL() string {
	switch {
	case c.Config.BaseURL != "":
		return strings.TrimRight(c.Config.BaseURL, "/")
	case c.Config.Sandbox:
		return sandboxBaseURL
	default:
		return liveBaseURL
	}
}

func (c *Client) productName(products []domainpayments.Product) string {
	names := make([]string, 0, len(products))
	for _, p := range products {
		if p.Name != "" {
			names = append(names, p.Name)
		}
	}
	if len(names) > 0 {
		return strings.Join(names, ", ")
	}
	if c.Config.ProductName != "" {
		return c.Config.ProductName
	}
	return "GoWaay Booking"
}

func (c *Client) observe(op string, start time.Time, err *error) {
	if c == nil || c.Observer == nil {
		return
	}
	c.Observer.ObserveGateway(op, time.Since(start), *err)
}

func (c *Client) logError(ctx context.Context, msg, ref string, err error) {
	if c.Logger == nil {
		return
	}
	c.Logger.ErrorContext(ctx, msg, "ref", ref, "error", err)
}

// setCustomer fills the mandatory customer and shipping fields with Dhaka defaults.
func setCustomer(form url.Values, cus policies.Customer) {
	name := orDefault(cus.Name, "Guest")
	addr := orDefault(cus.Address, "Dhaka")
	phone := orDefault(cus.Phone, "01700000000")
	form.Set("cus_name", name)
	form.Set("cus_email", cus.Email)
	form.Set("cus_add1", addr)
	form.Set("cus_city", "Dhaka")
	form.Set("cus_state", "Dhaka")
	form.Set("cus_postcode", "1000")
	form.Set("cus_country", "Bangladesh")
	form.Set("cus_phone", phone)
	form.Set("ship_name", name)
	form.Set("ship_add1", addr)
	form.Set("ship_city", "Dhaka")
	form.Set("ship_state", "Dhaka")
	form.Set("ship_postcode", "1000")
	form.Set("ship_country", "Bangladesh")
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func field(raw map[string]any, key string) string {
	switch v := raw[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

var _ policies.PaymentGateway = (*Client)(nil)
