package sslcommerz

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gowaay/internal/app/policies"
	domainpayments "gowaay/internal/domain/payments"
	"gowaay/internal/domain/shared/money"
)

type recordingObserver struct{ ops []string }

func (o *recordingObserver) ObserveGateway(op string, _ time.Duration, err error) {
	if err != nil {
		op += ":error"
	}
	o.ops = append(o.ops, op)
}

func testClient(t *testing.T, h http.HandlerFunc) (*Client, *recordingObserver) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	obs := &recordingObserver{}
	cfg := Config{StoreID: "store", StorePassword: "secret", BaseURL: srv.URL}.CallbackURLs("https://gowaay.com", "https://api.gowaay.com")
	return NewClient(cfg, nil, obs), obs
}

func TestInitSessionPostsForm(t *testing.T) {
	c, obs := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, initPath, r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "store", r.PostForm.Get("store_id"))
		assert.Equal(t, "5900", r.PostForm.Get("total_amount"))
		assert.Equal(t, "BDT", r.PostForm.Get("currency"))
		assert.Equal(t, "tx-1", r.PostForm.Get("tran_id"))
		assert.Equal(t, "Sea View Room", r.PostForm.Get("product_name"))
		assert.Equal(t, "https://api.gowaay.com/api/v1/payments/ipn", r.PostForm.Get("ipn_url"))
		assert.Equal(t, "01700000000", r.PostForm.Get("cus_phone"))
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":         "SUCCESS",
			"sessionkey":     "sess-1",
			"GatewayPageURL": "https://sandbox.sslcommerz.com/pay/sess-1",
		})
	})

	session, err := c.InitSession(context.Background(), policies.CheckoutRequest{
		TranID:   "tx-1",
		Amount:   money.Money{Amount: 5900, Currency: "BDT"},
		Products: []domainpayments.Product{{Name: "Sea View Room", Quantity: 1, PriceTk: 5900}},
		Customer: policies.Customer{Name: "Rahim", Email: "rahim@example.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, "sess-1", session.SessionKey)
	assert.Equal(t, "https://sandbox.sslcommerz.com/pay/sess-1", session.GatewayURL)
	assert.Equal(t, []string{"init"}, obs.ops)
}

func TestInitSessionRefused(t *testing.T) {
	c, obs := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "FAILED", "failedreason": "Store Credential Error"})
	})
	_, err := c.InitSession(context.Background(), policies.CheckoutRequest{TranID: "tx-2", Amount: money.Money{Amount: 100, Currency: "BDT"}})
	require.ErrorIs(t, err, ErrSessionRefused)
	assert.Contains(t, err.Error(), "Store Credential Error")
	assert.Equal(t, []string{"init:error"}, obs.ops)
}

func TestInitSessionHonoursContext(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.InitSession(ctx, policies.CheckoutRequest{TranID: "tx-3", Amount: money.Money{Amount: 100, Currency: "BDT"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestValidate(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, validatePath, r.URL.Path)
		assert.Equal(t, "val-9", r.URL.Query().Get("val_id"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		_, _ = w.Write([]byte(`{"status":"VALID","tran_id":"tx-1","val_id":"val-9","bank_tran_id":"bank-1","amount":"5900.00","risk_level":0}`))
	})
	v, err := c.Validate(context.Background(), "val-9")
	require.NoError(t, err)
	assert.Equal(t, "VALID", v.Status)
	assert.Equal(t, "tx-1", v.TranID)
	assert.Equal(t, "bank-1", v.BankTranID)
	assert.Equal(t, "5900.00", v.Amount)
	assert.Equal(t, float64(0), v.Raw["risk_level"])
}

func TestValidateHTTPError(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	})
	_, err := c.Validate(context.Background(), "val-9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestNotConfigured(t *testing.T) {
	c := NewClient(Config{Sandbox: true}, nil, nil)
	_, err := c.Validate(context.Background(), "v")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Equal(t, sandboxBaseURL, c.baseURL())
	c.Config.Sandbox = false
	assert.Equal(t, liveBaseURL, c.baseURL())
}
