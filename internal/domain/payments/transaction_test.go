package payments

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gowaay/internal/domain/shared/money"
)

func TestNewTransaction(t *testing.T) {
	tx, err := NewTransaction(CreateParams{
		ID:      "p-1",
		UserID:  "u-1",
		OrderID: "b-1",
		Amount:  money.Money{Amount: 2490, Currency: "bdt"},
		Method:  MethodSSLCommerz,
		Now:     time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, tx.Status)
	assert.Equal(t, "BDT", tx.Amount.Currency)
	assert.True(t, tx.OwnedBy("u-1"))
	assert.False(t, tx.OwnedBy("u-2"))
	require.Len(t, tx.PendingEvents(), 1)
	assert.Equal(t, "payment.pending", tx.PendingEvents()[0].EventName())
}

func TestNewTransactionValidation(t *testing.T) {
	base := CreateParams{ID: "p", UserID: "u", OrderID: "b", Amount: money.Tk(100), Method: MethodManual}

	p := base
	p.OrderID = ""
	_, err := NewTransaction(p)
	assert.ErrorIs(t, err, ErrOrderRequired)

	p = base
	p.Amount = money.Tk(0)
	_, err = NewTransaction(p)
	assert.ErrorIs(t, err, money.ErrNonPositive)

	p = base
	p.Amount = money.Money{Amount: 10, Currency: "TAKA"}
	_, err = NewTransaction(p)
	assert.ErrorIs(t, err, money.ErrInvalidCurrency)

	p = base
	p.Method = "cash"
	_, err = NewTransaction(p)
	assert.ErrorIs(t, err, ErrInvalidMethod)
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("bKash")
	require.NoError(t, err)
	assert.Equal(t, MethodManual, m)

	m, err = ParseMethod("")
	require.NoError(t, err)
	assert.Equal(t, MethodSSLCommerz, m)

	_, err = ParseMethod("paypal")
	assert.ErrorIs(t, err, ErrInvalidMethod)
}

func TestLatestPendingManual(t *testing.T) {
	t0 := time.Now()
	txs := []*Transaction{
		{ID: "a", Method: MethodManual, Status: StatusPending, CreatedAt: t0},
		{ID: "b", Method: MethodManual, Status: StatusPending, CreatedAt: t0.Add(time.Minute)},
		{ID: "c", Method: MethodSSLCommerz, Status: StatusPending, CreatedAt: t0.Add(time.Hour)},
		{ID: "d", Method: MethodManual, Status: StatusFailed, CreatedAt: t0.Add(time.Hour)},
	}
	assert.Equal(t, ID("b"), LatestPendingManual(txs).ID)
	assert.Nil(t, LatestPendingManual(nil))
}
