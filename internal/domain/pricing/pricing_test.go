package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name       string
		base       int64
		commission int64
		total      int64
	}{
		{name: "below threshold", base: 2000, commission: 490, total: 2490},
		{name: "just below threshold", base: 2799, commission: 490, total: 3289},
		{name: "threshold uses percentage", base: 2800, commission: 504, total: 3304},
		{name: "percentage", base: 5000, commission: 900, total: 5900},
		{name: "rounds half up", base: 2825, commission: 509, total: 3334},
		{name: "rounds down", base: 2801, commission: 504, total: 3305},
		{name: "one taka", base: 1, commission: 490, total: 491},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Calculate(tt.base)
			assert.Equal(t, tt.base, q.BaseTk)
			assert.Equal(t, tt.commission, q.CommissionTk)
			assert.Equal(t, tt.total, q.TotalTk)
		})
	}
}

func TestCalculateFlatBelowThreshold(t *testing.T) {
	for base := int64(1); base < FlatCommissionThresholdTk; base += 37 {
		q := Calculate(base)
		require.Equal(t, FlatCommissionTk, q.CommissionTk, "base %d", base)
		require.Equal(t, base+q.CommissionTk, q.TotalTk)
	}
}

func TestCalculatePercentageFromThreshold(t *testing.T) {
	for base := FlatCommissionThresholdTk; base < 50_000; base += 113 {
		q := Calculate(base)
		require.Equal(t, roundHalfUp(float64(base)*0.18), q.CommissionTk, "base %d", base)
		require.Equal(t, base+q.CommissionTk, q.TotalTk)
	}
}

func TestQuoteWithRejectsNonPositive(t *testing.T) {
	_, err := QuoteWith(TieredRule{}, 0)
	assert.ErrorIs(t, err, ErrInvalidBasePrice)

	_, err = QuoteWith(TieredRule{}, -10)
	assert.ErrorIs(t, err, ErrInvalidBasePrice)
}

func TestFlatRateRuleDisagreesWithTiered(t *testing.T) {
	flat, err := QuoteWith(FlatRateRule{Rate: AdminRoomCommissionRate}, 5000)
	require.NoError(t, err)
	assert.Equal(t, int64(500), flat.CommissionTk)
	assert.Equal(t, int64(5500), flat.TotalTk)

	tiered, err := QuoteWith(nil, 5000)
	require.NoError(t, err)
	assert.Equal(t, int64(900), tiered.CommissionTk)
}

func TestRecompute(t *testing.T) {
	q, err := Recompute(3000, 700)
	require.NoError(t, err)
	assert.Equal(t, int64(3700), q.TotalTk)

	_, err = Recompute(3000, -1)
	assert.ErrorIs(t, err, ErrInvalidCommission)
}

func TestRuleByName(t *testing.T) {
	rule, err := RuleByName("")
	require.NoError(t, err)
	assert.Equal(t, "flat", rule.Name())

	rule, err = RuleByName("Tiered")
	require.NoError(t, err)
	assert.Equal(t, "tiered", rule.Name())

	_, err = RuleByName("surge")
	assert.ErrorIs(t, err, ErrUnknownRule)
}
