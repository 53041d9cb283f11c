package pricing

import (
	"errors"
	"math"
	"strings"
)

const (
	// FlatCommissionThresholdTk is the first base price charged the percentage commission.
	FlatCommissionThresholdTk int64 = 2800
	// FlatCommissionTk is charged for every base price below the threshold.
	FlatCommissionTk int64 = 490
	// PercentCommissionRate applies from the threshold upwards.
	PercentCommissionRate = 0.18
	// AdminRoomCommissionRate is the flat rate historically applied to admin-created rooms.
	AdminRoomCommissionRate = 0.10
)

var (
	ErrInvalidBasePrice  = errors.New("pricing: base price must be positive")
	ErrInvalidCommission = errors.New("pricing: commission cannot be negative")
	ErrUnknownRule       = errors.New("pricing: unknown commission rule")
)

// Quote is the guest-facing price of one night.
type Quote struct {
	BaseTk       int64 `json:"basePriceTk"`
	CommissionTk int64 `json:"commissionTk"`
	TotalTk      int64 `json:"totalPriceTk"`
}

// Rule maps a base nightly price to the marketplace commission.
type Rule interface {
	Name() string
	Commission(baseTk int64) int64
}

// TieredRule charges a flat fee under the threshold and a percentage from it.
type TieredRule struct{}

func (TieredRule) Name() string { return "tiered" }

func (TieredRule) Commission(baseTk int64) int64 {
	if baseTk < FlatCommissionThresholdTk {
		return FlatCommissionTk
	}
	return roundHalfUp(float64(baseTk) * PercentCommissionRate)
}

// FlatRateRule charges Rate of the base price regardless of its size.
type FlatRateRule struct {
	Rate float64
}

func (r FlatRateRule) Name() string { return "flat" }

func (r FlatRateRule) Commission(baseTk int64) int64 {
	return roundHalfUp(float64(baseTk) * r.Rate)
}

// Calculate applies the standard tiered commission. The caller owns validation of baseTk.
func Calculate(baseTk int64) Quote {
	return quote(TieredRule{}, baseTk)
}

// QuoteWith validates the base price and applies rule.
func QuoteWith(rule Rule, baseTk int64) (Quote, error) {
	if baseTk <= 0 {
		return Quote{}, ErrInvalidBasePrice
	}
	if rule == nil {
		rule = TieredRule{}
	}
	return quote(rule, baseTk), nil
}

// Recompute rebuilds the total after the commission was set explicitly.
func Recompute(baseTk, commissionTk int64) (Quote, error) {
	if baseTk <= 0 {
		return Quote{}, ErrInvalidBasePrice
	}
	if commissionTk < 0 {
		return Quote{}, ErrInvalidCommission
	}
	return Quote{BaseTk: baseTk, CommissionTk: commissionTk, TotalTk: baseTk + commissionTk}, nil
}

// RuleByName resolves configuration values such as "tiered" or "flat10".
func RuleByName(name string) (Rule, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "flat10", "flat":
		return FlatRateRule{Rate: AdminRoomCommissionRate}, nil
	case "tiered", "standard":
		return TieredRule{}, nil
	default:
		return nil, ErrUnknownRule
	}
}

func quote(rule Rule, baseTk int64) Quote {
	commission := rule.Commission(baseTk)
	return Quote{BaseTk: baseTk, CommissionTk: commission, TotalTk: baseTk + commission}
}

// roundHalfUp matches the rounding persisted prices were produced with.
func roundHalfUp(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}
