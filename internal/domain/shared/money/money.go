package money

import (
	"errors"
	"strings"
)

// DefaultCurrency is the marketplace settlement currency.
const DefaultCurrency = "BDT"

var (
	ErrInvalidCurrency  = errors.New("money: invalid currency code")
	ErrCurrencyMismatch = errors.New("money: currency mismatch")
	ErrNonPositive      = errors.New("money: amount must be positive")
)

// Money is an amount in whole units of Currency. Taka prices carry no paisa.
type Money struct {
	Amount   int64  `json:"amount" bson:"amount"`
	Currency string `json:"currency" bson:"currency"`
}

// Tk is an amount in the default currency.
func Tk(amount int64) Money { return Money{Amount: amount, Currency: DefaultCurrency} }

// Positive builds a strictly positive amount with a three-letter currency code,
// upper-cased.
func Positive(amount int64, currency string) (Money, error) {
	if amount <= 0 {
		return Money{}, ErrNonPositive
	}
	code := strings.ToUpper(strings.TrimSpace(currency))
	if len(code) != 3 {
		return Money{}, ErrInvalidCurrency
	}
	return Money{Amount: amount, Currency: code}, nil
}

func (m Money) Multiply(times int64) Money {
	m.Amount *= times
	return m
}

// Equal reports whether other is the same amount. Differing currencies are an
// error rather than a mismatch.
func (m Money) Equal(other Money) (bool, error) {
	if m.Currency != other.Currency {
		return false, ErrCurrencyMismatch
	}
	return m.Amount == other.Amount, nil
}
