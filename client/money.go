package client

import (
	"math"

	"github.com/shopspring/decimal"
)

// Money is a currency-tagged decimal amount (spec §3). Arithmetic is left to
// callers via Amount; Money itself only guarantees the invariant that a
// non-finite float input normalizes to zero rather than propagating NaN/Inf
// into a decimal.Decimal, which has no native representation for either.
type Money struct {
	Amount   decimal.Decimal
	Currency string
}

// NewMoney builds a Money from a float64, folding NaN/+-Inf to zero.
func NewMoney(amount float64, currency string) Money {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}
	return Money{Amount: decimal.NewFromFloat(amount), Currency: currency}
}

// Float64 returns the underlying amount as a float64, for callers that need
// to feed it back into the adjustment math in internal/yahoo.
func (m Money) Float64() float64 {
	f, _ := m.Amount.Float64()
	return f
}
