// Package types provides common type aliases and utilities.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// MoneyFromInt creates a Money value from an integer amount.
func MoneyFromInt(v int64) Money {
	return decimal.NewFromInt(v)
}

// RoundMoney rounds to 2 decimal places, half away from zero.
// decimal.Round implements exactly that (RoundBank would be banker's
// rounding, which invoice totals must not use).
func RoundMoney(d Money) Money {
	return d.Round(2)
}

// Percent converts a percentage value (e.g. 20) into its fraction (0.2).
func Percent(p Money) Money {
	return p.Div(decimal.NewFromInt(100))
}

var hundred = decimal.NewFromInt(100)

// ApplyDiscount reduces base by pct percent without rounding.
// Rounding is applied once by the caller, never on intermediates.
func ApplyDiscount(base, pct Money) Money {
	return base.Mul(hundred.Sub(pct)).Div(hundred)
}

// VATAmount computes VAT for a net total at the given rate (percent),
// rounded to 2 decimals independently of any discount rounding.
func VATAmount(net, rate Money) Money {
	return RoundMoney(net.Mul(rate).Div(hundred))
}
