// Package pricing computes line prices with partner discounts and VAT.
//
// The same calculator is used at order creation, delivery note item
// creation and invoice consolidation. The unit price it returns is
// snapshotted on the line and never recomputed later, even if the
// product price or the partner discount changes.
package pricing

import (
	"github.com/shopspring/decimal"

	"fakturo/internal/core/apperror"
	"fakturo/internal/core/types"
)

// Line is the result of a single line computation.
type Line struct {
	// UnitPrice is the discounted price per unit, rounded to 2 decimals.
	UnitPrice types.Money

	// Total is quantity * discounted unit price, rounded once from the
	// unrounded intermediate.
	Total types.Money
}

// LineTotal computes the discounted unit price and line total.
//
// Effective discount is zero when the product is discount-excluded,
// otherwise the partner's discount percent. Rounding is half away from
// zero to 2 decimals and happens once per value: the total is derived
// from the unrounded discounted price, not from the rounded unit price.
func LineTotal(basePrice types.Money, quantity decimal.Decimal, discountPercent types.Money, discountExcluded bool) (Line, error) {
	if basePrice.IsNegative() {
		return Line{}, apperror.NewValidation("base price must not be negative").
			WithDetail("basePrice", basePrice.String())
	}
	if quantity.IsNegative() || quantity.IsZero() {
		return Line{}, apperror.NewValidation("quantity must be positive").
			WithDetail("quantity", quantity.String())
	}
	if discountPercent.IsNegative() || discountPercent.GreaterThan(decimal.NewFromInt(100)) {
		return Line{}, apperror.NewValidation("discount percent must be between 0 and 100").
			WithDetail("discountPercent", discountPercent.String())
	}

	effective := discountPercent
	if discountExcluded {
		effective = decimal.Zero
	}

	discounted := types.ApplyDiscount(basePrice, effective)

	return Line{
		UnitPrice: types.RoundMoney(discounted),
		Total:     types.RoundMoney(discounted.Mul(quantity)),
	}, nil
}

// VAT computes the VAT amount for a line total at the given rate,
// rounded to 2 decimals independently of the discount rounding.
func VAT(total types.Money, vatRate types.Money) types.Money {
	return types.VATAmount(total, vatRate)
}

// TotalWithVAT returns total plus its VAT amount.
func TotalWithVAT(total types.Money, vatRate types.Money) types.Money {
	return total.Add(VAT(total, vatRate))
}
