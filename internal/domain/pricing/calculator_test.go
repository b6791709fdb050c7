package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fakturo/internal/core/apperror"
	"fakturo/internal/core/types"
)

func dec(s string) decimal.Decimal {
	return types.MustMoney(s)
}

func TestLineTotal(t *testing.T) {
	tests := []struct {
		name             string
		basePrice        string
		quantity         string
		discountPercent  string
		discountExcluded bool
		wantUnit         string
		wantTotal        string
	}{
		{
			name:            "discount applied",
			basePrice:       "100",
			quantity:        "1",
			discountPercent: "10",
			wantUnit:        "90",
			wantTotal:       "90",
		},
		{
			name:             "discount excluded",
			basePrice:        "100",
			quantity:         "1",
			discountPercent:  "10",
			discountExcluded: true,
			wantUnit:         "100",
			wantTotal:        "100",
		},
		{
			name:            "zero discount",
			basePrice:       "19.99",
			quantity:        "3",
			discountPercent: "0",
			wantUnit:        "19.99",
			wantTotal:       "59.97",
		},
		{
			name:            "half rounds away from zero",
			basePrice:       "10.05",
			quantity:        "1",
			discountPercent: "50",
			// 10.05 * 0.5 = 5.025 -> 5.03, not banker's 5.02
			wantUnit:  "5.03",
			wantTotal: "5.03",
		},
		{
			name:            "total derived from unrounded intermediate",
			basePrice:       "33.33",
			quantity:        "3",
			discountPercent: "15",
			// 33.33 * 0.85 = 28.3305; unit rounds to 28.33,
			// total = 28.3305 * 3 = 84.9915 -> 84.99, not 28.33*3 = 84.99
			wantUnit:  "28.33",
			wantTotal: "84.99",
		},
		{
			name:            "full discount",
			basePrice:       "50",
			quantity:        "2",
			discountPercent: "100",
			wantUnit:        "0",
			wantTotal:       "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, err := LineTotal(dec(tt.basePrice), dec(tt.quantity), dec(tt.discountPercent), tt.discountExcluded)
			require.NoError(t, err)
			assert.True(t, line.UnitPrice.Equal(dec(tt.wantUnit)),
				"unit price: got %s, want %s", line.UnitPrice, tt.wantUnit)
			assert.True(t, line.Total.Equal(dec(tt.wantTotal)),
				"total: got %s, want %s", line.Total, tt.wantTotal)
		})
	}
}

func TestLineTotalValidation(t *testing.T) {
	_, err := LineTotal(dec("-1"), dec("1"), dec("0"), false)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)

	_, err = LineTotal(dec("10"), dec("0"), dec("0"), false)
	require.Error(t, err)

	_, err = LineTotal(dec("10"), dec("-2"), dec("0"), false)
	require.Error(t, err)

	_, err = LineTotal(dec("10"), dec("1"), dec("101"), false)
	require.Error(t, err)
}

func TestVAT(t *testing.T) {
	// VAT is rounded independently of the discount rounding.
	assert.True(t, VAT(dec("90"), dec("20")).Equal(dec("18")))
	assert.True(t, VAT(dec("0.13"), dec("20")).Equal(dec("0.03"))) // 0.026 -> 0.03
	assert.True(t, TotalWithVAT(dec("100"), dec("20")).Equal(dec("120")))
}
