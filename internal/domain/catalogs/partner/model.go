// Package partner provides the Partner catalog: customers that receive
// orders, deliveries and consolidated invoices.
package partner

import (
	"context"
	"regexp"

	"github.com/shopspring/decimal"

	"fakturo/internal/core/apperror"
	"fakturo/internal/core/entity"
	"fakturo/internal/core/types"
)

var emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Partner represents a business partner (customer).
type Partner struct {
	entity.Catalog

	// ICO is the company registration number
	ICO *string `db:"ico" json:"ico,omitempty"`

	// DIC is the tax identification number
	DIC *string `db:"dic" json:"dic,omitempty"`

	// ICDPH is the VAT registration number
	ICDPH *string `db:"ic_dph" json:"icDph,omitempty"`

	Street  *string `db:"street" json:"street,omitempty"`
	City    *string `db:"city" json:"city,omitempty"`
	Zip     *string `db:"zip" json:"zip,omitempty"`
	Country *string `db:"country" json:"country,omitempty"`

	Email *string `db:"email" json:"email,omitempty"`
	Phone *string `db:"phone" json:"phone,omitempty"`

	// GroupCode links partners that may be jointly invoiced.
	// Empty means the partner is invoiced alone.
	GroupCode string `db:"group_code" json:"groupCode,omitempty"`

	// DiscountPercent is applied to all non-excluded products.
	// Changing it affects only future document lines, existing lines
	// keep their snapshot price.
	DiscountPercent types.Money `db:"discount_percent" json:"discountPercent"`

	IsActive bool `db:"is_active" json:"isActive"`
}

// NewPartner creates a new active Partner.
func NewPartner(code, name string) *Partner {
	return &Partner{
		Catalog:         entity.NewCatalog(code, name),
		DiscountPercent: decimal.Zero,
		IsActive:        true,
	}
}

// Validate implements entity.Validatable interface.
func (p *Partner) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if p.DiscountPercent.IsNegative() || p.DiscountPercent.GreaterThan(decimal.NewFromInt(100)) {
		return apperror.NewValidation("discount percent must be between 0 and 100").
			WithDetail("field", "discountPercent").
			WithDetail("value", p.DiscountPercent.String())
	}

	if p.Email != nil && *p.Email != "" && !emailRE.MatchString(*p.Email) {
		return apperror.NewValidation("invalid email format").
			WithDetail("field", "email")
	}

	return nil
}

// SameBillingGroup reports whether two partners may share an invoice.
func (p *Partner) SameBillingGroup(other *Partner) bool {
	if p.ID == other.ID {
		return true
	}
	return p.GroupCode != "" && p.GroupCode == other.GroupCode
}
