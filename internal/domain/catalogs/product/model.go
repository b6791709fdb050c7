// Package product provides the Product and Bundle catalogs with
// versioned price history.
package product

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"fakturo/internal/core/apperror"
	"fakturo/internal/core/entity"
	"fakturo/internal/core/id"
	"fakturo/internal/core/types"
)

// DefaultVATRate applies when a product does not override it.
var DefaultVATRate = decimal.NewFromInt(20)

// Product represents a sellable good or service.
type Product struct {
	entity.Catalog

	// Price is the current catalog price. Document lines snapshot the
	// discounted price at creation time and never follow later changes.
	Price types.Money `db:"price" json:"price"`

	// VATRate in percent.
	VATRate types.Money `db:"vat_rate" json:"vatRate"`

	// IsService marks non-physical items (no delivery quantity checks).
	IsService bool `db:"is_service" json:"isService"`

	// DiscountExcluded blocks partner discounts on this product.
	DiscountExcluded bool `db:"discount_excluded" json:"discountExcluded"`

	IsActive bool `db:"is_active" json:"isActive"`
}

// NewProduct creates a new active Product.
func NewProduct(code, name string, price types.Money) *Product {
	return &Product{
		Catalog:  entity.NewCatalog(code, name),
		Price:    price,
		VATRate:  DefaultVATRate,
		IsActive: true,
	}
}

// Validate implements entity.Validatable interface.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}
	if p.Price.IsNegative() {
		return apperror.NewValidation("price must not be negative").
			WithDetail("field", "price").
			WithDetail("value", p.Price.String())
	}
	if p.VATRate.IsNegative() {
		return apperror.NewValidation("vat rate must not be negative").
			WithDetail("field", "vatRate")
	}
	return nil
}

// Bundle is a composite product sold at its own price. Component lines
// are kept for traceability only and carry no price of their own.
// Partner discounts apply to the composite price and are controlled
// solely by the bundle's DiscountExcluded flag.
type Bundle struct {
	entity.Catalog

	BundlePrice      types.Money `db:"bundle_price" json:"bundlePrice"`
	VATRate          types.Money `db:"vat_rate" json:"vatRate"`
	DiscountExcluded bool        `db:"discount_excluded" json:"discountExcluded"`
	IsActive         bool        `db:"is_active" json:"isActive"`

	// Items are loaded separately by the repository.
	Items []BundleItem `db:"-" json:"items,omitempty"`
}

// NewBundle creates a new active Bundle.
func NewBundle(code, name string, price types.Money) *Bundle {
	return &Bundle{
		Catalog:     entity.NewCatalog(code, name),
		BundlePrice: price,
		VATRate:     DefaultVATRate,
		IsActive:    true,
	}
}

// Validate implements entity.Validatable interface.
func (b *Bundle) Validate(ctx context.Context) error {
	if err := b.Catalog.Validate(ctx); err != nil {
		return err
	}
	if b.BundlePrice.IsNegative() {
		return apperror.NewValidation("bundle price must not be negative").
			WithDetail("field", "bundlePrice")
	}
	for _, item := range b.Items {
		if item.Quantity.IsNegative() || item.Quantity.IsZero() {
			return apperror.NewValidation("bundle item quantity must be positive").
				WithDetail("productId", item.ProductID.String())
		}
	}
	return nil
}

// BundleItem is one component of a bundle.
type BundleItem struct {
	ID        id.ID           `db:"id" json:"id"`
	BundleID  id.ID           `db:"bundle_id" json:"bundleId"`
	ProductID id.ID           `db:"product_id" json:"productId"`
	Quantity  decimal.Decimal `db:"quantity" json:"quantity"`
}

// PriceHistory records every price change of a product or bundle so
// that existing document lines stay explainable after catalog edits.
type PriceHistory struct {
	ID        id.ID       `db:"id" json:"id"`
	ProductID *id.ID      `db:"product_id" json:"productId,omitempty"`
	BundleID  *id.ID      `db:"bundle_id" json:"bundleId,omitempty"`
	Price     types.Money `db:"price" json:"price"`
	ChangedBy id.ID       `db:"changed_by" json:"changedBy"`
	ChangedAt time.Time   `db:"changed_at" json:"changedAt"`
}
