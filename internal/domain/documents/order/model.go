// Package order provides the customer Order document.
package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"fakturo/internal/core/apperror"
	"fakturo/internal/core/entity"
	"fakturo/internal/core/id"
	"fakturo/internal/core/types"
)

// Status is derived from the confirmed/locked flags and never stored.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
)

// Order represents a customer order.
type Order struct {
	entity.Document

	PartnerID id.ID `db:"partner_id" json:"partnerId"`

	PickupAddress   *string    `db:"pickup_address" json:"pickupAddress,omitempty"`
	DeliveryAddress *string    `db:"delivery_address" json:"deliveryAddress,omitempty"`
	DeliveryMethod  *string    `db:"delivery_method" json:"deliveryMethod,omitempty"`
	DeliveryAt      *time.Time `db:"delivery_at" json:"deliveryAt,omitempty"`

	PaymentMethod *string `db:"payment_method" json:"paymentMethod,omitempty"`
	PaymentTerms  *string `db:"payment_terms" json:"paymentTerms,omitempty"`

	// ShowPrices controls whether printed documents expose prices.
	ShowPrices bool `db:"show_prices" json:"showPrices"`

	Confirmed bool `db:"confirmed" json:"confirmed"`
	IsLocked  bool `db:"is_locked" json:"isLocked"`

	// Table part, loaded separately.
	Items []Item `db:"-" json:"items"`
}

// Item is one order line. Prices are snapshots taken at creation time.
type Item struct {
	ID      id.ID `db:"id" json:"id"`
	OrderID id.ID `db:"order_id" json:"orderId"`
	LineNo  int   `db:"line_no" json:"lineNo"`

	// Exactly one of ProductID/BundleID is set for catalog lines;
	// manual lines set neither and carry their own name.
	ProductID *id.ID `db:"product_id" json:"productId,omitempty"`
	BundleID  *id.ID `db:"bundle_id" json:"bundleId,omitempty"`
	Name      string `db:"name" json:"name"`

	Quantity  decimal.Decimal `db:"quantity" json:"quantity"`
	UnitPrice types.Money     `db:"unit_price" json:"unitPrice"`
	LineTotal types.Money     `db:"line_total" json:"lineTotal"`
	VATRate   types.Money     `db:"vat_rate" json:"vatRate"`
}

// New creates a new Order for a partner.
func New(partnerID id.ID, createdBy id.ID) *Order {
	return &Order{
		Document:  entity.NewDocument(createdBy),
		PartnerID: partnerID,
		Items:     make([]Item, 0),
	}
}

// Status derives the order status from its flags.
func (o *Order) Status() Status {
	switch {
	case o.IsLocked:
		return StatusCompleted
	case o.Confirmed:
		return StatusProcessing
	default:
		return StatusPending
	}
}

// Confirm moves the order to processing. Confirming twice is a no-op.
func (o *Order) Confirm() error {
	if o.IsLocked {
		return apperror.NewImmutableDocument("order", o.ID.String(), "order is locked")
	}
	o.Confirmed = true
	return nil
}

// Lock finalizes the order. Locking is one-way; only a locked order may
// back a finalized delivery note.
func (o *Order) Lock() error {
	if !o.Confirmed {
		return apperror.NewValidation("order must be confirmed before locking").
			WithDetail("orderId", o.ID.String())
	}
	o.IsLocked = true
	return nil
}

// CanModifyItems reports whether the item set may still change.
func (o *Order) CanModifyItems() error {
	if o.IsLocked {
		return apperror.NewImmutableDocument("order", o.ID.String(), "order is locked")
	}
	return nil
}

// Validate implements entity.Validatable.
func (o *Order) Validate(ctx context.Context) error {
	if err := o.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(o.PartnerID) {
		return apperror.NewValidation("partner is required").
			WithDetail("field", "partnerId")
	}
	for i, item := range o.Items {
		if item.ProductID == nil && item.BundleID == nil && item.Name == "" {
			return apperror.NewValidation("manual line requires a name").
				WithDetail("lineNo", i+1)
		}
		if item.ProductID != nil && item.BundleID != nil {
			return apperror.NewValidation("line may reference a product or a bundle, not both").
				WithDetail("lineNo", i+1)
		}
		if item.Quantity.IsNegative() || item.Quantity.IsZero() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("lineNo", i+1)
		}
	}
	return nil
}

// Total sums the line totals.
func (o *Order) Total() types.Money {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.LineTotal)
	}
	return total
}
