// Package delivery provides the DeliveryNote document. A delivery note
// may aggregate items from several orders and is billed at most once.
package delivery

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"fakturo/internal/core/apperror"
	"fakturo/internal/core/entity"
	"fakturo/internal/core/id"
	"fakturo/internal/core/types"
)

// DeliveryNote represents goods/services delivered to a partner.
type DeliveryNote struct {
	entity.Document

	PartnerID id.ID `db:"partner_id" json:"partnerId"`

	// PrimaryOrderID is the designated main order; additional orders
	// are linked through a join relation and loaded separately.
	PrimaryOrderID *id.ID  `db:"primary_order_id" json:"primaryOrderId,omitempty"`
	OrderIDs       []id.ID `db:"-" json:"orderIds,omitempty"`

	PlannedAt *time.Time `db:"planned_at" json:"plannedAt,omitempty"`
	ActualAt  *time.Time `db:"actual_at" json:"actualAt,omitempty"`

	// Confirmed is set when the delivery is received.
	Confirmed bool `db:"confirmed" json:"confirmed"`

	// Invoiced is one-way and set exclusively by invoice consolidation.
	Invoiced bool `db:"invoiced" json:"invoiced"`

	Items []Item `db:"-" json:"items"`
}

// Item is one delivered line with a snapshot price.
type Item struct {
	ID             id.ID `db:"id" json:"id"`
	DeliveryNoteID id.ID `db:"delivery_note_id" json:"deliveryNoteId"`
	LineNo         int   `db:"line_no" json:"lineNo"`

	ProductID *id.ID `db:"product_id" json:"productId,omitempty"`
	BundleID  *id.ID `db:"bundle_id" json:"bundleId,omitempty"`
	Name      string `db:"name" json:"name"`

	// SourceOrderItemID backs remaining-quantity checks. Manual lines
	// have none.
	SourceOrderItemID *id.ID `db:"source_order_item_id" json:"sourceOrderItemId,omitempty"`

	Quantity  decimal.Decimal `db:"quantity" json:"quantity"`
	UnitPrice types.Money     `db:"unit_price" json:"unitPrice"`
	LineTotal types.Money     `db:"line_total" json:"lineTotal"`
	VATRate   types.Money     `db:"vat_rate" json:"vatRate"`
}

// New creates a new DeliveryNote for a partner.
func New(partnerID id.ID, createdBy id.ID) *DeliveryNote {
	return &DeliveryNote{
		Document:  entity.NewDocument(createdBy),
		PartnerID: partnerID,
		Items:     make([]Item, 0),
	}
}

// Receive marks the delivery as completed at the given time.
func (d *DeliveryNote) Receive(actualAt time.Time) error {
	if d.Invoiced {
		return apperror.NewImmutableDocument("delivery_note", d.ID.String(), "delivery note is invoiced")
	}
	if actualAt.IsZero() {
		return apperror.NewValidation("actual delivery time is required").
			WithDetail("field", "actualAt")
	}
	d.Confirmed = true
	d.ActualAt = &actualAt
	return nil
}

// MarkInvoiced transitions the note to invoiced. One-way, called only
// by invoice consolidation so the double-billing check stays in one
// place.
func (d *DeliveryNote) MarkInvoiced() error {
	if d.Invoiced {
		return apperror.NewConsolidation("delivery note already invoiced", d.ID.String())
	}
	d.Invoiced = true
	return nil
}

// CanModifyItems reports whether lines may still be added.
func (d *DeliveryNote) CanModifyItems() error {
	if d.Invoiced {
		return apperror.NewImmutableDocument("delivery_note", d.ID.String(), "delivery note is invoiced")
	}
	return nil
}

// Validate implements entity.Validatable.
func (d *DeliveryNote) Validate(ctx context.Context) error {
	if err := d.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(d.PartnerID) {
		return apperror.NewValidation("partner is required").
			WithDetail("field", "partnerId")
	}
	for i, item := range d.Items {
		if item.ProductID == nil && item.BundleID == nil && item.Name == "" {
			return apperror.NewValidation("manual line requires a name").
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
func (d *DeliveryNote) Total() types.Money {
	total := decimal.Zero
	for _, item := range d.Items {
		total = total.Add(item.LineTotal)
	}
	return total
}
