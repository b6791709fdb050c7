// Package invoice provides the Invoice document and the consolidation
// engine that bills delivery notes.
package invoice

import (
	"context"

	"github.com/shopspring/decimal"

	"fakturo/internal/core/apperror"
	"fakturo/internal/core/entity"
	"fakturo/internal/core/id"
	"fakturo/internal/core/types"
)

// Status of an invoice. Draft invoices may still change; once sent,
// only export/payment outcomes update the status.
type Status string

const (
	StatusDraft Status = "draft"
	StatusSent  Status = "sent"
	StatusPaid  Status = "paid"
	StatusError Status = "error"
)

// Invoice represents a consolidated invoice for one partner.
type Invoice struct {
	entity.Document

	PartnerID id.ID  `db:"partner_id" json:"partnerId"`
	Status    Status `db:"status" json:"status"`

	// Total is the net sum of line totals; TotalWithVAT adds each
	// line's independently rounded VAT.
	Total        types.Money `db:"total" json:"total"`
	TotalWithVAT types.Money `db:"total_with_vat" json:"totalWithVat"`

	Items []Item `db:"-" json:"items"`
}

// Item is one invoice line. Lines sourced from a delivery note keep a
// back-reference for traceability; manual lines have none.
type Item struct {
	ID        id.ID `db:"id" json:"id"`
	InvoiceID id.ID `db:"invoice_id" json:"invoiceId"`
	LineNo    int   `db:"line_no" json:"lineNo"`

	Description string `db:"description" json:"description"`

	SourceDeliveryID *id.ID `db:"source_delivery_id" json:"sourceDeliveryId,omitempty"`
	IsManual         bool   `db:"is_manual" json:"isManual"`

	Quantity     decimal.Decimal `db:"quantity" json:"quantity"`
	UnitPrice    types.Money     `db:"unit_price" json:"unitPrice"`
	LineTotal    types.Money     `db:"line_total" json:"lineTotal"`
	VATRate      types.Money     `db:"vat_rate" json:"vatRate"`
	VATAmount    types.Money     `db:"vat_amount" json:"vatAmount"`
	TotalWithVAT types.Money     `db:"total_with_vat" json:"totalWithVat"`
}

// New creates a new draft Invoice for a partner.
func New(partnerID id.ID, createdBy id.ID) *Invoice {
	return &Invoice{
		Document:  entity.NewDocument(createdBy),
		PartnerID: partnerID,
		Status:    StatusDraft,
		Items:     make([]Item, 0),
	}
}

// MarkSent transitions the invoice to sent. Allowed from draft and,
// for export retries, from error.
func (inv *Invoice) MarkSent() error {
	switch inv.Status {
	case StatusDraft, StatusError:
		inv.Status = StatusSent
		return nil
	default:
		return apperror.NewConflict("invoice cannot be sent from its current status").
			WithDetail("invoiceId", inv.ID.String()).
			WithDetail("status", string(inv.Status))
	}
}

// MarkError records a failed export. Only a sent invoice can fail.
func (inv *Invoice) MarkError() error {
	if inv.Status != StatusSent {
		return apperror.NewConflict("only a sent invoice can be marked failed").
			WithDetail("invoiceId", inv.ID.String()).
			WithDetail("status", string(inv.Status))
	}
	inv.Status = StatusError
	return nil
}

// MarkPaid records payment of a sent invoice.
func (inv *Invoice) MarkPaid() error {
	if inv.Status != StatusSent {
		return apperror.NewConflict("only a sent invoice can be marked paid").
			WithDetail("invoiceId", inv.ID.String()).
			WithDetail("status", string(inv.Status))
	}
	inv.Status = StatusPaid
	return nil
}

// CanModifyItems reports whether manual lines may still be added.
func (inv *Invoice) CanModifyItems() error {
	if inv.Status != StatusDraft {
		return apperror.NewImmutableDocument("invoice", inv.ID.String(), "invoice is no longer a draft")
	}
	return nil
}

// RecalculateTotals recomputes the invoice totals from its items.
func (inv *Invoice) RecalculateTotals() {
	total := decimal.Zero
	withVAT := decimal.Zero
	for _, item := range inv.Items {
		total = total.Add(item.LineTotal)
		withVAT = withVAT.Add(item.TotalWithVAT)
	}
	inv.Total = total
	inv.TotalWithVAT = withVAT
}

// Validate implements entity.Validatable.
func (inv *Invoice) Validate(ctx context.Context) error {
	if err := inv.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(inv.PartnerID) {
		return apperror.NewValidation("partner is required").
			WithDetail("field", "partnerId")
	}
	switch inv.Status {
	case StatusDraft, StatusSent, StatusPaid, StatusError:
	default:
		return apperror.NewValidation("unknown invoice status").
			WithDetail("status", string(inv.Status))
	}
	return nil
}
