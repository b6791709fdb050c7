package dto

import (
	"github.com/shopspring/decimal"

	"fakturo/internal/core/id"
	"fakturo/internal/core/types"
	"fakturo/internal/domain/documents/invoice"
)

// InvoiceItemResponse is one invoice line.
type InvoiceItemResponse struct {
	ID               string  `json:"id"`
	LineNo           int     `json:"lineNo"`
	Description      string  `json:"description"`
	SourceDeliveryID *string `json:"sourceDeliveryId,omitempty"`
	IsManual         bool    `json:"isManual"`
	Quantity         string  `json:"quantity"`
	UnitPrice        string  `json:"unitPrice"`
	LineTotal        string  `json:"lineTotal"`
	VATRate          string  `json:"vatRate"`
	VATAmount        string  `json:"vatAmount"`
	TotalWithVAT     string  `json:"totalWithVat"`
}

// InvoiceResponse contains invoice fields.
type InvoiceResponse struct {
	DocumentResponse
	PartnerID    string                `json:"partnerId"`
	Status       string                `json:"status"`
	Total        string                `json:"total"`
	TotalWithVAT string                `json:"totalWithVat"`
	Items        []InvoiceItemResponse `json:"items"`
}

// FromInvoice maps the domain entity to its response DTO.
func FromInvoice(inv *invoice.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		DocumentResponse: FromDocument(inv.Document),
		PartnerID:        inv.PartnerID.String(),
		Status:           string(inv.Status),
		Total:            inv.Total.String(),
		TotalWithVAT:     inv.TotalWithVAT.String(),
		Items:            make([]InvoiceItemResponse, 0, len(inv.Items)),
	}
	for _, item := range inv.Items {
		line := InvoiceItemResponse{
			ID:           item.ID.String(),
			LineNo:       item.LineNo,
			Description:  item.Description,
			IsManual:     item.IsManual,
			Quantity:     item.Quantity.String(),
			UnitPrice:    item.UnitPrice.String(),
			LineTotal:    item.LineTotal.String(),
			VATRate:      item.VATRate.String(),
			VATAmount:    item.VATAmount.String(),
			TotalWithVAT: item.TotalWithVAT.String(),
		}
		if item.SourceDeliveryID != nil {
			s := item.SourceDeliveryID.String()
			line.SourceDeliveryID = &s
		}
		resp.Items = append(resp.Items, line)
	}
	return resp
}

// ConsolidateRequest builds one invoice from delivery notes.
type ConsolidateRequest struct {
	PartnerID       string   `json:"partnerId" binding:"required"`
	DeliveryNoteIDs []string `json:"deliveryNoteIds"`
}

// NoteIDs parses the delivery note IDs.
func (r ConsolidateRequest) NoteIDs() ([]id.ID, error) {
	ids := make([]id.ID, 0, len(r.DeliveryNoteIDs))
	for _, raw := range r.DeliveryNoteIDs {
		noteID, err := id.Parse(raw)
		if err != nil {
			return nil, err
		}
		ids = append(ids, noteID)
	}
	return ids, nil
}

// InvoiceManualItemPayload is a manual line on a draft invoice.
type InvoiceManualItemPayload struct {
	ProductID   *string          `json:"productId"`
	Description string           `json:"description"`
	UnitPrice   *decimal.Decimal `json:"unitPrice"`
	VATRate     *decimal.Decimal `json:"vatRate"`
	Quantity    decimal.Decimal  `json:"quantity" binding:"required"`
}

// ToManualItemInput converts the payload into the service input.
func (p InvoiceManualItemPayload) ToManualItemInput() (invoice.ManualItemInput, error) {
	input := invoice.ManualItemInput{
		Description: p.Description,
		Quantity:    p.Quantity,
	}
	if p.ProductID != nil {
		productID, err := id.Parse(*p.ProductID)
		if err != nil {
			return input, err
		}
		input.ProductID = &productID
	}
	if p.UnitPrice != nil {
		price := types.Money(*p.UnitPrice)
		input.UnitPrice = &price
	}
	if p.VATRate != nil {
		rate := types.Money(*p.VATRate)
		input.VATRate = &rate
	}
	return input, nil
}
