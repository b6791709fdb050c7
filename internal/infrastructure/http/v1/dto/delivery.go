package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"fakturo/internal/core/types"
	"fakturo/internal/domain/documents/delivery"
)

// ManualItemPayload is a manual line on a delivery note.
type ManualItemPayload struct {
	Name      string           `json:"name" binding:"required"`
	UnitPrice decimal.Decimal  `json:"unitPrice"`
	VATRate   *decimal.Decimal `json:"vatRate"`
	Quantity  decimal.Decimal  `json:"quantity" binding:"required"`
}

// ToManualItemInput converts the payload into the service input.
func (p ManualItemPayload) ToManualItemInput() delivery.ManualItemInput {
	input := delivery.ManualItemInput{
		Name:      p.Name,
		UnitPrice: p.UnitPrice,
		Quantity:  p.Quantity,
	}
	if p.VATRate != nil {
		rate := types.Money(*p.VATRate)
		input.VATRate = &rate
	}
	return input
}

// DeliveryItemResponse is one delivery note line.
type DeliveryItemResponse struct {
	ID                string  `json:"id"`
	LineNo            int     `json:"lineNo"`
	ProductID         *string `json:"productId,omitempty"`
	BundleID          *string `json:"bundleId,omitempty"`
	Name              string  `json:"name"`
	SourceOrderItemID *string `json:"sourceOrderItemId,omitempty"`
	Quantity          string  `json:"quantity"`
	UnitPrice         string  `json:"unitPrice"`
	LineTotal         string  `json:"lineTotal"`
	VATRate           string  `json:"vatRate"`
}

// DeliveryNoteResponse contains delivery note fields.
type DeliveryNoteResponse struct {
	DocumentResponse
	PartnerID      string                 `json:"partnerId"`
	PrimaryOrderID *string                `json:"primaryOrderId,omitempty"`
	OrderIDs       []string               `json:"orderIds,omitempty"`
	PlannedAt      *time.Time             `json:"plannedAt,omitempty"`
	ActualAt       *time.Time             `json:"actualAt,omitempty"`
	Confirmed      bool                   `json:"confirmed"`
	Invoiced       bool                   `json:"invoiced"`
	Total          string                 `json:"total"`
	Items          []DeliveryItemResponse `json:"items"`
}

// FromDeliveryNote maps the domain entity to its response DTO.
func FromDeliveryNote(d *delivery.DeliveryNote) DeliveryNoteResponse {
	resp := DeliveryNoteResponse{
		DocumentResponse: FromDocument(d.Document),
		PartnerID:        d.PartnerID.String(),
		PlannedAt:        d.PlannedAt,
		ActualAt:         d.ActualAt,
		Confirmed:        d.Confirmed,
		Invoiced:         d.Invoiced,
		Total:            d.Total().String(),
		Items:            make([]DeliveryItemResponse, 0, len(d.Items)),
	}
	if d.PrimaryOrderID != nil {
		s := d.PrimaryOrderID.String()
		resp.PrimaryOrderID = &s
	}
	for _, orderID := range d.OrderIDs {
		resp.OrderIDs = append(resp.OrderIDs, orderID.String())
	}
	for _, item := range d.Items {
		line := DeliveryItemResponse{
			ID:        item.ID.String(),
			LineNo:    item.LineNo,
			Name:      item.Name,
			Quantity:  item.Quantity.String(),
			UnitPrice: item.UnitPrice.String(),
			LineTotal: item.LineTotal.String(),
			VATRate:   item.VATRate.String(),
		}
		if item.ProductID != nil {
			s := item.ProductID.String()
			line.ProductID = &s
		}
		if item.BundleID != nil {
			s := item.BundleID.String()
			line.BundleID = &s
		}
		if item.SourceOrderItemID != nil {
			s := item.SourceOrderItemID.String()
			line.SourceOrderItemID = &s
		}
		resp.Items = append(resp.Items, line)
	}
	return resp
}

// CreateDeliveryNoteRequest builds a note from locked orders.
type CreateDeliveryNoteRequest struct {
	OrderIDs    []string            `json:"orderIds"`
	ManualItems []ManualItemPayload `json:"manualItems"`
}

// ReceiveDeliveryRequest marks the note as delivered.
type ReceiveDeliveryRequest struct {
	ActualAt *time.Time `json:"actualAt"`
}
