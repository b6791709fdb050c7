package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"fakturo/internal/core/id"
	"fakturo/internal/core/types"
	"fakturo/internal/domain/documents/order"
)

// OrderItemPayload is one requested order line.
type OrderItemPayload struct {
	ProductID *string          `json:"productId"`
	BundleID  *string          `json:"bundleId"`
	Name      string           `json:"name"`
	UnitPrice *decimal.Decimal `json:"unitPrice"`
	VATRate   *decimal.Decimal `json:"vatRate"`
	Quantity  decimal.Decimal  `json:"quantity" binding:"required"`
}

// ToItemInput converts the payload into the service input.
func (p OrderItemPayload) ToItemInput() (order.ItemInput, error) {
	input := order.ItemInput{
		Name:     p.Name,
		Quantity: p.Quantity,
	}
	if p.ProductID != nil {
		productID, err := id.Parse(*p.ProductID)
		if err != nil {
			return input, err
		}
		input.ProductID = &productID
	}
	if p.BundleID != nil {
		bundleID, err := id.Parse(*p.BundleID)
		if err != nil {
			return input, err
		}
		input.BundleID = &bundleID
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

// OrderItemResponse is one priced order line.
type OrderItemResponse struct {
	ID        string  `json:"id"`
	LineNo    int     `json:"lineNo"`
	ProductID *string `json:"productId,omitempty"`
	BundleID  *string `json:"bundleId,omitempty"`
	Name      string  `json:"name"`
	Quantity  string  `json:"quantity"`
	UnitPrice string  `json:"unitPrice"`
	LineTotal string  `json:"lineTotal"`
	VATRate   string  `json:"vatRate"`
}

// OrderResponse contains order fields with derived status.
type OrderResponse struct {
	DocumentResponse
	PartnerID       string              `json:"partnerId"`
	Status          string              `json:"status"`
	PickupAddress   *string             `json:"pickupAddress,omitempty"`
	DeliveryAddress *string             `json:"deliveryAddress,omitempty"`
	DeliveryMethod  *string             `json:"deliveryMethod,omitempty"`
	DeliveryAt      *time.Time          `json:"deliveryAt,omitempty"`
	PaymentMethod   *string             `json:"paymentMethod,omitempty"`
	PaymentTerms    *string             `json:"paymentTerms,omitempty"`
	ShowPrices      bool                `json:"showPrices"`
	Confirmed       bool                `json:"confirmed"`
	IsLocked        bool                `json:"isLocked"`
	Total           string              `json:"total"`
	Items           []OrderItemResponse `json:"items"`
}

// FromOrder maps the domain entity to its response DTO.
func FromOrder(o *order.Order) OrderResponse {
	resp := OrderResponse{
		DocumentResponse: FromDocument(o.Document),
		PartnerID:        o.PartnerID.String(),
		Status:           string(o.Status()),
		PickupAddress:    o.PickupAddress,
		DeliveryAddress:  o.DeliveryAddress,
		DeliveryMethod:   o.DeliveryMethod,
		DeliveryAt:       o.DeliveryAt,
		PaymentMethod:    o.PaymentMethod,
		PaymentTerms:     o.PaymentTerms,
		ShowPrices:       o.ShowPrices,
		Confirmed:        o.Confirmed,
		IsLocked:         o.IsLocked,
		Total:            o.Total().String(),
		Items:            make([]OrderItemResponse, 0, len(o.Items)),
	}
	for _, item := range o.Items {
		line := OrderItemResponse{
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
		resp.Items = append(resp.Items, line)
	}
	return resp
}

// CreateOrderRequest for creating orders.
type CreateOrderRequest struct {
	PartnerID       string             `json:"partnerId" binding:"required"`
	Comment         string             `json:"comment"`
	PickupAddress   *string            `json:"pickupAddress"`
	DeliveryAddress *string            `json:"deliveryAddress"`
	DeliveryMethod  *string            `json:"deliveryMethod"`
	DeliveryAt      *time.Time         `json:"deliveryAt"`
	PaymentMethod   *string            `json:"paymentMethod"`
	PaymentTerms    *string            `json:"paymentTerms"`
	ShowPrices      *bool              `json:"showPrices"`
	Items           []OrderItemPayload `json:"items" binding:"required,min=1"`
}

// UpdateOrderRequest for updating order headers.
type UpdateOrderRequest struct {
	Comment         *string    `json:"comment"`
	PickupAddress   *string    `json:"pickupAddress"`
	DeliveryAddress *string    `json:"deliveryAddress"`
	DeliveryMethod  *string    `json:"deliveryMethod"`
	DeliveryAt      *time.Time `json:"deliveryAt"`
	PaymentMethod   *string    `json:"paymentMethod"`
	PaymentTerms    *string    `json:"paymentTerms"`
	ShowPrices      *bool      `json:"showPrices"`
	Version         int        `json:"version" binding:"required,min=1"`
}

// Apply merges the update onto the existing order.
func (r UpdateOrderRequest) Apply(o *order.Order) *order.Order {
	if r.Comment != nil {
		o.Comment = *r.Comment
	}
	if r.PickupAddress != nil {
		o.PickupAddress = r.PickupAddress
	}
	if r.DeliveryAddress != nil {
		o.DeliveryAddress = r.DeliveryAddress
	}
	if r.DeliveryMethod != nil {
		o.DeliveryMethod = r.DeliveryMethod
	}
	if r.DeliveryAt != nil {
		o.DeliveryAt = r.DeliveryAt
	}
	if r.PaymentMethod != nil {
		o.PaymentMethod = r.PaymentMethod
	}
	if r.PaymentTerms != nil {
		o.PaymentTerms = r.PaymentTerms
	}
	if r.ShowPrices != nil {
		o.ShowPrices = *r.ShowPrices
	}
	o.Version = r.Version
	return o
}
