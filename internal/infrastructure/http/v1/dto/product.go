package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"fakturo/internal/core/id"
	"fakturo/internal/domain/catalogs/product"
)

// --- Product ---

// ProductResponse contains product fields.
type ProductResponse struct {
	BaseResponse
	Code             string `json:"code"`
	Name             string `json:"name"`
	Price            string `json:"price"`
	VATRate          string `json:"vatRate"`
	IsService        bool   `json:"isService"`
	DiscountExcluded bool   `json:"discountExcluded"`
	IsActive         bool   `json:"isActive"`
}

// FromProduct maps the domain entity to its response DTO.
func FromProduct(p *product.Product) ProductResponse {
	return ProductResponse{
		BaseResponse:     FromBaseCatalog(p.BaseCatalog),
		Code:             p.Code,
		Name:             p.Name,
		Price:            p.Price.String(),
		VATRate:          p.VATRate.String(),
		IsService:        p.IsService,
		DiscountExcluded: p.DiscountExcluded,
		IsActive:         p.IsActive,
	}
}

// CreateProductRequest for creating products.
type CreateProductRequest struct {
	Code             string           `json:"code" binding:"required"`
	Name             string           `json:"name" binding:"required"`
	Price            decimal.Decimal  `json:"price"`
	VATRate          *decimal.Decimal `json:"vatRate"`
	IsService        bool             `json:"isService"`
	DiscountExcluded bool             `json:"discountExcluded"`
	IsActive         *bool            `json:"isActive"`
}

// ToProduct builds the domain entity.
func (r CreateProductRequest) ToProduct() *product.Product {
	p := product.NewProduct(r.Code, r.Name, r.Price)
	if r.VATRate != nil {
		p.VATRate = *r.VATRate
	}
	p.IsService = r.IsService
	p.DiscountExcluded = r.DiscountExcluded
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
	return p
}

// UpdateProductRequest for updating products.
type UpdateProductRequest struct {
	Name             *string          `json:"name"`
	Price            *decimal.Decimal `json:"price"`
	VATRate          *decimal.Decimal `json:"vatRate"`
	IsService        *bool            `json:"isService"`
	DiscountExcluded *bool            `json:"discountExcluded"`
	IsActive         *bool            `json:"isActive"`
	Version          int              `json:"version" binding:"required,min=1"`
}

// Apply merges the update onto the existing entity.
func (r UpdateProductRequest) Apply(p *product.Product) *product.Product {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Price != nil {
		p.Price = *r.Price
	}
	if r.VATRate != nil {
		p.VATRate = *r.VATRate
	}
	if r.IsService != nil {
		p.IsService = *r.IsService
	}
	if r.DiscountExcluded != nil {
		p.DiscountExcluded = *r.DiscountExcluded
	}
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
	p.Version = r.Version
	return p
}

// --- Bundle ---

// BundleItemPayload is one component line of a bundle.
type BundleItemPayload struct {
	ProductID string          `json:"productId" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
}

// BundleItemResponse is one component line of a bundle.
type BundleItemResponse struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	Quantity  string `json:"quantity"`
}

// BundleResponse contains bundle fields with components.
type BundleResponse struct {
	BaseResponse
	Code             string               `json:"code"`
	Name             string               `json:"name"`
	BundlePrice      string               `json:"bundlePrice"`
	VATRate          string               `json:"vatRate"`
	DiscountExcluded bool                 `json:"discountExcluded"`
	IsActive         bool                 `json:"isActive"`
	Items            []BundleItemResponse `json:"items,omitempty"`
}

// FromBundle maps the domain entity to its response DTO.
func FromBundle(b *product.Bundle) BundleResponse {
	resp := BundleResponse{
		BaseResponse:     FromBaseCatalog(b.BaseCatalog),
		Code:             b.Code,
		Name:             b.Name,
		BundlePrice:      b.BundlePrice.String(),
		VATRate:          b.VATRate.String(),
		DiscountExcluded: b.DiscountExcluded,
		IsActive:         b.IsActive,
	}
	for _, item := range b.Items {
		resp.Items = append(resp.Items, BundleItemResponse{
			ID:        item.ID.String(),
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity.String(),
		})
	}
	return resp
}

// CreateBundleRequest for creating bundles.
type CreateBundleRequest struct {
	Code             string              `json:"code" binding:"required"`
	Name             string              `json:"name" binding:"required"`
	BundlePrice      decimal.Decimal     `json:"bundlePrice"`
	VATRate          *decimal.Decimal    `json:"vatRate"`
	DiscountExcluded bool                `json:"discountExcluded"`
	IsActive         *bool               `json:"isActive"`
	Items            []BundleItemPayload `json:"items"`
}

// ToBundle builds the domain entity.
func (r CreateBundleRequest) ToBundle() (*product.Bundle, error) {
	b := product.NewBundle(r.Code, r.Name, r.BundlePrice)
	if r.VATRate != nil {
		b.VATRate = *r.VATRate
	}
	b.DiscountExcluded = r.DiscountExcluded
	if r.IsActive != nil {
		b.IsActive = *r.IsActive
	}
	for _, item := range r.Items {
		productID, err := id.Parse(item.ProductID)
		if err != nil {
			return nil, err
		}
		b.Items = append(b.Items, product.BundleItem{
			ID:        id.New(),
			BundleID:  b.ID,
			ProductID: productID,
			Quantity:  item.Quantity,
		})
	}
	return b, nil
}

// UpdateBundleRequest for updating bundles.
type UpdateBundleRequest struct {
	Name             *string             `json:"name"`
	BundlePrice      *decimal.Decimal    `json:"bundlePrice"`
	VATRate          *decimal.Decimal    `json:"vatRate"`
	DiscountExcluded *bool               `json:"discountExcluded"`
	IsActive         *bool               `json:"isActive"`
	Items            []BundleItemPayload `json:"items"`
	Version          int                 `json:"version" binding:"required,min=1"`
}

// Apply merges the update onto the existing bundle. A nil Items slice
// leaves the component lines untouched; a non-nil slice replaces them.
func (r UpdateBundleRequest) Apply(b *product.Bundle) (*product.Bundle, error) {
	if r.Name != nil {
		b.Name = *r.Name
	}
	if r.BundlePrice != nil {
		b.BundlePrice = *r.BundlePrice
	}
	if r.VATRate != nil {
		b.VATRate = *r.VATRate
	}
	if r.DiscountExcluded != nil {
		b.DiscountExcluded = *r.DiscountExcluded
	}
	if r.IsActive != nil {
		b.IsActive = *r.IsActive
	}
	if r.Items != nil {
		items := make([]product.BundleItem, 0, len(r.Items))
		for _, item := range r.Items {
			productID, err := id.Parse(item.ProductID)
			if err != nil {
				return nil, err
			}
			items = append(items, product.BundleItem{
				ID:        id.New(),
				BundleID:  b.ID,
				ProductID: productID,
				Quantity:  item.Quantity,
			})
		}
		b.Items = items
	}
	b.Version = r.Version
	return b, nil
}

// --- Price History ---

// PriceHistoryResponse is one recorded price change.
type PriceHistoryResponse struct {
	ID        string    `json:"id"`
	Price     string    `json:"price"`
	ChangedBy string    `json:"changedBy"`
	ChangedAt time.Time `json:"changedAt"`
}

// FromPriceHistory maps price history rows.
func FromPriceHistory(rows []product.PriceHistory) []PriceHistoryResponse {
	out := make([]PriceHistoryResponse, len(rows))
	for i, h := range rows {
		out[i] = PriceHistoryResponse{
			ID:        h.ID.String(),
			Price:     h.Price.String(),
			ChangedBy: h.ChangedBy.String(),
			ChangedAt: h.ChangedAt,
		}
	}
	return out
}
