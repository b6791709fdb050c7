package dto

import (
	"github.com/shopspring/decimal"

	"fakturo/internal/domain/catalogs/partner"
)

// PartnerResponse contains partner fields.
type PartnerResponse struct {
	BaseResponse
	Code            string  `json:"code"`
	Name            string  `json:"name"`
	ICO             *string `json:"ico,omitempty"`
	DIC             *string `json:"dic,omitempty"`
	ICDPH           *string `json:"icDph,omitempty"`
	Street          *string `json:"street,omitempty"`
	City            *string `json:"city,omitempty"`
	Zip             *string `json:"zip,omitempty"`
	Country         *string `json:"country,omitempty"`
	Email           *string `json:"email,omitempty"`
	Phone           *string `json:"phone,omitempty"`
	GroupCode       string  `json:"groupCode,omitempty"`
	DiscountPercent string  `json:"discountPercent"`
	IsActive        bool    `json:"isActive"`
}

// FromPartner maps the domain entity to its response DTO.
func FromPartner(p *partner.Partner) PartnerResponse {
	return PartnerResponse{
		BaseResponse:    FromBaseCatalog(p.BaseCatalog),
		Code:            p.Code,
		Name:            p.Name,
		ICO:             p.ICO,
		DIC:             p.DIC,
		ICDPH:           p.ICDPH,
		Street:          p.Street,
		City:            p.City,
		Zip:             p.Zip,
		Country:         p.Country,
		Email:           p.Email,
		Phone:           p.Phone,
		GroupCode:       p.GroupCode,
		DiscountPercent: p.DiscountPercent.String(),
		IsActive:        p.IsActive,
	}
}

// CreatePartnerRequest for creating partners.
type CreatePartnerRequest struct {
	Code            string          `json:"code" binding:"required"`
	Name            string          `json:"name" binding:"required"`
	ICO             *string         `json:"ico"`
	DIC             *string         `json:"dic"`
	ICDPH           *string         `json:"icDph"`
	Street          *string         `json:"street"`
	City            *string         `json:"city"`
	Zip             *string         `json:"zip"`
	Country         *string         `json:"country"`
	Email           *string         `json:"email"`
	Phone           *string         `json:"phone"`
	GroupCode       string          `json:"groupCode"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	IsActive        *bool           `json:"isActive"`
}

// ToPartner builds the domain entity.
func (r CreatePartnerRequest) ToPartner() *partner.Partner {
	p := partner.NewPartner(r.Code, r.Name)
	p.ICO = r.ICO
	p.DIC = r.DIC
	p.ICDPH = r.ICDPH
	p.Street = r.Street
	p.City = r.City
	p.Zip = r.Zip
	p.Country = r.Country
	p.Email = r.Email
	p.Phone = r.Phone
	p.GroupCode = r.GroupCode
	p.DiscountPercent = r.DiscountPercent
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
	return p
}

// UpdatePartnerRequest for updating partners.
type UpdatePartnerRequest struct {
	Name            *string          `json:"name"`
	ICO             *string          `json:"ico"`
	DIC             *string          `json:"dic"`
	ICDPH           *string          `json:"icDph"`
	Street          *string          `json:"street"`
	City            *string          `json:"city"`
	Zip             *string          `json:"zip"`
	Country         *string          `json:"country"`
	Email           *string          `json:"email"`
	Phone           *string          `json:"phone"`
	GroupCode       *string          `json:"groupCode"`
	DiscountPercent *decimal.Decimal `json:"discountPercent"`
	IsActive        *bool            `json:"isActive"`
	Version         int              `json:"version" binding:"required,min=1"`
}

// Apply merges the update onto the existing entity.
func (r UpdatePartnerRequest) Apply(p *partner.Partner) *partner.Partner {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.ICO != nil {
		p.ICO = r.ICO
	}
	if r.DIC != nil {
		p.DIC = r.DIC
	}
	if r.ICDPH != nil {
		p.ICDPH = r.ICDPH
	}
	if r.Street != nil {
		p.Street = r.Street
	}
	if r.City != nil {
		p.City = r.City
	}
	if r.Zip != nil {
		p.Zip = r.Zip
	}
	if r.Country != nil {
		p.Country = r.Country
	}
	if r.Email != nil {
		p.Email = r.Email
	}
	if r.Phone != nil {
		p.Phone = r.Phone
	}
	if r.GroupCode != nil {
		p.GroupCode = *r.GroupCode
	}
	if r.DiscountPercent != nil {
		p.DiscountPercent = *r.DiscountPercent
	}
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
	p.Version = r.Version
	return p
}
