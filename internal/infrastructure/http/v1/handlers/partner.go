package handlers

import (
	"github.com/gin-gonic/gin"

	"fakturo/internal/domain/catalogs/partner"
	"fakturo/internal/infrastructure/http/v1/dto"
)

// PartnerHandler serves the partner catalog plus group lookups.
type PartnerHandler struct {
	*CatalogHandler[*partner.Partner, dto.CreatePartnerRequest, dto.UpdatePartnerRequest]
	service *partner.Service
}

// NewPartnerHandler creates a new partner handler.
func NewPartnerHandler(base *BaseHandler, service *partner.Service) *PartnerHandler {
	catalog := NewCatalogHandler(base, CatalogHandlerConfig[*partner.Partner, dto.CreatePartnerRequest, dto.UpdatePartnerRequest]{
		Service:    service.CatalogService,
		EntityName: "partner",
		MapCreateDTO: func(req dto.CreatePartnerRequest) (*partner.Partner, error) {
			return req.ToPartner(), nil
		},
		MapUpdateDTO: func(req dto.UpdatePartnerRequest, existing *partner.Partner) (*partner.Partner, error) {
			return req.Apply(existing), nil
		},
		MapToDTO: func(p *partner.Partner) any { return dto.FromPartner(p) },
	})
	return &PartnerHandler{CatalogHandler: catalog, service: service}
}

// GroupSiblings handles GET /partners/:id/group-siblings - the partner
// together with every active member of its billing group.
func (h *PartnerHandler) GroupSiblings(c *gin.Context) {
	partnerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	members, err := h.service.GroupSiblings(c.Request.Context(), partnerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.PartnerResponse, len(members))
	for i, m := range members {
		items[i] = dto.FromPartner(m)
	}
	h.OK(c, gin.H{"items": items})
}
