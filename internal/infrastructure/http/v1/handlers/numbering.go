package handlers

import (
	"github.com/gin-gonic/gin"

	"fakturo/internal/domain"
	"fakturo/internal/domain/numbering"
	"fakturo/internal/infrastructure/http/v1/dto"
)

// NumberingHandler serves numbering scheme CRUD and issuance history.
type NumberingHandler struct {
	*CatalogHandler[*numbering.Scheme, dto.CreateSchemeRequest, dto.UpdateSchemeRequest]
	issuer *numbering.Service
}

// NewNumberingHandler creates a new numbering handler.
func NewNumberingHandler(base *BaseHandler, schemes *domain.CatalogService[*numbering.Scheme], issuer *numbering.Service) *NumberingHandler {
	catalog := NewCatalogHandler(base, CatalogHandlerConfig[*numbering.Scheme, dto.CreateSchemeRequest, dto.UpdateSchemeRequest]{
		Service:    schemes,
		EntityName: "numbering_scheme",
		MapCreateDTO: func(req dto.CreateSchemeRequest) (*numbering.Scheme, error) {
			return req.ToScheme(), nil
		},
		MapUpdateDTO: func(req dto.UpdateSchemeRequest, existing *numbering.Scheme) (*numbering.Scheme, error) {
			return req.Apply(existing), nil
		},
		MapToDTO: func(s *numbering.Scheme) any { return dto.FromScheme(s) },
	})
	return &NumberingHandler{CatalogHandler: catalog, issuer: issuer}
}

// History handles GET /numbering/history/:entityId - every number ever
// issued to the entity, oldest first.
func (h *NumberingHandler) History(c *gin.Context) {
	entityID, ok := h.ParseID(c, "entityId")
	if !ok {
		return
	}

	rows, err := h.issuer.HistoryFor(c.Request.Context(), entityID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": dto.FromNumberHistory(rows)})
}
