package handlers

import (
	"github.com/gin-gonic/gin"

	"fakturo/internal/domain/audit"
	"fakturo/internal/infrastructure/http/v1/dto"
)

// AuditHandler exposes the audit trail read side.
type AuditHandler struct {
	*BaseHandler
	reader audit.Reader
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(base *BaseHandler, reader audit.Reader) *AuditHandler {
	return &AuditHandler{BaseHandler: base, reader: reader}
}

// ListByEntity handles GET /audit/:entityId - newest first.
func (h *AuditHandler) ListByEntity(c *gin.Context) {
	entityID, ok := h.ParseID(c, "entityId")
	if !ok {
		return
	}

	limit := h.ParseIntQuery(c, "limit", 100)
	rows, err := h.reader.ListByEntity(c.Request.Context(), entityID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": dto.FromAuditEntries(rows)})
}
