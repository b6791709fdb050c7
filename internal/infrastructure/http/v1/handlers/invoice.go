package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"fakturo/internal/core/id"
	"fakturo/internal/domain/documents/invoice"
	"fakturo/internal/infrastructure/http/v1/dto"
)

// InvoiceHandler serves invoice consolidation and the payment lifecycle.
type InvoiceHandler struct {
	*BaseHandler
	service *invoice.Service
}

// NewInvoiceHandler creates a new invoice handler.
func NewInvoiceHandler(base *BaseHandler, service *invoice.Service) *InvoiceHandler {
	return &InvoiceHandler{BaseHandler: base, service: service}
}

// Consolidate handles POST /invoices/consolidate - one invoice from the
// partner's delivery notes. Empty deliveryNoteIds means every unbilled
// note of the partner and its billing group.
func (h *InvoiceHandler) Consolidate(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ConsolidateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	partnerID, err := id.Parse(req.PartnerID)
	if err != nil {
		h.Error(c, err)
		return
	}
	noteIDs, err := req.NoteIDs()
	if err != nil {
		h.Error(c, err)
		return
	}

	var doc *invoice.Invoice
	if len(noteIDs) == 0 {
		doc, err = h.service.ConsolidateAll(ctx, partnerID, h.ActorID(c))
	} else {
		doc, err = h.service.Consolidate(ctx, partnerID, noteIDs, h.ActorID(c))
	}
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromInvoice(doc))
}

// Get handles GET /invoices/:id.
func (h *InvoiceHandler) Get(c *gin.Context) {
	invoiceID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), invoiceID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromInvoice(doc))
}

// List handles GET /invoices with partner and status filters.
func (h *InvoiceHandler) List(c *gin.Context) {
	filter := invoice.ListFilter{ListFilter: h.documentListFilter(c)}

	if raw := c.Query("partnerId"); raw != "" {
		partnerID, err := id.Parse(raw)
		if err != nil {
			h.Error(c, err)
			return
		}
		filter.PartnerID = &partnerID
	}
	if raw := c.Query("status"); raw != "" {
		status := invoice.Status(raw)
		filter.Status = &status
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(result.Items))
	for i, doc := range result.Items {
		items[i] = dto.FromInvoice(doc)
	}
	h.OK(c, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// AddItem handles POST /invoices/:id/items - manual lines on drafts.
func (h *InvoiceHandler) AddItem(c *gin.Context) {
	invoiceID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.InvoiceManualItemPayload
	if !h.BindJSON(c, &req) {
		return
	}
	input, err := req.ToManualItemInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	item, err := h.service.AddManualItem(c.Request.Context(), invoiceID, input)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// MarkSent handles POST /invoices/:id/send.
func (h *InvoiceHandler) MarkSent(c *gin.Context) {
	h.transition(c, h.service.MarkSent)
}

// MarkError handles POST /invoices/:id/error.
func (h *InvoiceHandler) MarkError(c *gin.Context) {
	h.transition(c, h.service.MarkError)
}

// MarkPaid handles POST /invoices/:id/pay - terminal state.
func (h *InvoiceHandler) MarkPaid(c *gin.Context) {
	h.transition(c, h.service.MarkPaid)
}

func (h *InvoiceHandler) transition(c *gin.Context, fn func(ctx context.Context, invoiceID id.ID) (*invoice.Invoice, error)) {
	invoiceID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	doc, err := fn(c.Request.Context(), invoiceID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromInvoice(doc))
}
