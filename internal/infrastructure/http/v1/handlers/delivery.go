package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fakturo/internal/core/id"
	"fakturo/internal/domain/documents/delivery"
	"fakturo/internal/infrastructure/http/v1/dto"
)

// DeliveryHandler serves the delivery note lifecycle.
type DeliveryHandler struct {
	*BaseHandler
	service *delivery.Service
}

// NewDeliveryHandler creates a new delivery note handler.
func NewDeliveryHandler(base *BaseHandler, service *delivery.Service) *DeliveryHandler {
	return &DeliveryHandler{BaseHandler: base, service: service}
}

// Create handles POST /delivery-notes. The note is built from the
// undelivered remainder of the given locked orders plus optional
// manual lines.
func (h *DeliveryHandler) Create(c *gin.Context) {
	var req dto.CreateDeliveryNoteRequest
	if !h.BindJSON(c, &req) {
		return
	}

	orderIDs := make([]id.ID, 0, len(req.OrderIDs))
	for _, raw := range req.OrderIDs {
		orderID, err := id.Parse(raw)
		if err != nil {
			h.Error(c, err)
			return
		}
		orderIDs = append(orderIDs, orderID)
	}

	manual := make([]delivery.ManualItemInput, 0, len(req.ManualItems))
	for _, item := range req.ManualItems {
		manual = append(manual, item.ToManualItemInput())
	}

	doc, err := h.service.CreateFromOrders(c.Request.Context(), orderIDs, manual, h.ActorID(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromDeliveryNote(doc))
}

// Get handles GET /delivery-notes/:id.
func (h *DeliveryHandler) Get(c *gin.Context) {
	noteID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), noteID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromDeliveryNote(doc))
}

// List handles GET /delivery-notes with partner/invoiced/confirmed filters.
func (h *DeliveryHandler) List(c *gin.Context) {
	filter := delivery.ListFilter{ListFilter: h.documentListFilter(c)}

	if raw := c.Query("partnerId"); raw != "" {
		partnerID, err := id.Parse(raw)
		if err != nil {
			h.Error(c, err)
			return
		}
		filter.PartnerID = &partnerID
	}
	if raw := c.Query("invoiced"); raw != "" {
		val := raw == "true"
		filter.Invoiced = &val
	}
	if raw := c.Query("confirmed"); raw != "" {
		val := raw == "true"
		filter.Confirmed = &val
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(result.Items))
	for i, doc := range result.Items {
		items[i] = dto.FromDeliveryNote(doc)
	}
	h.OK(c, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Receive handles POST /delivery-notes/:id/receive - records the
// actual delivery time and confirms the note.
func (h *DeliveryHandler) Receive(c *gin.Context) {
	noteID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.ReceiveDeliveryRequest
	if !h.BindJSON(c, &req) {
		return
	}
	actualAt := time.Now().UTC()
	if req.ActualAt != nil {
		actualAt = *req.ActualAt
	}

	doc, err := h.service.Receive(c.Request.Context(), noteID, actualAt)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromDeliveryNote(doc))
}

// AddItem handles POST /delivery-notes/:id/items - manual lines only,
// rejected once the note is invoiced.
func (h *DeliveryHandler) AddItem(c *gin.Context) {
	noteID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.ManualItemPayload
	if !h.BindJSON(c, &req) {
		return
	}

	item, err := h.service.AddItem(c.Request.Context(), noteID, req.ToManualItemInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}
