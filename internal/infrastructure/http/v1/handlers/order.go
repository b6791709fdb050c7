package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"fakturo/internal/core/id"
	"fakturo/internal/domain"
	"fakturo/internal/domain/documents/order"
	"fakturo/internal/infrastructure/http/v1/dto"
)

// OrderHandler serves the order document lifecycle.
type OrderHandler struct {
	*BaseHandler
	service *order.Service
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(base *BaseHandler, service *order.Service) *OrderHandler {
	return &OrderHandler{BaseHandler: base, service: service}
}

// Create handles POST /orders. Lines are priced server-side from the
// catalogs; the order number is issued in the same transaction.
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	partnerID, err := id.Parse(req.PartnerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	inputs := make([]order.ItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		input, err := item.ToItemInput()
		if err != nil {
			h.Error(c, err)
			return
		}
		inputs = append(inputs, input)
	}

	doc := order.New(partnerID, h.ActorID(c))
	doc.Comment = req.Comment
	doc.PickupAddress = req.PickupAddress
	doc.DeliveryAddress = req.DeliveryAddress
	doc.DeliveryMethod = req.DeliveryMethod
	doc.DeliveryAt = req.DeliveryAt
	doc.PaymentMethod = req.PaymentMethod
	doc.PaymentTerms = req.PaymentTerms
	if req.ShowPrices != nil {
		doc.ShowPrices = *req.ShowPrices
	}

	if err := h.service.Create(c.Request.Context(), doc, inputs); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromOrder(doc))
}

// Get handles GET /orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromOrder(doc))
}

// List handles GET /orders with partner and derived-status filters.
func (h *OrderHandler) List(c *gin.Context) {
	filter := order.ListFilter{ListFilter: h.documentListFilter(c)}

	if raw := c.Query("partnerId"); raw != "" {
		partnerID, err := id.Parse(raw)
		if err != nil {
			h.Error(c, err)
			return
		}
		filter.PartnerID = &partnerID
	}
	if raw := c.Query("status"); raw != "" {
		status := order.Status(raw)
		filter.Status = &status
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, orderListResponse(result))
}

// Update handles PUT /orders/:id - header fields only.
func (h *OrderHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.GetByID(ctx, orderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Update(ctx, req.Apply(doc)); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromOrder(doc))
}

// AddItem handles POST /orders/:id/items.
func (h *OrderHandler) AddItem(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.OrderItemPayload
	if !h.BindJSON(c, &req) {
		return
	}
	input, err := req.ToItemInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	item, err := h.service.AddItem(c.Request.Context(), orderID, input)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// Confirm handles POST /orders/:id/confirm.
func (h *OrderHandler) Confirm(c *gin.Context) {
	h.transition(c, h.service.Confirm)
}

// Lock handles POST /orders/:id/lock - one-way finalization.
func (h *OrderHandler) Lock(c *gin.Context) {
	h.transition(c, h.service.Lock)
}

func (h *OrderHandler) transition(c *gin.Context, fn func(ctx context.Context, orderID id.ID) (*order.Order, error)) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	doc, err := fn(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromOrder(doc))
}

func orderListResponse(result domain.ListResult[*order.Order]) dto.ListResponse {
	items := make([]any, len(result.Items))
	for i, doc := range result.Items {
		items[i] = dto.FromOrder(doc)
	}
	return dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	}
}
