package handlers

import (
	"github.com/gin-gonic/gin"

	"fakturo/internal/domain/catalogs/product"
	"fakturo/internal/infrastructure/http/v1/dto"
)

// ProductHandler serves the product catalog plus price history.
type ProductHandler struct {
	*CatalogHandler[*product.Product, dto.CreateProductRequest, dto.UpdateProductRequest]
	service *product.Service
}

// NewProductHandler creates a new product handler.
func NewProductHandler(base *BaseHandler, service *product.Service) *ProductHandler {
	catalog := NewCatalogHandler(base, CatalogHandlerConfig[*product.Product, dto.CreateProductRequest, dto.UpdateProductRequest]{
		Service:    service.CatalogService,
		EntityName: "product",
		MapCreateDTO: func(req dto.CreateProductRequest) (*product.Product, error) {
			return req.ToProduct(), nil
		},
		MapUpdateDTO: func(req dto.UpdateProductRequest, existing *product.Product) (*product.Product, error) {
			return req.Apply(existing), nil
		},
		MapToDTO: func(p *product.Product) any { return dto.FromProduct(p) },
	})
	return &ProductHandler{CatalogHandler: catalog, service: service}
}

// PriceHistory handles GET /products/:id/price-history.
func (h *ProductHandler) PriceHistory(c *gin.Context) {
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	rows, err := h.service.PriceHistoryFor(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": dto.FromPriceHistory(rows)})
}

// BundleHandler serves the bundle catalog. Get loads component lines.
type BundleHandler struct {
	*CatalogHandler[*product.Bundle, dto.CreateBundleRequest, dto.UpdateBundleRequest]
	service *product.BundleService
}

// NewBundleHandler creates a new bundle handler.
func NewBundleHandler(base *BaseHandler, service *product.BundleService) *BundleHandler {
	catalog := NewCatalogHandler(base, CatalogHandlerConfig[*product.Bundle, dto.CreateBundleRequest, dto.UpdateBundleRequest]{
		Service:    service.CatalogService,
		EntityName: "bundle",
		MapCreateDTO: func(req dto.CreateBundleRequest) (*product.Bundle, error) {
			return req.ToBundle()
		},
		MapUpdateDTO: func(req dto.UpdateBundleRequest, existing *product.Bundle) (*product.Bundle, error) {
			return req.Apply(existing)
		},
		MapToDTO: func(b *product.Bundle) any { return dto.FromBundle(b) },
	})
	return &BundleHandler{CatalogHandler: catalog, service: service}
}

// Get shadows the generic handler to include component lines.
func (h *BundleHandler) Get(c *gin.Context) {
	bundleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	b, err := h.service.GetWithItems(c.Request.Context(), bundleID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromBundle(b))
}
