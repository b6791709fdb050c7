// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"fakturo/internal/domain"
	"fakturo/internal/domain/catalogs/partner"
	"fakturo/internal/domain/catalogs/product"
	"fakturo/internal/domain/documents/delivery"
	"fakturo/internal/domain/documents/invoice"
	"fakturo/internal/domain/documents/order"
	"fakturo/internal/domain/numbering"
	"fakturo/internal/infrastructure/http/v1/handlers"
	"fakturo/internal/infrastructure/http/v1/middleware"
	"fakturo/internal/infrastructure/storage/postgres"
	"fakturo/internal/infrastructure/storage/postgres/catalog_repo"
	"fakturo/internal/infrastructure/storage/postgres/document_repo"
	"fakturo/pkg/logger"
)

// RouterConfig holds everything the HTTP layer depends on.
type RouterConfig struct {
	Pool      *postgres.Pool
	TxManager *postgres.TxManager
	Logger    *logger.Logger
	Verifier  *middleware.TokenVerifier
	Version   string

	// AuditCompressThreshold is the minimum audit details size in
	// bytes before compression. Zero selects the default.
	AuditCompressThreshold int
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters).
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints, no auth required.
	healthHandler := handlers.NewHealthHandler(cfg.Pool, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1, bearer token required.
	api := router.Group("/api/v1")
	api.Use(middleware.Auth(cfg.Verifier))

	auditRepo, err := postgres.NewAuditRepo(cfg.TxManager, cfg.AuditCompressThreshold)
	if err != nil {
		return nil, err
	}

	registerCatalogRoutes(api, cfg, auditRepo)
	registerDocumentRoutes(api, cfg, auditRepo)

	return router, nil
}

// registerCatalogRoutes wires partner, product, bundle and numbering
// scheme endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig, auditRepo *postgres.AuditRepo) {
	base := handlers.NewBaseHandler()
	txm := cfg.TxManager

	priceHistory := catalog_repo.NewPriceHistoryRepo(txm)

	// --- PARTNERS ---
	{
		repo := catalog_repo.NewPartnerRepo(txm)
		service := partner.NewService(repo, txm)
		handler := handlers.NewPartnerHandler(base, service)
		group := rg.Group("/partners")
		RegisterCatalogRoutes(group, handler)
		group.GET("/:id/group-siblings", handler.GroupSiblings)
	}

	// --- PRODUCTS ---
	{
		repo := catalog_repo.NewProductRepo(txm)
		service := product.NewService(repo, priceHistory, txm)
		handler := handlers.NewProductHandler(base, service)
		group := rg.Group("/products")
		RegisterCatalogRoutes(group, handler)
		group.GET("/:id/price-history", handler.PriceHistory)
	}

	// --- BUNDLES ---
	{
		repo := catalog_repo.NewBundleRepo(txm)
		service := product.NewBundleService(repo, priceHistory, txm)
		handler := handlers.NewBundleHandler(base, service)
		group := rg.Group("/bundles")
		group.GET("", handler.List)
		group.POST("", handler.Create)
		group.GET("/:id", handler.Get)
		group.PUT("/:id", handler.Update)
		group.DELETE("/:id", handler.Delete)
		group.POST("/:id/deletion-mark", handler.SetDeletionMark)
	}

	// --- NUMBERING SCHEMES ---
	{
		schemeRepo := catalog_repo.NewSchemeRepo(txm)
		historyRepo := catalog_repo.NewNumberHistoryRepo(txm)
		counter := postgres.NewSequenceCounter(txm)
		issuer := numbering.NewService(schemeRepo, counter, historyRepo)

		schemes := domain.NewCatalogService(domain.CatalogServiceConfig[*numbering.Scheme]{
			Repo:       schemeRepo,
			TxManager:  txm,
			EntityName: "numbering_scheme",
		})
		handler := handlers.NewNumberingHandler(base, schemes, issuer)
		group := rg.Group("/numbering/schemes")
		RegisterCatalogRoutes(group, handler)
		rg.GET("/numbering/history/:entityId", handler.History)
	}

	// --- AUDIT TRAIL ---
	{
		handler := handlers.NewAuditHandler(base, auditRepo)
		rg.GET("/audit/:entityId", handler.ListByEntity)
	}
}

// registerDocumentRoutes wires the order, delivery note and invoice
// lifecycle endpoints.
func registerDocumentRoutes(rg *gin.RouterGroup, cfg RouterConfig, auditRepo *postgres.AuditRepo) {
	base := handlers.NewBaseHandler()
	txm := cfg.TxManager

	partnerRepo := catalog_repo.NewPartnerRepo(txm)
	productRepo := catalog_repo.NewProductRepo(txm)
	bundleRepo := catalog_repo.NewBundleRepo(txm)
	priceHistory := catalog_repo.NewPriceHistoryRepo(txm)

	partnerSvc := partner.NewService(partnerRepo, txm)
	productSvc := product.NewService(productRepo, priceHistory, txm)
	bundleSvc := product.NewBundleService(bundleRepo, priceHistory, txm)

	schemeRepo := catalog_repo.NewSchemeRepo(txm)
	historyRepo := catalog_repo.NewNumberHistoryRepo(txm)
	counter := postgres.NewSequenceCounter(txm)
	numbers := numbering.NewService(schemeRepo, counter, historyRepo)

	orderRepo := document_repo.NewOrderRepo(txm)
	deliveryRepo := document_repo.NewDeliveryRepo(txm)
	invoiceRepo := document_repo.NewInvoiceRepo(txm)

	orderSvc := order.NewService(orderRepo, partnerSvc, productSvc, bundleSvc, numbers, auditRepo, txm)
	deliverySvc := delivery.NewService(deliveryRepo, orderRepo, partnerSvc, numbers, auditRepo, txm)
	invoiceSvc := invoice.NewService(invoiceRepo, deliveryRepo, partnerSvc, productSvc, numbers, auditRepo, txm)

	// --- ORDERS ---
	{
		handler := handlers.NewOrderHandler(base, orderSvc)
		group := rg.Group("/orders")
		group.GET("", handler.List)
		group.POST("", handler.Create)
		group.GET("/:id", handler.Get)
		group.PUT("/:id", handler.Update)
		group.POST("/:id/items", handler.AddItem)
		group.POST("/:id/confirm", handler.Confirm)
		group.POST("/:id/lock", handler.Lock)
	}

	// --- DELIVERY NOTES ---
	{
		handler := handlers.NewDeliveryHandler(base, deliverySvc)
		group := rg.Group("/delivery-notes")
		group.GET("", handler.List)
		group.POST("", handler.Create)
		group.GET("/:id", handler.Get)
		group.POST("/:id/items", handler.AddItem)
		group.POST("/:id/receive", handler.Receive)
	}

	// --- INVOICES ---
	{
		handler := handlers.NewInvoiceHandler(base, invoiceSvc)
		group := rg.Group("/invoices")
		group.GET("", handler.List)
		group.POST("/consolidate", handler.Consolidate)
		group.GET("/:id", handler.Get)
		group.POST("/:id/items", handler.AddItem)
		group.POST("/:id/send", handler.MarkSent)
		group.POST("/:id/error", handler.MarkError)
		group.POST("/:id/pay", handler.MarkPaid)
	}
}
