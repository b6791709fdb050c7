package product

import (
	"context"

	"fakturo/internal/core/id"
	"fakturo/internal/domain"
)

// Repository defines the interface for Product persistence.
type Repository interface {
	domain.CatalogRepository[*Product]
}

// BundleRepository defines the interface for Bundle persistence.
type BundleRepository interface {
	domain.CatalogRepository[*Bundle]

	// ReplaceItems swaps the component set of a bundle.
	ReplaceItems(ctx context.Context, bundleID id.ID, items []BundleItem) error

	// GetItems loads the component set of a bundle.
	GetItems(ctx context.Context, bundleID id.ID) ([]BundleItem, error)
}

// PriceHistoryRepository appends and reads price change records.
type PriceHistoryRepository interface {
	Append(ctx context.Context, h PriceHistory) error
	ListByProduct(ctx context.Context, productID id.ID) ([]PriceHistory, error)
	ListByBundle(ctx context.Context, bundleID id.ID) ([]PriceHistory, error)
}
