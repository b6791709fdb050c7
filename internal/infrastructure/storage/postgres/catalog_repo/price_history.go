package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"fakturo/internal/core/id"
	"fakturo/internal/domain/catalogs/product"
	"fakturo/internal/infrastructure/storage/postgres"
)

var _ product.PriceHistoryRepository = (*PriceHistoryRepo)(nil)

// PriceHistoryRepo stores the append-only price change trail for
// products and bundles.
type PriceHistoryRepo struct {
	txManager *postgres.TxManager
}

// NewPriceHistoryRepo creates a new price history repository.
func NewPriceHistoryRepo(txManager *postgres.TxManager) *PriceHistoryRepo {
	return &PriceHistoryRepo{txManager: txManager}
}

func (r *PriceHistoryRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Append records one price change.
func (r *PriceHistoryRepo) Append(ctx context.Context, h product.PriceHistory) error {
	sql, args, err := r.builder().
		Insert("cat_price_history").
		Columns("id", "product_id", "bundle_id", "price", "changed_by", "changed_at").
		Values(h.ID, h.ProductID, h.BundleID, h.Price, h.ChangedBy, h.ChangedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert price history: %w", err)
	}
	return nil
}

// ListByProduct returns the price trail for a product, newest first.
func (r *PriceHistoryRepo) ListByProduct(ctx context.Context, productID id.ID) ([]product.PriceHistory, error) {
	return r.list(ctx, squirrel.Eq{"product_id": productID})
}

// ListByBundle returns the price trail for a bundle, newest first.
func (r *PriceHistoryRepo) ListByBundle(ctx context.Context, bundleID id.ID) ([]product.PriceHistory, error) {
	return r.list(ctx, squirrel.Eq{"bundle_id": bundleID})
}

func (r *PriceHistoryRepo) list(ctx context.Context, cond squirrel.Eq) ([]product.PriceHistory, error) {
	sql, args, err := r.builder().
		Select(postgres.ExtractDBColumns[product.PriceHistory]()...).
		From("cat_price_history").
		Where(cond).
		OrderBy("changed_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []product.PriceHistory
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list price history: %w", err)
	}
	return rows, nil
}
