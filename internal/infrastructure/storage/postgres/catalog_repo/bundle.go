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

var _ product.BundleRepository = (*BundleRepo)(nil)

// BundleRepo is the PostgreSQL repository for the Bundle catalog.
// Bundle components live in cat_bundle_items and are replaced as a set.
type BundleRepo struct {
	*BaseCatalogRepo[*product.Bundle]
}

// NewBundleRepo creates a new bundle repository.
func NewBundleRepo(txManager *postgres.TxManager) *BundleRepo {
	return &BundleRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			"cat_bundles",
			postgres.ExtractDBColumns[product.Bundle](),
			func() *product.Bundle { return &product.Bundle{} },
		),
	}
}

// ReplaceItems swaps the component set of a bundle. Runs as
// delete-then-insert inside the caller's transaction.
func (r *BundleRepo) ReplaceItems(ctx context.Context, bundleID id.ID, items []product.BundleItem) error {
	querier := r.Querier(ctx)

	delSQL, delArgs, err := r.Builder().
		Delete("cat_bundle_items").
		Where(squirrel.Eq{"bundle_id": bundleID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete items: %w", err)
	}
	if _, err := querier.Exec(ctx, delSQL, delArgs...); err != nil {
		return fmt.Errorf("delete bundle items: %w", err)
	}

	if len(items) == 0 {
		return nil
	}

	ins := r.Builder().
		Insert("cat_bundle_items").
		Columns("id", "bundle_id", "product_id", "quantity")
	for _, item := range items {
		itemID := item.ID
		if id.IsNil(itemID) {
			itemID = id.New()
		}
		ins = ins.Values(itemID, bundleID, item.ProductID, item.Quantity)
	}

	sql, args, err := ins.ToSql()
	if err != nil {
		return fmt.Errorf("build insert items: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert bundle items: %w", err)
	}
	return nil
}

// GetItems loads the component set of a bundle.
func (r *BundleRepo) GetItems(ctx context.Context, bundleID id.ID) ([]product.BundleItem, error) {
	q := r.Builder().
		Select(postgres.ExtractDBColumns[product.BundleItem]()...).
		From("cat_bundle_items").
		Where(squirrel.Eq{"bundle_id": bundleID}).
		OrderBy("id ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var items []product.BundleItem
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("get bundle items: %w", err)
	}
	return items, nil
}
