package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"fakturo/internal/domain/catalogs/partner"
	"fakturo/internal/infrastructure/storage/postgres"
)

// Compile-time check that PartnerRepo implements the domain interface.
var _ partner.Repository = (*PartnerRepo)(nil)

// PartnerRepo is the PostgreSQL repository for the Partner catalog.
type PartnerRepo struct {
	*BaseCatalogRepo[*partner.Partner]
}

// NewPartnerRepo creates a new partner repository.
func NewPartnerRepo(txManager *postgres.TxManager) *PartnerRepo {
	return &PartnerRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			"cat_partners",
			postgres.ExtractDBColumns[partner.Partner](),
			func() *partner.Partner { return &partner.Partner{} },
		),
	}
}

// ListByGroup retrieves active, unmarked partners sharing a group code.
func (r *PartnerRepo) ListByGroup(ctx context.Context, groupCode string) ([]*partner.Partner, error) {
	q := r.Builder().
		Select(postgres.ExtractDBColumns[partner.Partner]()...).
		From(r.TableName()).
		Where(squirrel.Eq{"group_code": groupCode}).
		Where(squirrel.Eq{"is_active": true}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("code ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var members []*partner.Partner
	if err := pgxscan.Select(ctx, r.Querier(ctx), &members, sql, args...); err != nil {
		return nil, err
	}
	return members, nil
}
