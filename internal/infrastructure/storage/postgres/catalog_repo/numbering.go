package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"fakturo/internal/core/id"
	"fakturo/internal/domain/numbering"
	"fakturo/internal/infrastructure/storage/postgres"
)

var (
	_ numbering.SchemeRepository  = (*SchemeRepo)(nil)
	_ numbering.HistoryRepository = (*NumberHistoryRepo)(nil)
)

// SchemeRepo is the PostgreSQL repository for numbering schemes.
type SchemeRepo struct {
	*BaseCatalogRepo[*numbering.Scheme]
}

// NewSchemeRepo creates a new numbering scheme repository.
func NewSchemeRepo(txManager *postgres.TxManager) *SchemeRepo {
	return &SchemeRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			"cat_numbering_schemes",
			postgres.ExtractDBColumns[numbering.Scheme](),
			func() *numbering.Scheme { return &numbering.Scheme{} },
		),
	}
}

// ListActive returns active schemes for an entity type ordered by
// priority descending. Selection takes the first matching scheme, so
// the ordering here decides precedence.
func (r *SchemeRepo) ListActive(ctx context.Context, entityType string) ([]numbering.Scheme, error) {
	q := r.Builder().
		Select(postgres.ExtractDBColumns[numbering.Scheme]()...).
		From(r.TableName()).
		Where(squirrel.Eq{"entity_type": entityType}).
		Where(squirrel.Eq{"is_active": true}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("priority DESC", "code ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var schemes []numbering.Scheme
	if err := pgxscan.Select(ctx, r.Querier(ctx), &schemes, sql, args...); err != nil {
		return nil, fmt.Errorf("list active schemes: %w", err)
	}
	return schemes, nil
}

// NumberHistoryRepo stores one row per issued document number.
type NumberHistoryRepo struct {
	txManager *postgres.TxManager
}

// NewNumberHistoryRepo creates a new numbering history repository.
func NewNumberHistoryRepo(txManager *postgres.TxManager) *NumberHistoryRepo {
	return &NumberHistoryRepo{txManager: txManager}
}

// Append records an issued number inside the caller's transaction.
func (r *NumberHistoryRepo) Append(ctx context.Context, h numbering.History) error {
	sql, args, err := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Insert("numbering_history").
		Columns("id", "scheme_id", "entity_type", "entity_id", "number", "counter_value", "scope_key", "created_at").
		Values(h.ID, h.SchemeID, h.EntityType, h.EntityID, h.Number, h.CounterValue, h.ScopeKey, h.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert numbering history: %w", err)
	}
	return nil
}

// ListByEntity returns issuance records for a document, oldest first.
func (r *NumberHistoryRepo) ListByEntity(ctx context.Context, entityID id.ID) ([]numbering.History, error) {
	sql, args, err := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select(postgres.ExtractDBColumns[numbering.History]()...).
		From("numbering_history").
		Where(squirrel.Eq{"entity_id": entityID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []numbering.History
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list numbering history: %w", err)
	}
	return rows, nil
}
