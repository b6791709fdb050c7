package document_repo

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"fakturo/internal/core/id"
	"fakturo/internal/domain"
	"fakturo/internal/domain/documents/order"
	"fakturo/internal/infrastructure/storage/postgres"
)

var _ order.Repository = (*OrderRepo)(nil)

// OrderRepo is the PostgreSQL repository for orders.
type OrderRepo struct {
	*BaseDocumentRepo[*order.Order]
}

// NewOrderRepo creates a new order repository.
func NewOrderRepo(txManager *postgres.TxManager) *OrderRepo {
	return &OrderRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txManager,
			"doc_orders",
			postgres.ExtractDBColumns[order.Order](),
			func() *order.Order { return &order.Order{} },
		),
	}
}

// SaveItems replaces the line items of an order.
func (r *OrderRepo) SaveItems(ctx context.Context, orderID id.ID, items []order.Item) error {
	rows := make([]map[string]any, len(items))
	for i, item := range items {
		item.OrderID = orderID
		rows[i] = postgres.StructToMap(&item)
	}
	return r.replaceItems(ctx, "doc_order_items", "order_id", orderID, rows)
}

// GetItems loads order line items ordered by line number.
func (r *OrderRepo) GetItems(ctx context.Context, orderID id.ID) ([]order.Item, error) {
	sql, args, err := r.Builder().
		Select(postgres.ExtractDBColumns[order.Item]()...).
		From("doc_order_items").
		Where(squirrel.Eq{"order_id": orderID}).
		OrderBy("line_no ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	var items []order.Item
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return nil, err
	}
	return items, nil
}

// List retrieves orders with filtering. Order status is derived from
// the confirmed/locked flags, so status filters translate to flag
// predicates instead of a column match.
func (r *OrderRepo) List(ctx context.Context, f order.ListFilter) (domain.ListResult[*order.Order], error) {
	q := r.listQuery(f.ListFilter)

	if f.PartnerID != nil {
		q = q.Where(squirrel.Eq{"partner_id": *f.PartnerID})
	}

	if f.Status != nil {
		switch *f.Status {
		case order.StatusPending:
			q = q.Where(squirrel.Eq{"confirmed": false, "is_locked": false})
		case order.StatusProcessing:
			q = q.Where(squirrel.Eq{"confirmed": true, "is_locked": false})
		case order.StatusCompleted:
			q = q.Where(squirrel.Eq{"is_locked": true})
		}
	}

	return r.finishList(ctx, q, f.ListFilter)
}
