package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"fakturo/internal/core/id"
	"fakturo/internal/domain"
	"fakturo/internal/domain/documents/delivery"
	"fakturo/internal/infrastructure/storage/postgres"
)

var _ delivery.Repository = (*DeliveryRepo)(nil)

// DeliveryRepo is the PostgreSQL repository for delivery notes.
type DeliveryRepo struct {
	*BaseDocumentRepo[*delivery.DeliveryNote]
}

// NewDeliveryRepo creates a new delivery note repository.
func NewDeliveryRepo(txManager *postgres.TxManager) *DeliveryRepo {
	return &DeliveryRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txManager,
			"doc_delivery_notes",
			postgres.ExtractDBColumns[delivery.DeliveryNote](),
			func() *delivery.DeliveryNote { return &delivery.DeliveryNote{} },
		),
	}
}

// SaveItems replaces the line items of a delivery note.
func (r *DeliveryRepo) SaveItems(ctx context.Context, noteID id.ID, items []delivery.Item) error {
	rows := make([]map[string]any, len(items))
	for i, item := range items {
		item.DeliveryNoteID = noteID
		rows[i] = postgres.StructToMap(&item)
	}
	return r.replaceItems(ctx, "doc_delivery_items", "delivery_note_id", noteID, rows)
}

// GetItems loads delivery line items ordered by line number.
func (r *DeliveryRepo) GetItems(ctx context.Context, noteID id.ID) ([]delivery.Item, error) {
	sql, args, err := r.Builder().
		Select(postgres.ExtractDBColumns[delivery.Item]()...).
		From("doc_delivery_items").
		Where(squirrel.Eq{"delivery_note_id": noteID}).
		OrderBy("line_no ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	var items []delivery.Item
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return nil, err
	}
	return items, nil
}

// LinkOrders replaces the order join rows of a note.
func (r *DeliveryRepo) LinkOrders(ctx context.Context, noteID id.ID, orderIDs []id.ID) error {
	querier := r.Querier(ctx)

	delSQL, delArgs, err := r.Builder().
		Delete("doc_delivery_orders").
		Where(squirrel.Eq{"delivery_note_id": noteID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete links: %w", err)
	}
	if _, err := querier.Exec(ctx, delSQL, delArgs...); err != nil {
		return fmt.Errorf("delete order links: %w", err)
	}

	if len(orderIDs) == 0 {
		return nil
	}

	ins := r.Builder().
		Insert("doc_delivery_orders").
		Columns("delivery_note_id", "order_id")
	for _, orderID := range orderIDs {
		ins = ins.Values(noteID, orderID)
	}

	sql, args, err := ins.ToSql()
	if err != nil {
		return fmt.Errorf("build insert links: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert order links: %w", err)
	}
	return nil
}

// GetOrderIDs returns the source orders of a note in ascending order.
func (r *DeliveryRepo) GetOrderIDs(ctx context.Context, noteID id.ID) ([]id.ID, error) {
	sql, args, err := r.Builder().
		Select("order_id").
		From("doc_delivery_orders").
		Where(squirrel.Eq{"delivery_note_id": noteID}).
		OrderBy("order_id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.Querier(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query order links: %w", err)
	}
	defer rows.Close()

	var ids []id.ID
	for rows.Next() {
		var orderID id.ID
		if err := rows.Scan(&orderID); err != nil {
			return nil, fmt.Errorf("scan order link: %w", err)
		}
		ids = append(ids, orderID)
	}
	return ids, rows.Err()
}

// DeliveredQuantity sums quantities already delivered against one order
// item across all delivery notes (soft-deleted notes excluded).
func (r *DeliveryRepo) DeliveredQuantity(ctx context.Context, orderItemID id.ID) (decimal.Decimal, error) {
	const sql = `
		SELECT COALESCE(SUM(i.quantity), 0)
		FROM doc_delivery_items i
		JOIN doc_delivery_notes n ON n.id = i.delivery_note_id
		WHERE i.source_order_item_id = $1
		  AND n.deletion_mark = false
	`

	var total decimal.Decimal
	if err := r.Querier(ctx).QueryRow(ctx, sql, orderItemID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("sum delivered quantity: %w", err)
	}
	return total, nil
}

// ListUnbilled returns uninvoiced notes of the given partners, oldest
// first so consolidation bills them in issue order.
func (r *DeliveryRepo) ListUnbilled(ctx context.Context, partnerIDs []id.ID) ([]*delivery.DeliveryNote, error) {
	if len(partnerIDs) == 0 {
		return nil, nil
	}

	sql, args, err := r.baseSelect().
		Where(squirrel.Eq{"partner_id": partnerIDs}).
		Where(squirrel.Eq{"invoiced": false}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("date ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	var notes []*delivery.DeliveryNote
	if err := pgxscan.Select(ctx, r.Querier(ctx), &notes, sql, args...); err != nil {
		return nil, fmt.Errorf("list unbilled: %w", err)
	}
	return notes, nil
}

// List retrieves delivery notes with filtering.
func (r *DeliveryRepo) List(ctx context.Context, f delivery.ListFilter) (domain.ListResult[*delivery.DeliveryNote], error) {
	q := r.listQuery(f.ListFilter)

	if f.PartnerID != nil {
		q = q.Where(squirrel.Eq{"partner_id": *f.PartnerID})
	}
	if f.Invoiced != nil {
		q = q.Where(squirrel.Eq{"invoiced": *f.Invoiced})
	}
	if f.Confirmed != nil {
		q = q.Where(squirrel.Eq{"confirmed": *f.Confirmed})
	}

	return r.finishList(ctx, q, f.ListFilter)
}
