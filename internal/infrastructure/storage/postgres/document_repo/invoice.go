package document_repo

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"fakturo/internal/core/id"
	"fakturo/internal/domain"
	"fakturo/internal/domain/documents/invoice"
	"fakturo/internal/infrastructure/storage/postgres"
)

var _ invoice.Repository = (*InvoiceRepo)(nil)

// InvoiceRepo is the PostgreSQL repository for invoices.
type InvoiceRepo struct {
	*BaseDocumentRepo[*invoice.Invoice]
}

// NewInvoiceRepo creates a new invoice repository.
func NewInvoiceRepo(txManager *postgres.TxManager) *InvoiceRepo {
	return &InvoiceRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txManager,
			"doc_invoices",
			postgres.ExtractDBColumns[invoice.Invoice](),
			func() *invoice.Invoice { return &invoice.Invoice{} },
		),
	}
}

// SaveItems replaces the line items of an invoice.
func (r *InvoiceRepo) SaveItems(ctx context.Context, invoiceID id.ID, items []invoice.Item) error {
	rows := make([]map[string]any, len(items))
	for i, item := range items {
		item.InvoiceID = invoiceID
		rows[i] = postgres.StructToMap(&item)
	}
	return r.replaceItems(ctx, "doc_invoice_items", "invoice_id", invoiceID, rows)
}

// GetItems loads invoice line items ordered by line number.
func (r *InvoiceRepo) GetItems(ctx context.Context, invoiceID id.ID) ([]invoice.Item, error) {
	sql, args, err := r.Builder().
		Select(postgres.ExtractDBColumns[invoice.Item]()...).
		From("doc_invoice_items").
		Where(squirrel.Eq{"invoice_id": invoiceID}).
		OrderBy("line_no ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	var items []invoice.Item
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return nil, err
	}
	return items, nil
}

// List retrieves invoices with filtering.
func (r *InvoiceRepo) List(ctx context.Context, f invoice.ListFilter) (domain.ListResult[*invoice.Invoice], error) {
	q := r.listQuery(f.ListFilter)

	if f.PartnerID != nil {
		q = q.Where(squirrel.Eq{"partner_id": *f.PartnerID})
	}
	if f.Status != nil {
		q = q.Where(squirrel.Eq{"status": *f.Status})
	}

	return r.finishList(ctx, q, f.ListFilter)
}
