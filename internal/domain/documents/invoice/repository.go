package invoice

import (
	"context"

	"fakturo/internal/core/id"
	"fakturo/internal/domain"
)

// ListFilter narrows invoice list queries.
type ListFilter struct {
	domain.ListFilter

	PartnerID *id.ID
	Status    *Status
}

// Repository defines the interface for Invoice persistence.
type Repository interface {
	Create(ctx context.Context, doc *Invoice) error
	GetByID(ctx context.Context, id id.ID) (*Invoice, error)
	GetForUpdate(ctx context.Context, id id.ID) (*Invoice, error)
	Update(ctx context.Context, doc *Invoice) error

	SaveItems(ctx context.Context, invoiceID id.ID, items []Item) error
	GetItems(ctx context.Context, invoiceID id.ID) ([]Item, error)

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Invoice], error)
}
