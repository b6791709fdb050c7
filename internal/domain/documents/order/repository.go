package order

import (
	"context"

	"fakturo/internal/core/id"
	"fakturo/internal/domain"
)

// ListFilter narrows order list queries.
type ListFilter struct {
	domain.ListFilter

	PartnerID *id.ID
	Status    *Status
}

// Repository defines the interface for Order persistence.
type Repository interface {
	Create(ctx context.Context, doc *Order) error
	GetByID(ctx context.Context, id id.ID) (*Order, error)

	// GetForUpdate loads the order under a row lock.
	GetForUpdate(ctx context.Context, id id.ID) (*Order, error)

	Update(ctx context.Context, doc *Order) error
	Delete(ctx context.Context, id id.ID) error

	SaveItems(ctx context.Context, orderID id.ID, items []Item) error
	GetItems(ctx context.Context, orderID id.ID) ([]Item, error)

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Order], error)
}
