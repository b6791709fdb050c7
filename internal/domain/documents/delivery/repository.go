package delivery

import (
	"context"

	"github.com/shopspring/decimal"

	"fakturo/internal/core/id"
	"fakturo/internal/domain"
)

// ListFilter narrows delivery note list queries.
type ListFilter struct {
	domain.ListFilter

	PartnerID *id.ID
	Invoiced  *bool
	Confirmed *bool
}

// Repository defines the interface for DeliveryNote persistence.
type Repository interface {
	Create(ctx context.Context, doc *DeliveryNote) error
	GetByID(ctx context.Context, id id.ID) (*DeliveryNote, error)

	// GetForUpdate loads the note under a row lock. Consolidation locks
	// notes in ascending ID order before reading their items.
	GetForUpdate(ctx context.Context, id id.ID) (*DeliveryNote, error)

	Update(ctx context.Context, doc *DeliveryNote) error

	SaveItems(ctx context.Context, noteID id.ID, items []Item) error
	GetItems(ctx context.Context, noteID id.ID) ([]Item, error)

	// LinkOrders replaces the order join rows of a note.
	LinkOrders(ctx context.Context, noteID id.ID, orderIDs []id.ID) error
	GetOrderIDs(ctx context.Context, noteID id.ID) ([]id.ID, error)

	// DeliveredQuantity sums quantities already delivered against one
	// order item across all delivery notes.
	DeliveredQuantity(ctx context.Context, orderItemID id.ID) (decimal.Decimal, error)

	// ListUnbilled returns uninvoiced notes of the given partners.
	ListUnbilled(ctx context.Context, partnerIDs []id.ID) ([]*DeliveryNote, error)

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*DeliveryNote], error)
}
