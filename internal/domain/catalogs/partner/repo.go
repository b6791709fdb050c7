package partner

import (
	"context"

	"fakturo/internal/domain"
)

// Repository defines the interface for Partner persistence.
type Repository interface {
	domain.CatalogRepository[*Partner]

	// ListByGroup retrieves active partners sharing a group code.
	ListByGroup(ctx context.Context, groupCode string) ([]*Partner, error)
}
