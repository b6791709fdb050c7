package partner

import (
	"context"

	"fakturo/internal/core/apperror"
	"fakturo/internal/core/id"
	"fakturo/internal/core/tx"
	"fakturo/internal/domain"
)

// Service provides business logic for the Partner catalog.
type Service struct {
	*domain.CatalogService[*Partner]
	repo Repository
}

// NewService creates a new Partner service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Partner]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "partner",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().On(domain.BeforeCreate, svc.checkCodeUnique)

	return svc
}

func (s *Service) checkCodeUnique(ctx context.Context, p *Partner) error {
	if p.Code == "" {
		return nil
	}
	exists, err := s.repo.ExistsByCode(ctx, p.Code)
	if err != nil {
		return err
	}
	if exists {
		return apperror.NewDuplicate("partner", "code", p.Code)
	}
	return nil
}

// GroupSiblings returns the partner together with every active partner
// sharing its group code. Partners without a group are billed alone.
func (s *Service) GroupSiblings(ctx context.Context, partnerID id.ID) ([]*Partner, error) {
	p, err := s.GetByID(ctx, partnerID)
	if err != nil {
		return nil, err
	}

	if p.GroupCode == "" {
		return []*Partner{p}, nil
	}

	members, err := s.repo.ListByGroup(ctx, p.GroupCode)
	if err != nil {
		return nil, err
	}

	// ListByGroup returns active members only; ensure the requested
	// partner itself is present even when deactivated.
	for _, m := range members {
		if m.ID == p.ID {
			return members, nil
		}
	}
	return append([]*Partner{p}, members...), nil
}
