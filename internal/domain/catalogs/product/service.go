package product

import (
	"context"
	"time"

	appctx "fakturo/internal/core/context"
	"fakturo/internal/core/id"
	"fakturo/internal/core/tx"
	"fakturo/internal/core/types"
	"fakturo/internal/domain"
)

// Service provides business logic for the Product catalog.
// Every price change appends a PriceHistory row in the same transaction.
type Service struct {
	*domain.CatalogService[*Product]
	repo    Repository
	history PriceHistoryRepository
}

// NewService creates a new Product service.
func NewService(repo Repository, history PriceHistoryRepository, txManager tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Product]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "product",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		history:        history,
	}

	// Initial price becomes the first history entry.
	base.Hooks().On(domain.AfterCreate, func(ctx context.Context, p *Product) error {
		pid := p.ID
		return history.Append(ctx, PriceHistory{
			ID:        id.New(),
			ProductID: &pid,
			Price:     p.Price,
			ChangedBy: appctx.GetActorID(ctx),
			ChangedAt: time.Now().UTC(),
		})
	})

	base.Hooks().On(domain.BeforeUpdate, svc.recordPriceChange)

	return svc
}

// recordPriceChange appends a history row when the price differs from
// the stored one. Runs inside the update transaction.
func (s *Service) recordPriceChange(ctx context.Context, p *Product) error {
	current, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	if current.Price.Equal(p.Price) {
		return nil
	}

	pid := p.ID
	return s.history.Append(ctx, PriceHistory{
		ID:        id.New(),
		ProductID: &pid,
		Price:     p.Price,
		ChangedBy: appctx.GetActorID(ctx),
		ChangedAt: time.Now().UTC(),
	})
}

// PriceHistoryFor returns the recorded price changes of a product.
func (s *Service) PriceHistoryFor(ctx context.Context, productID id.ID) ([]PriceHistory, error) {
	return s.history.ListByProduct(ctx, productID)
}

// BundleService provides business logic for the Bundle catalog.
type BundleService struct {
	*domain.CatalogService[*Bundle]
	repo    BundleRepository
	history PriceHistoryRepository
}

// NewBundleService creates a new Bundle service.
func NewBundleService(repo BundleRepository, history PriceHistoryRepository, txManager tx.Manager) *BundleService {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Bundle]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "bundle",
	})

	svc := &BundleService{
		CatalogService: base,
		repo:           repo,
		history:        history,
	}

	base.Hooks().On(domain.AfterCreate, func(ctx context.Context, b *Bundle) error {
		if len(b.Items) > 0 {
			if err := repo.ReplaceItems(ctx, b.ID, b.Items); err != nil {
				return err
			}
		}
		bid := b.ID
		return history.Append(ctx, PriceHistory{
			ID:        id.New(),
			BundleID:  &bid,
			Price:     b.BundlePrice,
			ChangedBy: appctx.GetActorID(ctx),
			ChangedAt: time.Now().UTC(),
		})
	})

	base.Hooks().On(domain.BeforeUpdate, svc.recordPriceChange)
	base.Hooks().On(domain.AfterUpdate, func(ctx context.Context, b *Bundle) error {
		if b.Items == nil {
			return nil
		}
		return repo.ReplaceItems(ctx, b.ID, b.Items)
	})

	return svc
}

func (s *BundleService) recordPriceChange(ctx context.Context, b *Bundle) error {
	current, err := s.repo.GetByID(ctx, b.ID)
	if err != nil {
		return err
	}
	if current.BundlePrice.Equal(b.BundlePrice) {
		return nil
	}

	bid := b.ID
	return s.history.Append(ctx, PriceHistory{
		ID:        id.New(),
		BundleID:  &bid,
		Price:     b.BundlePrice,
		ChangedBy: appctx.GetActorID(ctx),
		ChangedAt: time.Now().UTC(),
	})
}

// GetWithItems loads a bundle and its component lines.
func (s *BundleService) GetWithItems(ctx context.Context, bundleID id.ID) (*Bundle, error) {
	b, err := s.GetByID(ctx, bundleID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.GetItems(ctx, bundleID)
	if err != nil {
		return nil, err
	}
	b.Items = items
	return b, nil
}

// UnitPriceAndFlags resolves the pricing inputs for a document line
// that references either a product or a bundle.
func UnitPriceAndFlags(p *Product, b *Bundle) (basePrice types.Money, vatRate types.Money, discountExcluded bool) {
	if b != nil {
		return b.BundlePrice, b.VATRate, b.DiscountExcluded
	}
	return p.Price, p.VATRate, p.DiscountExcluded
}
