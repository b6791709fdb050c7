package order

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"fakturo/internal/core/apperror"
	"fakturo/internal/core/id"
	"fakturo/internal/core/tx"
	"fakturo/internal/core/types"
	"fakturo/internal/domain"
	"fakturo/internal/domain/audit"
	"fakturo/internal/domain/catalogs/partner"
	"fakturo/internal/domain/catalogs/product"
	"fakturo/internal/domain/numbering"
	"fakturo/internal/domain/pricing"
	"fakturo/pkg/logger"
)

// PartnerSource resolves partners for discount lookup.
type PartnerSource interface {
	GetByID(ctx context.Context, id id.ID) (*partner.Partner, error)
}

// ProductSource resolves products for price snapshots.
type ProductSource interface {
	GetByID(ctx context.Context, id id.ID) (*product.Product, error)
}

// BundleSource resolves bundles for price snapshots.
type BundleSource interface {
	GetByID(ctx context.Context, id id.ID) (*product.Bundle, error)
}

// NumberIssuer issues document numbers inside the current transaction.
type NumberIssuer interface {
	Generate(ctx context.Context, req numbering.Request) (string, error)
}

// ItemInput describes one requested order line before pricing.
type ItemInput struct {
	ProductID *id.ID
	BundleID  *id.ID

	// Name and UnitPrice are required for manual lines only.
	Name      string
	UnitPrice *types.Money
	VATRate   *types.Money

	Quantity decimal.Decimal
}

// Service provides business operations for orders.
type Service struct {
	repo      Repository
	partners  PartnerSource
	products  ProductSource
	bundles   BundleSource
	numbers   NumberIssuer
	auditor   audit.Recorder
	txManager tx.Manager
}

// NewService creates a new order service.
func NewService(
	repo Repository,
	partners PartnerSource,
	products ProductSource,
	bundles BundleSource,
	numbers NumberIssuer,
	auditor audit.Recorder,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		partners:  partners,
		products:  products,
		bundles:   bundles,
		numbers:   numbers,
		auditor:   auditor,
		txManager: txManager,
	}
}

// Create creates a new order with priced item snapshots and an issued
// number, atomically.
func (s *Service) Create(ctx context.Context, doc *Order, inputs []ItemInput) error {
	p, err := s.partners.GetByID(ctx, doc.PartnerID)
	if err != nil {
		return err
	}

	items, err := s.buildItems(ctx, doc.ID, p, inputs, len(doc.Items))
	if err != nil {
		return err
	}
	doc.Items = append(doc.Items, items...)

	if err := doc.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if doc.Number == "" {
			number, err := s.numbers.Generate(ctx, numbering.Request{
				EntityType:   numbering.EntityOrder,
				EntityID:     doc.ID,
				DocumentDate: doc.Date,
				PartnerID:    &doc.PartnerID,
				PartnerCode:  p.Code,
				GroupCode:    p.GroupCode,
			})
			if err != nil {
				return err
			}
			doc.Number = number
		}

		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		if err := s.repo.SaveItems(ctx, doc.ID, doc.Items); err != nil {
			return fmt.Errorf("save items: %w", err)
		}

		if err := s.auditor.Record(ctx, audit.ActionCreate, "order", doc.ID, map[string]any{
			"number":  doc.Number,
			"partner": doc.PartnerID.String(),
			"total":   doc.Total().String(),
		}); err != nil {
			return err
		}

		logger.Info(ctx, "order created", "id", doc.ID, "number", doc.Number)
		return nil
	})
}

// GetByID retrieves an order with items.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Order, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.GetItems(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	doc.Items = items
	return doc, nil
}

// Update modifies the order header. Locked orders are immutable.
func (s *Service) Update(ctx context.Context, doc *Order) error {
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetForUpdate(ctx, doc.ID)
		if err != nil {
			return err
		}
		if current.IsLocked {
			return apperror.NewImmutableDocument("order", doc.ID.String(), "order is locked")
		}

		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		return s.auditor.Record(ctx, audit.ActionUpdate, "order", doc.ID, nil)
	})
}

// AddItem appends a priced line to an unlocked order.
func (s *Service) AddItem(ctx context.Context, orderID id.ID, input ItemInput) (*Item, error) {
	var added *Item

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if err := doc.CanModifyItems(); err != nil {
			return err
		}

		p, err := s.partners.GetByID(ctx, doc.PartnerID)
		if err != nil {
			return err
		}

		existing, err := s.repo.GetItems(ctx, orderID)
		if err != nil {
			return err
		}

		items, err := s.buildItems(ctx, orderID, p, []ItemInput{input}, len(existing))
		if err != nil {
			return err
		}

		all := append(existing, items...)
		if err := s.repo.SaveItems(ctx, orderID, all); err != nil {
			return fmt.Errorf("save items: %w", err)
		}

		added = &items[0]
		return s.auditor.Record(ctx, audit.ActionUpdate, "order", orderID, map[string]any{
			"added_item": added.ID.String(),
		})
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// Confirm moves the order to processing.
func (s *Service) Confirm(ctx context.Context, orderID id.ID) (*Order, error) {
	return s.transition(ctx, orderID, audit.ActionConfirm, func(doc *Order) error {
		return doc.Confirm()
	})
}

// Lock finalizes the order. One-way.
func (s *Service) Lock(ctx context.Context, orderID id.ID) (*Order, error) {
	return s.transition(ctx, orderID, audit.ActionLock, func(doc *Order) error {
		return doc.Lock()
	})
}

func (s *Service) transition(ctx context.Context, orderID id.ID, action audit.Action, fn func(*Order) error) (*Order, error) {
	var doc *Order

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.repo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}

		before := doc.Status()
		if err := fn(doc); err != nil {
			return err
		}

		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		return s.auditor.Record(ctx, action, "order", doc.ID, map[string]any{
			"from": string(before),
			"to":   string(doc.Status()),
		})
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// List retrieves orders with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Order], error) {
	return s.repo.List(ctx, filter)
}

// buildItems prices the requested lines against the current catalog and
// the partner's discount. Prices become immutable snapshots.
func (s *Service) buildItems(ctx context.Context, orderID id.ID, p *partner.Partner, inputs []ItemInput, startLineNo int) ([]Item, error) {
	items := make([]Item, 0, len(inputs))

	for i, input := range inputs {
		var (
			basePrice        types.Money
			vatRate          types.Money
			discountExcluded bool
			name             string
		)

		switch {
		case input.ProductID != nil:
			prod, err := s.products.GetByID(ctx, *input.ProductID)
			if err != nil {
				return nil, err
			}
			basePrice, vatRate, discountExcluded = product.UnitPriceAndFlags(prod, nil)
			name = prod.Name
		case input.BundleID != nil:
			bundle, err := s.bundles.GetByID(ctx, *input.BundleID)
			if err != nil {
				return nil, err
			}
			basePrice, vatRate, discountExcluded = product.UnitPriceAndFlags(nil, bundle)
			name = bundle.Name
		default:
			if input.Name == "" || input.UnitPrice == nil {
				return nil, apperror.NewValidation("manual line requires name and unit price").
					WithDetail("lineNo", startLineNo+i+1)
			}
			basePrice = *input.UnitPrice
			vatRate = product.DefaultVATRate
			if input.VATRate != nil {
				vatRate = *input.VATRate
			}
			name = input.Name
		}

		line, err := pricing.LineTotal(basePrice, input.Quantity, p.DiscountPercent, discountExcluded)
		if err != nil {
			return nil, err
		}

		items = append(items, Item{
			ID:        id.New(),
			OrderID:   orderID,
			LineNo:    startLineNo + i + 1,
			ProductID: input.ProductID,
			BundleID:  input.BundleID,
			Name:      name,
			Quantity:  input.Quantity,
			UnitPrice: line.UnitPrice,
			LineTotal: line.Total,
			VATRate:   vatRate,
		})
	}

	return items, nil
}
