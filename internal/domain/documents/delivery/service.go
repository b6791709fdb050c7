package delivery

import (
	"context"
	"fmt"
	"sort"
	"time"

	"fakturo/internal/core/apperror"
	"fakturo/internal/core/id"
	"fakturo/internal/core/tx"
	"fakturo/internal/core/types"
	"fakturo/internal/domain"
	"fakturo/internal/domain/audit"
	"fakturo/internal/domain/catalogs/partner"
	"fakturo/internal/domain/catalogs/product"
	"fakturo/internal/domain/documents/order"
	"fakturo/internal/domain/numbering"
	"fakturo/internal/domain/pricing"
	"fakturo/pkg/logger"
)

// OrderSource reads orders for delivery note creation.
type OrderSource interface {
	GetForUpdate(ctx context.Context, id id.ID) (*order.Order, error)
	GetItems(ctx context.Context, orderID id.ID) ([]order.Item, error)
}

// ManualItemInput describes a manual line added to a delivery note.
type ManualItemInput struct {
	Name      string
	UnitPrice types.Money
	VATRate   *types.Money
	Quantity  types.Money
}

// Service provides business operations for delivery notes.
type Service struct {
	repo      Repository
	orders    OrderSource
	partners  order.PartnerSource
	numbers   order.NumberIssuer
	auditor   audit.Recorder
	txManager tx.Manager
}

// NewService creates a new delivery note service.
func NewService(
	repo Repository,
	orders OrderSource,
	partners order.PartnerSource,
	numbers order.NumberIssuer,
	auditor audit.Recorder,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		orders:    orders,
		partners:  partners,
		numbers:   numbers,
		auditor:   auditor,
		txManager: txManager,
	}
}

// CreateFromOrders builds a delivery note from one or more locked
// orders of the same partner, copying the remaining undelivered
// quantity of every order line at its snapshot price. Optional manual
// items are priced with the partner's discount.
func (s *Service) CreateFromOrders(ctx context.Context, orderIDs []id.ID, manual []ManualItemInput, createdBy id.ID) (*DeliveryNote, error) {
	if len(orderIDs) == 0 && len(manual) == 0 {
		return nil, apperror.NewValidation("at least one order or manual item is required")
	}

	var doc *DeliveryNote

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var (
			p     *partner.Partner
			items []Item
		)

		// Lock source orders in ascending ID order, same discipline as
		// consolidation, to keep lock ordering deterministic.
		sorted := sortIDs(orderIDs)

		for _, orderID := range sorted {
			o, err := s.orders.GetForUpdate(ctx, orderID)
			if err != nil {
				return err
			}
			if !o.IsLocked {
				return apperror.NewValidation("order must be locked before delivery").
					WithDetail("orderId", orderID.String()).
					WithDetail("status", string(o.Status()))
			}

			if p == nil {
				var err error
				p, err = s.partners.GetByID(ctx, o.PartnerID)
				if err != nil {
					return err
				}
			} else if o.PartnerID != p.ID {
				return apperror.NewValidation("orders belong to different partners").
					WithDetail("orderId", orderID.String())
			}

			orderItems, err := s.orders.GetItems(ctx, orderID)
			if err != nil {
				return err
			}

			for _, oi := range orderItems {
				delivered, err := s.repo.DeliveredQuantity(ctx, oi.ID)
				if err != nil {
					return err
				}
				remaining := oi.Quantity.Sub(delivered)
				if remaining.IsNegative() || remaining.IsZero() {
					continue
				}

				src := oi.ID
				items = append(items, Item{
					ID:                id.New(),
					ProductID:         oi.ProductID,
					BundleID:          oi.BundleID,
					Name:              oi.Name,
					SourceOrderItemID: &src,
					Quantity:          remaining,
					UnitPrice:         oi.UnitPrice,
					LineTotal:         types.RoundMoney(oi.UnitPrice.Mul(remaining)),
					VATRate:           oi.VATRate,
				})
			}
		}

		if p == nil {
			return apperror.NewValidation("manual-only delivery notes require at least one order for partner context")
		}

		manualItems, err := buildManualItems(p, manual)
		if err != nil {
			return err
		}
		items = append(items, manualItems...)

		if len(items) == 0 {
			return apperror.NewValidation("nothing to deliver: all order lines are already delivered")
		}

		doc = New(p.ID, createdBy)
		if len(sorted) > 0 {
			primary := sorted[0]
			doc.PrimaryOrderID = &primary
			doc.OrderIDs = sorted
		}
		for i := range items {
			items[i].DeliveryNoteID = doc.ID
			items[i].LineNo = i + 1
		}
		doc.Items = items

		if err := doc.Validate(ctx); err != nil {
			return err
		}

		number, err := s.numbers.Generate(ctx, numbering.Request{
			EntityType:   numbering.EntityDeliveryNote,
			EntityID:     doc.ID,
			DocumentDate: doc.Date,
			PartnerID:    &p.ID,
			PartnerCode:  p.Code,
			GroupCode:    p.GroupCode,
		})
		if err != nil {
			return err
		}
		doc.Number = number

		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create delivery note: %w", err)
		}
		if err := s.repo.SaveItems(ctx, doc.ID, doc.Items); err != nil {
			return fmt.Errorf("save items: %w", err)
		}
		if err := s.repo.LinkOrders(ctx, doc.ID, doc.OrderIDs); err != nil {
			return fmt.Errorf("link orders: %w", err)
		}

		if err := s.auditor.Record(ctx, audit.ActionCreate, "delivery_note", doc.ID, map[string]any{
			"number": doc.Number,
			"orders": len(doc.OrderIDs),
			"total":  doc.Total().String(),
		}); err != nil {
			return err
		}

		logger.Info(ctx, "delivery note created", "id", doc.ID, "number", doc.Number)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// GetByID retrieves a delivery note with items and linked orders.
func (s *Service) GetByID(ctx context.Context, noteID id.ID) (*DeliveryNote, error) {
	doc, err := s.repo.GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if doc.Items, err = s.repo.GetItems(ctx, noteID); err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	if doc.OrderIDs, err = s.repo.GetOrderIDs(ctx, noteID); err != nil {
		return nil, fmt.Errorf("get order links: %w", err)
	}
	return doc, nil
}

// Receive marks the note as delivered at the given time.
func (s *Service) Receive(ctx context.Context, noteID id.ID, actualAt time.Time) (*DeliveryNote, error) {
	var doc *DeliveryNote

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.repo.GetForUpdate(ctx, noteID)
		if err != nil {
			return err
		}
		if err := doc.Receive(actualAt); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update delivery note: %w", err)
		}
		return s.auditor.Record(ctx, audit.ActionReceive, "delivery_note", doc.ID, map[string]any{
			"actual_at": actualAt,
		})
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// AddItem appends a manual line to an uninvoiced note.
func (s *Service) AddItem(ctx context.Context, noteID id.ID, input ManualItemInput) (*Item, error) {
	var added *Item

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetForUpdate(ctx, noteID)
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

		items, err := buildManualItems(p, []ManualItemInput{input})
		if err != nil {
			return err
		}

		existing, err := s.repo.GetItems(ctx, noteID)
		if err != nil {
			return err
		}
		items[0].DeliveryNoteID = noteID
		items[0].LineNo = len(existing) + 1

		all := append(existing, items[0])
		if err := s.repo.SaveItems(ctx, noteID, all); err != nil {
			return fmt.Errorf("save items: %w", err)
		}

		added = &items[0]
		return s.auditor.Record(ctx, audit.ActionUpdate, "delivery_note", noteID, map[string]any{
			"added_item": added.ID.String(),
		})
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// List retrieves delivery notes with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*DeliveryNote], error) {
	return s.repo.List(ctx, filter)
}

func buildManualItems(p *partner.Partner, inputs []ManualItemInput) ([]Item, error) {
	items := make([]Item, 0, len(inputs))
	for _, input := range inputs {
		if input.Name == "" {
			return nil, apperror.NewValidation("manual line requires a name")
		}

		line, err := pricing.LineTotal(input.UnitPrice, input.Quantity, p.DiscountPercent, false)
		if err != nil {
			return nil, err
		}

		vatRate := product.DefaultVATRate
		if input.VATRate != nil {
			vatRate = *input.VATRate
		}

		items = append(items, Item{
			ID:        id.New(),
			Name:      input.Name,
			Quantity:  input.Quantity,
			UnitPrice: line.UnitPrice,
			LineTotal: line.Total,
			VATRate:   vatRate,
		})
	}
	return items, nil
}

// sortIDs returns a copy sorted ascending with duplicates removed.
// Sorting fixes the lock order; deduplication keeps a repeated order ID
// from contributing its lines twice.
func sortIDs(ids []id.ID) []id.ID {
	sorted := append([]id.ID(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool {
		return id.Less(sorted[i], sorted[j])
	})
	unique := make([]id.ID, 0, len(sorted))
	for _, v := range sorted {
		if len(unique) > 0 && unique[len(unique)-1] == v {
			continue
		}
		unique = append(unique, v)
	}
	return unique
}
