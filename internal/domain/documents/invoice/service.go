package invoice

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"fakturo/internal/core/apperror"
	"fakturo/internal/core/id"
	"fakturo/internal/core/tx"
	"fakturo/internal/core/types"
	"fakturo/internal/domain"
	"fakturo/internal/domain/audit"
	"fakturo/internal/domain/catalogs/partner"
	"fakturo/internal/domain/catalogs/product"
	"fakturo/internal/domain/documents/delivery"
	"fakturo/internal/domain/numbering"
	"fakturo/internal/domain/pricing"
	"fakturo/pkg/logger"
)

// DeliverySource reads and transitions delivery notes during
// consolidation. Implementations must take a row lock in GetForUpdate.
type DeliverySource interface {
	GetForUpdate(ctx context.Context, id id.ID) (*delivery.DeliveryNote, error)
	GetItems(ctx context.Context, noteID id.ID) ([]delivery.Item, error)
	Update(ctx context.Context, doc *delivery.DeliveryNote) error
	ListUnbilled(ctx context.Context, partnerIDs []id.ID) ([]*delivery.DeliveryNote, error)
}

// PartnerGroups resolves billing group membership.
type PartnerGroups interface {
	GetByID(ctx context.Context, id id.ID) (*partner.Partner, error)
	GroupSiblings(ctx context.Context, partnerID id.ID) ([]*partner.Partner, error)
}

// ProductSource resolves products for manual invoice lines.
type ProductSource interface {
	GetByID(ctx context.Context, id id.ID) (*product.Product, error)
}

// NumberIssuer issues invoice numbers inside the current transaction.
type NumberIssuer interface {
	Generate(ctx context.Context, req numbering.Request) (string, error)
}

// ManualItemInput describes a manual line added to a draft invoice.
// Either ProductID or Description+UnitPrice must be set.
type ManualItemInput struct {
	ProductID   *id.ID
	Description string
	UnitPrice   *types.Money
	VATRate     *types.Money
	Quantity    decimal.Decimal
}

// Service provides invoice operations including consolidation.
type Service struct {
	repo       Repository
	deliveries DeliverySource
	partners   PartnerGroups
	products   ProductSource
	numbers    NumberIssuer
	auditor    audit.Recorder
	txManager  tx.Manager
}

// NewService creates a new invoice service.
func NewService(
	repo Repository,
	deliveries DeliverySource,
	partners PartnerGroups,
	products ProductSource,
	numbers NumberIssuer,
	auditor audit.Recorder,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:       repo,
		deliveries: deliveries,
		partners:   partners,
		products:   products,
		numbers:    numbers,
		auditor:    auditor,
		txManager:  txManager,
	}
}

// Consolidate bills the given delivery notes on one invoice.
//
// Notes must belong to the partner or one of its billing group
// siblings and must not be invoiced yet. The notes are locked in
// ascending ID order before their items are read, so two concurrent
// consolidations can never select overlapping notes, and lock ordering
// between them is deadlock-free. One invoice line is created per
// delivery line, copying the snapshot price verbatim; discount was
// applied when the delivery line was created and is never re-applied.
// All effects, including marking every note invoiced and the audit
// trail, commit atomically or not at all.
func (s *Service) Consolidate(ctx context.Context, partnerID id.ID, noteIDs []id.ID, createdBy id.ID) (*Invoice, error) {
	if len(noteIDs) == 0 {
		return nil, apperror.NewValidation("at least one delivery note is required")
	}

	var inv *Invoice

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.partners.GetByID(ctx, partnerID)
		if err != nil {
			return err
		}

		siblings, err := s.partners.GroupSiblings(ctx, partnerID)
		if err != nil {
			return err
		}
		allowed := make(map[id.ID]bool, len(siblings))
		for _, sib := range siblings {
			allowed[sib.ID] = true
		}

		inv = New(partnerID, createdBy)

		sorted := sortIDs(noteIDs)
		notes := make([]*delivery.DeliveryNote, 0, len(sorted))
		var items []Item

		for _, noteID := range sorted {
			note, err := s.deliveries.GetForUpdate(ctx, noteID)
			if err != nil {
				if apperror.IsNotFound(err) {
					return apperror.NewConsolidation("delivery note not found", noteID.String())
				}
				return err
			}

			if !allowed[note.PartnerID] {
				return apperror.NewConsolidation("delivery note belongs to a partner outside the billing group", noteID.String())
			}
			if note.Invoiced {
				return apperror.NewConsolidation("delivery note already invoiced", noteID.String())
			}

			noteItems, err := s.deliveries.GetItems(ctx, noteID)
			if err != nil {
				return err
			}

			for _, di := range noteItems {
				src := note.ID
				vat := pricing.VAT(di.LineTotal, di.VATRate)
				items = append(items, Item{
					ID:               id.New(),
					InvoiceID:        inv.ID,
					Description:      di.Name,
					SourceDeliveryID: &src,
					Quantity:         di.Quantity,
					UnitPrice:        di.UnitPrice,
					LineTotal:        di.LineTotal,
					VATRate:          di.VATRate,
					VATAmount:        vat,
					TotalWithVAT:     di.LineTotal.Add(vat),
				})
			}

			notes = append(notes, note)
		}

		for i := range items {
			items[i].LineNo = i + 1
		}
		inv.Items = items
		inv.RecalculateTotals()

		number, err := s.numbers.Generate(ctx, numbering.Request{
			EntityType:   numbering.EntityInvoice,
			EntityID:     inv.ID,
			DocumentDate: inv.Date,
			PartnerID:    &p.ID,
			PartnerCode:  p.Code,
			GroupCode:    p.GroupCode,
		})
		if err != nil {
			return err
		}
		inv.Number = number

		if err := inv.Validate(ctx); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, inv); err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		if err := s.repo.SaveItems(ctx, inv.ID, inv.Items); err != nil {
			return fmt.Errorf("save items: %w", err)
		}

		for _, note := range notes {
			if err := note.MarkInvoiced(); err != nil {
				return err
			}
			if err := s.deliveries.Update(ctx, note); err != nil {
				return fmt.Errorf("mark delivery note invoiced: %w", err)
			}
			if err := s.auditor.Record(ctx, audit.ActionInvoiced, "delivery_note", note.ID, map[string]any{
				"invoice": inv.ID.String(),
			}); err != nil {
				return err
			}
		}

		if err := s.auditor.Record(ctx, audit.ActionConsolidate, "invoice", inv.ID, map[string]any{
			"number":         inv.Number,
			"partner":        partnerID.String(),
			"delivery_notes": len(notes),
			"total_with_vat": inv.TotalWithVAT.String(),
		}); err != nil {
			return err
		}

		logger.Info(ctx, "invoice consolidated",
			"id", inv.ID, "number", inv.Number, "notes", len(notes))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// ConsolidateAll bills every unbilled delivery note of the partner's
// billing group on a single invoice.
func (s *Service) ConsolidateAll(ctx context.Context, partnerID id.ID, createdBy id.ID) (*Invoice, error) {
	var inv *Invoice

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		siblings, err := s.partners.GroupSiblings(ctx, partnerID)
		if err != nil {
			return err
		}
		partnerIDs := make([]id.ID, 0, len(siblings))
		for _, sib := range siblings {
			partnerIDs = append(partnerIDs, sib.ID)
		}

		notes, err := s.deliveries.ListUnbilled(ctx, partnerIDs)
		if err != nil {
			return err
		}
		if len(notes) == 0 {
			return apperror.NewValidation("no unbilled delivery notes for partner").
				WithDetail("partnerId", partnerID.String())
		}

		noteIDs := make([]id.ID, 0, len(notes))
		for _, note := range notes {
			noteIDs = append(noteIDs, note.ID)
		}

		inv, err = s.Consolidate(ctx, partnerID, noteIDs, createdBy)
		return err
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// AddManualItem appends a priced manual line to a draft invoice.
func (s *Service) AddManualItem(ctx context.Context, invoiceID id.ID, input ManualItemInput) (*Item, error) {
	var added *Item

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		inv, err := s.repo.GetForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if err := inv.CanModifyItems(); err != nil {
			return err
		}

		p, err := s.partners.GetByID(ctx, inv.PartnerID)
		if err != nil {
			return err
		}

		var (
			basePrice        types.Money
			vatRate          types.Money
			discountExcluded bool
			description      string
		)
		switch {
		case input.ProductID != nil:
			prod, err := s.products.GetByID(ctx, *input.ProductID)
			if err != nil {
				return err
			}
			basePrice, vatRate, discountExcluded = product.UnitPriceAndFlags(prod, nil)
			description = prod.Name
		default:
			if input.Description == "" || input.UnitPrice == nil {
				return apperror.NewValidation("manual line requires description and unit price")
			}
			basePrice = *input.UnitPrice
			vatRate = product.DefaultVATRate
			if input.VATRate != nil {
				vatRate = *input.VATRate
			}
			description = input.Description
		}

		line, err := pricing.LineTotal(basePrice, input.Quantity, p.DiscountPercent, discountExcluded)
		if err != nil {
			return err
		}

		existing, err := s.repo.GetItems(ctx, invoiceID)
		if err != nil {
			return err
		}

		vat := pricing.VAT(line.Total, vatRate)
		item := Item{
			ID:           id.New(),
			InvoiceID:    invoiceID,
			LineNo:       len(existing) + 1,
			Description:  description,
			IsManual:     true,
			Quantity:     input.Quantity,
			UnitPrice:    line.UnitPrice,
			LineTotal:    line.Total,
			VATRate:      vatRate,
			VATAmount:    vat,
			TotalWithVAT: line.Total.Add(vat),
		}

		all := append(existing, item)
		if err := s.repo.SaveItems(ctx, invoiceID, all); err != nil {
			return fmt.Errorf("save items: %w", err)
		}

		inv.Items = all
		inv.RecalculateTotals()
		if err := s.repo.Update(ctx, inv); err != nil {
			return fmt.Errorf("update invoice totals: %w", err)
		}

		added = &item
		return s.auditor.Record(ctx, audit.ActionUpdate, "invoice", invoiceID, map[string]any{
			"added_item": item.ID.String(),
		})
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// MarkSent records a successful export.
func (s *Service) MarkSent(ctx context.Context, invoiceID id.ID) (*Invoice, error) {
	return s.transition(ctx, invoiceID, func(inv *Invoice) error { return inv.MarkSent() })
}

// MarkError records a failed export. The caller may retry via MarkSent.
func (s *Service) MarkError(ctx context.Context, invoiceID id.ID) (*Invoice, error) {
	return s.transition(ctx, invoiceID, func(inv *Invoice) error { return inv.MarkError() })
}

// MarkPaid records payment.
func (s *Service) MarkPaid(ctx context.Context, invoiceID id.ID) (*Invoice, error) {
	return s.transition(ctx, invoiceID, func(inv *Invoice) error { return inv.MarkPaid() })
}

func (s *Service) transition(ctx context.Context, invoiceID id.ID, fn func(*Invoice) error) (*Invoice, error) {
	var inv *Invoice

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.repo.GetForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}

		before := inv.Status
		if err := fn(inv); err != nil {
			return err
		}

		if err := s.repo.Update(ctx, inv); err != nil {
			return fmt.Errorf("update invoice: %w", err)
		}
		return s.auditor.Record(ctx, audit.ActionStatusChange, "invoice", inv.ID, map[string]any{
			"from": string(before),
			"to":   string(inv.Status),
		})
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// GetByID retrieves an invoice with items.
func (s *Service) GetByID(ctx context.Context, invoiceID id.ID) (*Invoice, error) {
	inv, err := s.repo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.GetItems(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	inv.Items = items
	return inv, nil
}

// List retrieves invoices with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Invoice], error) {
	return s.repo.List(ctx, filter)
}

// sortIDs returns a copy sorted ascending with duplicates removed.
// Sorting fixes the lock order; deduplication keeps a repeated note ID
// in the request from billing the same note twice, since both reads
// would happen before either MarkInvoiced.
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
