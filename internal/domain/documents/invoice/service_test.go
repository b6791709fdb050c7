package invoice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fakturo/internal/core/apperror"
	"fakturo/internal/core/id"
	"fakturo/internal/core/types"
	"fakturo/internal/domain"
	"fakturo/internal/domain/audit"
	"fakturo/internal/domain/catalogs/partner"
	"fakturo/internal/domain/catalogs/product"
	"fakturo/internal/domain/documents/delivery"
	"fakturo/internal/domain/numbering"
)

// --- fakes ---

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type fakeDeliveries struct {
	notes map[id.ID]*delivery.DeliveryNote
	items map[id.ID][]delivery.Item
}

func (f *fakeDeliveries) GetForUpdate(_ context.Context, noteID id.ID) (*delivery.DeliveryNote, error) {
	note, ok := f.notes[noteID]
	if !ok {
		return nil, apperror.NewNotFound("delivery_note", noteID.String())
	}
	cp := *note
	return &cp, nil
}

func (f *fakeDeliveries) GetItems(_ context.Context, noteID id.ID) ([]delivery.Item, error) {
	return append([]delivery.Item(nil), f.items[noteID]...), nil
}

func (f *fakeDeliveries) Update(_ context.Context, doc *delivery.DeliveryNote) error {
	cp := *doc
	f.notes[doc.ID] = &cp
	return nil
}

func (f *fakeDeliveries) ListUnbilled(_ context.Context, partnerIDs []id.ID) ([]*delivery.DeliveryNote, error) {
	var out []*delivery.DeliveryNote
	for _, note := range f.notes {
		if note.Invoiced {
			continue
		}
		for _, pid := range partnerIDs {
			if note.PartnerID == pid {
				cp := *note
				out = append(out, &cp)
				break
			}
		}
	}
	return out, nil
}

type fakePartnerGroups struct {
	partners map[id.ID]*partner.Partner
}

func (f *fakePartnerGroups) GetByID(_ context.Context, pid id.ID) (*partner.Partner, error) {
	p, ok := f.partners[pid]
	if !ok {
		return nil, apperror.NewNotFound("partner", pid.String())
	}
	return p, nil
}

func (f *fakePartnerGroups) GroupSiblings(_ context.Context, pid id.ID) ([]*partner.Partner, error) {
	p, ok := f.partners[pid]
	if !ok {
		return nil, apperror.NewNotFound("partner", pid.String())
	}
	out := []*partner.Partner{}
	for _, other := range f.partners {
		if p.SameBillingGroup(other) {
			out = append(out, other)
		}
	}
	return out, nil
}

type fakeProducts struct{ products map[id.ID]*product.Product }

func (f *fakeProducts) GetByID(_ context.Context, pid id.ID) (*product.Product, error) {
	p, ok := f.products[pid]
	if !ok {
		return nil, apperror.NewNotFound("product", pid.String())
	}
	return p, nil
}

type seqNumbers struct{ n int }

func (s *seqNumbers) Generate(_ context.Context, req numbering.Request) (string, error) {
	s.n++
	return numbering.RenderPattern("FV-[YYYY]-[CCCC]", req.DocumentDate, int64(s.n), req.PartnerCode), nil
}

type fakeRepo struct {
	invoices map[id.ID]*Invoice
	items    map[id.ID][]Item
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		invoices: make(map[id.ID]*Invoice),
		items:    make(map[id.ID][]Item),
	}
}

func (f *fakeRepo) Create(_ context.Context, doc *Invoice) error {
	cp := *doc
	f.invoices[doc.ID] = &cp
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, invoiceID id.ID) (*Invoice, error) {
	inv, ok := f.invoices[invoiceID]
	if !ok {
		return nil, apperror.NewNotFound("invoice", invoiceID.String())
	}
	cp := *inv
	return &cp, nil
}

func (f *fakeRepo) GetForUpdate(ctx context.Context, invoiceID id.ID) (*Invoice, error) {
	return f.GetByID(ctx, invoiceID)
}

func (f *fakeRepo) Update(_ context.Context, doc *Invoice) error {
	if _, ok := f.invoices[doc.ID]; !ok {
		return apperror.NewNotFound("invoice", doc.ID.String())
	}
	cp := *doc
	f.invoices[doc.ID] = &cp
	return nil
}

func (f *fakeRepo) SaveItems(_ context.Context, invoiceID id.ID, items []Item) error {
	f.items[invoiceID] = append([]Item(nil), items...)
	return nil
}

func (f *fakeRepo) GetItems(_ context.Context, invoiceID id.ID) ([]Item, error) {
	return append([]Item(nil), f.items[invoiceID]...), nil
}

func (f *fakeRepo) List(_ context.Context, _ ListFilter) (domain.ListResult[*Invoice], error) {
	return domain.ListResult[*Invoice]{}, nil
}

type fixture struct {
	svc        *Service
	repo       *fakeRepo
	deliveries *fakeDeliveries
	partners   *fakePartnerGroups
	partner    *partner.Partner
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	p := partner.NewPartner("ACME", "Acme s.r.o.")

	repo := newFakeRepo()
	deliveries := &fakeDeliveries{
		notes: make(map[id.ID]*delivery.DeliveryNote),
		items: make(map[id.ID][]delivery.Item),
	}
	partners := &fakePartnerGroups{partners: map[id.ID]*partner.Partner{p.ID: p}}

	svc := NewService(
		repo,
		deliveries,
		partners,
		&fakeProducts{products: map[id.ID]*product.Product{}},
		&seqNumbers{},
		audit.Nop{},
		passthroughTx{},
	)

	return &fixture{svc: svc, repo: repo, deliveries: deliveries, partners: partners, partner: p}
}

// note registers an uninvoiced delivery note with priced lines.
func (f *fixture) note(t *testing.T, partnerID id.ID, lines ...[2]string) *delivery.DeliveryNote {
	t.Helper()

	doc := delivery.New(partnerID, id.New())
	doc.Confirmed = true
	f.deliveries.notes[doc.ID] = doc

	var items []delivery.Item
	for i, line := range lines {
		qty := types.MustMoney(line[0])
		price := types.MustMoney(line[1])
		items = append(items, delivery.Item{
			ID:             id.New(),
			DeliveryNoteID: doc.ID,
			LineNo:         i + 1,
			Name:           "Widget",
			Quantity:       qty,
			UnitPrice:      price,
			LineTotal:      types.RoundMoney(price.Mul(qty)),
			VATRate:        types.MustMoney("20"),
		})
	}
	f.deliveries.items[doc.ID] = items
	return doc
}

// --- tests ---

func TestConsolidateTwoNotes(t *testing.T) {
	f := newFixture(t)

	// D1: 2 items, total 150.00; D2: 1 item, total 50.00
	d1 := f.note(t, f.partner.ID, [2]string{"1", "100"}, [2]string{"1", "50"})
	d2 := f.note(t, f.partner.ID, [2]string{"1", "50"})

	inv, err := f.svc.Consolidate(context.Background(), f.partner.ID, []id.ID{d1.ID, d2.ID}, id.New())
	require.NoError(t, err)

	require.Len(t, inv.Items, 3, "one invoice item per delivery item, never merged")
	assert.True(t, inv.Total.Equal(types.MustMoney("200")))
	assert.True(t, inv.TotalWithVAT.Equal(types.MustMoney("240")), "20 percent VAT on every line")
	assert.Regexp(t, `^FV-\d{4}-\d{4}$`, inv.Number)
	assert.Equal(t, StatusDraft, inv.Status)

	// every source note is flagged in the same unit of work
	assert.True(t, f.deliveries.notes[d1.ID].Invoiced)
	assert.True(t, f.deliveries.notes[d2.ID].Invoiced)

	// traceability back-reference on each line
	for _, item := range inv.Items {
		require.NotNil(t, item.SourceDeliveryID)
		assert.False(t, item.IsManual)
	}
}

func TestConsolidateAlreadyInvoicedFails(t *testing.T) {
	f := newFixture(t)
	d1 := f.note(t, f.partner.ID, [2]string{"1", "100"})

	_, err := f.svc.Consolidate(context.Background(), f.partner.ID, []id.ID{d1.ID}, id.New())
	require.NoError(t, err)

	_, err = f.svc.Consolidate(context.Background(), f.partner.ID, []id.ID{d1.ID}, id.New())
	require.Error(t, err)
	assert.True(t, apperror.IsConsolidation(err))

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, d1.ID.String(), appErr.Details["delivery_note_id"])
}

func TestConsolidateRepeatedNoteIDBillsOnce(t *testing.T) {
	f := newFixture(t)
	d1 := f.note(t, f.partner.ID, [2]string{"1", "100"})

	// Both reads of a repeated ID happen before MarkInvoiced, so the
	// Invoiced check alone cannot catch it; the ID list must collapse.
	inv, err := f.svc.Consolidate(context.Background(), f.partner.ID, []id.ID{d1.ID, d1.ID}, id.New())
	require.NoError(t, err)

	require.Len(t, inv.Items, 1)
	assert.True(t, inv.Total.Equal(types.MustMoney("100")))
	assert.True(t, f.deliveries.notes[d1.ID].Invoiced)
}

func TestConsolidateForeignPartnerFails(t *testing.T) {
	f := newFixture(t)

	other := partner.NewPartner("OTHER", "Other s.r.o.")
	f.partners.partners[other.ID] = other

	d1 := f.note(t, f.partner.ID, [2]string{"1", "100"})
	foreign := f.note(t, other.ID, [2]string{"1", "10"})

	_, err := f.svc.Consolidate(context.Background(), f.partner.ID, []id.ID{d1.ID, foreign.ID}, id.New())
	require.Error(t, err)
	assert.True(t, apperror.IsConsolidation(err))

	// all-or-nothing: the valid note must stay unbilled
	assert.False(t, f.deliveries.notes[d1.ID].Invoiced)
	assert.Empty(t, f.repo.invoices)
}

func TestConsolidateGroupSibling(t *testing.T) {
	f := newFixture(t)
	f.partner.GroupCode = "HOLDING"

	sibling := partner.NewPartner("SIB", "Sibling s.r.o.")
	sibling.GroupCode = "HOLDING"
	f.partners.partners[sibling.ID] = sibling

	d1 := f.note(t, f.partner.ID, [2]string{"1", "100"})
	d2 := f.note(t, sibling.ID, [2]string{"1", "30"})

	inv, err := f.svc.Consolidate(context.Background(), f.partner.ID, []id.ID{d1.ID, d2.ID}, id.New())
	require.NoError(t, err)
	assert.True(t, inv.Total.Equal(types.MustMoney("130")))
	assert.True(t, f.deliveries.notes[d2.ID].Invoiced)
}

func TestConsolidateAll(t *testing.T) {
	f := newFixture(t)

	f.note(t, f.partner.ID, [2]string{"1", "100"})
	f.note(t, f.partner.ID, [2]string{"2", "25"})

	inv, err := f.svc.ConsolidateAll(context.Background(), f.partner.ID, id.New())
	require.NoError(t, err)
	assert.Len(t, inv.Items, 2)
	assert.True(t, inv.Total.Equal(types.MustMoney("150")))

	_, err = f.svc.ConsolidateAll(context.Background(), f.partner.ID, id.New())
	require.Error(t, err, "nothing left to bill")
}

func TestAddManualItemAppliesDiscount(t *testing.T) {
	f := newFixture(t)
	f.partner.DiscountPercent = types.MustMoney("10")
	d1 := f.note(t, f.partner.ID, [2]string{"1", "100"})

	inv, err := f.svc.Consolidate(context.Background(), f.partner.ID, []id.ID{d1.ID}, id.New())
	require.NoError(t, err)

	price := types.MustMoney("50")
	item, err := f.svc.AddManualItem(context.Background(), inv.ID, ManualItemInput{
		Description: "Transport",
		UnitPrice:   &price,
		Quantity:    types.MustMoney("1"),
	})
	require.NoError(t, err)
	assert.True(t, item.UnitPrice.Equal(types.MustMoney("45")))
	assert.Nil(t, item.SourceDeliveryID)
	assert.True(t, item.IsManual)

	stored, err := f.svc.GetByID(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.True(t, stored.Total.Equal(types.MustMoney("145")))
	assert.True(t, stored.TotalWithVAT.Equal(types.MustMoney("174")))
}

func TestAddManualItemOnSentInvoiceFails(t *testing.T) {
	f := newFixture(t)
	d1 := f.note(t, f.partner.ID, [2]string{"1", "100"})

	inv, err := f.svc.Consolidate(context.Background(), f.partner.ID, []id.ID{d1.ID}, id.New())
	require.NoError(t, err)

	_, err = f.svc.MarkSent(context.Background(), inv.ID)
	require.NoError(t, err)

	price := types.MustMoney("10")
	_, err = f.svc.AddManualItem(context.Background(), inv.ID, ManualItemInput{
		Description: "Late fee",
		UnitPrice:   &price,
		Quantity:    types.MustMoney("1"),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsImmutableDocument(err))
}

func TestStatusTransitions(t *testing.T) {
	f := newFixture(t)
	d1 := f.note(t, f.partner.ID, [2]string{"1", "100"})

	inv, err := f.svc.Consolidate(context.Background(), f.partner.ID, []id.ID{d1.ID}, id.New())
	require.NoError(t, err)

	// draft -> error is illegal
	_, err = f.svc.MarkError(context.Background(), inv.ID)
	require.Error(t, err)

	// draft -> sent -> error -> sent (retry) -> paid
	_, err = f.svc.MarkSent(context.Background(), inv.ID)
	require.NoError(t, err)
	_, err = f.svc.MarkError(context.Background(), inv.ID)
	require.NoError(t, err)
	_, err = f.svc.MarkSent(context.Background(), inv.ID)
	require.NoError(t, err)
	got, err := f.svc.MarkPaid(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, got.Status)

	// paid is terminal
	_, err = f.svc.MarkSent(context.Background(), inv.ID)
	require.Error(t, err)
}
