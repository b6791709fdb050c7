package delivery

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fakturo/internal/core/apperror"
	"fakturo/internal/core/id"
	"fakturo/internal/core/types"
	"fakturo/internal/domain"
	"fakturo/internal/domain/audit"
	"fakturo/internal/domain/catalogs/partner"
	"fakturo/internal/domain/documents/order"
	"fakturo/internal/domain/numbering"
)

// --- fakes ---

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type fakeOrders struct {
	orders map[id.ID]*order.Order
	items  map[id.ID][]order.Item
}

func (f *fakeOrders) GetForUpdate(_ context.Context, orderID id.ID) (*order.Order, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return nil, apperror.NewNotFound("order", orderID.String())
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) GetItems(_ context.Context, orderID id.ID) ([]order.Item, error) {
	return append([]order.Item(nil), f.items[orderID]...), nil
}

type fakePartners struct{ partners map[id.ID]*partner.Partner }

func (f *fakePartners) GetByID(_ context.Context, pid id.ID) (*partner.Partner, error) {
	p, ok := f.partners[pid]
	if !ok {
		return nil, apperror.NewNotFound("partner", pid.String())
	}
	return p, nil
}

type seqNumbers struct{ n int }

func (s *seqNumbers) Generate(_ context.Context, req numbering.Request) (string, error) {
	s.n++
	return numbering.RenderPattern("DL-[YYYY]-[CCCC]", req.DocumentDate, int64(s.n), req.PartnerCode), nil
}

type fakeRepo struct {
	notes      map[id.ID]*DeliveryNote
	items      map[id.ID][]Item
	orderLinks map[id.ID][]id.ID
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		notes:      make(map[id.ID]*DeliveryNote),
		items:      make(map[id.ID][]Item),
		orderLinks: make(map[id.ID][]id.ID),
	}
}

func (f *fakeRepo) Create(_ context.Context, doc *DeliveryNote) error {
	cp := *doc
	f.notes[doc.ID] = &cp
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, noteID id.ID) (*DeliveryNote, error) {
	doc, ok := f.notes[noteID]
	if !ok {
		return nil, apperror.NewNotFound("delivery_note", noteID.String())
	}
	cp := *doc
	return &cp, nil
}

func (f *fakeRepo) GetForUpdate(ctx context.Context, noteID id.ID) (*DeliveryNote, error) {
	return f.GetByID(ctx, noteID)
}

func (f *fakeRepo) Update(_ context.Context, doc *DeliveryNote) error {
	if _, ok := f.notes[doc.ID]; !ok {
		return apperror.NewNotFound("delivery_note", doc.ID.String())
	}
	cp := *doc
	f.notes[doc.ID] = &cp
	return nil
}

func (f *fakeRepo) SaveItems(_ context.Context, noteID id.ID, items []Item) error {
	f.items[noteID] = append([]Item(nil), items...)
	return nil
}

func (f *fakeRepo) GetItems(_ context.Context, noteID id.ID) ([]Item, error) {
	return append([]Item(nil), f.items[noteID]...), nil
}

func (f *fakeRepo) LinkOrders(_ context.Context, noteID id.ID, orderIDs []id.ID) error {
	f.orderLinks[noteID] = append([]id.ID(nil), orderIDs...)
	return nil
}

func (f *fakeRepo) GetOrderIDs(_ context.Context, noteID id.ID) ([]id.ID, error) {
	return append([]id.ID(nil), f.orderLinks[noteID]...), nil
}

func (f *fakeRepo) DeliveredQuantity(_ context.Context, orderItemID id.ID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, items := range f.items {
		for _, item := range items {
			if item.SourceOrderItemID != nil && *item.SourceOrderItemID == orderItemID {
				total = total.Add(item.Quantity)
			}
		}
	}
	return total, nil
}

func (f *fakeRepo) ListUnbilled(_ context.Context, partnerIDs []id.ID) ([]*DeliveryNote, error) {
	var out []*DeliveryNote
	for _, doc := range f.notes {
		if doc.Invoiced {
			continue
		}
		for _, pid := range partnerIDs {
			if doc.PartnerID == pid {
				cp := *doc
				out = append(out, &cp)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeRepo) List(_ context.Context, _ ListFilter) (domain.ListResult[*DeliveryNote], error) {
	return domain.ListResult[*DeliveryNote]{}, nil
}

type fixture struct {
	svc     *Service
	repo    *fakeRepo
	orders  *fakeOrders
	partner *partner.Partner
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	p := partner.NewPartner("ACME", "Acme s.r.o.")
	p.DiscountPercent = types.MustMoney("10")

	repo := newFakeRepo()
	orders := &fakeOrders{
		orders: make(map[id.ID]*order.Order),
		items:  make(map[id.ID][]order.Item),
	}

	svc := NewService(
		repo,
		orders,
		&fakePartners{partners: map[id.ID]*partner.Partner{p.ID: p}},
		&seqNumbers{},
		audit.Nop{},
		passthroughTx{},
	)

	return &fixture{svc: svc, repo: repo, orders: orders, partner: p}
}

// lockedOrder registers a locked order with one priced line.
func (f *fixture) lockedOrder(t *testing.T, qty, unitPrice string) (*order.Order, order.Item) {
	t.Helper()

	o := order.New(f.partner.ID, id.New())
	o.Confirmed = true
	o.IsLocked = true

	pid := id.New()
	item := order.Item{
		ID:        id.New(),
		OrderID:   o.ID,
		LineNo:    1,
		ProductID: &pid,
		Name:      "Widget",
		Quantity:  types.MustMoney(qty),
		UnitPrice: types.MustMoney(unitPrice),
		LineTotal: types.RoundMoney(types.MustMoney(unitPrice).Mul(types.MustMoney(qty))),
		VATRate:   types.MustMoney("20"),
	}

	f.orders.orders[o.ID] = o
	f.orders.items[o.ID] = []order.Item{item}
	return o, item
}

// --- tests ---

func TestCreateFromOrdersCopiesSnapshots(t *testing.T) {
	f := newFixture(t)
	o1, i1 := f.lockedOrder(t, "2", "90")
	o2, _ := f.lockedOrder(t, "1", "50")

	doc, err := f.svc.CreateFromOrders(context.Background(), []id.ID{o1.ID, o2.ID}, nil, id.New())
	require.NoError(t, err)

	require.Len(t, doc.Items, 2)
	assert.True(t, doc.Total().Equal(types.MustMoney("230")))
	assert.NotEmpty(t, doc.Number)
	assert.NotNil(t, doc.PrimaryOrderID)
	assert.Len(t, doc.OrderIDs, 2)

	// the order line price is copied verbatim, no second discount pass
	for _, item := range doc.Items {
		if item.SourceOrderItemID != nil && *item.SourceOrderItemID == i1.ID {
			assert.True(t, item.UnitPrice.Equal(types.MustMoney("90")))
			assert.True(t, item.Quantity.Equal(types.MustMoney("2")))
		}
	}
}

func TestCreateFromOrdersRequiresLockedOrder(t *testing.T) {
	f := newFixture(t)
	o, _ := f.lockedOrder(t, "1", "10")
	o.IsLocked = false

	_, err := f.svc.CreateFromOrders(context.Background(), []id.ID{o.ID}, nil, id.New())
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestCreateFromOrdersRespectsDeliveredQuantity(t *testing.T) {
	f := newFixture(t)
	o, _ := f.lockedOrder(t, "5", "10")

	first, err := f.svc.CreateFromOrders(context.Background(), []id.ID{o.ID}, nil, id.New())
	require.NoError(t, err)
	require.Len(t, first.Items, 1)
	assert.True(t, first.Items[0].Quantity.Equal(types.MustMoney("5")))

	// everything was delivered; a second note has nothing left to copy
	_, err = f.svc.CreateFromOrders(context.Background(), []id.ID{o.ID}, nil, id.New())
	require.Error(t, err, "no remaining quantity and no manual items")
}

func TestReceive(t *testing.T) {
	f := newFixture(t)
	o, _ := f.lockedOrder(t, "1", "10")

	doc, err := f.svc.CreateFromOrders(context.Background(), []id.ID{o.ID}, nil, id.New())
	require.NoError(t, err)

	at := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	received, err := f.svc.Receive(context.Background(), doc.ID, at)
	require.NoError(t, err)
	assert.True(t, received.Confirmed)
	require.NotNil(t, received.ActualAt)
	assert.True(t, received.ActualAt.Equal(at))
}

func TestAddItemAfterInvoicedFails(t *testing.T) {
	f := newFixture(t)
	o, _ := f.lockedOrder(t, "1", "10")

	doc, err := f.svc.CreateFromOrders(context.Background(), []id.ID{o.ID}, nil, id.New())
	require.NoError(t, err)

	stored := f.repo.notes[doc.ID]
	require.NoError(t, stored.MarkInvoiced())

	_, err = f.svc.AddItem(context.Background(), doc.ID, ManualItemInput{
		Name:      "Extra",
		UnitPrice: types.MustMoney("5"),
		Quantity:  types.MustMoney("1"),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsImmutableDocument(err))
}

func TestMarkInvoicedIsOneWay(t *testing.T) {
	d := New(id.New(), id.New())
	require.NoError(t, d.MarkInvoiced())

	err := d.MarkInvoiced()
	require.Error(t, err)
	assert.True(t, apperror.IsConsolidation(err))
	assert.True(t, d.Invoiced)
}
