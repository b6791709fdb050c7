package order

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
	"fakturo/internal/domain/numbering"
)

// --- fakes ---

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	orders map[id.ID]*Order
	items  map[id.ID][]Item
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		orders: make(map[id.ID]*Order),
		items:  make(map[id.ID][]Item),
	}
}

func (f *fakeRepo) Create(_ context.Context, doc *Order) error {
	cp := *doc
	f.orders[doc.ID] = &cp
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, docID id.ID) (*Order, error) {
	doc, ok := f.orders[docID]
	if !ok {
		return nil, apperror.NewNotFound("order", docID.String())
	}
	cp := *doc
	return &cp, nil
}

func (f *fakeRepo) GetForUpdate(ctx context.Context, docID id.ID) (*Order, error) {
	return f.GetByID(ctx, docID)
}

func (f *fakeRepo) Update(_ context.Context, doc *Order) error {
	if _, ok := f.orders[doc.ID]; !ok {
		return apperror.NewNotFound("order", doc.ID.String())
	}
	cp := *doc
	f.orders[doc.ID] = &cp
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, docID id.ID) error {
	delete(f.orders, docID)
	return nil
}

func (f *fakeRepo) SaveItems(_ context.Context, orderID id.ID, items []Item) error {
	f.items[orderID] = append([]Item(nil), items...)
	return nil
}

func (f *fakeRepo) GetItems(_ context.Context, orderID id.ID) ([]Item, error) {
	return append([]Item(nil), f.items[orderID]...), nil
}

func (f *fakeRepo) List(_ context.Context, _ ListFilter) (domain.ListResult[*Order], error) {
	return domain.ListResult[*Order]{}, nil
}

type fakePartners struct{ partners map[id.ID]*partner.Partner }

func (f *fakePartners) GetByID(_ context.Context, pid id.ID) (*partner.Partner, error) {
	p, ok := f.partners[pid]
	if !ok {
		return nil, apperror.NewNotFound("partner", pid.String())
	}
	return p, nil
}

type fakeProducts struct{ products map[id.ID]*product.Product }

func (f *fakeProducts) GetByID(_ context.Context, pid id.ID) (*product.Product, error) {
	p, ok := f.products[pid]
	if !ok {
		return nil, apperror.NewNotFound("product", pid.String())
	}
	return p, nil
}

type fakeBundles struct{ bundles map[id.ID]*product.Bundle }

func (f *fakeBundles) GetByID(_ context.Context, bid id.ID) (*product.Bundle, error) {
	b, ok := f.bundles[bid]
	if !ok {
		return nil, apperror.NewNotFound("bundle", bid.String())
	}
	return b, nil
}

type seqNumbers struct{ n int }

func (s *seqNumbers) Generate(_ context.Context, req numbering.Request) (string, error) {
	s.n++
	return numbering.RenderPattern("ORD-[YYYY]-[CCCC]", req.DocumentDate, int64(s.n), req.PartnerCode), nil
}

type fixture struct {
	svc      *Service
	repo     *fakeRepo
	partner  *partner.Partner
	product  *product.Product
	excluded *product.Product
	bundle   *product.Bundle
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	p := partner.NewPartner("ACME", "Acme s.r.o.")
	p.DiscountPercent = types.MustMoney("10")

	prod := product.NewProduct("P1", "Widget", types.MustMoney("100"))
	excl := product.NewProduct("P2", "No-discount widget", types.MustMoney("100"))
	excl.DiscountExcluded = true
	bundle := product.NewBundle("B1", "Starter pack", types.MustMoney("250"))

	repo := newFakeRepo()
	svc := NewService(
		repo,
		&fakePartners{partners: map[id.ID]*partner.Partner{p.ID: p}},
		&fakeProducts{products: map[id.ID]*product.Product{prod.ID: prod, excl.ID: excl}},
		&fakeBundles{bundles: map[id.ID]*product.Bundle{bundle.ID: bundle}},
		&seqNumbers{},
		audit.Nop{},
		passthroughTx{},
	)

	return &fixture{svc: svc, repo: repo, partner: p, product: prod, excluded: excl, bundle: bundle}
}

// --- tests ---

func TestCreateAppliesDiscountSnapshot(t *testing.T) {
	f := newFixture(t)

	doc := New(f.partner.ID, id.New())
	err := f.svc.Create(context.Background(), doc, []ItemInput{
		{ProductID: &f.product.ID, Quantity: types.MustMoney("1")},
		{ProductID: &f.excluded.ID, Quantity: types.MustMoney("1")},
		{BundleID: &f.bundle.ID, Quantity: types.MustMoney("2")},
	})
	require.NoError(t, err)
	require.Len(t, doc.Items, 3)

	assert.True(t, doc.Items[0].UnitPrice.Equal(types.MustMoney("90")), "partner discount applied")
	assert.True(t, doc.Items[1].UnitPrice.Equal(types.MustMoney("100")), "discount-excluded product keeps base price")
	assert.True(t, doc.Items[2].UnitPrice.Equal(types.MustMoney("225")), "bundle composite price discounted")
	assert.True(t, doc.Items[2].LineTotal.Equal(types.MustMoney("450")))
	assert.NotEmpty(t, doc.Number)

	// later catalog price change must not affect the stored snapshot
	f.product.Price = types.MustMoney("999")
	stored, err := f.svc.GetByID(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.True(t, stored.Items[0].UnitPrice.Equal(types.MustMoney("90")))
}

func TestAddItemOnLockedOrderFails(t *testing.T) {
	f := newFixture(t)

	doc := New(f.partner.ID, id.New())
	require.NoError(t, f.svc.Create(context.Background(), doc, []ItemInput{
		{ProductID: &f.product.ID, Quantity: types.MustMoney("1")},
	}))

	_, err := f.svc.Confirm(context.Background(), doc.ID)
	require.NoError(t, err)
	_, err = f.svc.Lock(context.Background(), doc.ID)
	require.NoError(t, err)

	_, err = f.svc.AddItem(context.Background(), doc.ID, ItemInput{
		ProductID: &f.product.ID,
		Quantity:  types.MustMoney("1"),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsImmutableDocument(err))

	// item set unchanged
	items, err := f.repo.GetItems(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestAddItemManualLine(t *testing.T) {
	f := newFixture(t)

	doc := New(f.partner.ID, id.New())
	require.NoError(t, f.svc.Create(context.Background(), doc, nil))

	price := types.MustMoney("40")
	item, err := f.svc.AddItem(context.Background(), doc.ID, ItemInput{
		Name:      "Express handling",
		UnitPrice: &price,
		Quantity:  types.MustMoney("1"),
	})
	require.NoError(t, err)
	// manual lines get the partner discount too
	assert.True(t, item.UnitPrice.Equal(types.MustMoney("36")))

	_, err = f.svc.AddItem(context.Background(), doc.ID, ItemInput{
		Name:     "no price",
		Quantity: types.MustMoney("1"),
	})
	require.Error(t, err)
}

func TestLockBeforeConfirmFails(t *testing.T) {
	f := newFixture(t)

	doc := New(f.partner.ID, id.New())
	require.NoError(t, f.svc.Create(context.Background(), doc, nil))

	_, err := f.svc.Lock(context.Background(), doc.ID)
	require.Error(t, err)

	stored, err := f.svc.GetByID(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, stored.Status())
}
