package product

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fakturo/internal/core/apperror"
	"fakturo/internal/core/id"
	"fakturo/internal/domain"
)

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type fakeProductRepo struct {
	byID map[id.ID]*Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{byID: make(map[id.ID]*Product)}
}

func (f *fakeProductRepo) Create(_ context.Context, p *Product) error {
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakeProductRepo) GetByID(_ context.Context, pid id.ID) (*Product, error) {
	p, ok := f.byID[pid]
	if !ok {
		return nil, apperror.NewNotFound("product", pid.String())
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProductRepo) GetByCode(_ context.Context, code string) (*Product, error) {
	for _, p := range f.byID {
		if p.Code == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("product", code)
}

func (f *fakeProductRepo) Update(_ context.Context, p *Product) error {
	if _, ok := f.byID[p.ID]; !ok {
		return apperror.NewNotFound("product", p.ID.String())
	}
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakeProductRepo) Delete(_ context.Context, pid id.ID) error {
	delete(f.byID, pid)
	return nil
}

func (f *fakeProductRepo) SetDeletionMark(_ context.Context, pid id.ID, marked bool) error {
	p, ok := f.byID[pid]
	if !ok {
		return apperror.NewNotFound("product", pid.String())
	}
	p.DeletionMark = marked
	return nil
}

func (f *fakeProductRepo) List(_ context.Context, _ domain.ListFilter) (domain.ListResult[*Product], error) {
	return domain.ListResult[*Product]{}, nil
}

func (f *fakeProductRepo) Exists(_ context.Context, pid id.ID) (bool, error) {
	_, ok := f.byID[pid]
	return ok, nil
}

func (f *fakeProductRepo) ExistsByCode(_ context.Context, code string) (bool, error) {
	for _, p := range f.byID {
		if p.Code == code {
			return true, nil
		}
	}
	return false, nil
}

type fakeHistory struct {
	rows []PriceHistory
}

func (f *fakeHistory) Append(_ context.Context, h PriceHistory) error {
	f.rows = append(f.rows, h)
	return nil
}

func (f *fakeHistory) ListByProduct(_ context.Context, productID id.ID) ([]PriceHistory, error) {
	var out []PriceHistory
	for _, h := range f.rows {
		if h.ProductID != nil && *h.ProductID == productID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *fakeHistory) ListByBundle(_ context.Context, bundleID id.ID) ([]PriceHistory, error) {
	var out []PriceHistory
	for _, h := range f.rows {
		if h.BundleID != nil && *h.BundleID == bundleID {
			out = append(out, h)
		}
	}
	return out, nil
}

func TestCreate_RecordsInitialPrice(t *testing.T) {
	repo := newFakeProductRepo()
	history := &fakeHistory{}
	svc := NewService(repo, history, passthroughTx{})
	ctx := context.Background()

	p := NewProduct("SKU-1", "Widget", decimal.NewFromFloat(9.99))
	require.NoError(t, svc.Create(ctx, p))

	rows, err := svc.PriceHistoryFor(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Price.Equal(decimal.NewFromFloat(9.99)))
}

func TestUpdate_AppendsHistoryOnPriceChange(t *testing.T) {
	repo := newFakeProductRepo()
	history := &fakeHistory{}
	svc := NewService(repo, history, passthroughTx{})
	ctx := context.Background()

	p := NewProduct("SKU-1", "Widget", decimal.NewFromInt(10))
	require.NoError(t, svc.Create(ctx, p))

	p.Price = decimal.NewFromInt(12)
	require.NoError(t, svc.Update(ctx, p))

	rows, err := svc.PriceHistoryFor(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[1].Price.Equal(decimal.NewFromInt(12)))
}

func TestUpdate_NoHistoryWhenPriceUnchanged(t *testing.T) {
	repo := newFakeProductRepo()
	history := &fakeHistory{}
	svc := NewService(repo, history, passthroughTx{})
	ctx := context.Background()

	p := NewProduct("SKU-1", "Widget", decimal.NewFromInt(10))
	require.NoError(t, svc.Create(ctx, p))

	p.Name = "Widget XL"
	require.NoError(t, svc.Update(ctx, p))

	rows, err := svc.PriceHistoryFor(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
