package partner

import (
	"context"
	"testing"

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

type fakeRepo struct {
	byID map[id.ID]*Partner
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: make(map[id.ID]*Partner)}
}

func (f *fakeRepo) Create(_ context.Context, p *Partner) error {
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, pid id.ID) (*Partner, error) {
	p, ok := f.byID[pid]
	if !ok {
		return nil, apperror.NewNotFound("partner", pid.String())
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) GetByCode(_ context.Context, code string) (*Partner, error) {
	for _, p := range f.byID {
		if p.Code == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("partner", code)
}

func (f *fakeRepo) Update(_ context.Context, p *Partner) error {
	if _, ok := f.byID[p.ID]; !ok {
		return apperror.NewNotFound("partner", p.ID.String())
	}
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, pid id.ID) error {
	delete(f.byID, pid)
	return nil
}

func (f *fakeRepo) SetDeletionMark(_ context.Context, pid id.ID, marked bool) error {
	p, ok := f.byID[pid]
	if !ok {
		return apperror.NewNotFound("partner", pid.String())
	}
	p.DeletionMark = marked
	return nil
}

func (f *fakeRepo) List(_ context.Context, _ domain.ListFilter) (domain.ListResult[*Partner], error) {
	return domain.ListResult[*Partner]{}, nil
}

func (f *fakeRepo) Exists(_ context.Context, pid id.ID) (bool, error) {
	_, ok := f.byID[pid]
	return ok, nil
}

func (f *fakeRepo) ExistsByCode(_ context.Context, code string) (bool, error) {
	for _, p := range f.byID {
		if p.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) ListByGroup(_ context.Context, groupCode string) ([]*Partner, error) {
	var out []*Partner
	for _, p := range f.byID {
		if p.GroupCode == groupCode && p.IsActive && !p.DeletionMark {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func newTestService(t *testing.T) (*Service, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	return NewService(repo, passthroughTx{}), repo
}

func TestCreate_RejectsDuplicateCode(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, NewPartner("P-001", "Alpha")))

	err := svc.Create(ctx, NewPartner("P-001", "Beta"))
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
}

func TestGroupSiblings_NoGroupBillsAlone(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	p := NewPartner("P-001", "Alpha")
	require.NoError(t, svc.Create(ctx, p))

	members, err := svc.GroupSiblings(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, p.ID, members[0].ID)
}

func TestGroupSiblings_ReturnsActiveMembers(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a := NewPartner("P-001", "Alpha")
	a.GroupCode = "G1"
	b := NewPartner("P-002", "Beta")
	b.GroupCode = "G1"
	inactive := NewPartner("P-003", "Gamma")
	inactive.GroupCode = "G1"
	inactive.IsActive = false
	other := NewPartner("P-004", "Delta")
	other.GroupCode = "G2"

	for _, p := range []*Partner{a, b, inactive, other} {
		require.NoError(t, svc.Create(ctx, p))
	}

	members, err := svc.GroupSiblings(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)

	ids := []id.ID{members[0].ID, members[1].ID}
	assert.Contains(t, ids, a.ID)
	assert.Contains(t, ids, b.ID)
}

func TestGroupSiblings_IncludesDeactivatedSelf(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a := NewPartner("P-001", "Alpha")
	a.GroupCode = "G1"
	a.IsActive = false
	b := NewPartner("P-002", "Beta")
	b.GroupCode = "G1"

	require.NoError(t, svc.Create(ctx, a))
	require.NoError(t, svc.Create(ctx, b))

	members, err := svc.GroupSiblings(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, a.ID, members[0].ID)
}
