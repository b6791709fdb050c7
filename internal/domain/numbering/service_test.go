package numbering

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fakturo/internal/core/apperror"
	"fakturo/internal/core/entity"
	"fakturo/internal/core/id"
)

// --- fakes ---

type fakeSchemes struct {
	schemes []Scheme
}

func (f *fakeSchemes) ListActive(_ context.Context, entityType string) ([]Scheme, error) {
	var out []Scheme
	for _, s := range f.schemes {
		if s.EntityType == entityType && s.IsActive {
			out = append(out, s)
		}
	}
	// priority descending, as the real repository orders
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].Priority > out[i].Priority {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

type fakeCounter struct {
	values map[string]int64
}

func (f *fakeCounter) Next(_ context.Context, schemeKey, scopeKey string, partnerID *id.ID) (int64, error) {
	if f.values == nil {
		f.values = make(map[string]int64)
	}
	key := schemeKey + "|" + scopeKey
	if partnerID != nil {
		key += "|" + partnerID.String()
	}
	f.values[key]++
	return f.values[key], nil
}

type fakeHistory struct {
	rows []History
}

func (f *fakeHistory) Append(_ context.Context, h History) error {
	f.rows = append(f.rows, h)
	return nil
}

func (f *fakeHistory) ListByEntity(_ context.Context, entityID id.ID) ([]History, error) {
	var out []History
	for _, h := range f.rows {
		if h.EntityID == entityID {
			out = append(out, h)
		}
	}
	return out, nil
}

func newTestService(schemes ...Scheme) (*Service, *fakeCounter, *fakeHistory) {
	counter := &fakeCounter{}
	history := &fakeHistory{}
	svc := NewService(&fakeSchemes{schemes: schemes}, counter, history)
	return svc, counter, history
}

func activeScheme(entityType, pattern string, priority int, condition string) Scheme {
	s := Scheme{
		Catalog:     entity.NewCatalog("", fmt.Sprintf("%s p%d", entityType, priority)),
		EntityType:  entityType,
		Pattern:     pattern,
		ResetPeriod: ResetYearly,
		Priority:    priority,
		IsActive:    true,
		Condition:   condition,
	}
	return s
}

// --- tests ---

func TestGenerateWithScheme(t *testing.T) {
	svc, _, history := newTestService(
		activeScheme(EntityInvoice, "FV-[YYYY]-[CCCC]", 10, ""),
	)

	entityID := id.New()
	req := Request{
		EntityType:   EntityInvoice,
		EntityID:     entityID,
		DocumentDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}

	// consume six values, the seventh must render 0007
	var number string
	for i := 0; i < 7; i++ {
		var err error
		number, err = svc.Generate(context.Background(), req)
		require.NoError(t, err)
	}
	assert.Equal(t, "FV-2026-0007", number)

	// every issuance leaves an append-only record
	require.Len(t, history.rows, 7)
	require.NotNil(t, history.rows[6].SchemeID)

	rows, err := svc.HistoryFor(context.Background(), entityID)
	require.NoError(t, err)
	require.Len(t, rows, 7)
	assert.Equal(t, int64(7), rows[6].CounterValue)
	assert.Equal(t, "2026", rows[6].ScopeKey)
}

func TestGenerateFallbackDefault(t *testing.T) {
	svc, _, _ := newTestService() // no schemes configured

	number, err := svc.Generate(context.Background(), Request{
		EntityType:   EntityInvoice,
		EntityID:     id.New(),
		DocumentDate: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "FV-2026-0001", number)
}

func TestGenerateSchemeNotFound(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Generate(context.Background(), Request{
		EntityType: "unknown_entity",
		EntityID:   id.New(),
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeSchemeNotFound, appErr.Code)
}

func TestGeneratePriorityAndCondition(t *testing.T) {
	svc, _, _ := newTestService(
		activeScheme(EntityInvoice, "GEN-[YYYY]-[CCC]", 1, ""),
		activeScheme(EntityInvoice, "WH-[YYYY]-[CCC]", 50, `groupCode == "WHOLESALE"`),
	)

	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	// wholesale partner hits the high-priority conditional scheme
	number, err := svc.Generate(context.Background(), Request{
		EntityType:   EntityInvoice,
		EntityID:     id.New(),
		DocumentDate: at,
		GroupCode:    "WHOLESALE",
	})
	require.NoError(t, err)
	assert.Equal(t, "WH-2026-001", number)

	// other partners fall through to the general scheme
	number, err = svc.Generate(context.Background(), Request{
		EntityType:   EntityInvoice,
		EntityID:     id.New(),
		DocumentDate: at,
		GroupCode:    "RETAIL",
	})
	require.NoError(t, err)
	assert.Equal(t, "GEN-2026-001", number)
}

func TestGenerateMonthlyReset(t *testing.T) {
	scheme := activeScheme(EntityDeliveryNote, "DL-[YY][MM]-[CCC]", 1, "")
	scheme.ResetPeriod = ResetMonthly
	svc, counter, _ := newTestService(scheme)

	jan := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	n1, err := svc.Generate(context.Background(), Request{EntityType: EntityDeliveryNote, EntityID: id.New(), DocumentDate: jan})
	require.NoError(t, err)
	n2, err := svc.Generate(context.Background(), Request{EntityType: EntityDeliveryNote, EntityID: id.New(), DocumentDate: feb})
	require.NoError(t, err)

	// separate scopes restart the counter
	assert.Equal(t, "DL-2601-001", n1)
	assert.Equal(t, "DL-2602-001", n2)
	assert.Len(t, counter.values, 2)
}

func TestGeneratePerPartnerScope(t *testing.T) {
	scheme := activeScheme(EntityInvoice, "[PARTNER]-[CCC]", 1, "")
	scheme.PerPartner = true
	svc, _, _ := newTestService(scheme)

	p1, p2 := id.New(), id.New()

	n1, err := svc.Generate(context.Background(), Request{EntityType: EntityInvoice, EntityID: id.New(), PartnerID: &p1, PartnerCode: "ACME"})
	require.NoError(t, err)
	n2, err := svc.Generate(context.Background(), Request{EntityType: EntityInvoice, EntityID: id.New(), PartnerID: &p2, PartnerCode: "BETA"})
	require.NoError(t, err)

	assert.Equal(t, "ACME-001", n1)
	assert.Equal(t, "BETA-001", n2)
}

func TestSchemeValidate(t *testing.T) {
	s := activeScheme(EntityInvoice, "FV-[CCCC]", 1, "")
	require.NoError(t, s.Validate(context.Background()))

	bad := activeScheme(EntityInvoice, "FV-[CCCC]", 1, `partnerCode +`)
	err := bad.Validate(context.Background())
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)

	badPeriod := activeScheme(EntityInvoice, "FV", 1, "")
	badPeriod.ResetPeriod = "weekly"
	require.Error(t, badPeriod.Validate(context.Background()))
}
