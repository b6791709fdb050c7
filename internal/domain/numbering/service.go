package numbering

import (
	"context"
	"time"

	"fakturo/internal/core/apperror"
	"fakturo/internal/core/id"
	"fakturo/pkg/logger"
)

// Request carries everything needed to issue one number.
type Request struct {
	EntityType string
	EntityID   id.ID

	// DocumentDate drives year/month tags and scope keys.
	DocumentDate time.Time

	// Partner attributes for scheme conditions and the [PARTNER] tag.
	PartnerID   *id.ID
	PartnerCode string
	GroupCode   string
}

// defaultPatterns back the fallback when no scheme is configured.
// All defaults use a global yearly-reset scope.
var defaultPatterns = map[string]string{
	EntityOrder:        "ORD-[YYYY]-[CCCC]",
	EntityDeliveryNote: "DL-[YYYY]-[CCCC]",
	EntityInvoice:      "FV-[YYYY]-[CCCC]",
}

// Service selects a numbering scheme and renders the next number.
// It runs entirely inside the caller's transaction: the counter
// increment and the history row commit or roll back with the document.
type Service struct {
	schemes SchemeRepository
	counter Counter
	history HistoryRepository
}

// NewService creates a numbering service.
func NewService(schemes SchemeRepository, counter Counter, history HistoryRepository) *Service {
	return &Service{
		schemes: schemes,
		counter: counter,
		history: history,
	}
}

// Generate issues the next number for the entity.
//
// The highest-priority active scheme whose condition matches the
// partner wins. Without any applicable scheme the built-in default
// pattern for the entity type is used; if none exists either, the
// operation fails with SCHEME_NOT_FOUND and no number is consumed.
func (s *Service) Generate(ctx context.Context, req Request) (string, error) {
	if req.DocumentDate.IsZero() {
		req.DocumentDate = time.Now().UTC()
	}

	scheme, err := s.selectScheme(ctx, req)
	if err != nil {
		return "", err
	}

	var (
		pattern     string
		resetPeriod ResetPeriod
		schemeKey   string
		schemeID    *id.ID
		partnerID   *id.ID
	)
	if scheme != nil {
		pattern = scheme.Pattern
		resetPeriod = scheme.ResetPeriod
		schemeKey = scheme.ID.String()
		sid := scheme.ID
		schemeID = &sid
		if scheme.PerPartner {
			partnerID = req.PartnerID
		}
	} else {
		fallback, ok := defaultPatterns[req.EntityType]
		if !ok {
			return "", apperror.NewSchemeNotFound(req.EntityType)
		}
		pattern = fallback
		resetPeriod = ResetYearly
		schemeKey = "default:" + req.EntityType
	}

	scopeKey := ScopeKey(resetPeriod, req.DocumentDate)

	value, err := s.counter.Next(ctx, schemeKey, scopeKey, partnerID)
	if err != nil {
		return "", err
	}

	number := RenderPattern(pattern, req.DocumentDate, value, req.PartnerCode)

	err = s.history.Append(ctx, History{
		ID:           id.New(),
		SchemeID:     schemeID,
		EntityType:   req.EntityType,
		EntityID:     req.EntityID,
		Number:       number,
		CounterValue: value,
		ScopeKey:     scopeKey,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return "", err
	}

	logger.Debug(ctx, "number issued",
		"entity_type", req.EntityType,
		"number", number,
		"counter", value,
	)
	return number, nil
}

// selectScheme returns the best matching scheme or nil for fallback.
func (s *Service) selectScheme(ctx context.Context, req Request) (*Scheme, error) {
	schemes, err := s.schemes.ListActive(ctx, req.EntityType)
	if err != nil {
		return nil, err
	}

	// Repository returns priority-descending order; first match wins.
	for i := range schemes {
		matched, err := evalCondition(schemes[i].Condition, req.PartnerCode, req.GroupCode)
		if err != nil {
			logger.Warn(ctx, "scheme condition failed, skipping scheme",
				"scheme", schemes[i].Name, "error", err)
			continue
		}
		if matched {
			return &schemes[i], nil
		}
	}
	return nil, nil
}

// HistoryFor returns the issuance history of an entity.
func (s *Service) HistoryFor(ctx context.Context, entityID id.ID) ([]History, error) {
	return s.history.ListByEntity(ctx, entityID)
}
