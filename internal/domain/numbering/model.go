// Package numbering issues human-facing document numbers from
// pattern-based schemes backed by durable sequence counters.
package numbering

import (
	"context"
	"time"

	"fakturo/internal/core/apperror"
	"fakturo/internal/core/entity"
	"fakturo/internal/core/id"
)

// Entity types that receive numbers.
const (
	EntityOrder        = "order"
	EntityDeliveryNote = "delivery_note"
	EntityInvoice      = "invoice"
)

// ResetPeriod controls when a scheme's counter starts over.
type ResetPeriod string

const (
	ResetNever   ResetPeriod = "never"
	ResetYearly  ResetPeriod = "yearly"
	ResetMonthly ResetPeriod = "monthly"
)

// Scheme defines how numbers are generated for one entity type.
// Higher Priority wins when several active schemes match.
type Scheme struct {
	entity.Catalog

	EntityType string `db:"entity_type" json:"entityType"`

	// Pattern with tags [YYYY] [YY] [MM] [CCCC] [PARTNER].
	// The number of C characters sets the zero-padding width.
	Pattern string `db:"pattern" json:"pattern"`

	ResetPeriod ResetPeriod `db:"reset_period" json:"resetPeriod"`
	Priority    int         `db:"priority" json:"priority"`
	IsActive    bool        `db:"is_active" json:"isActive"`

	// PerPartner scopes the counter per partner instead of globally.
	PerPartner bool `db:"per_partner" json:"perPartner"`

	// Condition is an optional CEL expression over partnerCode and
	// groupCode. Empty means the scheme applies unconditionally.
	Condition string `db:"condition" json:"condition,omitempty"`
}

// NewScheme creates a scheme with yearly reset and active by default.
func NewScheme(code, name, entityType, pattern string) *Scheme {
	return &Scheme{
		Catalog:     entity.NewCatalog(code, name),
		EntityType:  entityType,
		Pattern:     pattern,
		ResetPeriod: ResetYearly,
		IsActive:    true,
	}
}

// Validate implements entity.Validatable.
func (s *Scheme) Validate(ctx context.Context) error {
	if err := s.Catalog.Validate(ctx); err != nil {
		return err
	}
	if s.EntityType == "" {
		return apperror.NewValidation("entity type is required").WithDetail("field", "entityType")
	}
	if s.Pattern == "" {
		return apperror.NewValidation("pattern is required").WithDetail("field", "pattern")
	}
	switch s.ResetPeriod {
	case ResetNever, ResetYearly, ResetMonthly:
	default:
		return apperror.NewValidation("unknown reset period").
			WithDetail("resetPeriod", string(s.ResetPeriod))
	}
	if s.Condition != "" {
		if _, err := compileCondition(s.Condition); err != nil {
			return apperror.NewValidation("invalid condition expression").
				WithDetail("condition", s.Condition).
				WithCause(err)
		}
	}
	return nil
}

// History is the append-only record of every issued number.
type History struct {
	ID           id.ID     `db:"id" json:"id"`
	SchemeID     *id.ID    `db:"scheme_id" json:"schemeId,omitempty"`
	EntityType   string    `db:"entity_type" json:"entityType"`
	EntityID     id.ID     `db:"entity_id" json:"entityId"`
	Number       string    `db:"number" json:"number"`
	CounterValue int64     `db:"counter_value" json:"counterValue"`
	ScopeKey     string    `db:"scope_key" json:"scopeKey"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// Counter atomically issues the next integer for a (scheme, scope) pair.
// Implementations must guarantee that two concurrent callers for the
// same tuple never observe the same value, and must run inside the
// caller's enclosing transaction.
type Counter interface {
	Next(ctx context.Context, schemeKey string, scopeKey string, partnerID *id.ID) (int64, error)
}

// SchemeRepository loads schemes for selection.
type SchemeRepository interface {
	// ListActive returns active schemes for the entity type ordered by
	// priority descending.
	ListActive(ctx context.Context, entityType string) ([]Scheme, error)
}

// HistoryRepository appends and reads issuance history.
type HistoryRepository interface {
	Append(ctx context.Context, h History) error
	ListByEntity(ctx context.Context, entityID id.ID) ([]History, error)
}
