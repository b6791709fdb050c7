// Package audit defines the immutable audit trail contract.
//
// Every state transition and number issuance is recorded inside the
// same transaction as the mutation it describes: a failed audit write
// rolls back the business change.
package audit

import (
	"context"
	"time"

	"fakturo/internal/core/id"
)

// Action identifies what happened to an entity.
type Action string

const (
	ActionCreate       Action = "create"
	ActionUpdate       Action = "update"
	ActionDelete       Action = "delete"
	ActionConfirm      Action = "confirm"
	ActionLock         Action = "lock"
	ActionReceive      Action = "receive"
	ActionInvoiced     Action = "mark_invoiced"
	ActionConsolidate  Action = "consolidate"
	ActionStatusChange Action = "status_change"
	ActionNumberIssued Action = "number_issued"
)

// Entry is one immutable audit record.
type Entry struct {
	ID         id.ID          `db:"id" json:"id"`
	Action     Action         `db:"action" json:"action"`
	EntityType string         `db:"entity_type" json:"entityType"`
	EntityID   id.ID          `db:"entity_id" json:"entityId"`
	ActorID    id.ID          `db:"actor_id" json:"actorId"`
	Details    map[string]any `db:"-" json:"details,omitempty"`
	CreatedAt  time.Time      `db:"created_at" json:"createdAt"`
}

// Recorder appends audit entries. Implementations must write through
// the caller's transaction and never commit independently.
type Recorder interface {
	Record(ctx context.Context, action Action, entityType string, entityID id.ID, details map[string]any) error
}

// Reader queries the audit trail.
type Reader interface {
	ListByEntity(ctx context.Context, entityID id.ID, limit int) ([]Entry, error)
}

// Nop is a Recorder that discards entries. Used in tests.
type Nop struct{}

func (Nop) Record(context.Context, Action, string, id.ID, map[string]any) error { return nil }
