package dto

import (
	"time"

	"fakturo/internal/domain/audit"
)

// AuditEntryResponse is one audit trail record.
type AuditEntryResponse struct {
	ID         string         `json:"id"`
	Action     string         `json:"action"`
	EntityType string         `json:"entityType"`
	EntityID   string         `json:"entityId"`
	ActorID    string         `json:"actorId"`
	Details    map[string]any `json:"details,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// FromAuditEntries maps audit rows.
func FromAuditEntries(rows []audit.Entry) []AuditEntryResponse {
	out := make([]AuditEntryResponse, len(rows))
	for i, e := range rows {
		out[i] = AuditEntryResponse{
			ID:         e.ID.String(),
			Action:     string(e.Action),
			EntityType: e.EntityType,
			EntityID:   e.EntityID.String(),
			ActorID:    e.ActorID.String(),
			Details:    e.Details,
			CreatedAt:  e.CreatedAt,
		}
	}
	return out
}
