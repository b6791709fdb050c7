// Package context provides request-scoped values extraction.
package context

import (
	"context"

	"fakturo/internal/core/id"
)

// Actor contains the authenticated operator performing the request.
// The engine itself never authenticates; it only needs attribution for
// audit records and created_by fields.
type Actor struct {
	UserID   id.ID
	Username string
	Role     string

	// PartnerID is set for customer accounts scoped to a single partner.
	PartnerID *id.ID
}

type actorKey struct{}

// WithActor adds Actor to context.
func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// GetActor returns Actor from context, or nil.
func GetActor(ctx context.Context) *Actor {
	if v, ok := ctx.Value(actorKey{}).(*Actor); ok {
		return v
	}
	return nil
}

// GetActorID returns the acting user ID from context or the nil ID.
func GetActorID(ctx context.Context) id.ID {
	if a := GetActor(ctx); a != nil {
		return a.UserID
	}
	return id.Nil()
}

// HasRole checks if the actor has the given role.
func HasRole(ctx context.Context, role string) bool {
	a := GetActor(ctx)
	return a != nil && a.Role == role
}
