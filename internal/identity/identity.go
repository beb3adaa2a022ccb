// Package identity carries the authenticated caller through the services.
// Every state-changing operation receives a Caller explicitly; the context
// helpers exist only to move it from the HTTP middleware to the handlers.
package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleManager Role = "manager"
	RoleSeller  Role = "seller"
	RoleClient  Role = "client"
)

func (r Role) Valid() bool {
	switch r {
	case RoleManager, RoleSeller, RoleClient:
		return true
	}

	return false
}

// Profile is the public view of a user, as looked up by id.
type Profile struct {
	ID   uuid.UUID
	Name string
	Role Role
}

// Caller is the authenticated principal performing an operation.
type Caller struct {
	ID   uuid.UUID
	Name string
	Role Role
	// AuthenticatedAt is when the caller last proved their password.
	AuthenticatedAt time.Time
}

func (c Caller) IsZero() bool { return c.ID == uuid.Nil }

func (c Caller) IsManager() bool { return c.Role == RoleManager }

// CanOperateOrders reports whether the caller may move orders through the workflow.
func (c Caller) CanOperateOrders() bool {
	return c.Role == RoleManager || c.Role == RoleSeller
}

// Fresh reports whether the caller authenticated within window of now.
func (c Caller) Fresh(now time.Time, window time.Duration) bool {
	if c.AuthenticatedAt.IsZero() {
		return false
	}

	return now.Sub(c.AuthenticatedAt) <= window
}

type ctxKey struct{}

func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

func FromContext(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(ctxKey{}).(Caller)
	if !ok || c.IsZero() {
		return Caller{}, false
	}

	return c, true
}
