package identity_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/atacadao/internal/identity"
)

func TestCaller_Fresh(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		authAt time.Time
		want   bool
	}{
		{name: "JustAuthenticated", authAt: now.Add(-time.Minute), want: true},
		{name: "AtBoundary", authAt: now.Add(-5 * time.Minute), want: true},
		{name: "Stale", authAt: now.Add(-6 * time.Minute), want: false},
		{name: "Unknown", authAt: time.Time{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := identity.Caller{ID: uuid.New(), AuthenticatedAt: tt.authAt}
			assert.Equal(t, tt.want, c.Fresh(now, 5*time.Minute))
		})
	}
}

func TestCaller_Roles(t *testing.T) {
	assert.True(t, identity.Caller{Role: identity.RoleManager}.CanOperateOrders())
	assert.True(t, identity.Caller{Role: identity.RoleSeller}.CanOperateOrders())
	assert.False(t, identity.Caller{Role: identity.RoleClient}.CanOperateOrders())
	assert.False(t, identity.Role("admin").Valid())
}

func TestContext(t *testing.T) {
	_, ok := identity.FromContext(context.Background())
	assert.False(t, ok)

	c := identity.Caller{ID: uuid.New(), Name: "Ana", Role: identity.RoleSeller}
	got, ok := identity.FromContext(identity.WithCaller(context.Background(), c))
	assert.True(t, ok)
	assert.Equal(t, c, got)
}
