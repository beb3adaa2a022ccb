package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/atacadao/internal/identity"
)

// User is an account of the portal.
type User struct {
	ID            uuid.UUID
	Email         string
	Name          string
	Role          identity.Role
	PasswordHash  string
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

func (u *User) Profile() identity.Profile {
	return identity.Profile{ID: u.ID, Name: u.Name, Role: u.Role}
}

// Session is what a successful sign-in hands back to the client.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *User
}
