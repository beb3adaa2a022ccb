package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/atacadao/internal/apperr"
	"github.com/MrJamesThe3rd/atacadao/internal/identity"
)

func TestTokens_RoundTrip(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tokens := NewTokens("secret", time.Hour, 15*time.Minute)
	tokens.now = func() time.Time { return now }

	u := &User{ID: uuid.New(), Name: "Ana", Role: identity.RoleSeller}
	authTime := now.Add(-2 * time.Minute)

	raw, exp, err := tokens.Issue(u, PurposeSession, authTime, "")
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), exp)

	claims, err := tokens.Parse(raw, PurposeSession)
	require.NoError(t, err)

	caller, err := claims.Caller()
	require.NoError(t, err)
	assert.Equal(t, u.ID, caller.ID)
	assert.Equal(t, identity.RoleSeller, caller.Role)
	assert.Equal(t, "Ana", caller.Name)
	assert.True(t, caller.AuthenticatedAt.Equal(authTime))
}

func TestTokens_Rejects(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tokens := NewTokens("secret", time.Hour, 15*time.Minute)
	tokens.now = func() time.Time { return now }

	u := &User{ID: uuid.New(), Role: identity.RoleClient}

	reset, _, err := tokens.Issue(u, PurposePasswordReset, now, "stamp")
	require.NoError(t, err)

	_, err = tokens.Parse(reset, PurposeSession)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated, "wrong purpose")

	other := NewTokens("another secret", time.Hour, time.Hour)
	other.now = tokens.now

	_, err = other.Parse(reset, PurposePasswordReset)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated, "wrong key")

	tokens.now = func() time.Time { return now.Add(16 * time.Minute) }
	_, err = tokens.Parse(reset, PurposePasswordReset)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated, "expired")

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Purpose: PurposeSession}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = tokens.Parse(none, PurposeSession)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated, "alg none")

	_, err = tokens.Parse("garbage", PurposeSession)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestTokens_Stamp(t *testing.T) {
	hash := "$2a$10$abcdefghijklmnopqrstuv0123456789ABCDEFGHIJKLMNOPQRS"

	tokens := NewTokens("secret", time.Hour, time.Hour)
	other := NewTokens("another secret", time.Hour, time.Hour)

	stamp := tokens.Stamp(hash)
	assert.Equal(t, stamp, tokens.Stamp(hash))
	assert.NotEqual(t, stamp, tokens.Stamp(hash+"x"))
	assert.NotEqual(t, stamp, other.Stamp(hash))
	assert.NotContains(t, stamp, hash[len(hash)-10:])

	u := &User{ID: uuid.New(), Role: identity.RoleClient, PasswordHash: hash}

	raw, _, err := tokens.Issue(u, PurposePasswordReset, time.Now(), stamp)
	require.NoError(t, err)

	var claims Claims

	_, _, err = jwt.NewParser().ParseUnverified(raw, &claims)
	require.NoError(t, err)
	assert.Equal(t, stamp, claims.Stamp)
	assert.NotContains(t, raw, hash[len(hash)-10:])
}
