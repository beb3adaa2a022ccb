package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/atacadao/internal/apperr"
	"github.com/MrJamesThe3rd/atacadao/internal/identity"
)

// Purpose keeps a token from being used for something it was not issued for.
type Purpose string

const (
	PurposeSession       Purpose = "session"
	PurposePasswordReset Purpose = "password_reset"
	PurposeVerifyEmail   Purpose = "verify_email"
)

const issuer = "atacadao"

type Claims struct {
	Role     identity.Role `json:"role"`
	Name     string        `json:"name"`
	AuthTime int64         `json:"auth_time"`
	Purpose  Purpose       `json:"purpose"`
	// Stamp ties a password reset token to the hash it replaces, so the token
	// stops working once used. See Tokens.Stamp.
	Stamp string `json:"stamp,omitempty"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies HS256 tokens.
type Tokens struct {
	key        []byte
	sessionTTL time.Duration
	actionTTL  time.Duration
	now        func() time.Time
}

func NewTokens(secret string, sessionTTL, actionTTL time.Duration) *Tokens {
	return &Tokens{key: []byte(secret), sessionTTL: sessionTTL, actionTTL: actionTTL, now: time.Now}
}

func (t *Tokens) ttl(p Purpose) time.Duration {
	if p == PurposeSession {
		return t.sessionTTL
	}

	return t.actionTTL
}

// Issue signs a token of purpose p for u. authTime is when u last presented
// their password.
func (t *Tokens) Issue(u *User, p Purpose, authTime time.Time, stamp string) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.ttl(p))

	claims := Claims{
		Role:     u.Role,
		Name:     u.Name,
		AuthTime: authTime.Unix(),
		Purpose:  p,
		Stamp:    stamp,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}

	return signed, exp, nil
}

// Stamp is a keyed digest of a password hash. The hash itself never leaves
// the server inside a token.
func (t *Tokens) Stamp(passwordHash string) string {
	mac := hmac.New(sha256.New, t.key)
	mac.Write([]byte(passwordHash))

	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Parse verifies raw and checks it was issued for p.
func (t *Tokens) Parse(raw string, p Purpose) (*Claims, error) {
	var claims Claims

	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) { return t.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("token expired: %w", apperr.ErrUnauthenticated)
		}

		return nil, fmt.Errorf("invalid token: %w", apperr.ErrUnauthenticated)
	}

	if claims.Purpose != p {
		return nil, fmt.Errorf("token issued for %s: %w", claims.Purpose, apperr.ErrUnauthenticated)
	}

	return &claims, nil
}

// Caller turns verified session claims into the principal used by the services.
func (c *Claims) Caller() (identity.Caller, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return identity.Caller{}, fmt.Errorf("token subject: %w", apperr.ErrUnauthenticated)
	}

	if !c.Role.Valid() {
		return identity.Caller{}, fmt.Errorf("token role %q: %w", c.Role, apperr.ErrUnauthenticated)
	}

	return identity.Caller{
		ID:              id,
		Name:            c.Name,
		Role:            c.Role,
		AuthenticatedAt: time.Unix(c.AuthTime, 0),
	}, nil
}
