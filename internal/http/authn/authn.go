// Package authn puts the authenticated caller into the request context.
package authn

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/MrJamesThe3rd/atacadao/internal/apperr"
	"github.com/MrJamesThe3rd/atacadao/internal/http/respond"
	"github.com/MrJamesThe3rd/atacadao/internal/identity"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (identity.Caller, error)
}

// Middleware rejects requests without a valid bearer session token.
func Middleware(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				respond.Error(w, r, fmt.Errorf("missing bearer token: %w", apperr.ErrUnauthenticated))
				return
			}

			caller, err := auth.Authenticate(r.Context(), strings.TrimSpace(token))
			if err != nil {
				respond.Error(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(identity.WithCaller(r.Context(), caller)))
		})
	}
}

// RequireRole must run after Middleware.
func RequireRole(roles ...identity.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := identity.FromContext(r.Context())
			if !ok {
				respond.Error(w, r, apperr.ErrUnauthenticated)
				return
			}

			if !slices.Contains(roles, caller.Role) {
				respond.Error(w, r, fmt.Errorf("role %s: %w", caller.Role, apperr.ErrForbidden))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Caller returns the caller stored by Middleware. Handlers mounted behind
// Middleware can rely on it being present.
func Caller(r *http.Request) identity.Caller {
	caller, _ := identity.FromContext(r.Context())
	return caller
}
