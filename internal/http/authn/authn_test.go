package authn_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/atacadao/internal/apperr"
	"github.com/MrJamesThe3rd/atacadao/internal/http/authn"
	"github.com/MrJamesThe3rd/atacadao/internal/identity"
)

type authFunc func(ctx context.Context, token string) (identity.Caller, error)

func (f authFunc) Authenticate(ctx context.Context, token string) (identity.Caller, error) {
	return f(ctx, token)
}

var seller = identity.Caller{ID: uuid.New(), Name: "Vera", Role: identity.RoleSeller}

func fakeAuth(ctx context.Context, token string) (identity.Caller, error) {
	if token == "good" {
		return seller, nil
	}

	return identity.Caller{}, fmt.Errorf("parsing token: %w", apperr.ErrUnauthenticated)
}

func TestMiddleware(t *testing.T) {
	type testCase struct {
		name     string
		header   string
		wantCode int
	}

	tests := []testCase{
		{name: "Valid", header: "Bearer good", wantCode: http.StatusNoContent},
		{name: "LowercaseScheme", header: "bearer good", wantCode: http.StatusNoContent},
		{name: "Missing", header: "", wantCode: http.StatusUnauthorized},
		{name: "WrongScheme", header: "Basic good", wantCode: http.StatusUnauthorized},
		{name: "BadToken", header: "Bearer forged", wantCode: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got identity.Caller

			h := authn.Middleware(authFunc(fakeAuth))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = authn.Caller(r)
				w.WriteHeader(http.StatusNoContent)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)

			if tt.wantCode == http.StatusNoContent {
				assert.Equal(t, seller, got)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := authn.RequireRole(identity.RoleManager)(ok)

	t.Run("Allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(identity.WithCaller(req.Context(), identity.Caller{ID: uuid.New(), Role: identity.RoleManager}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("OtherRole", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(identity.WithCaller(req.Context(), seller))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("NoCaller", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
