package order_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/atacadao/internal/apperr"
	orderhttp "github.com/MrJamesThe3rd/atacadao/internal/http/order"
	"github.com/MrJamesThe3rd/atacadao/internal/identity"
	"github.com/MrJamesThe3rd/atacadao/internal/order"
)

var seller = identity.Caller{ID: uuid.New(), Name: "Vera", Role: identity.RoleSeller}

func newServer(t *testing.T, caller identity.Caller) (http.Handler, *order.MockRepository, *order.MockNotifier) {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := order.NewMockRepository(ctrl)
	notifier := order.NewMockNotifier(ctrl)
	svc := order.NewService(repo, notifier, order.NewMockDirectory(ctrl), order.NewMockCatalog(ctrl))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(identity.WithCaller(req.Context(), caller)))
		})
	})
	r.Route("/orders", orderhttp.NewHandler(svc).Routes)

	return r, repo, notifier
}

func generated() *order.Order {
	return &order.Order{
		ID:         uuid.New(),
		ClientID:   uuid.New(),
		ClientName: "Mercadinho Sol",
		Status:     order.StatusGenerated,
		Items: []order.Item{{
			ProductID: uuid.New(), Description: "Arroz 5kg", Quantity: 2,
			UnitPrice: decimal.RequireFromString("12.75"), Subtotal: decimal.RequireFromString("25.50"),
		}},
		Total:     decimal.RequireFromString("25.50"),
		CreatedAt: time.Now().Add(-time.Hour),
		Version:   1,
	}
}

func TestHandler_Start(t *testing.T) {
	srv, repo, notifier := newServer(t, seller)
	o := generated()

	repo.EXPECT().GetOrder(gomock.Any(), o.ID).Return(o, nil)
	repo.EXPECT().SaveOrder(gomock.Any(), gomock.Any()).Return(nil)
	notifier.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders/"+o.ID.String()+"/start", nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Status      string          `json:"status"`
		StatusLabel string          `json:"status_label"`
		SellerID    *uuid.UUID      `json:"seller_id"`
		Total       decimal.Decimal `json:"total"`
		SLA         *struct {
			Bucket string `json:"bucket"`
		} `json:"sla"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))

	assert.Equal(t, "in_progress", body.Status)
	assert.Equal(t, "Em Separação", body.StatusLabel)
	require.NotNil(t, body.SellerID)
	assert.Equal(t, seller.ID, *body.SellerID)
	assert.True(t, decimal.RequireFromString("25.50").Equal(body.Total))
	require.NotNil(t, body.SLA)
	assert.Equal(t, "good", body.SLA.Bucket)
}

func TestHandler_Errors(t *testing.T) {
	type testCase struct {
		name     string
		method   string
		path     func(id uuid.UUID) string
		body     string
		setup    func(repo *order.MockRepository, o *order.Order)
		wantCode int
		wantKind string
	}

	tests := []testCase{
		{
			name:     "MalformedID",
			method:   http.MethodGet,
			path:     func(uuid.UUID) string { return "/orders/not-a-uuid" },
			wantCode: http.StatusUnprocessableEntity,
			wantKind: "validation",
		},
		{
			name:   "NotFound",
			method: http.MethodGet,
			path:   func(id uuid.UUID) string { return "/orders/" + id.String() },
			setup: func(repo *order.MockRepository, o *order.Order) {
				repo.EXPECT().GetOrder(gomock.Any(), o.ID).Return(nil, fmt.Errorf("order: %w", apperr.ErrNotFound))
			},
			wantCode: http.StatusNotFound,
			wantKind: "not_found",
		},
		{
			name:     "BlankCancelReason",
			method:   http.MethodPost,
			path:     func(id uuid.UUID) string { return "/orders/" + id.String() + "/cancel" },
			body:     `{"reason":"   "}`,
			wantCode: http.StatusUnprocessableEntity,
			wantKind: "validation",
		},
		{
			name:   "InvalidTransition",
			method: http.MethodPost,
			path:   func(id uuid.UUID) string { return "/orders/" + id.String() + "/send" },
			setup: func(repo *order.MockRepository, o *order.Order) {
				repo.EXPECT().GetOrder(gomock.Any(), o.ID).Return(o, nil)
			},
			wantCode: http.StatusConflict,
			wantKind: "invalid_transition",
		},
		{
			name:   "LostRace",
			method: http.MethodPost,
			path:   func(id uuid.UUID) string { return "/orders/" + id.String() + "/start" },
			setup: func(repo *order.MockRepository, o *order.Order) {
				repo.EXPECT().GetOrder(gomock.Any(), o.ID).Return(o, nil)
				repo.EXPECT().SaveOrder(gomock.Any(), gomock.Any()).Return(apperr.ErrConflict)
			},
			wantCode: http.StatusConflict,
			wantKind: "conflict",
		},
		{
			name:     "SellerCannotPurge",
			method:   http.MethodDelete,
			path:     func(uuid.UUID) string { return "/orders" },
			wantCode: http.StatusForbidden,
			wantKind: "forbidden",
		},
		{
			name:     "UnknownStatusFilter",
			method:   http.MethodGet,
			path:     func(uuid.UUID) string { return "/orders?status=lost" },
			wantCode: http.StatusUnprocessableEntity,
			wantKind: "validation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, repo, _ := newServer(t, seller)
			o := generated()

			if tt.setup != nil {
				tt.setup(repo, o)
			}

			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path(o.ID), strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantCode, rec.Code)

			var body map[string]string
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantKind, body["error"])
		})
	}
}

func TestHandler_ListScopesSeller(t *testing.T) {
	srv, repo, _ := newServer(t, seller)

	repo.EXPECT().
		ListOrders(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, f order.ListFilter) ([]*order.Order, error) {
			assert.Equal(t, &seller.ID, f.VisibleToSeller)
			require.NotNil(t, f.From)
			require.NotNil(t, f.To)
			assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), *f.From)
			assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), *f.To)

			return []*order.Order{generated()}, nil
		})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders?from=2024-05-01&to=2024-05-31", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body []map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Len(t, body, 1)
	assert.NotContains(t, body[0], "sla")
}
