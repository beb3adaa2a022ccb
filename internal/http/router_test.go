package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/atacadao/internal/advisor"
	"github.com/MrJamesThe3rd/atacadao/internal/auth"
	"github.com/MrJamesThe3rd/atacadao/internal/catalog"
	apihttp "github.com/MrJamesThe3rd/atacadao/internal/http"
	authhttp "github.com/MrJamesThe3rd/atacadao/internal/http/auth"
	cataloghttp "github.com/MrJamesThe3rd/atacadao/internal/http/catalog"
	matchinghttp "github.com/MrJamesThe3rd/atacadao/internal/http/matching"
	notificationhttp "github.com/MrJamesThe3rd/atacadao/internal/http/notification"
	orderhttp "github.com/MrJamesThe3rd/atacadao/internal/http/order"
	reporthttp "github.com/MrJamesThe3rd/atacadao/internal/http/report"
	transactionhttp "github.com/MrJamesThe3rd/atacadao/internal/http/transaction"
	"github.com/MrJamesThe3rd/atacadao/internal/identity"
	"github.com/MrJamesThe3rd/atacadao/internal/matching"
	"github.com/MrJamesThe3rd/atacadao/internal/notification"
	"github.com/MrJamesThe3rd/atacadao/internal/order"
	"github.com/MrJamesThe3rd/atacadao/internal/transaction"
)

type api struct {
	handler http.Handler
	tokens  *auth.Tokens
	orders  *order.MockRepository
}

func newAPI(t *testing.T) api {
	t.Helper()

	ctrl := gomock.NewController(t)
	tokens := auth.NewTokens("test-secret", time.Hour, time.Minute)
	orders := order.NewMockRepository(ctrl)

	authSvc := auth.NewService(auth.NewMockRepository(ctrl), tokens, auth.NewMockMailer(ctrl))
	orderSvc := order.NewService(orders, order.NewMockNotifier(ctrl), order.NewMockDirectory(ctrl), order.NewMockCatalog(ctrl))
	adv := advisor.NewService(nil)

	h := apihttp.New(apihttp.Options{Timeout: 5 * time.Second, CORSOrigins: []string{"http://localhost:5173"}}, authSvc, apihttp.Handlers{
		Auth:          authhttp.NewHandler(authSvc),
		Orders:        orderhttp.NewHandler(orderSvc),
		Reports:       reporthttp.NewHandler(orderSvc, time.UTC),
		Notifications: notificationhttp.NewHandler(notification.NewService(notification.NewMockRepository(ctrl))),
		Transactions: transactionhttp.NewHandler(
			transaction.NewService(transaction.NewMockRepository(ctrl), transaction.NewMockCategorizer(ctrl)), adv),
		Categories: matchinghttp.NewHandler(matching.NewService(matching.NewMockRepository(ctrl))),
		Products:   cataloghttp.NewHandler(catalog.NewService(catalog.NewMockRepository(ctrl)), adv),
	})

	return api{handler: h, tokens: tokens, orders: orders}
}

func (a api) token(t *testing.T, role identity.Role) string {
	t.Helper()

	u := &auth.User{ID: uuid.New(), Name: "Teste", Role: role}
	tok, _, err := a.tokens.Issue(u, auth.PurposeSession, time.Now(), "")
	require.NoError(t, err)

	return tok
}

func (a api) do(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	return rec
}

func TestRouter_Access(t *testing.T) {
	a := newAPI(t)

	type testCase struct {
		name     string
		role     identity.Role
		method   string
		path     string
		wantCode int
	}

	tests := []testCase{
		{name: "Health", method: http.MethodGet, path: "/healthz", wantCode: http.StatusNoContent},
		{name: "OrdersNeedSession", method: http.MethodGet, path: "/api/v1/orders", wantCode: http.StatusUnauthorized},
		{name: "ReportsManagerOnly", role: identity.RoleSeller, method: http.MethodGet, path: "/api/v1/reports/history", wantCode: http.StatusForbidden},
		{name: "UsersManagerOnly", role: identity.RoleClient, method: http.MethodPost, path: "/api/v1/auth/users", wantCode: http.StatusForbidden},
		{name: "ImportManagerOnly", role: identity.RoleClient, method: http.MethodPost, path: "/api/v1/products/import", wantCode: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := ""
			if tt.role != "" {
				token = a.token(t, tt.role)
			}

			rec := a.do(httptest.NewRequest(tt.method, tt.path, nil), token)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
		})
	}
}

func TestRouter_RejectsPlainText(t *testing.T) {
	a := newAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader("hello"))
	req.Header.Set("Content-Type", "text/plain")

	rec := a.do(req, a.token(t, identity.RoleClient))

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestRouter_MonthlyReport(t *testing.T) {
	a := newAPI(t)

	sellerID := uuid.New()
	at := time.Date(2024, 5, 3, 12, 0, 0, 0, time.UTC)
	orders := []*order.Order{
		{ID: uuid.New(), ClientID: uuid.New(), ClientName: "Sol", SellerID: &sellerID, SellerName: "Vera",
			Status: order.StatusFinished, Total: decimal.RequireFromString("20.00"), CreatedAt: at},
		{ID: uuid.New(), ClientID: uuid.New(), ClientName: "Lua",
			Status: order.StatusGenerated, Total: decimal.RequireFromString("15.50"), CreatedAt: at.Add(time.Hour)},
		{ID: uuid.New(), ClientID: uuid.New(), ClientName: "Mar",
			Status: order.StatusCancelled, Total: decimal.RequireFromString("99.00"), CreatedAt: at},
	}

	a.orders.EXPECT().
		ListOrders(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, f order.ListFilter) ([]*order.Order, error) {
			require.NotNil(t, f.From)
			assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), *f.From)
			assert.Nil(t, f.VisibleToSeller)

			return orders, nil
		})

	rec := a.do(httptest.NewRequest(http.MethodGet, "/api/v1/reports/monthly?year=2024&month=5", nil), a.token(t, identity.RoleManager))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Revenue    decimal.Decimal `json:"revenue"`
		OrderCount int             `json:"order_count"`
		TopSeller  *struct {
			Name string `json:"name"`
		} `json:"top_seller"`
		ByStatus map[string]int `json:"by_status"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))

	assert.True(t, decimal.RequireFromString("35.50").Equal(body.Revenue), body.Revenue.String())
	assert.Equal(t, 2, body.OrderCount)
	require.NotNil(t, body.TopSeller)
	assert.Equal(t, "Vera", body.TopSeller.Name)
	assert.Equal(t, 1, body.ByStatus["cancelled"])
}

func TestRouter_BadMonth(t *testing.T) {
	a := newAPI(t)

	rec := a.do(httptest.NewRequest(http.MethodGet, "/api/v1/reports/monthly?month=13", nil), a.token(t, identity.RoleManager))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
