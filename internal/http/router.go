package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/atacadao/internal/http/auth"
	"github.com/MrJamesThe3rd/atacadao/internal/http/authn"
	"github.com/MrJamesThe3rd/atacadao/internal/http/catalog"
	"github.com/MrJamesThe3rd/atacadao/internal/http/matching"
	"github.com/MrJamesThe3rd/atacadao/internal/http/notification"
	"github.com/MrJamesThe3rd/atacadao/internal/http/order"
	"github.com/MrJamesThe3rd/atacadao/internal/http/report"
	"github.com/MrJamesThe3rd/atacadao/internal/http/transaction"
	"github.com/MrJamesThe3rd/atacadao/internal/identity"
)

type Options struct {
	Timeout     time.Duration
	CORSOrigins []string
}

type Handlers struct {
	Auth          *auth.Handler
	Orders        *order.Handler
	Reports       *report.Handler
	Notifications *notification.Handler
	Transactions  *transaction.Handler
	Categories    *matching.Handler
	Products      *catalog.Handler
}

func New(opts Options, authenticator authn.Authenticator, h Handlers) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))
	router.Use(middleware.Timeout(opts.Timeout))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Auth.Routes(r)

			r.Group(func(r chi.Router) {
				r.Use(authn.Middleware(authenticator))
				h.Auth.PrivateRoutes(r)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(authn.Middleware(authenticator))

			r.Route("/orders", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Orders.Routes(r)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Use(authn.RequireRole(identity.RoleManager))
				h.Reports.Routes(r)
			})

			r.Route("/notifications", h.Notifications.Routes)

			r.Route("/transactions", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				r.Route("/categories", h.Categories.Routes)
				h.Transactions.Routes(r)
			})

			r.Route("/products", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json", "multipart/form-data"))
				h.Products.Routes(r)
			})
		})
	})

	return router
}
