package order

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/atacadao/internal/apperr"
	"github.com/MrJamesThe3rd/atacadao/internal/http/authn"
	"github.com/MrJamesThe3rd/atacadao/internal/http/respond"
	"github.com/MrJamesThe3rd/atacadao/internal/identity"
	"github.com/MrJamesThe3rd/atacadao/internal/order"
)

type Handler struct {
	svc *order.Service
	now func() time.Time
}

func NewHandler(svc *order.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Delete("/", h.purge)
	r.Get("/{id}", h.get)
	r.Post("/{id}/start", h.step(h.svc.StartProcessing))
	r.Post("/{id}/invoice", h.step(h.svc.MarkInvoiced))
	r.Post("/{id}/send", h.step(h.svc.MarkSent))
	r.Post("/{id}/finish", h.step(h.svc.Finish))
	r.Post("/{id}/cancel", h.cancel)
	r.Put("/{id}/seller", h.reassign)
}

type createOrderRequest struct {
	Items []struct {
		ProductID uuid.UUID `json:"product_id" validate:"required"`
		Quantity  int       `json:"quantity"`
	} `json:"items" validate:"required,dive"`
	SellerID *uuid.UUID `json:"seller_id"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	params := order.CreateParams{SellerID: req.SellerID}
	for _, it := range req.Items {
		params.Items = append(params.Items, order.ItemParams{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	o, err := h.svc.Create(r.Context(), authn.Caller(r), params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(o, h.now()))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	orders, err := h.svc.List(r.Context(), authn.Caller(r), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(orders, h.now()))
}

func parseFilter(r *http.Request) (order.ListFilter, error) {
	var (
		filter order.ListFilter
		err    error
	)

	if s := r.URL.Query().Get("status"); s != "" {
		st := order.Status(s)
		if !st.Valid() {
			return filter, apperr.Invalid("status", "unknown status")
		}

		filter.Status = &st
	}

	if filter.ClientID, err = respond.QueryUUID(r, "client_id"); err != nil {
		return filter, err
	}

	if filter.SellerID, err = respond.QueryUUID(r, "seller_id"); err != nil {
		return filter, err
	}

	if filter.From, err = respond.QueryDate(r, "from"); err != nil {
		return filter, err
	}

	to, err := respond.QueryDate(r, "to")
	if err != nil {
		return filter, err
	}

	if to != nil {
		// The upper bound is exclusive; include the whole "to" day.
		filter.To = new(to.AddDate(0, 0, 1))
	}

	return filter, nil
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	o, err := h.svc.Get(r.Context(), authn.Caller(r), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(o, h.now()))
}

type stepFunc func(ctx context.Context, caller identity.Caller, id uuid.UUID) (*order.Order, error)

// step serves the transitions that need nothing but the order id.
func (h *Handler) step(fn stepFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := respond.ID(r, "id")
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		o, err := fn(r.Context(), authn.Caller(r), id)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		respond.JSON(w, http.StatusOK, toResponse(o, h.now()))
	}
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req cancelRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	o, err := h.svc.Cancel(r.Context(), authn.Caller(r), id, req.Reason)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(o, h.now()))
}

type reassignRequest struct {
	SellerID uuid.UUID `json:"seller_id" validate:"required"`
}

func (h *Handler) reassign(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req reassignRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	o, err := h.svc.ReassignSeller(r.Context(), authn.Caller(r), id, req.SellerID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(o, h.now()))
}

func (h *Handler) purge(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.PurgeAll(r.Context(), authn.Caller(r))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]int64{"deleted": n})
}
