package notification

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/atacadao/internal/apperr"
	"github.com/MrJamesThe3rd/atacadao/internal/http/authn"
	"github.com/MrJamesThe3rd/atacadao/internal/http/respond"
	"github.com/MrJamesThe3rd/atacadao/internal/notification"
)

type Handler struct {
	svc *notification.Service
}

func NewHandler(svc *notification.Service) *Handler {
	return &Handler{svc: svc}
}

// Routes only ever act on the caller's own notifications.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/unread-count", h.unreadCount)
	r.Post("/read-all", h.markAllRead)
	r.Delete("/", h.deleteAll)
	r.Patch("/{id}/read", h.markRead)
	r.Delete("/{id}", h.delete)
}

type notificationResponse struct {
	ID        uuid.UUID         `json:"id"`
	OrderID   *uuid.UUID        `json:"order_id,omitempty"`
	Type      notification.Type `json:"type"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Read      bool              `json:"read"`
	CreatedAt time.Time         `json:"created_at"`
}

func toResponse(n *notification.Notification) notificationResponse {
	resp := notificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}

	if n.OrderID != uuid.Nil {
		resp.OrderID = &n.OrderID
	}

	return resp
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	unreadOnly := false

	if s := r.URL.Query().Get("unread"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			respond.Error(w, r, apperr.Invalid("unread", "must be a boolean"))
			return
		}

		unreadOnly = v
	}

	ns, err := h.svc.List(r.Context(), authn.Caller(r).ID, unreadOnly)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]notificationResponse, len(ns))
	for i, n := range ns {
		resp[i] = toResponse(n)
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) unreadCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.UnreadCount(r.Context(), authn.Caller(r).ID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]int{"unread": n})
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.svc.MarkRead(r.Context(), authn.Caller(r).ID, id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) markAllRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.MarkAllRead(r.Context(), authn.Caller(r).ID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]int64{"updated": n})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.svc.Delete(r.Context(), authn.Caller(r).ID, id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.DeleteAll(r.Context(), authn.Caller(r).ID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]int64{"deleted": n})
}
