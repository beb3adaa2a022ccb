package transaction

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/atacadao/internal/advisor"
	"github.com/MrJamesThe3rd/atacadao/internal/apperr"
	"github.com/MrJamesThe3rd/atacadao/internal/http/authn"
	"github.com/MrJamesThe3rd/atacadao/internal/http/respond"
	"github.com/MrJamesThe3rd/atacadao/internal/transaction"
)

type Handler struct {
	svc     *transaction.Service
	advisor *advisor.Service
	now     func() time.Time
}

func NewHandler(svc *transaction.Service, adv *advisor.Service) *Handler {
	return &Handler{svc: svc, advisor: adv, now: time.Now}
}

// Routes scope every operation to the caller's own records.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/summary", h.summary)
	r.Get("/tips", h.tips)
	r.Delete("/series/{seriesID}", h.deleteSeries)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
	r.Patch("/{id}/status", h.updateStatus)
	r.Patch("/{id}", h.update)
}

type recurrenceRequest struct {
	Frequency transaction.Frequency `json:"frequency" validate:"required"`
	Count     *int                  `json:"count"`
}

type createTransactionRequest struct {
	Description   string             `json:"description"`
	Amount        decimal.Decimal    `json:"amount"`
	Type          transaction.Type   `json:"type"`
	Category      string             `json:"category"`
	DueDate       string             `json:"due_date" validate:"required,datetime=2006-01-02"`
	Status        transaction.Status `json:"status"`
	PaymentMethod string             `json:"payment_method"`
	IsRecurring   bool               `json:"is_recurring"`
	Recurrence    *recurrenceRequest `json:"recurrence"`
	Observation   string             `json:"observation"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	due, _ := time.Parse(time.DateOnly, req.DueDate)

	params := transaction.CreateParams{
		UserID:        authn.Caller(r).ID,
		Description:   req.Description,
		Amount:        req.Amount,
		Type:          req.Type,
		Category:      req.Category,
		DueDate:       due,
		Status:        req.Status,
		PaymentMethod: req.PaymentMethod,
		IsRecurring:   req.IsRecurring,
		Observation:   req.Observation,
	}

	if req.Recurrence != nil {
		params.Recurrence = &transaction.Recurrence{Frequency: req.Recurrence.Frequency, Count: req.Recurrence.Count}
	}

	txs, err := h.svc.Create(r.Context(), params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponseList(txs))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var (
		filter transaction.ListFilter
		err    error
	)

	if s := r.URL.Query().Get("status"); s != "" {
		st := transaction.Status(s)
		if !st.Valid() {
			respond.Error(w, r, apperr.Invalid("status", "must be pending or paid"))
			return
		}

		filter.Status = &st
	}

	if s := r.URL.Query().Get("type"); s != "" {
		t := transaction.Type(s)
		if !t.Valid() {
			respond.Error(w, r, apperr.Invalid("type", "must be income or expense"))
			return
		}

		filter.Type = &t
	}

	if filter.From, err = respond.QueryDate(r, "from"); err != nil {
		respond.Error(w, r, err)
		return
	}

	if filter.To, err = respond.QueryDate(r, "to"); err != nil {
		respond.Error(w, r, err)
		return
	}

	txs, err := h.svc.List(r.Context(), authn.Caller(r).ID, filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(txs))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	tx, err := h.svc.Get(r.Context(), authn.Caller(r).ID, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(tx))
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

func (h *Handler) deleteSeries(w http.ResponseWriter, r *http.Request) {
	seriesID, err := respond.ID(r, "seriesID")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	n, err := h.svc.DeleteSeries(r.Context(), authn.Caller(r).ID, seriesID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

type updateTransactionRequest struct {
	Description   *string          `json:"description"`
	Amount        *decimal.Decimal `json:"amount"`
	Category      *string          `json:"category"`
	DueDate       *string          `json:"due_date" validate:"omitnil,datetime=2006-01-02"`
	PaymentMethod *string          `json:"payment_method"`
	Observation   *string          `json:"observation"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req updateTransactionRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	params := transaction.UpdateParams{
		Description:   req.Description,
		Amount:        req.Amount,
		Category:      req.Category,
		PaymentMethod: req.PaymentMethod,
		Observation:   req.Observation,
	}

	if req.DueDate != nil {
		due, _ := time.Parse(time.DateOnly, *req.DueDate)
		params.DueDate = &due
	}

	tx, err := h.svc.Update(r.Context(), authn.Caller(r).ID, id, params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(tx))
}

type updateStatusRequest struct {
	Status transaction.Status `json:"status"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req updateStatusRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.svc.SetStatus(r.Context(), authn.Caller(r).ID, id, req.Status); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) monthSummary(r *http.Request) (*transaction.Summary, error) {
	year, month, err := respond.QueryMonth(r, h.now())
	if err != nil {
		return nil, err
	}

	return h.svc.Summary(r.Context(), authn.Caller(r).ID, year, month)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.monthSummary(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toSummaryResponse(sum))
}

func (h *Handler) tips(w http.ResponseWriter, r *http.Request) {
	sum, err := h.monthSummary(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	tips, err := h.advisor.Tips(r.Context(), sum)
	if errors.Is(err, advisor.ErrDisabled) {
		respond.Fail(w, http.StatusServiceUnavailable, "advisor_disabled", "no model is configured")
		return
	}

	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toTipsResponse(tips))
}
