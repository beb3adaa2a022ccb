package report

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/atacadao/internal/http/authn"
	"github.com/MrJamesThe3rd/atacadao/internal/http/respond"
	"github.com/MrJamesThe3rd/atacadao/internal/order"
	"github.com/MrJamesThe3rd/atacadao/internal/report"
)

// Handler serves the management dashboard. Months are cut in loc.
type Handler struct {
	orders *order.Service
	loc    *time.Location
	now    func() time.Time
}

func NewHandler(orders *order.Service, loc *time.Location) *Handler {
	return &Handler{orders: orders, loc: loc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/monthly", h.monthly)
	r.Get("/history", h.history)
}

type rankedResponse struct {
	ID      uuid.UUID       `json:"id"`
	Name    string          `json:"name"`
	Revenue decimal.Decimal `json:"revenue"`
}

type summaryResponse struct {
	Year          int                  `json:"year"`
	Month         int                  `json:"month"`
	Revenue       decimal.Decimal      `json:"revenue"`
	OrderCount    int                  `json:"order_count"`
	AverageTicket decimal.Decimal      `json:"average_ticket"`
	TopSeller     *rankedResponse      `json:"top_seller"`
	TopClient     *rankedResponse      `json:"top_client"`
	ByStatus      map[order.Status]int `json:"by_status"`
}

func toRanked(r *report.Ranked) *rankedResponse {
	if r == nil {
		return nil
	}

	return &rankedResponse{ID: r.ID, Name: r.Name, Revenue: r.Revenue}
}

func toResponse(s report.Summary) summaryResponse {
	return summaryResponse{
		Year:          s.Period.Year,
		Month:         int(s.Period.Month),
		Revenue:       s.Revenue,
		OrderCount:    s.OrderCount,
		AverageTicket: s.AverageTicket,
		TopSeller:     toRanked(s.TopSeller),
		TopClient:     toRanked(s.TopClient),
		ByStatus:      s.ByStatus,
	}
}

func (h *Handler) monthly(w http.ResponseWriter, r *http.Request) {
	year, month, err := respond.QueryMonth(r, h.now().In(h.loc))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	period := report.Period{Year: year, Month: month}
	from, to := period.Bounds(h.loc)

	orders, err := h.orders.List(r.Context(), authn.Caller(r), order.ListFilter{From: &from, To: &to})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(report.Monthly(orders, period, h.loc)))
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context(), authn.Caller(r), order.ListFilter{})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	summaries := report.History(orders, h.loc)

	resp := make([]summaryResponse, len(summaries))
	for i, s := range summaries {
		resp[i] = toResponse(s)
	}

	respond.JSON(w, http.StatusOK, resp)
}
