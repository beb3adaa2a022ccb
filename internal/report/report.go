// Package report aggregates orders into monthly management summaries.
// Everything here is pure: callers load the orders and pass them in.
package report

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/atacadao/internal/order"
)

// Period is a calendar month in a given location.
type Period struct {
	Year  int
	Month time.Month
}

func PeriodOf(t time.Time, loc *time.Location) Period {
	t = t.In(loc)
	return Period{Year: t.Year(), Month: t.Month()}
}

// Bounds returns the half-open interval [start, end) of the month in loc.
func (p Period) Bounds(loc *time.Location) (time.Time, time.Time) {
	start := time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}

func (p Period) before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}

	return p.Month < other.Month
}

// Ranked is the party with the highest summed revenue in a period.
type Ranked struct {
	ID      uuid.UUID
	Name    string
	Revenue decimal.Decimal
}

type Summary struct {
	Period        Period
	Revenue       decimal.Decimal
	OrderCount    int
	AverageTicket decimal.Decimal
	TopSeller     *Ranked
	TopClient     *Ranked
	// ByStatus counts every order created in the period, cancelled ones included.
	ByStatus map[order.Status]int
}

// Monthly summarises the orders created within period. Cancelled orders only
// show up in ByStatus. Orders without a seller are left out of the seller
// ranking. Ties keep whoever appeared first in orders.
func Monthly(orders []*order.Order, period Period, loc *time.Location) Summary {
	s := Summary{
		Period:        period,
		Revenue:       decimal.Zero,
		AverageTicket: decimal.Zero,
		ByStatus:      make(map[order.Status]int),
	}

	sellers := newRanking()
	clients := newRanking()

	for _, o := range orders {
		if PeriodOf(o.CreatedAt, loc) != period {
			continue
		}

		s.ByStatus[o.Status]++

		if o.Status == order.StatusCancelled {
			continue
		}

		s.Revenue = s.Revenue.Add(o.Total)
		s.OrderCount++

		clients.add(o.ClientID, o.ClientName, o.Total)

		if o.SellerID != nil {
			sellers.add(*o.SellerID, o.SellerName, o.Total)
		}
	}

	if s.OrderCount > 0 {
		s.AverageTicket = s.Revenue.Div(decimal.NewFromInt(int64(s.OrderCount))).Round(2)
	}

	s.TopSeller = sellers.top()
	s.TopClient = clients.top()

	return s
}

// History returns one Summary per month that has at least one order, newest first.
func History(orders []*order.Order, loc *time.Location) []Summary {
	seen := make(map[Period]bool)

	var periods []Period

	for _, o := range orders {
		p := PeriodOf(o.CreatedAt, loc)
		if !seen[p] {
			seen[p] = true
			periods = append(periods, p)
		}
	}

	slices.SortFunc(periods, func(a, b Period) int {
		if a == b {
			return 0
		}

		if b.before(a) {
			return -1
		}

		return 1
	})

	out := make([]Summary, 0, len(periods))
	for _, p := range periods {
		out = append(out, Monthly(orders, p, loc))
	}

	return out
}

type ranking struct {
	order []uuid.UUID
	byID  map[uuid.UUID]*Ranked
}

func newRanking() *ranking {
	return &ranking{byID: make(map[uuid.UUID]*Ranked)}
}

func (r *ranking) add(id uuid.UUID, name string, amount decimal.Decimal) {
	entry, ok := r.byID[id]
	if !ok {
		entry = &Ranked{ID: id, Name: name, Revenue: decimal.Zero}
		r.byID[id] = entry
		r.order = append(r.order, id)
	}

	entry.Revenue = entry.Revenue.Add(amount)
}

func (r *ranking) top() *Ranked {
	var best *Ranked

	for _, id := range r.order {
		e := r.byID[id]
		if best == nil || e.Revenue.GreaterThan(best.Revenue) {
			best = e
		}
	}

	if best == nil {
		return nil
	}

	out := *best

	return &out
}
