package transaction

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Advance returns the i-th occurrence of a series starting at base. Every
// occurrence is computed from base rather than from the previous one, and
// monthly and yearly steps clamp to the last day of the target month:
// Jan 31 monthly gives Feb 29 (or 28) and then Mar 31.
func Advance(base time.Time, f Frequency, i int) time.Time {
	switch f {
	case FrequencyWeekly:
		return base.AddDate(0, 0, 7*i)
	case FrequencyMonthly:
		return addMonthsClamped(base, i)
	case FrequencyYearly:
		return addMonthsClamped(base, 12*i)
	}

	return base
}

func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()

	first := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(first); d > last {
		d = last
	}

	return first.AddDate(0, 0, d-1)
}

func daysIn(firstOfMonth time.Time) int {
	return firstOfMonth.AddDate(0, 1, -1).Day()
}

// Expand turns a template into the records to be written. Without a count of
// at least two the template comes back alone and untouched. Otherwise every
// installment gets its own due date counted from base, a shared series id and
// an "(i/N)" observation suffix; only the first keeps status, the rest are pending.
func Expand(template Transaction, base time.Time, status Status) []*Transaction {
	if template.Recurrence == nil || template.Recurrence.Count == nil || *template.Recurrence.Count <= 1 {
		single := template
		return []*Transaction{&single}
	}

	n := *template.Recurrence.Count
	series := uuid.New()
	out := make([]*Transaction, n)

	for i := range n {
		tx := template
		tx.DueDate = Advance(base, template.Recurrence.Frequency, i)
		tx.SeriesID = &series
		tx.Observation = strings.TrimSpace(fmt.Sprintf("%s (%d/%d)", template.Observation, i+1, n))

		tx.Status = StatusPending
		if i == 0 {
			tx.Status = status
		}

		out[i] = &tx
	}

	return out
}

// Project sums, by type, the occurrences of open-ended series that fall in
// [from, to). Templates that are not open-ended are ignored.
func Project(templates []*Transaction, from, to time.Time) (income, expense decimal.Decimal) {
	income, expense = decimal.Zero, decimal.Zero

	for _, t := range templates {
		if !t.IsRecurring || !t.Recurrence.OpenEnded() || !t.Recurrence.Frequency.Valid() {
			continue
		}

		for i := 0; ; i++ {
			due := Advance(t.DueDate, t.Recurrence.Frequency, i)
			if !due.Before(to) {
				break
			}

			if due.Before(from) {
				continue
			}

			switch t.Type {
			case TypeIncome:
				income = income.Add(t.Amount)
			case TypeExpense:
				expense = expense.Add(t.Amount)
			}
		}
	}

	return income, expense
}
