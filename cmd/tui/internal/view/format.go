package view

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/atacadao/internal/order"
)

const dbTimeout = 5 * time.Second

// FormatMoney renders d the Brazilian way, e.g. "R$ 1.234,56".
func FormatMoney(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	whole, frac, _ := strings.Cut(d.StringFixed(2), ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}

		b.WriteRune(r)
	}

	return fmt.Sprintf("%sR$ %s,%s", sign, b.String(), frac)
}

// FormatDate formats t as DD/MM/YYYY.
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// FormatSLA shows the elapsed handling time coloured by its bucket.
func FormatSLA(o *order.Order, now time.Time) string {
	elapsed, bucket, ok := o.SLA(now)
	if !ok {
		return "-"
	}

	color := map[order.SLABucket]string{
		order.SLAGood:     "42",
		order.SLAWarning:  "214",
		order.SLACritical: "196",
	}[bucket]

	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(formatDuration(elapsed))
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	if d < time.Hour {
		return fmt.Sprintf("%dmin", int(d.Minutes()))
	}

	return fmt.Sprintf("%dh%02d", int(d.Hours()), int(d.Minutes())%60)
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}
