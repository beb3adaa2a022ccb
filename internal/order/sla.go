package order

import "time"

type SLABucket string

const (
	SLAGood     SLABucket = "good"
	SLAWarning  SLABucket = "warning"
	SLACritical SLABucket = "critical"
)

const (
	slaGoodLimit    = 10 * time.Minute
	slaWarningLimit = time.Hour
)

// SLA measures how long the order has been handled: from ReceivedAt until
// InvoicedAt, or until now while not yet invoiced. ok is false before the
// order was received. Informational only.
func (o *Order) SLA(now time.Time) (elapsed time.Duration, bucket SLABucket, ok bool) {
	if o.ReceivedAt == nil {
		return 0, "", false
	}

	end := now
	if o.InvoicedAt != nil {
		end = *o.InvoicedAt
	}

	elapsed = max(end.Sub(*o.ReceivedAt), 0)

	switch {
	case elapsed < slaGoodLimit:
		bucket = SLAGood
	case elapsed < slaWarningLimit:
		bucket = SLAWarning
	default:
		bucket = SLACritical
	}

	return elapsed, bucket, true
}
