package order_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/atacadao/internal/order"
)

func TestOrder_SLA(t *testing.T) {
	received := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	type testCase struct {
		name       string
		receivedAt *time.Time
		invoicedAt *time.Time
		now        time.Time
		wantOK     bool
		wantBucket order.SLABucket
		wantDur    time.Duration
	}

	tests := []testCase{
		{
			name:   "NotReceived",
			now:    received,
			wantOK: false,
		},
		{
			name:       "GoodWhileOpen",
			receivedAt: &received,
			now:        received.Add(9 * time.Minute),
			wantOK:     true,
			wantBucket: order.SLAGood,
			wantDur:    9 * time.Minute,
		},
		{
			name:       "WarningAtTenMinutes",
			receivedAt: &received,
			now:        received.Add(10 * time.Minute),
			wantOK:     true,
			wantBucket: order.SLAWarning,
			wantDur:    10 * time.Minute,
		},
		{
			name:       "CriticalWhileOpen",
			receivedAt: &received,
			now:        received.Add(2 * time.Hour),
			wantOK:     true,
			wantBucket: order.SLACritical,
			wantDur:    2 * time.Hour,
		},
		{
			name:       "FrozenAtInvoice",
			receivedAt: &received,
			invoicedAt: new(received.Add(30 * time.Minute)),
			now:        received.Add(48 * time.Hour),
			wantOK:     true,
			wantBucket: order.SLAWarning,
			wantDur:    30 * time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &order.Order{ReceivedAt: tt.receivedAt, InvoicedAt: tt.invoicedAt}

			dur, bucket, ok := o.SLA(tt.now)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantDur, dur)
		})
	}
}
