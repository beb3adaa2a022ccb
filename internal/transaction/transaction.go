package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type represents the type of transaction (income or expense).
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

func (t Type) Valid() bool { return t == TypeIncome || t == TypeExpense }

// Status tells whether the money already moved.
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

func (s Status) Valid() bool { return s == StatusPending || s == StatusPaid }

type Frequency string

const (
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}

	return false
}

// Recurrence describes how a transaction repeats. A nil Count means the
// series has no end and is only used for projections.
type Recurrence struct {
	Frequency Frequency
	Count     *int
}

// OpenEnded reports whether no installments are pre-generated for r.
func (r *Recurrence) OpenEnded() bool {
	return r != nil && r.Count == nil
}

// Transaction is a personal finance entry owned by a single user.
type Transaction struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Description   string
	Amount        decimal.Decimal
	Type          Type
	Category      string
	DueDate       time.Time // date only, midnight UTC
	Status        Status
	PaymentMethod string
	IsRecurring   bool
	Recurrence    *Recurrence
	Observation   string
	// SeriesID groups the installments created from one recurring template.
	SeriesID  *uuid.UUID
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// DateOnly drops the clock part of t, keeping its calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
