package transaction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/atacadao/internal/apperr"
)

// ErrBatchTooLarge is wrapped in an apperr.ErrPersistence when a recurring
// template expands to more records than one batch may hold.
var ErrBatchTooLarge = errors.New("batch size exceeded")

// DefaultMaxBatch is the largest number of records written in one batch.
const DefaultMaxBatch = 500

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	GetTransaction(ctx context.Context, userID, id uuid.UUID) (*Transaction, error)
	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error)
	// ListOpenEnded returns the user's recurring templates without a count.
	ListOpenEnded(ctx context.Context, userID uuid.UUID) ([]*Transaction, error)
	UpdateTransaction(ctx context.Context, tx *Transaction) error
	UpdateStatus(ctx context.Context, userID, id uuid.UUID, status Status) error
	DeleteTransaction(ctx context.Context, userID, id uuid.UUID) error
	DeleteSeries(ctx context.Context, userID, seriesID uuid.UUID) (int64, error)

	BeginBatch(ctx context.Context, userID uuid.UUID) (BatchTx, error)
}

// BatchTx writes several transactions all-or-nothing.
type BatchTx interface {
	CreateTransactions(ctx context.Context, txs []*Transaction) error
	Commit() error
	Rollback() error
}

// Categorizer suggests a category from the user's own rules. An empty result
// means no rule matched.
type Categorizer interface {
	Suggest(ctx context.Context, userID uuid.UUID, description string) (string, error)
}

type Service struct {
	repo        Repository
	categorizer Categorizer
	maxBatch    int
}

type Option func(*Service)

func WithMaxBatch(n int) Option {
	return func(s *Service) { s.maxBatch = n }
}

func NewService(repo Repository, categorizer Categorizer, opts ...Option) *Service {
	s := &Service{repo: repo, categorizer: categorizer, maxBatch: DefaultMaxBatch}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

type CreateParams struct {
	UserID        uuid.UUID
	Description   string
	Amount        decimal.Decimal
	Type          Type
	Category      string
	DueDate       time.Time
	Status        Status
	PaymentMethod string
	IsRecurring   bool
	Recurrence    *Recurrence
	Observation   string
}

type ListFilter struct {
	UserID uuid.UUID
	From   *time.Time
	To     *time.Time
	Status *Status
	Type   *Type
}

// Create validates params and writes the transaction, or every installment of
// it when a recurrence count is given, in a single batch.
func (s *Service) Create(ctx context.Context, params CreateParams) ([]*Transaction, error) {
	params.Description = strings.TrimSpace(params.Description)
	params.Category = strings.TrimSpace(params.Category)

	if params.Status == "" {
		params.Status = StatusPending
	}

	if err := validateCreate(params); err != nil {
		return nil, err
	}

	if params.Category == "" && s.categorizer != nil {
		suggested, err := s.categorizer.Suggest(ctx, params.UserID, params.Description)
		if err != nil {
			slog.Warn("category suggestion failed", "user_id", params.UserID, "error", err)
		}

		params.Category = suggested
	}

	template := Transaction{
		UserID:        params.UserID,
		Description:   params.Description,
		Amount:        params.Amount,
		Type:          params.Type,
		Category:      params.Category,
		DueDate:       DateOnly(params.DueDate),
		Status:        params.Status,
		PaymentMethod: params.PaymentMethod,
		IsRecurring:   params.IsRecurring,
		Recurrence:    params.Recurrence,
		Observation:   params.Observation,
	}

	txs := Expand(template, template.DueDate, params.Status)
	if len(txs) > s.maxBatch {
		return nil, apperr.Persistence("creating transactions",
			fmt.Errorf("%w: %d records, limit %d", ErrBatchTooLarge, len(txs), s.maxBatch))
	}

	btx, err := s.repo.BeginBatch(ctx, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("begin batch: %w", err)
	}
	defer btx.Rollback()

	if err := btx.CreateTransactions(ctx, txs); err != nil {
		return nil, fmt.Errorf("create transactions: %w", err)
	}

	if err := btx.Commit(); err != nil {
		return nil, apperr.Persistence("commit batch", err)
	}

	slog.Info("transactions created", "user_id", params.UserID, "count", len(txs))

	return txs, nil
}

func validateCreate(p CreateParams) error {
	switch {
	case p.UserID == uuid.Nil:
		return apperr.Invalid("user_id", "required")
	case p.Description == "":
		return apperr.Invalid("description", "required")
	case !p.Amount.IsPositive():
		return apperr.Invalid("amount", "must be positive")
	case !p.Type.Valid():
		return apperr.Invalid("type", "must be income or expense")
	case !p.Status.Valid():
		return apperr.Invalid("status", "must be pending or paid")
	case p.DueDate.IsZero():
		return apperr.Invalid("due_date", "required")
	case p.PaymentMethod != "" && p.Type != TypeExpense:
		return apperr.Invalid("payment_method", "only expenses have a payment method")
	case !p.IsRecurring && p.Recurrence != nil:
		return apperr.Invalid("recurrence", "only recurring transactions have a recurrence")
	case p.IsRecurring && p.Recurrence == nil:
		return apperr.Invalid("recurrence", "required for recurring transactions")
	}

	if p.Recurrence != nil {
		if !p.Recurrence.Frequency.Valid() {
			return apperr.Invalid("recurrence.frequency", "must be weekly, monthly or yearly")
		}

		if p.Recurrence.Count != nil && *p.Recurrence.Count < 2 {
			return apperr.Invalid("recurrence.count", "must be at least 2")
		}
	}

	return nil
}

func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, userID, id)
}

// List always scopes filter to userID.
func (s *Service) List(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*Transaction, error) {
	filter.UserID = userID
	return s.repo.ListTransactions(ctx, filter)
}

// UpdateParams holds the editable fields; nil means unchanged. The recurrence
// of an existing record cannot be edited.
type UpdateParams struct {
	Description   *string
	Amount        *decimal.Decimal
	Category      *string
	DueDate       *time.Time
	PaymentMethod *string
	Observation   *string
}

func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, params UpdateParams) (*Transaction, error) {
	tx, err := s.repo.GetTransaction(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if params.Description != nil {
		tx.Description = strings.TrimSpace(*params.Description)
		if tx.Description == "" {
			return nil, apperr.Invalid("description", "required")
		}
	}

	if params.Amount != nil {
		if !params.Amount.IsPositive() {
			return nil, apperr.Invalid("amount", "must be positive")
		}

		tx.Amount = *params.Amount
	}

	if params.Category != nil {
		tx.Category = strings.TrimSpace(*params.Category)
	}

	if params.DueDate != nil {
		tx.DueDate = DateOnly(*params.DueDate)
	}

	if params.PaymentMethod != nil {
		if *params.PaymentMethod != "" && tx.Type != TypeExpense {
			return nil, apperr.Invalid("payment_method", "only expenses have a payment method")
		}

		tx.PaymentMethod = *params.PaymentMethod
	}

	if params.Observation != nil {
		tx.Observation = *params.Observation
	}

	if err := s.repo.UpdateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("updating transaction: %w", err)
	}

	return tx, nil
}

// SetStatus toggles a transaction between pending and paid.
func (s *Service) SetStatus(ctx context.Context, userID, id uuid.UUID, status Status) error {
	if !status.Valid() {
		return apperr.Invalid("status", "must be pending or paid")
	}

	return s.repo.UpdateStatus(ctx, userID, id, status)
}

func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.DeleteTransaction(ctx, userID, id)
}

// DeleteSeries removes every installment created together with seriesID.
func (s *Service) DeleteSeries(ctx context.Context, userID, seriesID uuid.UUID) (int64, error) {
	n, err := s.repo.DeleteSeries(ctx, userID, seriesID)
	if err != nil {
		return 0, fmt.Errorf("deleting series: %w", err)
	}

	if n == 0 {
		return 0, fmt.Errorf("series %s: %w", seriesID, apperr.ErrNotFound)
	}

	return n, nil
}

// Summary is the monthly dashboard of one user.
type Summary struct {
	Year           int
	Month          time.Month
	Income         decimal.Decimal
	Expense        decimal.Decimal
	PaidIncome     decimal.Decimal
	PaidExpense    decimal.Decimal
	PendingIncome  decimal.Decimal
	PendingExpense decimal.Decimal
	Balance        decimal.Decimal
	// Projected* estimate next month from open-ended recurring transactions.
	ProjectedIncome  decimal.Decimal
	ProjectedExpense decimal.Decimal
}

func (s *Service) Summary(ctx context.Context, userID uuid.UUID, year int, month time.Month) (*Summary, error) {
	if month < time.January || month > time.December {
		return nil, apperr.Invalid("month", "must be between 1 and 12")
	}

	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	last := to.AddDate(0, 0, -1)

	txs, err := s.repo.ListTransactions(ctx, ListFilter{UserID: userID, From: &from, To: &last})
	if err != nil {
		return nil, fmt.Errorf("listing month: %w", err)
	}

	sum := &Summary{
		Year:           year,
		Month:          month,
		Income:         decimal.Zero,
		Expense:        decimal.Zero,
		PaidIncome:     decimal.Zero,
		PaidExpense:    decimal.Zero,
		PendingIncome:  decimal.Zero,
		PendingExpense: decimal.Zero,
	}

	for _, tx := range txs {
		paid := tx.Status == StatusPaid

		switch tx.Type {
		case TypeIncome:
			sum.Income = sum.Income.Add(tx.Amount)
			if paid {
				sum.PaidIncome = sum.PaidIncome.Add(tx.Amount)
			} else {
				sum.PendingIncome = sum.PendingIncome.Add(tx.Amount)
			}
		case TypeExpense:
			sum.Expense = sum.Expense.Add(tx.Amount)
			if paid {
				sum.PaidExpense = sum.PaidExpense.Add(tx.Amount)
			} else {
				sum.PendingExpense = sum.PendingExpense.Add(tx.Amount)
			}
		}
	}

	sum.Balance = sum.Income.Sub(sum.Expense)

	templates, err := s.repo.ListOpenEnded(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing recurring templates: %w", err)
	}

	sum.ProjectedIncome, sum.ProjectedExpense = Project(templates, to, to.AddDate(0, 1, 0))

	return sum, nil
}
