package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/atacadao/internal/advisor"
	"github.com/MrJamesThe3rd/atacadao/internal/transaction"
)

type recurrenceResponse struct {
	Frequency transaction.Frequency `json:"frequency"`
	Count     *int                  `json:"count,omitempty"`
}

type transactionResponse struct {
	ID            uuid.UUID           `json:"id"`
	Description   string              `json:"description"`
	Amount        decimal.Decimal     `json:"amount"`
	Type          transaction.Type    `json:"type"`
	Category      string              `json:"category,omitempty"`
	DueDate       string              `json:"due_date"`
	Status        transaction.Status  `json:"status"`
	PaymentMethod string              `json:"payment_method,omitempty"`
	IsRecurring   bool                `json:"is_recurring"`
	Recurrence    *recurrenceResponse `json:"recurrence,omitempty"`
	Observation   string              `json:"observation,omitempty"`
	SeriesID      *uuid.UUID          `json:"series_id,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     *time.Time          `json:"updated_at,omitempty"`
}

func toResponse(tx *transaction.Transaction) transactionResponse {
	resp := transactionResponse{
		ID:            tx.ID,
		Description:   tx.Description,
		Amount:        tx.Amount,
		Type:          tx.Type,
		Category:      tx.Category,
		DueDate:       tx.DueDate.Format(time.DateOnly),
		Status:        tx.Status,
		PaymentMethod: tx.PaymentMethod,
		IsRecurring:   tx.IsRecurring,
		Observation:   tx.Observation,
		SeriesID:      tx.SeriesID,
		CreatedAt:     tx.CreatedAt,
		UpdatedAt:     tx.UpdatedAt,
	}

	if tx.Recurrence != nil {
		resp.Recurrence = &recurrenceResponse{Frequency: tx.Recurrence.Frequency, Count: tx.Recurrence.Count}
	}

	return resp
}

func toResponseList(txs []*transaction.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx)
	}

	return resp
}

type summaryResponse struct {
	Year             int             `json:"year"`
	Month            int             `json:"month"`
	Income           decimal.Decimal `json:"income"`
	Expense          decimal.Decimal `json:"expense"`
	PaidIncome       decimal.Decimal `json:"paid_income"`
	PaidExpense      decimal.Decimal `json:"paid_expense"`
	PendingIncome    decimal.Decimal `json:"pending_income"`
	PendingExpense   decimal.Decimal `json:"pending_expense"`
	Balance          decimal.Decimal `json:"balance"`
	ProjectedIncome  decimal.Decimal `json:"projected_income"`
	ProjectedExpense decimal.Decimal `json:"projected_expense"`
}

func toSummaryResponse(s *transaction.Summary) summaryResponse {
	return summaryResponse{
		Year:             s.Year,
		Month:            int(s.Month),
		Income:           s.Income,
		Expense:          s.Expense,
		PaidIncome:       s.PaidIncome,
		PaidExpense:      s.PaidExpense,
		PendingIncome:    s.PendingIncome,
		PendingExpense:   s.PendingExpense,
		Balance:          s.Balance,
		ProjectedIncome:  s.ProjectedIncome,
		ProjectedExpense: s.ProjectedExpense,
	}
}

type tipResponse struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func toTipsResponse(tips []advisor.Tip) []tipResponse {
	resp := make([]tipResponse, len(tips))
	for i, t := range tips {
		resp[i] = tipResponse{Title: t.Title, Body: t.Body}
	}

	return resp
}
