// Package advisor asks a generative model for financial tips and for product
// data extracted from supplier price lists. Model output is never trusted:
// it is decoded strictly and validated, and any defect discards all of it.
package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/atacadao/internal/apperr"
	"github.com/MrJamesThe3rd/atacadao/internal/transaction"
)

var (
	ErrMalformedResponse = fmt.Errorf("malformed model response: %w", apperr.ErrMalformedDocument)
	// ErrDisabled is returned when no model is configured.
	ErrDisabled = errors.New("advisor disabled")
)

const maxExtractInput = 20000

// Client produces raw JSON for prompt, shaped by schema.
type Client interface {
	Generate(ctx context.Context, prompt string, schema map[string]any) ([]byte, error)
}

type Service struct {
	client   Client
	validate *validator.Validate
}

// NewService accepts a nil client; every call then fails with ErrDisabled.
func NewService(client Client) *Service {
	return &Service{client: client, validate: validator.New(validator.WithRequiredStructEnabled())}
}

type Tip struct {
	Title string `json:"title" validate:"required,max=80"`
	Body  string `json:"body" validate:"required,max=600"`
}

type tipsEnvelope struct {
	Tips []Tip `json:"tips" validate:"required,min=1,max=5,dive"`
}

var tipsSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"tips": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title": map[string]any{"type": "string"},
					"body":  map[string]any{"type": "string"},
				},
				"required": []string{"title", "body"},
			},
		},
	},
	"required": []string{"tips"},
}

// Tips suggests up to five actions for the month in sum.
func (s *Service) Tips(ctx context.Context, sum *transaction.Summary) ([]Tip, error) {
	if s.client == nil {
		return nil, ErrDisabled
	}

	prompt := fmt.Sprintf(`Você é um consultor financeiro pessoal. Com base no resumo de %02d/%d abaixo,
dê de 1 a 5 dicas curtas e práticas em português.
Receitas: %s (pagas %s, pendentes %s)
Despesas: %s (pagas %s, pendentes %s)
Saldo: %s
Previsão do próximo mês: receitas %s, despesas %s`,
		int(sum.Month), sum.Year,
		sum.Income.StringFixed(2), sum.PaidIncome.StringFixed(2), sum.PendingIncome.StringFixed(2),
		sum.Expense.StringFixed(2), sum.PaidExpense.StringFixed(2), sum.PendingExpense.StringFixed(2),
		sum.Balance.StringFixed(2),
		sum.ProjectedIncome.StringFixed(2), sum.ProjectedExpense.StringFixed(2),
	)

	raw, err := s.client.Generate(ctx, prompt, tipsSchema)
	if err != nil {
		return nil, fmt.Errorf("generating tips: %w", err)
	}

	var env tipsEnvelope
	if err := s.decode(raw, &env); err != nil {
		slog.Warn("discarding model tips", "error", err)
		return nil, err
	}

	return env.Tips, nil
}

// ProductDraft is a product proposed by the model. It is never saved
// directly; a manager reviews it first.
type ProductDraft struct {
	Code        string          `json:"code" validate:"required,max=40"`
	Description string          `json:"description" validate:"required,max=200"`
	Unit        string          `json:"unit" validate:"max=10"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type productsEnvelope struct {
	Products []ProductDraft `json:"products" validate:"max=500,dive"`
}

var productsSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"products": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"code":        map[string]any{"type": "string"},
					"description": map[string]any{"type": "string"},
					"unit":        map[string]any{"type": "string"},
					"unit_price":  map[string]any{"type": "string"},
				},
				"required": []string{"code", "description", "unit_price"},
			},
		},
	},
	"required": []string{"products"},
}

// ExtractProducts reads a free-form supplier price list.
func (s *Service) ExtractProducts(ctx context.Context, text string) ([]ProductDraft, error) {
	if s.client == nil {
		return nil, ErrDisabled
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Invalid("text", "required")
	}

	if len(text) > maxExtractInput {
		return nil, apperr.Invalid("text", fmt.Sprintf("at most %d bytes", maxExtractInput))
	}

	prompt := `Extraia os produtos da tabela de preços abaixo. Para cada produto informe código, descrição,
unidade e preço unitário como número decimal com ponto (ex.: "1234.56"). Não invente produtos.

` + text

	raw, err := s.client.Generate(ctx, prompt, productsSchema)
	if err != nil {
		return nil, fmt.Errorf("extracting products: %w", err)
	}

	var env productsEnvelope
	if err := s.decode(raw, &env); err != nil {
		slog.Warn("discarding model products", "error", err)
		return nil, err
	}

	for i, p := range env.Products {
		if p.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: product %d has negative price", ErrMalformedResponse, i)
		}
	}

	return env.Products, nil
}

func (s *Service) decode(raw []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	if dec.More() {
		return fmt.Errorf("%w: trailing data", ErrMalformedResponse)
	}

	if err := s.validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	return nil
}
