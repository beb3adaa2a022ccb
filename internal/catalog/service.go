package catalog

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/atacadao/internal/apperr"
	"github.com/MrJamesThe3rd/atacadao/internal/textenc"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=catalog
type Repository interface {
	CreateProduct(ctx context.Context, p *Product) error
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	ListProducts(ctx context.Context, filter ListFilter) ([]*Product, error)
	UpdateProduct(ctx context.Context, p *Product) error
	// UpsertProducts inserts or updates by code, all or nothing.
	UpsertProducts(ctx context.Context, ps []*Product) (created int, err error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type ListFilter struct {
	ActiveOnly bool
	Search     string
}

type CreateParams struct {
	Code        string
	Description string
	Unit        string
	UnitPrice   decimal.Decimal
}

func (p CreateParams) validate() error {
	if strings.TrimSpace(p.Code) == "" {
		return apperr.Invalid("code", "required")
	}

	if strings.TrimSpace(p.Description) == "" {
		return apperr.Invalid("description", "required")
	}

	if p.UnitPrice.IsNegative() {
		return apperr.Invalid("unit_price", "must not be negative")
	}

	return nil
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Product, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	p := &Product{
		Code:        strings.TrimSpace(params.Code),
		Description: strings.TrimSpace(params.Description),
		Unit:        strings.TrimSpace(params.Unit),
		UnitPrice:   params.UnitPrice,
		Active:      true,
	}
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Product, error) {
	return s.repo.GetProduct(ctx, id)
}

// Lookup returns an active product for checkout.
func (s *Service) Lookup(ctx context.Context, id uuid.UUID) (*Product, error) {
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if !p.Active {
		return nil, fmt.Errorf("product %s: %w", p.Code, apperr.Invalid("product_id", "product is inactive"))
	}

	return p, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Product, error) {
	return s.repo.ListProducts(ctx, filter)
}

type UpdateParams struct {
	Description *string
	Unit        *string
	UnitPrice   *decimal.Decimal
	Active      *bool
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Product, error) {
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Description != nil {
		if strings.TrimSpace(*params.Description) == "" {
			return nil, apperr.Invalid("description", "required")
		}

		p.Description = strings.TrimSpace(*params.Description)
	}

	if params.Unit != nil {
		p.Unit = strings.TrimSpace(*params.Unit)
	}

	if params.UnitPrice != nil {
		if params.UnitPrice.IsNegative() {
			return nil, apperr.Invalid("unit_price", "must not be negative")
		}

		p.UnitPrice = *params.UnitPrice
	}

	if params.Active != nil {
		p.Active = *params.Active
	}

	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

// Deactivate hides a product from checkout. Products are never deleted
// because orders keep referencing them.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	inactive := false
	_, err := s.Update(ctx, id, UpdateParams{Active: &inactive})

	return err
}

type ImportResult struct {
	Profile string
	Charset string
	Created int
	Updated int
}

// Import reads a supplier price list and upserts every row by product code.
func (s *Service) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	decoded, err := textenc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("decoding price list: %w", err)
	}

	rows, profile, err := ParsePriceList(decoded)
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return &ImportResult{Profile: profile, Charset: decoded.Charset}, nil
	}

	products := make([]*Product, len(rows))
	for i, row := range rows {
		products[i] = &Product{
			Code:        row.Code,
			Description: row.Description,
			Unit:        row.Unit,
			UnitPrice:   row.UnitPrice,
			Active:      true,
		}
	}

	created, err := s.repo.UpsertProducts(ctx, products)
	if err != nil {
		return nil, fmt.Errorf("upserting products: %w", err)
	}

	return &ImportResult{
		Profile: profile,
		Charset: decoded.Charset,
		Created: created,
		Updated: len(products) - created,
	}, nil
}
