package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrJamesThe3rd/atacadao/internal/apperr"
	"github.com/MrJamesThe3rd/atacadao/internal/catalog"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectProductColumns = `id, code, description, unit, unit_price, active, created_at, updated_at`

func scanProduct(s scanner) (*catalog.Product, error) {
	var p catalog.Product

	if err := s.Scan(&p.ID, &p.Code, &p.Description, &p.Unit, &p.UnitPrice, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}

	return &p, nil
}

func (s *Store) CreateProduct(ctx context.Context, p *catalog.Product) error {
	query := `
		INSERT INTO products (code, description, unit, unit_price, active, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, p.Code, p.Description, p.Unit, p.UnitPrice, p.Active).
		Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("product code %s already exists: %w", p.Code, apperr.ErrConflict)
		}

		return apperr.Persistence("creating product", err)
	}

	return nil
}

func (s *Store) GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	query := `SELECT ` + selectProductColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product %s: %w", id, apperr.ErrNotFound)
		}

		return nil, apperr.Persistence("getting product", err)
	}

	return p, nil
}

func (s *Store) ListProducts(ctx context.Context, filter catalog.ListFilter) ([]*catalog.Product, error) {
	query := `SELECT ` + selectProductColumns + ` FROM products WHERE TRUE`

	var args []any

	if filter.ActiveOnly {
		query += " AND active"
	}

	if filter.Search != "" {
		args = append(args, filter.Search)
		query += fmt.Sprintf(" AND (strpos(lower(description), lower($%d)) > 0 OR code = $%d)", len(args), len(args))
	}

	query += " ORDER BY description ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Persistence("listing products", err)
	}
	defer rows.Close()

	var ps []*catalog.Product

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, apperr.Persistence("scanning product", err)
		}

		ps = append(ps, p)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("iterating products", err)
	}

	return ps, nil
}

func (s *Store) UpdateProduct(ctx context.Context, p *catalog.Product) error {
	query := `
		UPDATE products
		SET description = $1, unit = $2, unit_price = $3, active = $4, updated_at = NOW()
		WHERE id = $5
	`

	res, err := s.db.ExecContext(ctx, query, p.Description, p.Unit, p.UnitPrice, p.Active, p.ID)
	if err != nil {
		return apperr.Persistence("updating product", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("product %s: %w", p.ID, apperr.ErrNotFound)
	}

	return nil
}

// UpsertProducts writes every product in one transaction keyed by code and
// reports how many rows were inserted rather than updated.
func (s *Store) UpsertProducts(ctx context.Context, ps []*catalog.Product) (int, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, apperr.Persistence("beginning upsert", err)
	}
	defer dbTx.Rollback()

	query := `
		INSERT INTO products (code, description, unit, unit_price, active, created_at)
		VALUES ($1, $2, $3, $4, TRUE, NOW())
		ON CONFLICT (code) DO UPDATE
		SET description = EXCLUDED.description, unit = EXCLUDED.unit,
		    unit_price = EXCLUDED.unit_price, active = TRUE, updated_at = NOW()
		RETURNING id, created_at, (xmax = 0) AS inserted
	`

	created := 0

	for _, p := range ps {
		var inserted bool
		if err := dbTx.QueryRowContext(ctx, query, p.Code, p.Description, p.Unit, p.UnitPrice).
			Scan(&p.ID, &p.CreatedAt, &inserted); err != nil {
			return 0, apperr.Persistence("upserting product "+p.Code, err)
		}

		if inserted {
			created++
		}
	}

	if err := dbTx.Commit(); err != nil {
		return 0, apperr.Persistence("committing upsert", err)
	}

	return created, nil
}
