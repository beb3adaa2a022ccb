package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/atacadao/internal/apperr"
	"github.com/MrJamesThe3rd/atacadao/internal/order"
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

// Names are the snapshots taken when the client and seller were set; they are
// never joined from users.
const selectOrderColumns = `
	id, client_id, client_name, seller_id, seller_name, items, total, status,
	cancel_reason, created_at, received_at, invoiced_at, updated_at, version
`

const fromOrders = ` FROM orders`

func scanOrder(s scanner) (*order.Order, error) {
	var (
		o         order.Order
		rawItems  []byte
		statusStr string
	)

	if err := s.Scan(
		&o.ID, &o.ClientID, &o.ClientName, &o.SellerID, &o.SellerName, &rawItems, &o.Total, &statusStr,
		&o.CancelReason, &o.CreatedAt, &o.ReceivedAt, &o.InvoicedAt, &o.UpdatedAt, &o.Version,
	); err != nil {
		return nil, err
	}

	o.Status = order.Status(statusStr)
	if !o.Status.Valid() {
		return nil, fmt.Errorf("order %s has status %q: %w", o.ID, statusStr, apperr.ErrMalformedDocument)
	}

	items, err := decodeItems(rawItems)
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", o.ID, err)
	}

	o.Items = items

	return &o, nil
}

func (s *Store) CreateOrder(ctx context.Context, o *order.Order) error {
	items, err := encodeItems(o.Items)
	if err != nil {
		return fmt.Errorf("encoding items: %w", err)
	}

	query := `
		INSERT INTO orders (client_id, client_name, seller_id, seller_name, items, total, status, created_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1)
		RETURNING id, version
	`

	err = s.db.QueryRowContext(ctx, query,
		o.ClientID, o.ClientName, o.SellerID, o.SellerName, items, o.Total, o.Status, o.CreatedAt,
	).Scan(&o.ID, &o.Version)
	if err != nil {
		return apperr.Persistence("creating order", err)
	}

	return nil
}

func (s *Store) GetOrder(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	query := `SELECT ` + selectOrderColumns + fromOrders + ` WHERE id = $1`

	o, err := scanOrder(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("order %s: %w", id, apperr.ErrNotFound)
		}

		if errors.Is(err, apperr.ErrMalformedDocument) {
			return nil, err
		}

		return nil, apperr.Persistence("getting order", err)
	}

	return o, nil
}

func (s *Store) ListOrders(ctx context.Context, filter order.ListFilter) ([]*order.Order, error) {
	query := `SELECT ` + selectOrderColumns + fromOrders + ` WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.ClientID != nil {
		query += fmt.Sprintf(" AND client_id = $%d", argIdx)

		args = append(args, *filter.ClientID)
		argIdx++
	}

	if filter.SellerID != nil {
		query += fmt.Sprintf(" AND seller_id = $%d", argIdx)

		args = append(args, *filter.SellerID)
		argIdx++
	}

	if filter.VisibleToSeller != nil {
		query += fmt.Sprintf(" AND (seller_id = $%d OR seller_id IS NULL)", argIdx)

		args = append(args, *filter.VisibleToSeller)
		argIdx++
	}

	if filter.From != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)

		args = append(args, *filter.From)
		argIdx++
	}

	if filter.To != nil {
		query += fmt.Sprintf(" AND created_at < $%d", argIdx)

		args = append(args, *filter.To)
	}

	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Persistence("listing orders", err)
	}
	defer rows.Close()

	var orders []*order.Order

	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			if errors.Is(err, apperr.ErrMalformedDocument) {
				return nil, err
			}

			return nil, apperr.Persistence("scanning order", err)
		}

		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("iterating orders", err)
	}

	return orders, nil
}

// SaveOrder writes the mutable fields guarded by the version column. When no
// row matches, a second lookup tells a missing order from a concurrent write.
func (s *Store) SaveOrder(ctx context.Context, o *order.Order) error {
	query := `
		UPDATE orders
		SET seller_id = $1, seller_name = $2, status = $3, cancel_reason = $4, received_at = $5, invoiced_at = $6,
		    updated_at = NOW(), version = version + 1
		WHERE id = $7 AND version = $8
		RETURNING version, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		o.SellerID, o.SellerName, o.Status, o.CancelReason, o.ReceivedAt, o.InvoicedAt, o.ID, o.Version,
	).Scan(&o.Version, &o.UpdatedAt)
	if err == nil {
		return nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return apperr.Persistence("saving order", err)
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, o.ID).Scan(&exists); err != nil {
		return apperr.Persistence("checking order", err)
	}

	if !exists {
		return fmt.Errorf("order %s: %w", o.ID, apperr.ErrNotFound)
	}

	return fmt.Errorf("order %s changed since version %d: %w", o.ID, o.Version, apperr.ErrConflict)
}

func (s *Store) DeleteAllOrders(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM orders`)
	if err != nil {
		return 0, apperr.Persistence("deleting orders", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, apperr.Persistence("counting deleted orders", err)
	}

	return n, nil
}
