package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/atacadao/internal/apperr"
	"github.com/MrJamesThe3rd/atacadao/internal/transaction"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectTransactionColumns = `
	id, user_id, description, amount, type, category, due_date, status, payment_method,
	is_recurring, recurrence_frequency, recurrence_count, observation, series_id, created_at, updated_at
`

// scanTransaction reads a row in selectTransactionColumns order. Unknown
// enum values are reported as malformed rather than passed along.
func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var (
		tx                 transaction.Transaction
		typeStr, statusStr string
		frequency          sql.NullString
		count              sql.NullInt32
	)

	if err := s.Scan(
		&tx.ID, &tx.UserID, &tx.Description, &tx.Amount, &typeStr, &tx.Category, &tx.DueDate, &statusStr,
		&tx.PaymentMethod, &tx.IsRecurring, &frequency, &count, &tx.Observation, &tx.SeriesID,
		&tx.CreatedAt, &tx.UpdatedAt,
	); err != nil {
		return nil, err
	}

	tx.Type = transaction.Type(typeStr)
	tx.Status = transaction.Status(statusStr)
	tx.DueDate = transaction.DateOnly(tx.DueDate)

	if !tx.Type.Valid() || !tx.Status.Valid() {
		return nil, fmt.Errorf("transaction %s has type %q status %q: %w", tx.ID, typeStr, statusStr, apperr.ErrMalformedDocument)
	}

	if frequency.Valid {
		tx.Recurrence = &transaction.Recurrence{Frequency: transaction.Frequency(frequency.String)}
		if !tx.Recurrence.Frequency.Valid() {
			return nil, fmt.Errorf("transaction %s has frequency %q: %w", tx.ID, frequency.String, apperr.ErrMalformedDocument)
		}

		if count.Valid {
			tx.Recurrence.Count = new(int(count.Int32))
		}
	}

	return &tx, nil
}

func recurrenceArgs(r *transaction.Recurrence) (*string, *int) {
	if r == nil {
		return nil, nil
	}

	return new(string(r.Frequency)), r.Count
}

func (s *Store) GetTransaction(ctx context.Context, userID, id uuid.UUID) (*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + ` FROM transactions WHERE id = $1 AND user_id = $2`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("transaction %s: %w", id, apperr.ErrNotFound)
		}

		if errors.Is(err, apperr.ErrMalformedDocument) {
			return nil, err
		}

		return nil, apperr.Persistence("getting transaction", err)
	}

	return tx, nil
}

func (s *Store) ListTransactions(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + ` FROM transactions WHERE user_id = $1`

	args := []any{filter.UserID}
	argIdx := 2

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.Type != nil {
		query += fmt.Sprintf(" AND type = $%d", argIdx)

		args = append(args, *filter.Type)
		argIdx++
	}

	if filter.From != nil {
		query += fmt.Sprintf(" AND due_date >= $%d", argIdx)

		args = append(args, *filter.From)
		argIdx++
	}

	if filter.To != nil {
		query += fmt.Sprintf(" AND due_date <= $%d", argIdx)

		args = append(args, *filter.To)
	}

	query += " ORDER BY due_date ASC, created_at ASC"

	return s.list(ctx, query, args...)
}

func (s *Store) ListOpenEnded(ctx context.Context, userID uuid.UUID) ([]*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions
		WHERE user_id = $1 AND is_recurring AND recurrence_frequency IS NOT NULL AND recurrence_count IS NULL
		ORDER BY due_date ASC`

	return s.list(ctx, query, userID)
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]*transaction.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Persistence("listing transactions", err)
	}
	defer rows.Close()

	var txs []*transaction.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			if errors.Is(err, apperr.ErrMalformedDocument) {
				return nil, err
			}

			return nil, apperr.Persistence("scanning transaction", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("iterating transactions", err)
	}

	return txs, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	query := `
		UPDATE transactions
		SET description = $1, amount = $2, category = $3, due_date = $4, payment_method = $5,
		    observation = $6, updated_at = NOW()
		WHERE id = $7 AND user_id = $8
		RETURNING updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		tx.Description,
		tx.Amount,
		tx.Category,
		tx.DueDate,
		tx.PaymentMethod,
		tx.Observation,
		tx.ID,
		tx.UserID,
	).Scan(&tx.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("transaction %s: %w", tx.ID, apperr.ErrNotFound)
		}

		return apperr.Persistence("updating transaction", err)
	}

	return nil
}

func (s *Store) UpdateStatus(ctx context.Context, userID, id uuid.UUID, status transaction.Status) error {
	query := `
		UPDATE transactions
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3
	`

	res, err := s.db.ExecContext(ctx, query, status, id, userID)
	if err != nil {
		return apperr.Persistence("updating status", err)
	}

	return expectOne(res, id)
}

func (s *Store) DeleteTransaction(ctx context.Context, userID, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return apperr.Persistence("deleting transaction", err)
	}

	return expectOne(res, id)
}

func (s *Store) DeleteSeries(ctx context.Context, userID, seriesID uuid.UUID) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE series_id = $1 AND user_id = $2`, seriesID, userID)
	if err != nil {
		return 0, apperr.Persistence("deleting series", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, apperr.Persistence("counting deleted rows", err)
	}

	return n, nil
}

func expectOne(res sql.Result, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Persistence("counting affected rows", err)
	}

	if n == 0 {
		return fmt.Errorf("transaction %s: %w", id, apperr.ErrNotFound)
	}

	return nil
}

// batchLockKey serialises concurrent batches of the same user.
func batchLockKey(userID uuid.UUID) int64 {
	h := fnv.New64a()
	h.Write([]byte("transactions"))
	h.Write([]byte{0})
	h.Write(userID[:])

	return int64(h.Sum64())
}

type batchTx struct {
	tx *sql.Tx
}

func (s *Store) BeginBatch(ctx context.Context, userID uuid.UUID) (transaction.BatchTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Persistence("beginning batch", err)
	}

	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", batchLockKey(userID)); err != nil {
		dbTx.Rollback()
		return nil, apperr.Persistence("acquiring batch lock", err)
	}

	return &batchTx{tx: dbTx}, nil
}

func (b *batchTx) Commit() error { return b.tx.Commit() }

// Rollback after a successful Commit is a no-op.
func (b *batchTx) Rollback() error {
	if err := b.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}

	return nil
}

func (b *batchTx) CreateTransactions(ctx context.Context, txs []*transaction.Transaction) error {
	query := `
		INSERT INTO transactions (
			user_id, description, amount, type, category, due_date, status, payment_method,
			is_recurring, recurrence_frequency, recurrence_count, observation, series_id, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
		RETURNING id, created_at
	`

	for _, tx := range txs {
		frequency, count := recurrenceArgs(tx.Recurrence)

		err := b.tx.QueryRowContext(ctx, query,
			tx.UserID,
			tx.Description,
			tx.Amount,
			tx.Type,
			tx.Category,
			tx.DueDate,
			tx.Status,
			tx.PaymentMethod,
			tx.IsRecurring,
			frequency,
			count,
			tx.Observation,
			tx.SeriesID,
		).Scan(&tx.ID, &tx.CreatedAt)
		if err != nil {
			return apperr.Persistence("creating transaction", err)
		}
	}

	return nil
}
