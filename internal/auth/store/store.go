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
	"github.com/MrJamesThe3rd/atacadao/internal/auth"
	"github.com/MrJamesThe3rd/atacadao/internal/identity"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectUserColumns = `id, email, name, role, password_hash, email_verified, created_at, updated_at`

func scanUser(row *sql.Row) (*auth.User, error) {
	var (
		u    auth.User
		role string
	)

	if err := row.Scan(&u.ID, &u.Email, &u.Name, &role, &u.PasswordHash, &u.EmailVerified, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}

	u.Role = identity.Role(role)
	if !u.Role.Valid() {
		return nil, fmt.Errorf("user %s has role %q: %w", u.ID, role, apperr.ErrMalformedDocument)
	}

	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *auth.User) error {
	query := `
		INSERT INTO users (email, name, role, password_hash, email_verified, created_at)
		VALUES ($1, $2, $3, $4, FALSE, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, u.Email, u.Name, u.Role, u.PasswordHash).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("email %s already registered: %w", u.Email, apperr.ErrConflict)
		}

		return apperr.Persistence("creating user", err)
	}

	return nil
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	return s.get(ctx, `SELECT `+selectUserColumns+` FROM users WHERE id = $1`, id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	return s.get(ctx, `SELECT `+selectUserColumns+` FROM users WHERE email = $1`, email)
}

func (s *Store) get(ctx context.Context, query string, arg any) (*auth.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %v: %w", arg, apperr.ErrNotFound)
		}

		if errors.Is(err, apperr.ErrMalformedDocument) {
			return nil, err
		}

		return nil, apperr.Persistence("getting user", err)
	}

	return u, nil
}

func (s *Store) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`, hash, id)
	if err != nil {
		return apperr.Persistence("updating password", err)
	}

	return expectOne(res, id)
}

func (s *Store) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET email_verified = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return apperr.Persistence("verifying email", err)
	}

	return expectOne(res, id)
}

func expectOne(res sql.Result, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Persistence("counting affected rows", err)
	}

	if n == 0 {
		return fmt.Errorf("user %s: %w", id, apperr.ErrNotFound)
	}

	return nil
}
