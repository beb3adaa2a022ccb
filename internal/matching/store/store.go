package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/atacadao/internal/apperr"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// findCategoryQuery matches patterns as literal substrings, so % and _ in a
// learned pattern are plain characters.
const findCategoryQuery = `
	SELECT category
	FROM category_rules
	WHERE user_id = $1 AND strpos(lower($2), lower(pattern)) > 0
	ORDER BY LENGTH(pattern) DESC, created_at DESC
	LIMIT 1
`

func (s *Store) FindCategory(ctx context.Context, userID uuid.UUID, description string) (string, error) {
	var category string

	err := s.db.QueryRowContext(ctx, findCategoryQuery, userID, description).Scan(&category)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}

		return "", apperr.Persistence("finding category", err)
	}

	return category, nil
}

// CreateRule replaces the category of an existing pattern of the same user.
func (s *Store) CreateRule(ctx context.Context, userID uuid.UUID, pattern, category string) error {
	query := `
		INSERT INTO category_rules (user_id, pattern, category, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, pattern) DO UPDATE SET category = EXCLUDED.category, created_at = NOW()
	`

	if _, err := s.db.ExecContext(ctx, query, userID, pattern, category); err != nil {
		return apperr.Persistence("creating category rule", err)
	}

	return nil
}
