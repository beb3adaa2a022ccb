// Package matching learns which category a user gives to a description and
// suggests it the next time a similar transaction is created.
package matching

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/atacadao/internal/apperr"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=matching
type Repository interface {
	// FindCategory returns the category of the longest pattern of userID
	// contained in description, or "" when none matches.
	FindCategory(ctx context.Context, userID uuid.UUID, description string) (string, error)
	CreateRule(ctx context.Context, userID uuid.UUID, pattern, category string) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest tries to find a category for the given description.
// Returns empty string if no rule matches.
func (s *Service) Suggest(ctx context.Context, userID uuid.UUID, description string) (string, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return "", nil
	}

	return s.repo.FindCategory(ctx, userID, description)
}

// Learn remembers that descriptions containing pattern belong to category.
func (s *Service) Learn(ctx context.Context, userID uuid.UUID, pattern, category string) error {
	pattern = strings.TrimSpace(pattern)
	category = strings.TrimSpace(category)

	if len([]rune(pattern)) < 3 {
		return apperr.Invalid("pattern", "must have at least 3 characters")
	}

	if category == "" {
		return apperr.Invalid("category", "required")
	}

	return s.repo.CreateRule(ctx, userID, pattern, category)
}
