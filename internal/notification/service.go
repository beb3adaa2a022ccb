package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/atacadao/internal/apperr"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=notification
type Repository interface {
	CreateNotification(ctx context.Context, n *Notification) error
	ListNotifications(ctx context.Context, recipientID uuid.UUID, unreadOnly bool) ([]*Notification, error)
	// MarkRead and DeleteNotification match on both id and recipient so a
	// user can never touch someone else's notification.
	MarkRead(ctx context.Context, recipientID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error)
	DeleteNotification(ctx context.Context, recipientID, id uuid.UUID) error
	DeleteAllNotifications(ctx context.Context, recipientID uuid.UUID) (int64, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create stores a new unread notification.
func (s *Service) Create(ctx context.Context, n *Notification) error {
	if n.RecipientID == uuid.Nil {
		return apperr.Invalid("recipient_id", "required")
	}

	if n.Title == "" {
		return apperr.Invalid("title", "required")
	}

	n.Read = false
	if err := s.repo.CreateNotification(ctx, n); err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}

	return nil
}

func (s *Service) List(ctx context.Context, recipientID uuid.UUID, unreadOnly bool) ([]*Notification, error) {
	return s.repo.ListNotifications(ctx, recipientID, unreadOnly)
}

// UnreadCount is what the bell badge shows.
func (s *Service) UnreadCount(ctx context.Context, recipientID uuid.UUID) (int, error) {
	ns, err := s.repo.ListNotifications(ctx, recipientID, true)
	if err != nil {
		return 0, err
	}

	return len(ns), nil
}

func (s *Service) MarkRead(ctx context.Context, recipientID, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, recipientID, id)
}

func (s *Service) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	return s.repo.MarkAllRead(ctx, recipientID)
}

func (s *Service) Delete(ctx context.Context, recipientID, id uuid.UUID) error {
	return s.repo.DeleteNotification(ctx, recipientID, id)
}

func (s *Service) DeleteAll(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	return s.repo.DeleteAllNotifications(ctx, recipientID)
}
