package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/atacadao/internal/apperr"
	"github.com/MrJamesThe3rd/atacadao/internal/notification"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateNotification(ctx context.Context, n *notification.Notification) error {
	query := `
		INSERT INTO notifications (recipient_id, order_id, type, title, message, read, created_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, NOW())
		RETURNING id, created_at
	`

	var orderID *uuid.UUID
	if n.OrderID != uuid.Nil {
		orderID = &n.OrderID
	}

	err := s.db.QueryRowContext(ctx, query, n.RecipientID, orderID, n.Type, n.Title, n.Message).
		Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return apperr.Persistence("creating notification", err)
	}

	return nil
}

func (s *Store) ListNotifications(ctx context.Context, recipientID uuid.UUID, unreadOnly bool) ([]*notification.Notification, error) {
	query := `
		SELECT id, recipient_id, order_id, type, title, message, read, created_at
		FROM notifications
		WHERE recipient_id = $1`

	if unreadOnly {
		query += " AND NOT read"
	}

	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, recipientID)
	if err != nil {
		return nil, apperr.Persistence("listing notifications", err)
	}
	defer rows.Close()

	var ns []*notification.Notification

	for rows.Next() {
		var (
			n       notification.Notification
			orderID *uuid.UUID
			typ     string
		)

		if err := rows.Scan(&n.ID, &n.RecipientID, &orderID, &typ, &n.Title, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, apperr.Persistence("scanning notification", err)
		}

		n.Type = notification.Type(typ)
		if orderID != nil {
			n.OrderID = *orderID
		}

		ns = append(ns, &n)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("iterating notifications", err)
	}

	return ns, nil
}

func (s *Store) MarkRead(ctx context.Context, recipientID, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1 AND recipient_id = $2`, id, recipientID)
	if err != nil {
		return apperr.Persistence("marking notification read", err)
	}

	return expectOne(res, id)
}

func (s *Store) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE recipient_id = $1 AND NOT read`, recipientID)
	if err != nil {
		return 0, apperr.Persistence("marking notifications read", err)
	}

	return res.RowsAffected()
}

func (s *Store) DeleteNotification(ctx context.Context, recipientID, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE id = $1 AND recipient_id = $2`, id, recipientID)
	if err != nil {
		return apperr.Persistence("deleting notification", err)
	}

	return expectOne(res, id)
}

func (s *Store) DeleteAllNotifications(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM notifications WHERE recipient_id = $1`, recipientID)
	if err != nil {
		return 0, apperr.Persistence("deleting notifications", err)
	}

	return res.RowsAffected()
}

func expectOne(res sql.Result, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Persistence("counting affected rows", err)
	}

	if n == 0 {
		return fmt.Errorf("notification %s: %w", id, apperr.ErrNotFound)
	}

	return nil
}
