package notifications

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("notification not found")

func (s *Store) CreateNotification(ctx context.Context, tenantID, userID string, n Notification) error {
	metadata, err := json.Marshal(n.Metadata)
	if err != nil {
		return err
	}
	_, err = s.DB.Exec(ctx, `
    INSERT INTO notifications (tenant_id, user_id, type, title, body, deep_link, metadata)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
  `, tenantID, userID, n.Type, n.Title, n.Body, nullIfEmpty(n.DeepLink), metadata)
	return err
}

func (s *Store) UserEmail(ctx context.Context, tenantID, userID string) (string, error) {
	var email string
	err := s.DB.QueryRow(ctx, "SELECT email FROM users WHERE tenant_id = $1 AND id = $2", tenantID, userID).Scan(&email)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return email, nil
}

func (s *Store) ListNotifications(ctx context.Context, tenantID, userID string, unreadOnly bool, limit, offset int) ([]Notification, error) {
	query := `
    SELECT id, type, title, body, COALESCE(deep_link, ''), metadata, read_at, created_at
    FROM notifications
    WHERE tenant_id = $1 AND user_id = $2`
	if unreadOnly {
		query += " AND read_at IS NULL"
	}
	query += `
    ORDER BY created_at DESC
    LIMIT $3 OFFSET $4`

	rows, err := s.DB.Query(ctx, query, tenantID, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		var metadata []byte
		if err := rows.Scan(&n.ID, &n.Type, &n.Title, &n.Body, &n.DeepLink, &metadata, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &n.Metadata); err != nil {
				return nil, err
			}
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) CountUnread(ctx context.Context, tenantID, userID string) (int, error) {
	var total int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM notifications
    WHERE tenant_id = $1 AND user_id = $2 AND read_at IS NULL
  `, tenantID, userID).Scan(&total)
	return total, err
}

func (s *Store) MarkRead(ctx context.Context, tenantID, userID, notificationID string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE notifications SET read_at = now()
    WHERE tenant_id = $1 AND user_id = $2 AND id = $3
  `, tenantID, userID, notificationID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) MarkAllRead(ctx context.Context, tenantID, userID string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE notifications SET read_at = now()
    WHERE tenant_id = $1 AND user_id = $2 AND read_at IS NULL
  `, tenantID, userID)
	return err
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
