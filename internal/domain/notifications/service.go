package notifications

import (
	"context"
	"log/slog"
)

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

// Service records in-app notifications and mirrors them over email when a
// mailer is configured. Its Notify method satisfies the notifier capability
// the leave service expects.
type Service struct {
	store       StoreAPI
	Mailer      Mailer
	DefaultFrom string
}

func New(store StoreAPI, mailer Mailer, defaultFrom string) *Service {
	return &Service{store: store, Mailer: mailer, DefaultFrom: defaultFrom}
}

func (s *Service) Notify(ctx context.Context, tenantID, recipientID, eventType, title, message, deepLink string, metadata map[string]any) error {
	n := Notification{
		Type:     eventType,
		Title:    title,
		Body:     message,
		DeepLink: deepLink,
		Metadata: metadata,
	}
	if err := s.store.CreateNotification(ctx, tenantID, recipientID, n); err != nil {
		return err
	}

	if s.Mailer == nil {
		return nil
	}
	email, err := s.store.UserEmail(ctx, tenantID, recipientID)
	if err != nil {
		slog.Warn("notification email lookup failed", "err", err)
		return nil
	}
	if email == "" {
		return nil
	}
	if err := s.Mailer.Send(ctx, s.DefaultFrom, email, title, message); err != nil {
		slog.Warn("notification email send failed", "err", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, tenantID, userID string, unreadOnly bool, limit, offset int) ([]Notification, error) {
	return s.store.ListNotifications(ctx, tenantID, userID, unreadOnly, limit, offset)
}

func (s *Service) UnreadCount(ctx context.Context, tenantID, userID string) (int, error) {
	return s.store.CountUnread(ctx, tenantID, userID)
}

func (s *Service) MarkRead(ctx context.Context, tenantID, userID, notificationID string) error {
	return s.store.MarkRead(ctx, tenantID, userID, notificationID)
}

func (s *Service) MarkAllRead(ctx context.Context, tenantID, userID string) error {
	return s.store.MarkAllRead(ctx, tenantID, userID)
}
