package notifications

import "context"

type StoreAPI interface {
	CreateNotification(ctx context.Context, tenantID, userID string, n Notification) error
	UserEmail(ctx context.Context, tenantID, userID string) (string, error)
	ListNotifications(ctx context.Context, tenantID, userID string, unreadOnly bool, limit, offset int) ([]Notification, error)
	CountUnread(ctx context.Context, tenantID, userID string) (int, error)
	MarkRead(ctx context.Context, tenantID, userID, notificationID string) error
	MarkAllRead(ctx context.Context, tenantID, userID string) error
}
