package notifications

import (
	"context"
	"errors"
	"testing"
)

type fakeNotificationStore struct {
	created  []Notification
	emails   map[string]string
	emailErr error
}

func (f *fakeNotificationStore) CreateNotification(_ context.Context, _, _ string, n Notification) error {
	f.created = append(f.created, n)
	return nil
}

func (f *fakeNotificationStore) UserEmail(_ context.Context, _, userID string) (string, error) {
	if f.emailErr != nil {
		return "", f.emailErr
	}
	return f.emails[userID], nil
}

func (f *fakeNotificationStore) ListNotifications(_ context.Context, _, _ string, _ bool, _, _ int) ([]Notification, error) {
	return f.created, nil
}

func (f *fakeNotificationStore) CountUnread(_ context.Context, _, _ string) (int, error) {
	return len(f.created), nil
}

func (f *fakeNotificationStore) MarkRead(_ context.Context, _, _, _ string) error { return nil }

func (f *fakeNotificationStore) MarkAllRead(_ context.Context, _, _ string) error { return nil }

type fakeMailer struct {
	sent []string
}

func (f *fakeMailer) Send(_ context.Context, _, to, _, _ string) error {
	f.sent = append(f.sent, to)
	return nil
}

func TestNotifyRecordsAndMirrorsEmail(t *testing.T) {
	store := &fakeNotificationStore{emails: map[string]string{"user-1": "asha@example.com"}}
	mailer := &fakeMailer{}
	svc := New(store, mailer, "no-reply@campus.example.com")

	err := svc.Notify(context.Background(), "t1", "user-1", "leave_approved", "Leave approved", "Your leave was approved", "/leave/applications/app-1", map[string]any{"applicationId": "app-1"})
	if err != nil {
		t.Fatalf("notify failed: %v", err)
	}
	if len(store.created) != 1 || store.created[0].Type != "leave_approved" {
		t.Fatalf("expected one stored notification, got %+v", store.created)
	}
	if store.created[0].DeepLink != "/leave/applications/app-1" {
		t.Fatalf("deep link not stored: %+v", store.created[0])
	}
	if len(mailer.sent) != 1 || mailer.sent[0] != "asha@example.com" {
		t.Fatalf("expected one email, got %v", mailer.sent)
	}
}

func TestNotifySurvivesEmailLookupFailure(t *testing.T) {
	store := &fakeNotificationStore{emailErr: errors.New("users table unavailable")}
	svc := New(store, &fakeMailer{}, "no-reply@campus.example.com")

	if err := svc.Notify(context.Background(), "t1", "user-1", "leave_submitted", "Leave submitted", "body", "", nil); err != nil {
		t.Fatalf("notify should not fail on email lookup: %v", err)
	}
	if len(store.created) != 1 {
		t.Fatalf("in-app notification must still be recorded")
	}
}

func TestNotifyWithoutMailer(t *testing.T) {
	store := &fakeNotificationStore{}
	svc := New(store, nil, "")

	if err := svc.Notify(context.Background(), "t1", "user-1", "leave_rejected", "Leave rejected", "body", "", nil); err != nil {
		t.Fatalf("notify failed: %v", err)
	}
	if len(store.created) != 1 {
		t.Fatalf("expected stored notification")
	}
}
