package email

import (
	"context"
	"strings"
	"testing"

	"campushr/internal/platform/config"
)

func TestNewReturnsDisabledSenderWithoutHost(t *testing.T) {
	mailer := New(config.Config{EmailEnabled: true, SMTPHost: ""})
	if err := mailer.Send(context.Background(), "a@x", "b@y", "s", "b"); err != nil {
		t.Fatalf("disabled sender must swallow sends, got %v", err)
	}

	mailer = New(config.Config{EmailEnabled: false, SMTPHost: "smtp.local"})
	if _, ok := mailer.(disabled); !ok {
		t.Fatal("expected disabled sender when email is switched off")
	}
}

func TestComposeMessage(t *testing.T) {
	msg := string(compose("hr@campus.local", "asha@campus.local", "Leave approved", "Enjoy your leave."))

	header, body, ok := strings.Cut(msg, "\r\n\r\n")
	if !ok {
		t.Fatal("expected blank line between headers and body")
	}
	for _, want := range []string{
		"From: hr@campus.local",
		"To: asha@campus.local",
		"Subject: Leave approved",
		"Date: ",
		"Content-Type: text/plain",
	} {
		if !strings.Contains(header, want) {
			t.Fatalf("expected header %q in %q", want, header)
		}
	}
	if body != "Enjoy your leave." {
		t.Fatalf("unexpected body %q", body)
	}
}
