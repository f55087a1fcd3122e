package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"campushr/internal/domain/notifications"
	"campushr/internal/platform/config"
)

// Sender delivers notification mail over SMTP. Connection parameters are
// captured at construction so the rest of the app never sees SMTP config.
type Sender struct {
	host     string
	addr     string
	user     string
	password string
	useTLS   bool
	timeout  time.Duration
}

type disabled struct{}

func (disabled) Send(context.Context, string, string, string, string) error { return nil }

// New returns an SMTP sender, or a no-op one when delivery is disabled.
func New(cfg config.Config) notifications.Mailer {
	if !cfg.EmailEnabled || cfg.SMTPHost == "" {
		return disabled{}
	}
	return &Sender{
		host:     cfg.SMTPHost,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		useTLS:   cfg.SMTPUseTLS,
		timeout:  10 * time.Second,
	}
}

func (s *Sender) Send(ctx context.Context, from, to, subject, body string) error {
	if strings.TrimSpace(to) == "" {
		return nil
	}

	client, err := s.connect(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := s.submit(client, from, to, subject, body); err != nil {
		return err
	}
	return client.Quit()
}

func (s *Sender) connect(ctx context.Context) (*smtp.Client, error) {
	dialer := net.Dialer{Timeout: s.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", s.addr)
	if err != nil {
		return nil, err
	}

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return nil, err
	}

	if s.useTLS {
		if err := client.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
			client.Close()
			return nil, err
		}
	}
	if s.user != "" {
		if err := client.Auth(smtp.PlainAuth("", s.user, s.password, s.host)); err != nil {
			client.Close()
			return nil, err
		}
	}
	return client, nil
}

func (s *Sender) submit(client *smtp.Client, from, to, subject, body string) error {
	if err := client.Mail(from); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(compose(from, to, subject, body)); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func compose(from, to, subject, body string) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	fmt.Fprintf(&buf, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(body)
	return buf.Bytes()
}
