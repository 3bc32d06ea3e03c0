// Package mail sends transactional email over SMTP. Delivery is best
// effort: callers log failures and continue, they never fail the request.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
)

// Mailer sends a plain-text message to a single recipient.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPMailer delivers mail through a standard SMTP relay with optional
// PLAIN authentication.
type SMTPMailer struct {
	host   string
	port   int
	from   string
	auth   smtp.Auth
	logger *slog.Logger
}

// NewSMTPMailer creates a mailer for the given relay. Username may be
// empty for relays that accept unauthenticated local submission.
func NewSMTPMailer(host string, port int, from, username, password string, logger *slog.Logger) *SMTPMailer {
	if logger == nil {
		logger = slog.Default()
	}

	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	return &SMTPMailer{
		host:   host,
		port:   port,
		from:   from,
		auth:   auth,
		logger: logger.With(slog.String("component", "smtp_mailer")),
	}
}

// Send implements Mailer.Send
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	if err := smtp.SendMail(addr, m.auth, m.from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}

	m.logger.Debug("mail sent", slog.String("to", to), slog.String("subject", subject))
	return nil
}

// NoopMailer discards all messages. Used when no SMTP relay is configured
// and in tests.
type NoopMailer struct{}

// Send implements Mailer.Send
func (NoopMailer) Send(ctx context.Context, to, subject, body string) error {
	return nil
}

var (
	_ Mailer = (*SMTPMailer)(nil)
	_ Mailer = NoopMailer{}
)
