// Package smtp delivers alert emails over plain SMTP.
package smtp

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strings"

	"github.com/couchcryptid/beach-safety-ingest/internal/config"
)

// Mailer sends HTML alert emails. It implements notify.Mailer.
type Mailer struct {
	addr   string
	sender string
	auth   smtp.Auth
	logger *slog.Logger
}

// NewMailer creates an SMTP mailer from config. PLAIN auth is used when a
// username is configured.
func NewMailer(cfg *config.Config, logger *slog.Logger) (*Mailer, error) {
	m := &Mailer{
		addr:   cfg.SMTPAddr,
		sender: cfg.EmailSender,
		logger: logger,
	}
	if cfg.SMTPUsername != "" {
		host, _, err := net.SplitHostPort(cfg.SMTPAddr)
		if err != nil {
			return nil, fmt.Errorf("invalid SMTP_ADDR %q: %w", cfg.SMTPAddr, err)
		}
		m.auth = smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, host)
	}
	return m, nil
}

// Send delivers one HTML email. net/smtp has no context support; the
// connection is bounded by the server-side timeouts instead.
func (m *Mailer) Send(_ context.Context, recipient, subject, htmlBody string) error {
	msg := buildMessage(m.sender, recipient, subject, htmlBody)
	if err := smtp.SendMail(m.addr, m.auth, m.sender, []string{recipient}, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", recipient, err)
	}
	return nil
}

func buildMessage(sender, recipient, subject, htmlBody string) []byte {
	var b strings.Builder
	b.WriteString("From: " + sender + "\r\n")
	b.WriteString("To: " + recipient + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}
