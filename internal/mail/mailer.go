// Package mail delivers transactional email over SMTP: password reset links
// and rendered documents with their PDF attached.
package mail

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/smtp"
	"strings"
)

// Sender abstracts smtp.SendMail for testing.
type Sender func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer sends mail through one configured SMTP relay.
type Mailer struct {
	addr string
	from string
	auth smtp.Auth
	send Sender
}

// Config carries SMTP settings. Username may be empty for relays that accept
// unauthenticated submission (local dev, Mailpit).
type Config struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string
}

// New constructs a Mailer.
func New(cfg Config) *Mailer {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &Mailer{
		addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		from: cfg.From,
		auth: auth,
		send: smtp.SendMail,
	}
}

// SendPasswordReset mails the single-use reset link.
func (m *Mailer) SendPasswordReset(ctx context.Context, to, link string) error {
	body := "A password reset was requested for your account.\r\n\r\n" +
		"Open the link below to choose a new password. The link expires in one hour\r\n" +
		"and can be used once.\r\n\r\n" + link + "\r\n\r\n" +
		"If you did not request this, no action is needed.\r\n"
	msg := m.plainMessage(to, "Password reset", body)
	return m.send(m.addr, m.auth, m.from, []string{to}, msg)
}

// SendDocument mails a rendered PDF as an attachment.
func (m *Mailer) SendDocument(ctx context.Context, to, subject, body, filename string, pdf []byte) error {
	msg := m.attachmentMessage(to, subject, body, filename, pdf)
	return m.send(m.addr, m.auth, m.from, []string{to}, msg)
}

func (m *Mailer) plainMessage(to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

const mimeBoundary = "tradewind-mime-boundary"

func (m *Mailer) attachmentMessage(to, subject, body, filename string, pdf []byte) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/mixed; boundary=%s\r\n", mimeBoundary)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", mimeBoundary)
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", mimeBoundary)
	b.WriteString("Content-Type: application/pdf\r\n")
	b.WriteString("Content-Transfer-Encoding: base64\r\n")
	fmt.Fprintf(&b, "Content-Disposition: attachment; filename=%q\r\n\r\n", filename)

	encoded := base64.StdEncoding.EncodeToString(pdf)
	for len(encoded) > 76 {
		b.WriteString(encoded[:76])
		b.WriteString("\r\n")
		encoded = encoded[76:]
	}
	b.WriteString(encoded)
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "--%s--\r\n", mimeBoundary)
	return []byte(b.String())
}
