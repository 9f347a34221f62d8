package mail

import (
	"context"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type captured struct {
	addr string
	from string
	to   []string
	msg  []byte
}

func newCapturingMailer() (*Mailer, *captured) {
	m := New(Config{Host: "smtp.test", Port: 2525, From: "noreply@tradewind.test"})
	cap := &captured{}
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		cap.addr = addr
		cap.from = from
		cap.to = to
		cap.msg = msg
		return nil
	}
	return m, cap
}

func TestSendPasswordReset(t *testing.T) {
	m, cap := newCapturingMailer()

	err := m.SendPasswordReset(context.Background(), "user@acme.test", "https://app.tradewind.test/reset-password?token=abc")
	require.NoError(t, err)
	require.Equal(t, "smtp.test:2525", cap.addr)
	require.Equal(t, []string{"user@acme.test"}, cap.to)

	msg := string(cap.msg)
	require.Contains(t, msg, "Subject: Password reset")
	require.Contains(t, msg, "reset-password?token=abc")
	require.Contains(t, msg, "can be used once")
}

func TestSendDocumentAttachesPDF(t *testing.T) {
	m, cap := newCapturingMailer()

	pdf := []byte("%PDF-1.7 fake")
	err := m.SendDocument(context.Background(), "orders@acme.test", "Quote QT-2608-0001", "Please find your quote attached.", "quote.pdf", pdf)
	require.NoError(t, err)

	msg := string(cap.msg)
	require.Contains(t, msg, "multipart/mixed")
	require.Contains(t, msg, `filename="quote.pdf"`)
	require.Contains(t, msg, "Content-Type: application/pdf")
	require.True(t, strings.Contains(msg, "JVBERi0xLjcgZmFrZQ=="), "attachment is base64 encoded")
}
