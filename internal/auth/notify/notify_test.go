package notify

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/url"
	"testing"
	"time"

	mail "github.com/go-mail/mail"
	"github.com/stretchr/testify/require"
	"github.com/triadacafetera/triada/pkg/slogx"
)

func TestResetLink(t *testing.T) {
	require.Equal(t, "tok", ResetLink("", "tok"))

	link := ResetLink("https://app.example.com/reset?lang=es", "a.b-c")
	u, err := url.Parse(link)
	require.NoError(t, err)
	require.Equal(t, "a.b-c", u.Query().Get("token"))
	require.Equal(t, "es", u.Query().Get("lang"))
}

func TestRenderPasswordResetText(t *testing.T) {
	exp := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	body := renderPasswordResetText(PasswordReset{Username: "alice", Token: "t", ExpiresAt: exp}, "https://x/reset?token=t")
	require.Contains(t, body, "Hello alice,")
	require.Contains(t, body, "https://x/reset?token=t")
	require.Contains(t, body, exp.Format(time.RFC1123))

	body = renderPasswordResetText(PasswordReset{Username: "alice", FullName: "Alice A"}, "l")
	require.Contains(t, body, "Hello Alice A,")
}

func TestSMTPNotifier_Send(t *testing.T) {
	n := NewSMTPNotifier(SMTPConfig{Host: "smtp.example.com", From: "noreply@example.com"})
	require.Equal(t, 587, n.cfg.Port)
	require.Equal(t, TLSModeAuto, n.cfg.TLSMode)

	var sent *mail.Message
	n.send = func(m *mail.Message) error {
		sent = m
		return nil
	}

	err := n.SendPasswordReset(context.Background(), PasswordReset{To: "alice@x.com", Username: "alice", Token: "tok"})
	require.NoError(t, err)
	require.NotNil(t, sent)
	require.Equal(t, []string{"alice@x.com"}, sent.GetHeader("To"))
	require.Equal(t, []string{"noreply@example.com"}, sent.GetHeader("From"))
}

func TestSMTPNotifier_SendError(t *testing.T) {
	n := NewSMTPNotifier(SMTPConfig{Host: "smtp.example.com", From: "noreply@example.com"})
	boom := errors.New("connection refused")
	n.send = func(*mail.Message) error { return boom }

	err := n.SendPasswordReset(context.Background(), PasswordReset{To: "alice@x.com"})
	require.ErrorIs(t, err, boom)
}

func TestLogNotifier_DoesNotLogToken(t *testing.T) {
	var buf bytes.Buffer
	ctx := slogx.WithContext(context.Background(), slog.New(slog.NewJSONHandler(&buf, nil)))

	err := LogNotifier{}.SendPasswordReset(ctx, PasswordReset{Username: "alice", Token: "super-secret-token"})
	require.NoError(t, err)
	require.Contains(t, buf.String(), "alice")
	require.NotContains(t, buf.String(), "super-secret-token")
}

func TestSMTPConfigEnabled(t *testing.T) {
	require.False(t, SMTPConfig{}.Enabled())
	require.False(t, SMTPConfig{Host: "h"}.Enabled())
	require.True(t, SMTPConfig{Host: "h", From: "f@x"}.Enabled())
}
