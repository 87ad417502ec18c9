package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"

	mail "github.com/go-mail/mail"
	"github.com/triadacafetera/triada/pkg/slogx"
)

// TLS modes accepted by SMTPConfig.
const (
	TLSModeAuto = "auto"
	TLSModeSSL  = "ssl"
	TLSModeNone = "none"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	TLSMode  string

	// ResetURLBase is the page that accepts the token, e.g.
	// https://app.example.com/reset-password.
	ResetURLBase string
}

// Enabled reports whether enough is configured to send mail.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.From != ""
}

// SMTPNotifier sends reset links by email.
type SMTPNotifier struct {
	cfg  SMTPConfig
	send func(*mail.Message) error
}

func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.TLSMode == "" {
		cfg.TLSMode = TLSModeAuto
	}

	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: cfg.Host}
	switch cfg.TLSMode {
	case TLSModeSSL:
		d.SSL = true
	case TLSModeNone:
		d.StartTLSPolicy = mail.NoStartTLS
	}

	return &SMTPNotifier{
		cfg:  cfg,
		send: func(m *mail.Message) error { return d.DialAndSend(m) },
	}
}

func (n *SMTPNotifier) SendPasswordReset(ctx context.Context, msg PasswordReset) error {
	l := slogx.FromContext(ctx).With(slog.String("component", "smtp"), slog.String("host", n.cfg.Host))

	if err := n.send(n.passwordResetMessage(msg)); err != nil {
		l.Error("password reset email failed", slog.String("username", msg.Username), slog.Any("error", err))
		return fmt.Errorf("smtp send: %w", err)
	}
	l.Info("password reset email sent", slog.String("username", msg.Username))
	return nil
}

func (n *SMTPNotifier) passwordResetMessage(msg PasswordReset) *mail.Message {
	m := mail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", "Reset your Triada password")
	m.SetBody("text/plain", renderPasswordResetText(msg, ResetLink(n.cfg.ResetURLBase, msg.Token)))
	return m
}
