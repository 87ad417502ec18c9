// Package notify delivers out-of-band messages to users, currently only
// password reset links.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/triadacafetera/triada/pkg/cryptox"
	"github.com/triadacafetera/triada/pkg/slogx"
)

// PasswordReset is the payload handed to a Notifier after a reset token
// has been issued.
type PasswordReset struct {
	To        string
	Username  string
	FullName  string
	Token     string
	ExpiresAt time.Time
}

// Notifier delivers reset tokens. Implementations must not log the token.
type Notifier interface {
	SendPasswordReset(ctx context.Context, msg PasswordReset) error
}

// LogNotifier records that a reset was requested without delivering it.
// It is the default when SMTP is not configured.
type LogNotifier struct{}

func (LogNotifier) SendPasswordReset(ctx context.Context, msg PasswordReset) error {
	slogx.FromContext(ctx).Info("password reset issued without delivery channel",
		slog.String("username", msg.Username),
		slog.String("token_fp", cryptox.FingerprintToken(msg.Token)),
		slog.Time("expires_at", msg.ExpiresAt),
	)
	return nil
}

// ResetLink appends the token as a query parameter to base. An empty base
// yields the bare token.
func ResetLink(base, token string) string {
	if base == "" {
		return token
	}
	u, err := url.Parse(base)
	if err != nil {
		return base + "?token=" + url.QueryEscape(token)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

func renderPasswordResetText(msg PasswordReset, link string) string {
	name := msg.FullName
	if name == "" {
		name = msg.Username
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", name)
	b.WriteString("We received a request to reset the password for your Triada account.\n")
	b.WriteString("Use the link below to choose a new password:\n\n")
	fmt.Fprintf(&b, "%s\n\n", link)
	fmt.Fprintf(&b, "The link expires at %s.\n", msg.ExpiresAt.UTC().Format(time.RFC1123))
	b.WriteString("If you did not ask for this, you can ignore this message.\n")
	return b.String()
}
