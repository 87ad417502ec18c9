package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/triadacafetera/triada/internal/auth/domain"
	"github.com/triadacafetera/triada/internal/auth/metrics"
	"github.com/triadacafetera/triada/internal/auth/notify"
	"github.com/triadacafetera/triada/internal/auth/store"
	"github.com/triadacafetera/triada/pkg/cryptox"
	"github.com/triadacafetera/triada/pkg/jwtx"
	"github.com/triadacafetera/triada/pkg/slogx"
)

// Messages returned on success.
const (
	MsgRegistered      = "User registered successfully"
	MsgLoggedIn        = "Login successful"
	MsgLoggedOut       = "Successfully logged out"
	MsgRefreshed       = "Token refreshed successfully"
	MsgPasswordChanged = "Password changed successfully"
	MsgResetRequested  = "If the email exists, a password reset link has been sent"
	MsgPasswordReset   = "Password reset successfully"
	MsgDeactivated     = "Account deactivated successfully"
)

// TokenType is the OAuth-style token_type reported with access tokens.
const TokenType = "bearer"

type AuthService struct {
	Store    store.Store
	Codec    *jwtx.Codec
	Notifier notify.Notifier
	Metrics  *metrics.Metrics

	AccessTTL time.Duration
	ResetTTL  time.Duration

	dummyOnce sync.Once
	dummyHash string
}

type RegisterInput struct {
	Username string
	Email    string
	FullName string
	Phone    string
	Password string
}

// AuthResult is returned by every operation that issues an access token.
type AuthResult struct {
	Message   string
	Token     jwtx.Token
	ExpiresIn int64
	User      domain.Session
}

// Profile is the caller's session view plus their role tags.
type Profile struct {
	domain.Session
	Roles []domain.Role `json:"roles"`
}

// ResetRequestResult carries the generic message and, when an account
// matched, the issued token. Callers decide whether to expose it.
type ResetRequestResult struct {
	Message    string
	ResetToken *jwtx.Token
}

type VerifyResult struct {
	Valid bool           `json:"valid"`
	User  domain.Session `json:"user"`
}

func (s *AuthService) accessTTL() time.Duration {
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return jwtx.DefaultAccessTokenTTL
}

// ResetTokenTTL is the lifetime of password reset tokens.
func (s *AuthService) ResetTokenTTL() time.Duration {
	if s.ResetTTL > 0 {
		return s.ResetTTL
	}
	return jwtx.DefaultResetTokenTTL
}

func (s *AuthService) notifier() notify.Notifier {
	if s.Notifier == nil {
		return notify.LogNotifier{}
	}
	return s.Notifier
}

// dummyPasswordHash is compared against on a login miss so unknown users
// cost the same bcrypt work as known ones.
func (s *AuthService) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		h, err := cryptox.HashPassword("triada-dummy-password")
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}

func (s *AuthService) issueAccess(sess domain.Session, msg string) (AuthResult, error) {
	ttl := s.accessTTL()
	tok, err := s.Codec.Issue(jwtx.IssueParams{Subject: sess.Username, UserID: sess.ID}, ttl)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue access token: %w", err)
	}
	return AuthResult{
		Message:   msg,
		Token:     tok,
		ExpiresIn: int64(ttl / time.Second),
		User:      sess,
	}, nil
}

func normalizeRegister(in RegisterInput) (RegisterInput, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)
	in.Phone = strings.TrimSpace(in.Phone)

	switch {
	case in.Username == "":
		return in, invalidInput("username is required")
	case in.Email == "":
		return in, invalidInput("email is required")
	case in.FullName == "":
		return in, invalidInput("full_name is required")
	case in.Password == "":
		return in, invalidInput("password is required")
	}
	addr, err := mail.ParseAddress(in.Email)
	if err != nil || addr.Address != in.Email {
		return in, invalidInput("email is not a valid address")
	}
	return in, nil
}

// conflictError maps a directory unique violation to its duplicate error.
func conflictError(err error) error {
	field, ok := store.ConflictField(err)
	if !ok {
		return err
	}
	switch field {
	case store.FieldUsername:
		return ErrDuplicateUsername.WithCause(err)
	case store.FieldEmail:
		return ErrDuplicateEmail.WithCause(err)
	case store.FieldPhone:
		return ErrDuplicatePhone.WithCause(err)
	}
	return ErrDuplicateAccount.WithCause(err)
}

// Register creates an active client account and signs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	l := slogx.FromContext(ctx)

	in, err := normalizeRegister(in)
	if err != nil {
		s.Metrics.Registration("invalid")
		return AuthResult{}, err
	}

	users := s.Store.Users()
	if _, err := users.GetUserByUsername(ctx, in.Username); err == nil {
		s.Metrics.Registration("conflict")
		return AuthResult{}, ErrDuplicateUsername
	} else if !errors.Is(err, store.ErrNotFound) {
		return AuthResult{}, err
	}
	if _, err := users.GetUserByEmail(ctx, in.Email); err == nil {
		s.Metrics.Registration("conflict")
		return AuthResult{}, ErrDuplicateEmail
	} else if !errors.Is(err, store.ErrNotFound) {
		return AuthResult{}, err
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return AuthResult{}, err
	}

	u := domain.User{
		Username:     in.Username,
		Email:        in.Email,
		FullName:     in.FullName,
		PasswordHash: hash,
		Active:       true,
	}
	if in.Phone != "" {
		u.Phone = &in.Phone
	}

	var created domain.User
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		created, err = tx.Users().CreateUser(ctx, u)
		if err != nil {
			return err
		}
		return tx.Roles().AssignRole(ctx, created.ID, domain.RoleClient)
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			s.Metrics.Registration("conflict")
			l.Info("registration lost a unique race", slog.String("username", in.Username), slog.Any("error", err))
			return AuthResult{}, conflictError(err)
		}
		return AuthResult{}, err
	}

	s.Metrics.Registration("created")
	l.Info("user registered", slog.Int64("user_id", created.ID), slog.String("username", created.Username))
	return s.issueAccess(domain.NewSession(created), MsgRegistered)
}

// Login checks a username and password. Unknown users, wrong passwords
// and inactive accounts all fail with ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (AuthResult, error) {
	l := slogx.FromContext(ctx)
	username = strings.TrimSpace(username)

	fail := func(reason string) (AuthResult, error) {
		s.Metrics.LoginAttempt("invalid_credentials")
		l.Info("login failed", slog.String("username", username), slog.String("reason", reason))
		return AuthResult{}, ErrInvalidCredentials
	}

	u, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = cryptox.VerifyPassword(password, s.dummyPasswordHash())
			return fail("unknown_user")
		}
		return AuthResult{}, err
	}
	if err := cryptox.VerifyPassword(password, u.PasswordHash); err != nil {
		return fail("bad_password")
	}
	if !u.Active {
		return fail("inactive")
	}

	s.Metrics.LoginAttempt("success")
	l.Info("login succeeded", slog.Int64("user_id", u.ID))
	return s.issueAccess(domain.NewSession(u), MsgLoggedIn)
}

// Logout is a placeholder; tokens are not revoked.
func (s *AuthService) Logout(ctx context.Context, sess domain.Session) string {
	slogx.FromContext(ctx).Info("logout", slog.Int64("user_id", sess.ID))
	return MsgLoggedOut
}

// Refresh issues a fresh access token for an already resolved session.
func (s *AuthService) Refresh(ctx context.Context, sess domain.Session) (AuthResult, error) {
	return s.issueAccess(sess, MsgRefreshed)
}

// Profile returns the caller's session view with their role tags.
func (s *AuthService) Profile(ctx context.Context, sess domain.Session) (Profile, error) {
	roles, err := s.Store.Roles().ListRoles(ctx, sess.ID)
	if err != nil {
		return Profile{}, err
	}
	if roles == nil {
		roles = []domain.Role{}
	}
	return Profile{Session: sess, Roles: roles}, nil
}

// UpdateProfile applies the allow-listed fields of patch and returns the
// refreshed session view.
func (s *AuthService) UpdateProfile(ctx context.Context, sess domain.Session, patch domain.ProfilePatch) (domain.Session, error) {
	if patch.FullName != nil {
		name := strings.TrimSpace(*patch.FullName)
		if name == "" {
			return domain.Session{}, invalidInput("full_name cannot be empty")
		}
		patch.FullName = &name
	}
	if patch.Phone != nil {
		phone := strings.TrimSpace(*patch.Phone)
		patch.Phone = &phone
	}

	users := s.Store.Users()
	if !patch.IsEmpty() {
		if err := users.UpdateProfile(ctx, sess.ID, patch); err != nil {
			switch {
			case errors.Is(err, store.ErrAlreadyExists):
				return domain.Session{}, conflictError(err)
			case errors.Is(err, store.ErrNotFound):
				return domain.Session{}, ErrUserNotFound
			}
			return domain.Session{}, err
		}
	}

	u, err := users.GetUserByID(ctx, sess.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Session{}, ErrUserNotFound
		}
		return domain.Session{}, err
	}
	return domain.NewSession(u), nil
}

// ChangePassword replaces the caller's password after checking the
// current one. Issued tokens stay valid.
func (s *AuthService) ChangePassword(ctx context.Context, sess domain.Session, current, next string) (string, error) {
	if next == "" {
		return "", invalidInput("new_password is required")
	}

	users := s.Store.Users()
	u, err := users.GetUserByID(ctx, sess.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}
	if err := cryptox.VerifyPassword(current, u.PasswordHash); err != nil {
		slogx.FromContext(ctx).Info("change password rejected", slog.Int64("user_id", u.ID))
		return "", ErrInvalidCredentials
	}

	hash, err := cryptox.HashPassword(next)
	if err != nil {
		return "", err
	}
	if err := users.UpdatePasswordHash(ctx, u.ID, hash); err != nil {
		return "", err
	}
	slogx.FromContext(ctx).Info("password changed", slog.Int64("user_id", u.ID))
	return MsgPasswordChanged, nil
}

// RequestPasswordReset issues a reset token for the account registered
// under email and hands it to the notifier. The message is the same
// whether or not the email is known.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (ResetRequestResult, error) {
	l := slogx.FromContext(ctx)
	res := ResetRequestResult{Message: MsgResetRequested}

	u, err := s.Store.Users().GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.Metrics.PasswordReset("unknown_email")
			return res, nil
		}
		return ResetRequestResult{}, err
	}

	tok, err := s.Codec.Issue(jwtx.IssueParams{
		Subject: u.Username,
		UserID:  u.ID,
		Purpose: jwtx.PurposePasswordReset,
	}, s.ResetTokenTTL())
	if err != nil {
		return ResetRequestResult{}, fmt.Errorf("issue reset token: %w", err)
	}
	s.Metrics.PasswordReset("requested")

	err = s.notifier().SendPasswordReset(ctx, notify.PasswordReset{
		To:        u.Email,
		Username:  u.Username,
		FullName:  u.FullName,
		Token:     tok.Value,
		ExpiresAt: tok.ExpiresAt,
	})
	if err != nil {
		s.Metrics.PasswordReset("delivery_failed")
		l.Error("password reset delivery failed", slog.Int64("user_id", u.ID), slog.Any("error", err))
	}

	res.ResetToken = &tok
	return res, nil
}

// ConfirmPasswordReset sets a new password for the subject of a valid
// reset token. The token stays usable until it expires.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, token, next string) (string, error) {
	if next == "" {
		return "", invalidInput("new_password is required")
	}

	claims, err := s.Codec.Verify(token)
	if err != nil || !claims.IsPurpose(jwtx.PurposePasswordReset) || !claims.HasIdentity() {
		s.Metrics.PasswordReset("rejected")
		return "", ErrInvalidOrExpiredToken
	}

	users := s.Store.Users()
	u, err := users.GetUserByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.Metrics.PasswordReset("rejected")
			return "", ErrUserNotFound
		}
		return "", err
	}

	hash, err := cryptox.HashPassword(next)
	if err != nil {
		return "", err
	}
	if err := users.UpdatePasswordHash(ctx, u.ID, hash); err != nil {
		return "", err
	}

	s.Metrics.PasswordReset("confirmed")
	slogx.FromContext(ctx).Info("password reset confirmed",
		slog.Int64("user_id", u.ID),
		slog.String("token_fp", cryptox.FingerprintToken(token)),
	)
	return MsgPasswordReset, nil
}

func (s *AuthService) VerifySession(sess domain.Session) VerifyResult {
	return VerifyResult{Valid: true, User: sess}
}

// DeactivateAccount soft-deletes the caller. Their tokens stop resolving
// on the next request.
func (s *AuthService) DeactivateAccount(ctx context.Context, sess domain.Session) (string, error) {
	if err := s.Store.Users().UpdateActive(ctx, sess.ID, false); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}
	slogx.FromContext(ctx).Info("account deactivated", slog.Int64("user_id", sess.ID))
	return MsgDeactivated, nil
}

// SetActive flips the active flag of username. Used by operators.
func (s *AuthService) SetActive(ctx context.Context, username string, active bool) (domain.User, error) {
	users := s.Store.Users()
	u, err := users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	if err := users.UpdateActive(ctx, u.ID, active); err != nil {
		return domain.User{}, err
	}
	u.Active = active
	slogx.FromContext(ctx).Info("account active flag set", slog.Int64("user_id", u.ID), slog.Bool("active", active))
	return u, nil
}
