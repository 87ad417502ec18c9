package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/triadacafetera/triada/internal/auth/domain"
	"github.com/triadacafetera/triada/internal/auth/metrics"
	"github.com/triadacafetera/triada/internal/auth/store"
	"github.com/triadacafetera/triada/pkg/cryptox"
	"github.com/triadacafetera/triada/pkg/jwtx"
	"github.com/triadacafetera/triada/pkg/slogx"
)

// ResolutionState is the outcome of resolving a bearer token.
type ResolutionState int

const (
	StateNoCredential ResolutionState = iota
	StateInvalidToken
	StateMissingClaims
	StateUnknownUser
	StateInactiveUser
	StateResolved
)

func (s ResolutionState) String() string {
	switch s {
	case StateNoCredential:
		return "no_credential"
	case StateInvalidToken:
		return "invalid_token"
	case StateMissingClaims:
		return "missing_claims"
	case StateUnknownUser:
		return "unknown_user"
	case StateInactiveUser:
		return "inactive_user"
	case StateResolved:
		return "resolved"
	}
	return "unknown"
}

// SessionResolver turns a bearer token into an authenticated session.
type SessionResolver struct {
	Store   store.Store
	Codec   *jwtx.Codec
	Metrics *metrics.Metrics
}

// Resolve runs the resolution state machine. err is non-nil only for
// directory failures other than a miss; the state is then meaningless.
// Purpose-tagged tokens such as password-reset tokens resolve to
// StateInvalidToken.
func (r *SessionResolver) Resolve(ctx context.Context, bearer string) (domain.Session, ResolutionState, error) {
	sess, state, err := r.resolve(ctx, bearer)
	if err != nil {
		return domain.Session{}, state, err
	}

	r.Metrics.SessionResolution(state.String())
	attrs := []any{slog.String("state", state.String())}
	if bearer != "" {
		attrs = append(attrs, slog.String("token_fp", cryptox.FingerprintToken(bearer)))
	}
	slogx.FromContext(ctx).Debug("session resolved", attrs...)
	return sess, state, nil
}

func (r *SessionResolver) resolve(ctx context.Context, bearer string) (domain.Session, ResolutionState, error) {
	if bearer == "" {
		return domain.Session{}, StateNoCredential, nil
	}

	claims, err := r.Codec.Verify(bearer)
	if err != nil {
		return domain.Session{}, StateInvalidToken, nil
	}
	// Reset tokens are not access tokens.
	if claims.Purpose != "" {
		return domain.Session{}, StateInvalidToken, nil
	}
	if !claims.HasIdentity() {
		return domain.Session{}, StateMissingClaims, nil
	}

	u, err := r.Store.Users().GetUserByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Session{}, StateUnknownUser, nil
		}
		return domain.Session{}, StateResolved, err
	}
	if !u.Active {
		return domain.Session{}, StateInactiveUser, nil
	}
	return domain.NewSession(u), StateResolved, nil
}

// Require resolves bearer or fails with ErrAuthenticationRequired or
// ErrAccountInactive.
func (r *SessionResolver) Require(ctx context.Context, bearer string) (domain.Session, error) {
	sess, state, err := r.Resolve(ctx, bearer)
	if err != nil {
		return domain.Session{}, err
	}
	switch state {
	case StateResolved:
		return sess, nil
	case StateInactiveUser:
		return domain.Session{}, ErrAccountInactive
	default:
		return domain.Session{}, ErrAuthenticationRequired
	}
}

// Optional resolves bearer, returning nil on any failure.
func (r *SessionResolver) Optional(ctx context.Context, bearer string) *domain.Session {
	sess, state, err := r.Resolve(ctx, bearer)
	if err != nil {
		slogx.FromContext(ctx).Warn("optional session lookup failed", slog.Any("error", err))
		return nil
	}
	if state != StateResolved {
		return nil
	}
	return &sess
}
