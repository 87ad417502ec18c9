package authsdk

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// refreshWindow is how long before expiry a session renews its token.
const refreshWindow = time.Minute

// Session is an authenticated caller. Its methods renew the access token
// shortly before it expires; an already expired token cannot be renewed
// because the service has no refresh tokens.
type Session struct {
	client *SDKClient

	mu          sync.RWMutex
	accessToken string
	expiresAt   time.Time
	user        User
}

func newSession(client *SDKClient, tok *TokenResponse) *Session {
	return &Session{
		client:      client,
		accessToken: tok.AccessToken,
		expiresAt:   time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second),
		user:        tok.User,
	}
}

// AccessToken returns the current access token.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// ExpiresAt returns the local estimate of the token's expiry.
func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

// User returns the identity reported when the token was last issued.
func (s *Session) User() User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Session) store(tok *TokenResponse) {
	s.accessToken = tok.AccessToken
	s.expiresAt = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	s.user = tok.User
}

// getValidToken returns the access token, renewing it first when it is
// inside the refresh window.
func (s *Session) getValidToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if time.Until(s.expiresAt) > refreshWindow {
		token := s.accessToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another goroutine may have renewed while we waited.
	remaining := time.Until(s.expiresAt)
	if remaining > refreshWindow {
		return s.accessToken, nil
	}
	if remaining <= 0 {
		return "", fmt.Errorf("access token expired; log in again")
	}

	tok, err := s.refresh(ctx, s.accessToken)
	if err != nil {
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}
	s.store(tok)
	return s.accessToken, nil
}

func (s *Session) refresh(ctx context.Context, token string) (*TokenResponse, error) {
	resp, err := s.client.doBearerRequest(ctx, token, http.MethodPost, "/auth/refresh", nil, nil)
	if err != nil {
		return nil, err
	}
	var tok TokenResponse
	if err := decodeJSON(resp, &tok, http.StatusOK); err != nil {
		return nil, err
	}
	return &tok, nil
}

// Refresh renews the access token now regardless of its remaining life.
func (s *Session) Refresh(ctx context.Context) (*TokenResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tok, err := s.refresh(ctx, s.accessToken)
	if err != nil {
		return nil, err
	}
	s.store(tok)
	return tok, nil
}
