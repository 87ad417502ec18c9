package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token lifetimes.
const (
	// DefaultAccessTokenTTL is the lifetime of a session access token.
	DefaultAccessTokenTTL = 30 * time.Minute

	// DefaultResetTokenTTL is the lifetime of a password-reset token.
	DefaultResetTokenTTL = time.Hour
)

// PurposePasswordReset tags tokens that may only be redeemed to reset a
// password.
const PurposePasswordReset = "password_reset"

// Claims carried by every token. Subject is the username.
type Claims struct {
	jwt.RegisteredClaims

	// UserID is the numeric identity id.
	UserID int64 `json:"user_id,omitempty"`

	// Purpose restricts what the token may be used for. Empty means a
	// regular access token.
	Purpose string `json:"purpose,omitempty"`
}

// NewClaims builds claims for subject valid from now until now+ttl. now is
// truncated to the second so exp stays exactly ttl after iat.
func NewClaims(subject string, userID int64, purpose, issuer string, ttl time.Duration, now time.Time) (Claims, error) {
	jti, err := NewJTI()
	if err != nil {
		return Claims{}, err
	}
	now = now.Truncate(time.Second)
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        jti,
		},
		UserID:  userID,
		Purpose: purpose,
	}, nil
}

// HasIdentity reports whether the claims name both a subject and a
// positive user id.
func (c *Claims) HasIdentity() bool {
	return c.Subject != "" && c.UserID > 0
}

// IsPurpose reports whether the token was issued for purpose.
func (c *Claims) IsPurpose(purpose string) bool {
	return c.Purpose == purpose
}
