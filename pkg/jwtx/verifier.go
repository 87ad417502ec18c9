package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every verification failure: bad signature,
// malformed input, wrong algorithm, expiry, issuer mismatch.
var ErrInvalidToken = errors.New("jwtx: invalid token")

// Verifier validates a JWT and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// HS256Verifier validates tokens produced by HS256Signer.
type HS256Verifier struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewVerifierHS256 creates a verifier. An empty issuer disables the iss
// check; a nil clock means time.Now.
func NewVerifierHS256(secret []byte, issuer string, now func() time.Time) (*HS256Verifier, error) {
	if len(secret) < MinSecretSize {
		return nil, ErrWeakSecret
	}
	if now == nil {
		now = time.Now
	}
	return &HS256Verifier{secret: append([]byte(nil), secret...), issuer: issuer, now: now}, nil
}

// Verify checks signature and expiry. A token is valid while now < exp.
func (v *HS256Verifier) Verify(tokenStr string) (Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var claims Claims
	token, err := jwt.NewParser(opts...).ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}
