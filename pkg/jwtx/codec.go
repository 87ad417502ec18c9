package jwtx

import (
	"time"
)

// Token is a signed compact JWT and its absolute expiry.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// IssueParams names the identity a token is minted for.
type IssueParams struct {
	Subject string
	UserID  int64
	Purpose string
}

// Codec issues and verifies tokens with one injected secret.
type Codec struct {
	signer   Signer
	verifier Verifier
	issuer   string
	now      func() time.Time
}

// CodecOption customises a Codec.
type CodecOption func(*codecOptions)

type codecOptions struct {
	issuer string
	now    func() time.Time
}

// WithIssuer stamps and enforces the iss claim.
func WithIssuer(issuer string) CodecOption {
	return func(o *codecOptions) { o.issuer = issuer }
}

// WithClock replaces time.Now for issuing and verifying.
func WithClock(now func() time.Time) CodecOption {
	return func(o *codecOptions) { o.now = now }
}

// NewCodec builds an HS256 codec around secret.
func NewCodec(secret []byte, opts ...CodecOption) (*Codec, error) {
	o := codecOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	signer, err := NewSignerHS256(secret)
	if err != nil {
		return nil, err
	}
	verifier, err := NewVerifierHS256(secret, o.issuer, o.now)
	if err != nil {
		return nil, err
	}
	return &Codec{signer: signer, verifier: verifier, issuer: o.issuer, now: o.now}, nil
}

// Issue signs a token for p that expires ttl from now.
func (c *Codec) Issue(p IssueParams, ttl time.Duration) (Token, error) {
	claims, err := NewClaims(p.Subject, p.UserID, p.Purpose, c.issuer, ttl, c.now())
	if err != nil {
		return Token{}, err
	}
	signed, err := c.signer.Sign(claims)
	if err != nil {
		return Token{}, err
	}
	return Token{Value: signed, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Verify returns the claims of a valid token or an error matching
// ErrInvalidToken.
func (c *Codec) Verify(token string) (Claims, error) {
	return c.verifier.Verify(token)
}
