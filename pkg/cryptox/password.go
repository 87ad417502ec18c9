package cryptox

import (
	"errors"
	"fmt"
	"sync/atomic"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the number of input bytes bcrypt consumes.
const MaxPasswordBytes = 72

// ErrPasswordMismatch is returned by VerifyPassword when the password does not
// match the stored hash.
var ErrPasswordMismatch = errors.New("password does not match")

var cost atomic.Int64

func init() {
	cost.Store(int64(bcrypt.DefaultCost))
}

// SetCost overrides the bcrypt work factor used by HashPassword. Values
// outside bcrypt's accepted range are clamped.
func SetCost(c int) {
	switch {
	case c < bcrypt.MinCost:
		c = bcrypt.MinCost
	case c > bcrypt.MaxCost:
		c = bcrypt.MaxCost
	}
	cost.Store(int64(c))
}

// Cost reports the current bcrypt work factor.
func Cost() int {
	return int(cost.Load())
}

// TruncatePassword returns the bytes of password that bcrypt will actually
// see. Inputs over MaxPasswordBytes are cut on a rune boundary so a
// multi-byte character is never split.
func TruncatePassword(password string) []byte {
	b := []byte(password)
	if len(b) <= MaxPasswordBytes {
		return b
	}
	cut := MaxPasswordBytes
	for cut > 0 && !utf8.RuneStart(b[cut]) {
		cut--
	}
	if cut == 0 {
		// No rune start in range; fall back to a raw byte cut.
		cut = MaxPasswordBytes
	}
	return b[:cut]
}

// HashPassword returns a bcrypt hash (salt and cost embedded) of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(TruncatePassword(password), Cost())
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext password against a bcrypt hash in
// constant time.
func VerifyPassword(password, encodedHash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), TruncatePassword(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrPasswordMismatch
	default:
		return fmt.Errorf("invalid hash format: %w", err)
	}
}
