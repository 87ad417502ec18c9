package cryptox

import (
	"crypto/sha256"
	"encoding/hex"
)

// fingerprintBytes is how much of the digest a fingerprint keeps.
const fingerprintBytes = 8

// FingerprintToken returns a short hex digest of token. Logs carry the
// fingerprint so a bearer or reset token can be correlated across lines
// without being disclosed.
func FingerprintToken(token string) string {
	if token == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:fingerprintBytes])
}
