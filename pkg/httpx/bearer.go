package httpx

import (
	"net/http"
	"strings"
)

// BearerToken returns the credential of an "Authorization: Bearer" header.
// The scheme is matched case-insensitively. ok is false when the header is
// absent, uses another scheme, or carries an empty token.
func BearerToken(r *http.Request) (token string, ok bool) {
	authz := r.Header.Get("Authorization")
	scheme, rest, found := strings.Cut(authz, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(rest)
	return token, token != ""
}

// WriteBearerError writes an RFC 6750 bearer challenge with a JSON body.
func WriteBearerError(w http.ResponseWriter, status int, code, desc string) {
	challenge := `Bearer realm="api"`
	if code != "" {
		challenge += `, error="` + code + `"`
	}
	if desc != "" {
		challenge += `, error_description="` + desc + `"`
	}
	w.Header().Set("WWW-Authenticate", challenge)
	WriteError(w, status, code, desc)
}
