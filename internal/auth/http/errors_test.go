package http

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/triadacafetera/triada/internal/auth/service"
	"github.com/triadacafetera/triada/pkg/httpx"
)

// httpxStrictBurst is the number of requests the strict profile admits
// before throttling.
func httpxStrictBurst() int { return httpx.StrictLimit.Burst }

func TestAPIError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{service.ErrDuplicateUsername, http.StatusConflict, "validation_conflict"},
		{service.ErrInvalidInput, http.StatusBadRequest, "invalid_request"},
		{service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
		{service.ErrAuthenticationRequired, http.StatusUnauthorized, "authentication_required"},
		{service.ErrAccountInactive, http.StatusForbidden, "account_inactive"},
		{service.ErrInvalidOrExpiredToken, http.StatusBadRequest, "invalid_or_expired_token"},
		{service.ErrUserNotFound, http.StatusNotFound, "user_not_found"},
		{service.ErrNotFound, http.StatusNotFound, "not_found"},
		{errors.New("db down"), http.StatusInternalServerError, "server_error"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			e := apiError(tt.err)
			require.Equal(t, tt.status, e.StatusCode)
			require.Equal(t, tt.code, e.Code)
		})
	}

	// Internal detail never reaches the client.
	require.NotContains(t, apiError(errors.New("db down")).Description, "db down")
	require.Equal(t, "username already registered", apiError(service.ErrDuplicateUsername).Description)
}
