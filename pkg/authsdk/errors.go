package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/triadacafetera/triada/pkg/httpx"
)

// Error codes carried in the "error" field of error responses.
const (
	ErrorCodeInvalidRequest         = "invalid_request"
	ErrorCodeValidationConflict     = "validation_conflict"
	ErrorCodeInvalidCredentials     = "invalid_credentials"
	ErrorCodeAuthenticationRequired = "authentication_required"
	ErrorCodeAccountInactive        = "account_inactive"
	ErrorCodeInvalidOrExpiredToken  = "invalid_or_expired_token"
	ErrorCodeUserNotFound           = "user_not_found"
	ErrorCodeNotFound               = "not_found"
	ErrorCodeRateLimitExceeded      = "rate_limit_exceeded"
	ErrorCodeServerError            = "server_error"
)

// APIError is an error response from the service. It is used by handlers
// to write responses and by the client to report them.
type APIError struct {
	StatusCode  int    `json:"-"`
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Is matches any *APIError with the same status and code, so callers can
// test client errors against the predefined values.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.StatusCode == e.StatusCode && t.Code == e.Code
}

// WriteError writes e as a JSON response.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteError(w, e.StatusCode, e.Code, e.Description)
}

// WithDescription returns a copy of e with a different description.
func (e *APIError) WithDescription(desc string) *APIError {
	return &APIError{StatusCode: e.StatusCode, Code: e.Code, Description: desc}
}

var (
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required fields",
	}

	ErrValidationConflict = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeValidationConflict,
		Description: "a unique field is already registered",
	}

	ErrInvalidCredentials = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidCredentials,
		Description: "incorrect username or password",
	}

	// ErrAuthenticationRequired is returned for a missing, invalid or
	// expired bearer token.
	ErrAuthenticationRequired = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeAuthenticationRequired,
		Description: "could not validate credentials",
	}

	ErrAccountInactive = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeAccountInactive,
		Description: "inactive user",
	}

	ErrInvalidOrExpiredToken = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidOrExpiredToken,
		Description: "invalid or expired token",
	}

	ErrUserNotFound = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeUserNotFound,
		Description: "user not found",
	}

	ErrNotFound = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeNotFound,
		Description: "not found",
	}

	ErrRateLimitExceeded = &APIError{
		StatusCode:  http.StatusTooManyRequests,
		Code:        ErrorCodeRateLimitExceeded,
		Description: "too many requests",
	}

	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}
)

// parseErrorResponse converts a non-2xx response into an *APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
