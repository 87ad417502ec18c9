package authsdk

import (
	"time"

	"github.com/triadacafetera/triada/pkg/httpx"
)

// ErrorResponse is the JSON body of every error response.
type ErrorResponse = httpx.ErrorResponse

// TokenTypeBearer is the token_type reported with access tokens.
const TokenTypeBearer = "bearer"

// ============================================================================
// Identity
// ============================================================================

// User is the public view of an authenticated account.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// ProfileResponse is returned by GET /auth/me.
type ProfileResponse struct {
	User
	Roles []string `json:"roles"`
}

// ============================================================================
// Requests
// ============================================================================

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdateProfileRequest changes only the non-nil fields. Any other field
// sent to the server is ignored.
type UpdateProfileRequest struct {
	FullName *string `json:"full_name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// ============================================================================
// Responses
// ============================================================================

// TokenResponse is returned by register, login and refresh.
type TokenResponse struct {
	Message     string `json:"message"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	// ExpiresIn is the lifetime of AccessToken in seconds.
	ExpiresIn int64 `json:"expires_in"`
	User      User  `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// ForgotPasswordResponse carries the reset token only when the server is
// configured to expose it (development) and the email matched an account.
type ForgotPasswordResponse struct {
	Message    string `json:"message"`
	ResetToken string `json:"reset_token,omitempty"`
	ExpiresIn  int64  `json:"expires_in,omitempty"`
}

type VerifyResponse struct {
	Valid bool `json:"valid"`
	User  User `json:"user"`
}

// StatusResponse describes the service. User is set when the request
// carried a valid bearer token.
type StatusResponse struct {
	Service       string            `json:"service"`
	Version       string            `json:"version"`
	Status        string            `json:"status"`
	Authenticated bool              `json:"authenticated"`
	User          *User             `json:"user,omitempty"`
	Endpoints     map[string]string `json:"endpoints"`
}

// ============================================================================
// Health
// ============================================================================

type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
}
