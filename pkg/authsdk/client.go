package authsdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the Triada authentication service. It covers
// the public endpoints and creates authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Register creates an account and returns a session for it.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/register", jsonBody(req), jsonHeaders)
	if err != nil {
		return nil, err
	}

	var tok TokenResponse
	if err := decodeJSON(resp, &tok, http.StatusCreated); err != nil {
		return nil, err
	}
	return newSession(c, &tok), nil
}

// Login exchanges a username and password for a session.
func (c *SDKClient) Login(ctx context.Context, username, password string) (*Session, error) {
	body := jsonBody(LoginRequest{Username: username, Password: password})
	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/login", body, jsonHeaders)
	if err != nil {
		return nil, err
	}

	var tok TokenResponse
	if err := decodeJSON(resp, &tok, http.StatusOK); err != nil {
		return nil, err
	}
	return newSession(c, &tok), nil
}

// NewSessionFromToken wraps an access token obtained elsewhere. The
// session refreshes it like any other.
func (c *SDKClient) NewSessionFromToken(accessToken string, expiresIn int64) *Session {
	return newSession(c, &TokenResponse{AccessToken: accessToken, ExpiresIn: expiresIn})
}

// ForgotPassword requests a reset link for email. The response is the
// same whether or not the email is registered.
func (c *SDKClient) ForgotPassword(ctx context.Context, email string) (*ForgotPasswordResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/forgot-password", jsonBody(ForgotPasswordRequest{Email: email}), jsonHeaders)
	if err != nil {
		return nil, err
	}

	var out ForgotPasswordResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResetPassword redeems a reset token.
func (c *SDKClient) ResetPassword(ctx context.Context, token, newPassword string) (*MessageResponse, error) {
	body := jsonBody(ResetPasswordRequest{Token: token, NewPassword: newPassword})
	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/reset-password", body, jsonHeaders)
	if err != nil {
		return nil, err
	}

	var out MessageResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Status fetches the service status anonymously.
func (c *SDKClient) Status(ctx context.Context) (*StatusResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/auth/status", nil, nil)
	if err != nil {
		return nil, err
	}

	var out StatusResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetLiveness checks that the service process is up.
func (c *SDKClient) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	return c.probe(ctx, "/livez")
}

// GetReadiness checks that the service can reach its database. A degraded
// service answers 503, which is returned as an *APIError.
func (c *SDKClient) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	return c.probe(ctx, "/readyz")
}

func (c *SDKClient) probe(ctx context.Context, path string) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var out HealthResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
