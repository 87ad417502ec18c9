package authsdk

import (
	"context"
	"net/http"
)

// Me returns the caller's profile.
func (s *Session) Me(ctx context.Context) (*ProfileResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/auth/me", nil, nil)
	if err != nil {
		return nil, err
	}

	var p ProfileResponse
	if err := decodeJSON(resp, &p, http.StatusOK); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateMe changes the caller's full name and/or phone.
func (s *Session) UpdateMe(ctx context.Context, req UpdateProfileRequest) (*User, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPut, "/auth/me", jsonBody(req), jsonHeaders)
	if err != nil {
		return nil, err
	}

	var u User
	if err := decodeJSON(resp, &u, http.StatusOK); err != nil {
		return nil, err
	}
	return &u, nil
}

// Deactivate soft-deletes the caller's account. The session is unusable
// afterwards.
func (s *Session) Deactivate(ctx context.Context) (*MessageResponse, error) {
	return s.message(ctx, http.MethodDelete, "/auth/me", nil)
}

// ChangePassword replaces the caller's password. The current access token
// stays valid.
func (s *Session) ChangePassword(ctx context.Context, current, next string) (*MessageResponse, error) {
	return s.message(ctx, http.MethodPost, "/auth/change-password", ChangePasswordRequest{
		CurrentPassword: current,
		NewPassword:     next,
	})
}

// Logout tells the service the caller is leaving. Tokens are not revoked.
func (s *Session) Logout(ctx context.Context) (*MessageResponse, error) {
	return s.message(ctx, http.MethodPost, "/auth/logout", nil)
}

// Verify checks the access token against the service.
func (s *Session) Verify(ctx context.Context) (*VerifyResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/auth/verify-token", nil, nil)
	if err != nil {
		return nil, err
	}

	var v VerifyResponse
	if err := decodeJSON(resp, &v, http.StatusOK); err != nil {
		return nil, err
	}
	return &v, nil
}

// Status fetches the service status as the authenticated caller.
func (s *Session) Status(ctx context.Context) (*StatusResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/auth/status", nil, nil)
	if err != nil {
		return nil, err
	}

	var st StatusResponse
	if err := decodeJSON(resp, &st, http.StatusOK); err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *Session) message(ctx context.Context, method, path string, body any) (*MessageResponse, error) {
	var headers map[string]string
	if body != nil {
		headers = jsonHeaders
	}
	resp, err := s.doAuthRequest(ctx, method, path, jsonBody(body), headers)
	if err != nil {
		return nil, err
	}

	var m MessageResponse
	if err := decodeJSON(resp, &m, http.StatusOK); err != nil {
		return nil, err
	}
	return &m, nil
}
