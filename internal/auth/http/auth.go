package http

import (
	"net/http"

	"github.com/triadacafetera/triada/internal/auth/domain"
	"github.com/triadacafetera/triada/internal/auth/service"
	"github.com/triadacafetera/triada/pkg/authsdk"
	"github.com/triadacafetera/triada/pkg/httpx"
)

// AuthHandler serves the /auth endpoints.
type AuthHandler struct {
	AuthService *service.AuthService

	// ExposeResetToken returns reset tokens in the forgot-password
	// response. For development only.
	ExposeResetToken bool
}

func toUser(s domain.Session) authsdk.User {
	return authsdk.User{
		ID:        s.ID,
		Username:  s.Username,
		Email:     s.Email,
		FullName:  s.FullName,
		Phone:     s.Phone,
		IsActive:  s.Active,
		CreatedAt: s.CreatedAt,
	}
}

func toTokenResponse(res service.AuthResult) authsdk.TokenResponse {
	return authsdk.TokenResponse{
		Message:     res.Message,
		AccessToken: res.Token.Value,
		TokenType:   authsdk.TokenTypeBearer,
		ExpiresIn:   res.ExpiresIn,
		User:        toUser(res.User),
	}
}

// mustSession returns the session attached by RequireSession.
func mustSession(w http.ResponseWriter, r *http.Request) (domain.Session, bool) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		writeServiceError(w, r, service.ErrAuthenticationRequired)
	}
	return sess, ok
}

// HandleRegister godoc
//
//	@Summary		Register a new account
//	@Description	Creates an active client account and returns an access token for it.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RegisterRequest	true	"New account"
//	@Success		201		{object}	authsdk.TokenResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"invalid_request"
//	@Failure		409		{object}	authsdk.ErrorResponse	"validation_conflict"
//	@Router			/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RegisterRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	res, err := h.AuthService.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toTokenResponse(res))
}

// HandleLogin godoc
//
//	@Summary		Log in
//	@Description	Exchanges a username and password for a 30 minute access token.
//	@Description	Unknown users, wrong passwords and inactive accounts all return invalid_credentials.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.TokenResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"invalid_request"
//	@Failure		401		{object}	authsdk.ErrorResponse	"invalid_credentials"
//	@Failure		429		{object}	authsdk.ErrorResponse	"rate_limit_exceeded"
//	@Router			/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	res, err := h.AuthService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toTokenResponse(res))
}

// HandleLogout godoc
//
//	@Summary		Log out
//	@Description	Acknowledges a logout. The token is not revoked and stays valid until it expires.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.MessageResponse
//	@Failure		401	{object}	authsdk.ErrorResponse	"authentication_required"
//	@Router			/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	sess, ok := mustSession(w, r)
	if !ok {
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: h.AuthService.Logout(r.Context(), sess)})
}

// HandleRefresh godoc
//
//	@Summary		Refresh access token
//	@Description	Issues a new 30 minute access token for the caller.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.TokenResponse
//	@Failure		401	{object}	authsdk.ErrorResponse	"authentication_required"
//	@Failure		403	{object}	authsdk.ErrorResponse	"account_inactive"
//	@Router			/auth/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	sess, ok := mustSession(w, r)
	if !ok {
		return
	}
	res, err := h.AuthService.Refresh(r.Context(), sess)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toTokenResponse(res))
}

// HandleMe godoc
//
//	@Summary		Current profile
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.ProfileResponse
//	@Failure		401	{object}	authsdk.ErrorResponse	"authentication_required"
//	@Failure		403	{object}	authsdk.ErrorResponse	"account_inactive"
//	@Router			/auth/me [get].
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	sess, ok := mustSession(w, r)
	if !ok {
		return
	}
	p, err := h.AuthService.Profile(r.Context(), sess)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	roles := make([]string, len(p.Roles))
	for i, role := range p.Roles {
		roles[i] = string(role)
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.ProfileResponse{User: toUser(p.Session), Roles: roles})
}

// HandleUpdateMe godoc
//
//	@Summary		Update current profile
//	@Description	Only full_name and phone are applied. Other fields are ignored. An empty phone clears it.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.UpdateProfileRequest	true	"Fields to change"
//	@Success		200		{object}	authsdk.User
//	@Failure		400		{object}	authsdk.ErrorResponse	"invalid_request"
//	@Failure		401		{object}	authsdk.ErrorResponse	"authentication_required"
//	@Failure		409		{object}	authsdk.ErrorResponse	"validation_conflict"
//	@Router			/auth/me [put].
func (h *AuthHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	sess, ok := mustSession(w, r)
	if !ok {
		return
	}
	var req authsdk.UpdateProfileRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	updated, err := h.AuthService.UpdateProfile(r.Context(), sess, domain.ProfilePatch{
		FullName: req.FullName,
		Phone:    req.Phone,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUser(updated))
}

// HandleDeleteMe godoc
//
//	@Summary		Deactivate account
//	@Description	Marks the caller inactive. Existing tokens stop resolving.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.MessageResponse
//	@Failure		401	{object}	authsdk.ErrorResponse	"authentication_required"
//	@Router			/auth/me [delete].
func (h *AuthHandler) HandleDeleteMe(w http.ResponseWriter, r *http.Request) {
	sess, ok := mustSession(w, r)
	if !ok {
		return
	}
	msg, err := h.AuthService.DeactivateAccount(r.Context(), sess)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: msg})
}

// HandleChangePassword godoc
//
//	@Summary		Change password
//	@Description	Previously issued tokens stay valid.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.ChangePasswordRequest	true	"Current and new password"
//	@Success		200		{object}	authsdk.MessageResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"invalid_request"
//	@Failure		401		{object}	authsdk.ErrorResponse	"invalid_credentials or authentication_required"
//	@Router			/auth/change-password [post].
func (h *AuthHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	sess, ok := mustSession(w, r)
	if !ok {
		return
	}
	var req authsdk.ChangePasswordRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	msg, err := h.AuthService.ChangePassword(r.Context(), sess, req.CurrentPassword, req.NewPassword)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: msg})
}

// HandleForgotPassword godoc
//
//	@Summary		Request password reset
//	@Description	Always returns the same message. When the email matches an account a one hour reset token is emailed.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.ForgotPasswordRequest	true	"Account email"
//	@Success		200		{object}	authsdk.ForgotPasswordResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"invalid_request"
//	@Router			/auth/forgot-password [post].
func (h *AuthHandler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ForgotPasswordRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	res, err := h.AuthService.RequestPasswordReset(r.Context(), req.Email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := authsdk.ForgotPasswordResponse{Message: res.Message}
	if h.ExposeResetToken && res.ResetToken != nil {
		out.ResetToken = res.ResetToken.Value
		out.ExpiresIn = int64(h.AuthService.ResetTokenTTL().Seconds())
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleResetPassword godoc
//
//	@Summary		Confirm password reset
//	@Description	Sets a new password using a reset token. The token can be reused until it expires.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.ResetPasswordRequest	true	"Reset token and new password"
//	@Success		200		{object}	authsdk.MessageResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"invalid_request or invalid_or_expired_token"
//	@Failure		404		{object}	authsdk.ErrorResponse	"user_not_found"
//	@Router			/auth/reset-password [post].
func (h *AuthHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ResetPasswordRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	msg, err := h.AuthService.ConfirmPasswordReset(r.Context(), req.Token, req.NewPassword)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: msg})
}

// HandleVerifyToken godoc
//
//	@Summary		Verify access token
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.VerifyResponse
//	@Failure		401	{object}	authsdk.ErrorResponse	"authentication_required"
//	@Failure		403	{object}	authsdk.ErrorResponse	"account_inactive"
//	@Router			/auth/verify-token [get].
func (h *AuthHandler) HandleVerifyToken(w http.ResponseWriter, r *http.Request) {
	sess, ok := mustSession(w, r)
	if !ok {
		return
	}
	v := h.AuthService.VerifySession(sess)
	httpx.WriteJSON(w, http.StatusOK, authsdk.VerifyResponse{Valid: v.Valid, User: toUser(v.User)})
}
