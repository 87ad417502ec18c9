package http

import (
	"net/http"

	"github.com/triadacafetera/triada/pkg/authsdk"
	"github.com/triadacafetera/triada/pkg/httpx"
)

const serviceName = "triada-auth"

// authEndpoints is reported by /auth/status.
var authEndpoints = map[string]string{
	"register":        "POST /auth/register",
	"login":           "POST /auth/login",
	"logout":          "POST /auth/logout",
	"refresh":         "POST /auth/refresh",
	"profile":         "GET /auth/me",
	"update_profile":  "PUT /auth/me",
	"deactivate":      "DELETE /auth/me",
	"change_password": "POST /auth/change-password",
	"forgot_password": "POST /auth/forgot-password",
	"reset_password":  "POST /auth/reset-password",
	"verify_token":    "GET /auth/verify-token",
}

// StatusHandler godoc
//
//	@Summary		Auth service status
//	@Description	Lists the auth endpoints. When a valid bearer token is sent the caller is echoed back.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	authsdk.StatusResponse
//	@Router			/auth/status [get].
func StatusHandler(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out := authsdk.StatusResponse{
			Service:   serviceName,
			Version:   version,
			Status:    "operational",
			Endpoints: authEndpoints,
		}
		if sess, ok := SessionFromContext(r.Context()); ok {
			u := toUser(sess)
			out.Authenticated = true
			out.User = &u
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

// RootHandler godoc
//
//	@Summary		Service banner
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.MessageResponse
//	@Router			/ [get].
func RootHandler(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{
			"message": "Triada booking API",
			"service": serviceName,
			"version": version,
			"docs":    "/swagger/index.html",
		})
	}
}
