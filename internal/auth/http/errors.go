package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/triadacafetera/triada/internal/auth/service"
	"github.com/triadacafetera/triada/pkg/authsdk"
	"github.com/triadacafetera/triada/pkg/httpx"
	"github.com/triadacafetera/triada/pkg/slogx"
)

// apiError maps a service error kind to its response.
func apiError(err error) *authsdk.APIError {
	var base *authsdk.APIError
	switch service.KindOf(err) {
	case service.KindValidationConflict:
		base = authsdk.ErrValidationConflict
	case service.KindInvalidInput:
		base = authsdk.ErrInvalidRequest
	case service.KindInvalidCredentials:
		base = authsdk.ErrInvalidCredentials
	case service.KindAuthenticationRequired:
		base = authsdk.ErrAuthenticationRequired
	case service.KindAccountInactive:
		base = authsdk.ErrAccountInactive
	case service.KindInvalidOrExpiredToken:
		base = authsdk.ErrInvalidOrExpiredToken
	case service.KindUserNotFound:
		base = authsdk.ErrUserNotFound
	case service.KindNotFound:
		base = authsdk.ErrNotFound
	default:
		return authsdk.ErrServerError
	}

	var se *service.Error
	if errors.As(err, &se) {
		return base.WithDescription(se.Error())
	}
	return base
}

// writeServiceError writes err as a response. Unclassified errors are
// logged and reported as server_error without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	e := apiError(err)
	switch e.Code {
	case authsdk.ErrorCodeServerError:
		slogx.FromContext(r.Context()).Error("request failed", slog.Any("error", err))
	case authsdk.ErrorCodeAuthenticationRequired:
		httpx.WriteBearerError(w, e.StatusCode, e.Code, e.Description)
		return
	}
	e.WriteError(w)
}

func writeBadRequest(w http.ResponseWriter, err error) {
	authsdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
}
