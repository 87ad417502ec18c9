package http

import (
	"net/http"
	"time"

	"github.com/triadacafetera/triada/internal/auth/store"
	"github.com/triadacafetera/triada/pkg/authsdk"
	"github.com/triadacafetera/triada/pkg/httpx"
	"github.com/triadacafetera/triada/pkg/slogx"
)

// probe describes the running process for health responses.
type probe struct {
	started time.Time
	version string
}

func (p probe) response(status string, checks *authsdk.HealthChecks) authsdk.HealthResponse {
	return authsdk.HealthResponse{
		Status:  status,
		Uptime:  time.Since(p.started).Round(time.Second).String(),
		Version: p.version,
		Checks:  checks,
	}
}

// LivezHandler godoc
//
//	@Summary		Liveness probe
//	@Description	Always returns 200 while the process is serving. Also mounted at /health.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	p := probe{started: startTime, version: version}
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, p.response("ok", nil))
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness probe
//	@Description	Returns 503 when the user directory cannot be reached.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	authsdk.HealthResponse	"status, uptime, version, checks"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, st store.Store) http.HandlerFunc {
	p := probe{started: startTime, version: version}
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.Ping(r.Context()); err != nil {
			slogx.FromContext(r.Context()).Warn("readiness check failed", "error", err)
			httpx.WriteJSON(w, http.StatusServiceUnavailable,
				p.response("degraded", &authsdk.HealthChecks{Database: "error"}))
			return
		}
		httpx.WriteJSON(w, http.StatusOK, p.response("ok", &authsdk.HealthChecks{Database: "ok"}))
	}
}
