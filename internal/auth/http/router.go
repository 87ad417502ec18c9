package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/triadacafetera/triada/internal/auth/metrics"
	"github.com/triadacafetera/triada/internal/auth/service"
	"github.com/triadacafetera/triada/internal/auth/store"
	"github.com/triadacafetera/triada/pkg/httpx"
	"github.com/triadacafetera/triada/pkg/slogx"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "github.com/triadacafetera/triada/api/auth" // Swagger docs
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store
	metrics      *metrics.Metrics

	AuthService *service.AuthService
	Sessions    *service.SessionResolver

	// ExposeResetToken includes reset tokens in forgot-password responses.
	ExposeResetToken bool
}

func NewRouter(
	buildVersion string,
	st store.Store,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		metrics:      m,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Triada Booking API: Authentication
//	@version		1.0.0
//	@description	Account registration, login and session management for the Triada booking backend.
//	@description
//	@description				Access tokens are HS256 JWTs valid for 30 minutes. There are no refresh tokens; call /auth/refresh before expiry.
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// handle registers h under pattern with per-route metrics first in the
// chain.
func (r *Router) handle(pattern string, h http.Handler, mws ...httpx.Middleware) {
	chain := append([]httpx.Middleware{r.metrics.Middleware(pattern)}, mws...)
	r.Mux.Handle(pattern, httpx.Chain(h, chain...))
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService, ExposeResetToken: r.ExposeResetToken}
	required := RequireSession(r.Sessions)

	// Credential endpoints: strict, keyed by IP plus the submitted account
	// so one client cannot lock out everyone behind the same address.
	r.handle("POST /auth/register", http.HandlerFunc(h.HandleRegister),
		httpx.RateLimitByIP(httpx.StrictLimit),
	)
	r.handle("POST /auth/login", http.HandlerFunc(h.HandleLogin),
		httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "username"),
	)
	r.handle("POST /auth/forgot-password", http.HandlerFunc(h.HandleForgotPassword),
		httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
	)
	r.handle("POST /auth/reset-password", http.HandlerFunc(h.HandleResetPassword),
		httpx.RateLimitByIP(httpx.StrictLimit),
	)

	r.handle("POST /auth/change-password", http.HandlerFunc(h.HandleChangePassword),
		required,
		httpx.RateLimitByPrincipal(httpx.StrictLimit),
	)

	r.handle("POST /auth/logout", http.HandlerFunc(h.HandleLogout),
		required,
		httpx.RateLimitByPrincipal(httpx.ModerateLimit),
	)
	r.handle("POST /auth/refresh", http.HandlerFunc(h.HandleRefresh),
		required,
		httpx.RateLimitByPrincipal(httpx.ModerateLimit),
	)
	r.handle("PUT /auth/me", http.HandlerFunc(h.HandleUpdateMe),
		required,
		httpx.RateLimitByPrincipal(httpx.ModerateLimit),
	)
	r.handle("DELETE /auth/me", http.HandlerFunc(h.HandleDeleteMe),
		required,
		httpx.RateLimitByPrincipal(httpx.ModerateLimit),
	)

	r.handle("GET /auth/me", http.HandlerFunc(h.HandleMe),
		required,
		httpx.RateLimitByPrincipal(httpx.LenientLimit),
	)
	r.handle("GET /auth/verify-token", http.HandlerFunc(h.HandleVerifyToken),
		required,
		httpx.RateLimitByPrincipal(httpx.LenientLimit),
	)
	r.handle("GET /auth/status", StatusHandler(r.buildVersion),
		OptionalSession(r.Sessions),
		httpx.RateLimitByIP(httpx.PublicLimit),
	)
}

func (r *Router) registerSystem() {
	// Monitoring systems may poll frequently.
	r.handle("GET /{$}", RootHandler(r.buildVersion),
		httpx.RateLimitByIP(httpx.PublicLimit),
	)
	r.handle("GET /health", LivezHandler(r.startTime, r.buildVersion),
		httpx.RateLimitByIP(httpx.LenientLimit),
	)
	r.handle("GET /livez", LivezHandler(r.startTime, r.buildVersion),
		httpx.RateLimitByIP(httpx.LenientLimit),
	)
	r.handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store),
		httpx.RateLimitByIP(httpx.LenientLimit),
	)
	r.Mux.Handle("GET /metrics", r.metrics.Handler())
}
