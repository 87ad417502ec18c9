// Package metrics exposes Prometheus instrumentation for the auth service.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/triadacafetera/triada/pkg/httpx"
)

// Metrics holds the service collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	loginAttempts      *prometheus.CounterVec
	registrations      *prometheus.CounterVec
	sessionResolutions *prometheus.CounterVec
	passwordResets     *prometheus.CounterVec
	users              *prometheus.GaugeVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpInflight prometheus.Gauge
}

// New registers the collectors on a fresh registry that also carries the
// Go runtime and process collectors.
func New() (*Metrics, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(reg, reg)
}

// NewWithRegistry registers the collectors on reg and serves them from g.
func NewWithRegistry(reg prometheus.Registerer, g prometheus.Gatherer) (*Metrics, error) {
	m := &Metrics{
		gatherer: g,
		loginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "auth",
			Name:      "login_attempts_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "auth",
			Name:      "registrations_total",
			Help:      "Registration attempts by result.",
		}, []string{"result"}),
		sessionResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "auth",
			Name:      "session_resolutions_total",
			Help:      "Bearer token resolutions by final state.",
		}, []string{"state"}),
		passwordResets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "auth",
			Name:      "password_resets_total",
			Help:      "Password reset flow events by stage.",
		}, []string{"stage"}),
		users: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "auth",
			Name:      "users",
			Help:      "Users in the directory, sampled periodically.",
		}, []string{"state"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		httpInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Requests currently being served.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.loginAttempts, m.registrations, m.sessionResolutions, m.passwordResets, m.users,
		m.httpRequests, m.httpDuration, m.httpInflight,
	} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return nil, err
			}
		}
	}
	return m, nil
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) LoginAttempt(result string) {
	if m != nil {
		m.loginAttempts.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) Registration(result string) {
	if m != nil {
		m.registrations.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) SessionResolution(state string) {
	if m != nil {
		m.sessionResolutions.WithLabelValues(state).Inc()
	}
}

func (m *Metrics) PasswordReset(stage string) {
	if m != nil {
		m.passwordResets.WithLabelValues(stage).Inc()
	}
}

// SetUsers records a directory sample.
func (m *Metrics) SetUsers(total, active int64) {
	if m != nil {
		m.users.WithLabelValues("total").Set(float64(total))
		m.users.WithLabelValues("active").Set(float64(active))
	}
}

// Middleware instruments a handler. route should be the registered
// pattern, not the raw path, to keep label cardinality bounded.
func (m *Metrics) Middleware(route string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			m.httpInflight.Inc()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			defer func() {
				m.httpInflight.Dec()
				m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
				m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
			}()
			next.ServeHTTP(rec, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
