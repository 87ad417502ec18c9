package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/triadacafetera/triada/internal/auth/domain"
	"github.com/triadacafetera/triada/internal/auth/service"
	"github.com/triadacafetera/triada/pkg/httpx"
	"github.com/triadacafetera/triada/pkg/slogx"
)

type sessionCtxKey struct{}

func withSession(ctx context.Context, sess domain.Session) context.Context {
	ctx = context.WithValue(ctx, sessionCtxKey{}, sess)
	ctx = httpx.WithPrincipal(ctx, strconv.FormatInt(sess.ID, 10))
	return slogx.With(ctx, "user_id", sess.ID)
}

// SessionFromContext returns the session attached by RequireSession or
// OptionalSession.
func SessionFromContext(ctx context.Context) (domain.Session, bool) {
	sess, ok := ctx.Value(sessionCtxKey{}).(domain.Session)
	return sess, ok
}

// RequireSession rejects requests without a resolvable bearer token.
func RequireSession(resolver *service.SessionResolver) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, _ := httpx.BearerToken(r)
			sess, err := resolver.Require(r.Context(), token)
			if err != nil {
				writeServiceError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(withSession(r.Context(), sess)))
		})
	}
}

// OptionalSession attaches a session when the bearer token resolves and
// passes every other request through anonymously.
func OptionalSession(resolver *service.SessionResolver) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, _ := httpx.BearerToken(r)
			if sess := resolver.Optional(r.Context(), token); sess != nil {
				r = r.WithContext(withSession(r.Context(), *sess))
			}
			next.ServeHTTP(w, r)
		})
	}
}
