package httpx

import "context"

type ctxKey string

const ctxKeyPrincipal ctxKey = "principal"

// WithPrincipal records a stable identifier of the authenticated caller for
// per-user middleware such as RateLimitByPrincipal.
func WithPrincipal(ctx context.Context, principal string) context.Context {
	return context.WithValue(ctx, ctxKeyPrincipal, principal)
}

// PrincipalFromContext returns the identifier set by WithPrincipal.
func PrincipalFromContext(ctx context.Context) string {
	p, _ := ctx.Value(ctxKeyPrincipal).(string)
	return p
}
