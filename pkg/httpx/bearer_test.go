package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/triadacafetera/triada/pkg/httpx"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"bearer abc", "abc", true},
		{"Bearer   spaced  ", "spaced", true},
		{"", "", false},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"Basic dXNlcjpwYXNz", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			tok, ok := httpx.BearerToken(req)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.token, tok)
		})
	}
}

func TestWriteBearerError(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.WriteBearerError(rec, http.StatusUnauthorized, "invalid_token", "token expired")

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, `Bearer realm="api", error="invalid_token", error_description="token expired"`, rec.Header().Get("WWW-Authenticate"))
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.JSONEq(t, `{"error":"invalid_token","error_description":"token expired"}`, rec.Body.String())
}

func TestChain(t *testing.T) {
	var order []string
	mw := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(okHandler, mw("a"), mw("b"), mw("c"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"a", "b", "c"}, order)
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	t.Run("ignores unknown fields", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","is_admin":true}`))
		var p payload
		require.NoError(t, httpx.DecodeJSON(httptest.NewRecorder(), req, &p))
		require.Equal(t, "x", p.Name)
	})

	t.Run("rejects bad bodies", func(t *testing.T) {
		for _, body := range []string{"", "{", `{"name":"x"}{"name":"y"}`} {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
			var p payload
			require.Error(t, httpx.DecodeJSON(httptest.NewRecorder(), req, &p), body)
		}
	})
}
