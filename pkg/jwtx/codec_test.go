package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"github.com/triadacafetera/triada/pkg/jwtx"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef-test")

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func newCodec(t *testing.T, clock *fakeClock, opts ...jwtx.CodecOption) *jwtx.Codec {
	t.Helper()
	codec, err := jwtx.NewCodec(testSecret, append([]jwtx.CodecOption{jwtx.WithClock(clock.Now)}, opts...)...)
	require.NoError(t, err)
	return codec
}

func TestCodec_RoundTrip(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	codec := newCodec(t, clock, jwtx.WithIssuer("triada"))

	tok, err := codec.Issue(jwtx.IssueParams{Subject: "alice", UserID: 42}, jwtx.DefaultAccessTokenTTL)
	require.NoError(t, err)
	require.Equal(t, clock.now.Add(30*time.Minute), tok.ExpiresAt)

	claims, err := codec.Verify(tok.Value)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Subject)
	require.Equal(t, int64(42), claims.UserID)
	require.Empty(t, claims.Purpose)
	require.Equal(t, "triada", claims.Issuer)
}

func TestCodec_ExpiryBoundary(t *testing.T) {
	issued := time.Unix(1_700_000_000, 0)
	clock := &fakeClock{now: issued}
	codec := newCodec(t, clock)

	tok, err := codec.Issue(jwtx.IssueParams{Subject: "alice", UserID: 1}, 30*time.Minute)
	require.NoError(t, err)

	clock.now = issued.Add(30*time.Minute - time.Second)
	_, err = codec.Verify(tok.Value)
	require.NoError(t, err, "token must be valid just before exp")

	clock.now = issued.Add(30 * time.Minute)
	_, err = codec.Verify(tok.Value)
	require.ErrorIs(t, err, jwtx.ErrInvalidToken, "token must be invalid at exp")
	require.ErrorIs(t, err, jwt.ErrTokenExpired)

	t.Run("sub-second issue time", func(t *testing.T) {
		issued := time.Unix(1_700_000_020, 900*int64(time.Millisecond))
		clock.now = issued
		tok, err := codec.Issue(jwtx.IssueParams{Subject: "alice", UserID: 1}, 30*time.Minute)
		require.NoError(t, err)

		claims, err := codec.Verify(tok.Value)
		require.NoError(t, err)
		require.Equal(t, 30*time.Minute, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
		require.Equal(t, claims.ExpiresAt.Time, tok.ExpiresAt)

		clock.now = claims.IssuedAt.Add(30*time.Minute - 200*time.Millisecond)
		_, err = codec.Verify(tok.Value)
		require.NoError(t, err)

		clock.now = claims.IssuedAt.Add(30 * time.Minute)
		_, err = codec.Verify(tok.Value)
		require.ErrorIs(t, err, jwtx.ErrInvalidToken)
	})
}

func TestCodec_ResetPurpose(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	codec := newCodec(t, clock)

	tok, err := codec.Issue(jwtx.IssueParams{Subject: "alice", UserID: 1, Purpose: jwtx.PurposePasswordReset}, jwtx.DefaultResetTokenTTL)
	require.NoError(t, err)

	claims, err := codec.Verify(tok.Value)
	require.NoError(t, err)
	require.True(t, claims.IsPurpose(jwtx.PurposePasswordReset))
}

func TestCodec_Tampered(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	codec := newCodec(t, clock)

	tok, err := codec.Issue(jwtx.IssueParams{Subject: "alice", UserID: 1}, time.Hour)
	require.NoError(t, err)

	segments := strings.Split(tok.Value, ".")
	require.Len(t, segments, 3)

	for i, seg := range segments {
		// Skip the final character of each segment: its low bits are
		// base64 padding and may not change the decoded bytes.
		for pos := 0; pos < len(seg)-1; pos++ {
			b := []byte(seg)
			if b[pos] == 'A' {
				b[pos] = 'B'
			} else {
				b[pos] = 'A'
			}
			parts := append([]string(nil), segments...)
			parts[i] = string(b)

			_, err := codec.Verify(strings.Join(parts, "."))
			require.ErrorIs(t, err, jwtx.ErrInvalidToken, "segment %d pos %d", i, pos)
		}
	}
}

func TestCodec_Rejects(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	codec := newCodec(t, clock, jwtx.WithIssuer("triada"))

	other, err := jwtx.NewCodec([]byte("another-secret-another-secret-another"), jwtx.WithClock(clock.Now), jwtx.WithIssuer("triada"))
	require.NoError(t, err)
	foreign, err := other.Issue(jwtx.IssueParams{Subject: "alice", UserID: 1}, time.Hour)
	require.NoError(t, err)

	noIssuer := newCodec(t, clock)
	wrongIss, err := noIssuer.Issue(jwtx.IssueParams{Subject: "alice", UserID: 1}, time.Hour)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "alice", "user_id": 1, "exp": clock.now.Add(time.Hour).Unix()})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "alice", "user_id": 1, "iss": "triada"})
	noExpTok, err := noExp.SignedString(testSecret)
	require.NoError(t, err)

	tests := map[string]string{
		"empty":          "",
		"garbage":        "not-a-jwt",
		"foreign secret": foreign.Value,
		"wrong issuer":   wrongIss.Value,
		"alg none":       unsigned,
		"missing exp":    noExpTok,
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := codec.Verify(tok)
			require.ErrorIs(t, err, jwtx.ErrInvalidToken)
		})
	}
}

func TestNewCodec_WeakSecret(t *testing.T) {
	_, err := jwtx.NewCodec([]byte("short"))
	require.ErrorIs(t, err, jwtx.ErrWeakSecret)
}
