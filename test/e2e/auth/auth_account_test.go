//go:build e2e

package auth_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/triadacafetera/triada/pkg/authsdk"
)

// runAccountLifecycle drives one account from registration to
// deactivation against baseURL.
func runAccountLifecycle(t *testing.T, baseURL string) {
	t.Helper()
	ctx := t.Context()
	client := authsdk.NewSDKClient(baseURL)

	session := registerUser(t, client, "alice")
	require.True(t, session.User().IsActive)

	_, err := client.Register(ctx, authsdk.RegisterRequest{
		Username: "alice2", Email: "alice@example.com", FullName: "Dup", Password: testPassword,
	})
	require.ErrorIs(t, err, authsdk.ErrValidationConflict, "email must be unique")

	_, err = client.Login(ctx, "alice", "wrong")
	require.ErrorIs(t, err, authsdk.ErrInvalidCredentials)

	session, err = client.Login(ctx, "alice", testPassword)
	require.NoError(t, err)

	profile, err := session.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", profile.Email)
	require.Contains(t, profile.Roles, "client")

	name := "Alice Liddell"
	user, err := session.UpdateMe(ctx, authsdk.UpdateProfileRequest{FullName: &name})
	require.NoError(t, err)
	require.Equal(t, name, user.FullName)

	_, err = session.ChangePassword(ctx, testPassword, "a-new-password")
	require.NoError(t, err)
	_, err = client.Login(ctx, "alice", testPassword)
	require.ErrorIs(t, err, authsdk.ErrInvalidCredentials)

	status, err := session.Status(ctx)
	require.NoError(t, err)
	require.True(t, status.Authenticated)

	_, err = session.Deactivate(ctx)
	require.NoError(t, err)

	_, err = session.Me(ctx)
	require.ErrorIs(t, err, authsdk.ErrAccountInactive)
	_, err = client.Login(ctx, "alice", "a-new-password")
	require.ErrorIs(t, err, authsdk.ErrInvalidCredentials)
}

func TestAccountLifecycleSQLite(t *testing.T) {
	runAccountLifecycle(t, setupAuthContainer(t))
}

func TestProtectedEndpointRequiresToken(t *testing.T) {
	baseURL := setupAuthContainer(t)
	client := authsdk.NewSDKClient(baseURL)

	session := client.NewSessionFromToken("not-a-jwt", 1800)
	_, err := session.Me(t.Context())
	require.ErrorIs(t, err, authsdk.ErrAuthenticationRequired)
}

func TestRefreshIssuesNewToken(t *testing.T) {
	baseURL := setupAuthContainer(t)
	client := authsdk.NewSDKClient(baseURL)

	session := registerUser(t, client, "bob")
	before := session.AccessToken()

	tok, err := session.Refresh(t.Context())
	require.NoError(t, err)
	require.Equal(t, authsdk.TokenTypeBearer, tok.TokenType)
	require.NotEqual(t, before, session.AccessToken())

	v, err := session.Verify(t.Context())
	require.NoError(t, err)
	require.True(t, v.Valid)
}
