//go:build e2e

package auth_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/triadacafetera/triada/pkg/authsdk"
)

func TestLivezEndpoint(t *testing.T) {
	baseURL := setupAuthContainer(t)
	client := authsdk.NewSDKClient(baseURL)

	health, err := client.GetLiveness(t.Context())
	assertHealthy(t, health, err)
}

func TestReadyzEndpoint(t *testing.T) {
	baseURL := setupAuthContainer(t)
	client := authsdk.NewSDKClient(baseURL)

	health, err := client.GetReadiness(t.Context())
	assertHealthy(t, health, err)
	require.NotNil(t, health.Checks)
	require.Equal(t, "ok", health.Checks.Database)
}

func TestStatusEndpoint(t *testing.T) {
	baseURL := setupAuthContainer(t)
	client := authsdk.NewSDKClient(baseURL)

	status, err := client.Status(t.Context())
	require.NoError(t, err)
	require.False(t, status.Authenticated)
	require.NotEmpty(t, status.Endpoints)
}
