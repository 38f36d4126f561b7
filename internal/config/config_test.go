package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	for _, v := range []string{"ENV", "API_BASE_URL", "REFRESH_MODE", "CREDENTIAL_STORE", "PORT", "REQUEST_TIMEOUT"} {
		t.Setenv(v, "")
	}
	c := config.New()

	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, "http://localhost:8080", c.GetAPIBaseURL())
	require.Equal(t, "/auth/refresh", c.GetRefreshEndpoint())
	require.Equal(t, config.RefreshModeStorage, c.GetRefreshMode())
	require.Equal(t, config.StoreBackendMemory, c.GetStoreBackend())
	require.Equal(t, ":8080", c.GetPort())
	require.Equal(t, 30*time.Second, c.GetRequestTimeout())
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("REFRESH_MODE", "Cookie")
	t.Setenv("CREDENTIAL_STORE", "redis")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("PORT", "9090")
	t.Setenv("REFRESH_TIMEOUT", "2s")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test")
	c := config.New()

	require.Equal(t, config.RefreshModeCookie, c.GetRefreshMode())
	require.Equal(t, config.StoreBackendRedis, c.GetStoreBackend())
	require.Equal(t, 3, c.GetRedisDB())
	require.Equal(t, ":9090", c.GetPort())
	require.Equal(t, 2*time.Second, c.GetRefreshTimeout())
	require.True(t, c.GetAllowedOrigins().IsAllowedOrigin("http://b.test"))
	require.False(t, c.GetAllowedOrigins().IsAllowedOrigin("http://c.test"))
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("CREDENTIAL_STORE", "postgres")
	t.Setenv("REFRESH_TIMEOUT", "soon")
	t.Setenv("ROTATE_REFRESH_TOKENS", "maybe")
	c := config.New()

	require.Equal(t, config.StoreBackendMemory, c.GetStoreBackend())
	require.Equal(t, 15*time.Second, c.GetRefreshTimeout())
	require.True(t, c.GetRotateRefreshTokens())
}

func TestLoadReadsDotEnv(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	// godotenv does not override variables that are already set, so unset it
	require.NoError(t, os.Unsetenv("API_BASE_URL"))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("API_BASE_URL=http://api.test\n"), 0o600))

	c := config.Load(path)
	require.Equal(t, "http://api.test", c.GetAPIBaseURL())
}
