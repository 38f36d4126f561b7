package authapi_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/go-auth-client/authapi"
	"github.com/jrsteele09/go-auth-client/credentials/filestore"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/navigation"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNewFromConfigRestore(t *testing.T) {
	tests := []struct {
		mode          string
		authenticated bool
		keepsAccess   bool
	}{
		{mode: "storage", authenticated: true, keepsAccess: true},
		{mode: "cookie", authenticated: false, keepsAccess: false},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			ctx := context.Background()
			path := filepath.Join(t.TempDir(), "credentials.json")
			t.Setenv("API_BASE_URL", "http://localhost:8080")
			t.Setenv("CREDENTIAL_STORE", "file")
			t.Setenv("CREDENTIAL_FILE", path)
			t.Setenv("REFRESH_MODE", tt.mode)

			previous, err := filestore.New(path)
			require.NoError(t, err)
			require.NoError(t, previous.SetBoth(ctx, "access-from-last-run", ""))
			require.NoError(t, previous.RememberUsername(ctx, "alice"))

			c, err := authapi.NewFromConfig(ctx, config.New(), navigation.NewHistory("/"), zerolog.Nop())
			require.NoError(t, err)
			t.Cleanup(func() { _ = c.Close() })

			require.Equal(t, tt.authenticated, c.Session().Authenticated())
			pair, err := previous.Get(ctx)
			require.NoError(t, err)
			require.Equal(t, tt.keepsAccess, pair.HasAccess())
			require.Equal(t, "alice", c.RememberedUsername(ctx))
		})
	}
}
