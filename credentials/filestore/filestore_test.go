package filestore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/credentials/filestore"
	"github.com/jrsteele09/go-auth-client/credentials/storetest"
	autherrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) credentials.Store {
		s, err := filestore.New(filepath.Join(t.TempDir(), "nested", "credentials.json"))
		require.NoError(t, err)
		return s
	})
}

func TestStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credentials.json")

	s, err := filestore.New(path)
	require.NoError(t, err)
	require.NoError(t, s.SetBoth(ctx, "access-1", "refresh-1"))
	require.NoError(t, s.RememberUsername(ctx, "jane"))

	reopened, err := filestore.New(path)
	require.NoError(t, err)
	p, err := reopened.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, credentials.Pair{Access: "access-1", Refresh: "refresh-1"}, p)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"token": "access-1"`)
	require.Contains(t, string(data), `"refreshToken": "refresh-1"`)
	require.Contains(t, string(data), `"rememberedUsername": "jane"`)
}

func TestStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s, err := filestore.New(path)
	require.NoError(t, err)
	_, err = s.Get(context.Background())
	require.ErrorIs(t, err, autherrors.ErrStore)
	require.Contains(t, err.Error(), "decode credential file")

	require.ErrorIs(t, s.SetAccess(context.Background(), "a"), autherrors.ErrStore)
}
