package redisstore_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/credentials/redisstore"
	"github.com/jrsteele09/go-auth-client/credentials/storetest"
	autherrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// Requires a reachable Redis; set REDIS_ADDR to run.
func TestStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	storetest.Run(t, func(t *testing.T) credentials.Store {
		ctx := context.Background()
		s, err := redisstore.New(ctx, redisstore.Config{
			Addr: addr,
			Key:  "auth-client-test:" + uuid.NewString(),
		})
		require.NoError(t, err)
		t.Cleanup(func() {
			_ = s.Clear(ctx)
			_ = s.Close()
		})
		return s
	})
}

func TestStore_Unreachable(t *testing.T) {
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	s := redisstore.NewWithClient(client, "auth-client-test")
	t.Cleanup(func() { _ = s.Close() })

	_, err := s.Get(ctx)
	require.ErrorIs(t, err, autherrors.ErrStore)
	require.ErrorIs(t, s.SetBoth(ctx, "a", "r"), autherrors.ErrStore)

	_, err = redisstore.New(ctx, redisstore.Config{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond})
	require.ErrorIs(t, err, autherrors.ErrStore)
}
