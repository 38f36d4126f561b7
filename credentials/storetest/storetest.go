// Package storetest holds the behaviour every credentials.Store backend must share.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises a store created by newStore. Each subtest gets a fresh store.
func Run(t *testing.T, newStore func(t *testing.T) credentials.Store) {
	ctx := context.Background()

	t.Run("empty store", func(t *testing.T) {
		s := newStore(t)
		p, err := s.Get(ctx)
		require.NoError(t, err)
		require.False(t, p.HasAccess())
		require.False(t, p.HasRefresh())
	})

	t.Run("set both then access only keeps refresh", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.SetBoth(ctx, "access-1", "refresh-1"))
		require.NoError(t, s.SetAccess(ctx, "access-2"))

		p, err := s.Get(ctx)
		require.NoError(t, err)
		require.Equal(t, credentials.Pair{Access: "access-2", Refresh: "refresh-1"}, p)
	})

	t.Run("clear removes both", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.SetBoth(ctx, "access-1", "refresh-1"))
		require.NoError(t, s.Clear(ctx))

		p, err := s.Get(ctx)
		require.NoError(t, err)
		require.Equal(t, credentials.Pair{}, p)
	})

	t.Run("remembered username survives clear", func(t *testing.T) {
		s := newStore(t)
		r, ok := s.(credentials.UsernameRememberer)
		if !ok {
			t.Skip("store does not remember usernames")
		}
		require.NoError(t, r.RememberUsername(ctx, "jane"))
		require.NoError(t, s.SetBoth(ctx, "a", "r"))
		require.NoError(t, s.Clear(ctx))

		name, err := r.RememberedUsername(ctx)
		require.NoError(t, err)
		require.Equal(t, "jane", name)
	})

	t.Run("readers never see a mixed pair", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.SetBoth(ctx, "access-0", "refresh-0"))

		const writes = 50
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 1; i <= writes; i++ {
				assert.NoError(t, s.SetBoth(ctx, fmt.Sprintf("access-%d", i), fmt.Sprintf("refresh-%d", i)))
			}
		}()

		for i := 0; i < writes; i++ {
			p, err := s.Get(ctx)
			require.NoError(t, err)
			var a, r int
			_, err = fmt.Sscanf(p.Access, "access-%d", &a)
			require.NoError(t, err)
			_, err = fmt.Sscanf(p.Refresh, "refresh-%d", &r)
			require.NoError(t, err)
			require.Equal(t, a, r, "observed mixed pair %+v", p)
		}
		wg.Wait()
	})
}
