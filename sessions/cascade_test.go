package sessions_test

import (
	"context"
	"sync"
	"testing"

	"github.com/jrsteele09/go-auth-client/credentials/memstore"
	"github.com/jrsteele09/go-auth-client/navigation"
	"github.com/jrsteele09/go-auth-client/sessions"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func loggedIn(t *testing.T) *sessions.State {
	t.Helper()
	s := sessions.NewState(memstore.New())
	require.NoError(t, s.Login(context.Background(), jane, &oauth2.Token{AccessToken: "a1", RefreshToken: "r1"}))
	return s
}

func TestCascade_Trigger(t *testing.T) {
	ctx := context.Background()

	t.Run("logs out, remembers path and redirects", func(t *testing.T) {
		s := loggedIn(t)
		nav := navigation.NewHistory("/employees/42")
		c := sessions.NewCascade(s, nav, "/login", zerolog.Nop())

		require.True(t, c.Trigger(ctx))
		require.False(t, s.Authenticated())
		require.Equal(t, []string{"/login"}, nav.Redirects())

		path, ok := s.TakeReturnDestination(jane)
		require.True(t, ok)
		require.Equal(t, "/employees/42", path)
	})

	t.Run("already on login surface", func(t *testing.T) {
		s := loggedIn(t)
		nav := navigation.NewHistory("/login")
		c := sessions.NewCascade(s, nav, "/login", zerolog.Nop())

		require.False(t, c.Trigger(ctx))
		require.False(t, s.Authenticated())
		require.Empty(t, nav.Redirects())
		_, ok := s.TakeReturnDestination(jane)
		require.False(t, ok)
	})

	t.Run("concurrent triggers redirect once", func(t *testing.T) {
		s := loggedIn(t)
		nav := navigation.NewHistory("/payroll")
		c := sessions.NewCascade(s, nav, "/login", zerolog.Nop())

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				c.Trigger(ctx)
			}()
		}
		wg.Wait()

		require.Equal(t, []string{"/login"}, nav.Redirects())
		path, ok := s.TakeReturnDestination(jane)
		require.True(t, ok)
		require.Equal(t, "/payroll", path)
	})
}
