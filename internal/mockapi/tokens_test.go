package mockapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRefreshTokens(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	NowTimeFunc = func() time.Time { return now }
	t.Cleanup(func() { NowTimeFunc = time.Now })

	m := newRefreshTokens(time.Hour)
	token, err := m.create("u-1", "acme", []string{"acme-north"})
	require.NoError(t, err)
	require.Len(t, token, 64)

	t.Run("kept without rotation", func(t *testing.T) {
		rt, next, err := m.use(token, false)
		require.NoError(t, err)
		require.Equal(t, token, next)
		require.Equal(t, "u-1", rt.UserID)
		require.Equal(t, []string{"acme-north"}, rt.BranchIDs)
	})

	t.Run("rotation invalidates the old token", func(t *testing.T) {
		_, next, err := m.use(token, true)
		require.NoError(t, err)
		require.NotEqual(t, token, next)

		_, _, err = m.use(token, true)
		require.ErrorIs(t, err, errRefreshTokenInvalid)
		token = next
	})

	t.Run("expired", func(t *testing.T) {
		now = now.Add(2 * time.Hour)
		_, _, err := m.use(token, false)
		require.ErrorIs(t, err, errRefreshTokenInvalid)
	})
}

func TestTokenIssuer(t *testing.T) {
	issuer := newTokenIssuer("secret", time.Minute)

	token, err := issuer.issue("u-1", "acme", []string{"acme-south"})
	require.NoError(t, err)

	claims, err := issuer.verify(token)
	require.NoError(t, err)
	require.Equal(t, "u-1", claims.Subject)
	require.Equal(t, "acme", claims.CompanyID)
	require.NotEmpty(t, claims.ID)

	_, err = newTokenIssuer("other-secret", time.Minute).verify(token)
	require.Error(t, err)

	issuer.expireAll()
	_, err = issuer.verify(token)
	require.Error(t, err)

	fresh, err := issuer.issue("u-1", "", nil)
	require.NoError(t, err)
	_, err = issuer.verify(fresh)
	require.NoError(t, err)
}
