package credentials_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/stretchr/testify/require"
)

func TestPair(t *testing.T) {
	t.Run("empty pair", func(t *testing.T) {
		var p credentials.Pair
		require.False(t, p.HasAccess())
		require.False(t, p.HasRefresh())
		require.Nil(t, p.Token())
	})

	t.Run("access only", func(t *testing.T) {
		p := credentials.Pair{Access: "opaque-access"}
		tok := p.Token()
		require.NotNil(t, tok)
		require.Equal(t, "opaque-access", tok.AccessToken)
		require.Equal(t, "Bearer", tok.Type())
		require.Empty(t, tok.RefreshToken)
		require.True(t, tok.Expiry.IsZero())
	})
}

func TestAccessExpiry(t *testing.T) {
	exp := time.Now().Add(10 * time.Minute).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": exp.Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	require.True(t, credentials.AccessExpiry(signed).Equal(exp))
	require.True(t, credentials.AccessExpiry("not-a-jwt").IsZero())
	require.True(t, credentials.AccessExpiry("").IsZero())
}
