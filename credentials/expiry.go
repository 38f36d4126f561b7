package credentials

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessExpiry decodes the exp claim of a JWT access credential without
// verifying it. The server stays authoritative; a zero time means unknown.
func AccessExpiry(access string) time.Time {
	if access == "" {
		return time.Time{}
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(access, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
