package config

import (
	"fmt"
	"strings"
	"time"
)

type MockAPIConfig interface {
	GetPort() string
	GetAccessTokenTTL() time.Duration
	GetRotateRefreshTokens() bool
	GetRefreshCookie() bool
	GetJWTSecret() string
}

type MockAPI struct{}

var _ MockAPIConfig = MockAPI{}

func (MockAPI) GetPort() string {
	port := GetEnv("PORT", "8080")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (MockAPI) GetAccessTokenTTL() time.Duration {
	return GetEnvDuration("ACCESS_TOKEN_TTL", 5*time.Minute)
}

func (MockAPI) GetRotateRefreshTokens() bool {
	return GetEnvBool("ROTATE_REFRESH_TOKENS", true)
}

// GetRefreshCookie makes the mock API also set the refresh credential as an HttpOnly cookie.
func (MockAPI) GetRefreshCookie() bool {
	return GetEnvBool("REFRESH_COOKIE", false)
}

func (MockAPI) GetJWTSecret() string {
	return GetEnv("JWT_SECRET", "dev-secret-change-me")
}
