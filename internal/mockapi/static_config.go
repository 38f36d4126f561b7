package mockapi

import (
	"time"

	"github.com/jrsteele09/go-auth-client/internal/config"
)

// StaticConfig is a fixed, in-process configuration for tests and embedded
// use. Zero values fall back to the environment defaults.
type StaticConfig struct {
	config.Cors
	Env               string
	AccessTokenTTL    time.Duration
	KeepRefreshTokens bool
	RefreshCookie     bool
	JWTSecret         string
}

var _ Config = StaticConfig{}

func (c StaticConfig) GetEnv() string {
	if c.Env == "" {
		return "TEST"
	}
	return c.Env
}

func (c StaticConfig) GetPort() string {
	return config.MockAPI{}.GetPort()
}

func (c StaticConfig) GetAccessTokenTTL() time.Duration {
	if c.AccessTokenTTL == 0 {
		return config.MockAPI{}.GetAccessTokenTTL()
	}
	return c.AccessTokenTTL
}

func (c StaticConfig) GetRotateRefreshTokens() bool {
	return !c.KeepRefreshTokens
}

func (c StaticConfig) GetRefreshCookie() bool {
	return c.RefreshCookie
}

func (c StaticConfig) GetJWTSecret() string {
	if c.JWTSecret == "" {
		return "test-secret"
	}
	return c.JWTSecret
}
