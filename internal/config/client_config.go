package config

import (
	"strings"
	"time"
)

// RefreshMode selects where the refresh credential lives.
type RefreshMode string

const (
	// RefreshModeStorage keeps the refresh credential in the credential store
	// and sends it in the refresh request body.
	RefreshModeStorage RefreshMode = "storage"
	// RefreshModeCookie relies on a server-set HttpOnly cookie held by the
	// client's cookie jar.
	RefreshModeCookie RefreshMode = "cookie"
)

const (
	apiBaseURLVar       = "API_BASE_URL"
	loginPathVar        = "LOGIN_PATH"
	refreshModeVar      = "REFRESH_MODE"
	requestTimeoutVar   = "REQUEST_TIMEOUT"
	refreshTimeoutVar   = "REFRESH_TIMEOUT"
	rememberUsernameVar = "REMEMBER_USERNAME"
)

type Client struct{}

var _ ClientConfig = Client{}

func (Client) GetAPIBaseURL() string {
	return strings.TrimRight(GetEnv(apiBaseURLVar, "http://localhost:8080"), "/")
}

// GetLoginPath is the login surface users are sent to after a forced logout.
func (Client) GetLoginPath() string {
	return GetEnv(loginPathVar, "/login")
}

func (Client) GetLoginEndpoint() string {
	return "/auth/login"
}

func (Client) GetRefreshEndpoint() string {
	return "/auth/refresh"
}

func (Client) GetSwitchEndpoint() string {
	return "/auth/switch"
}

func (Client) GetRefreshMode() RefreshMode {
	if RefreshMode(strings.ToLower(GetEnv(refreshModeVar, ""))) == RefreshModeCookie {
		return RefreshModeCookie
	}
	return RefreshModeStorage
}

func (Client) GetRequestTimeout() time.Duration {
	return GetEnvDuration(requestTimeoutVar, 30*time.Second)
}

func (Client) GetRefreshTimeout() time.Duration {
	return GetEnvDuration(refreshTimeoutVar, 15*time.Second)
}

func (Client) GetRememberUsername() bool {
	return GetEnvBool(rememberUsernameVar, true)
}
