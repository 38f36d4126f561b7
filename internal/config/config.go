package config

import (
	"time"

	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	ClientConfig
	StoreConfig
	MockAPIConfig
	CorsConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetLogFile() string
}

type ClientConfig interface {
	GetAPIBaseURL() string
	GetLoginPath() string
	GetLoginEndpoint() string
	GetRefreshEndpoint() string
	GetSwitchEndpoint() string
	GetRefreshMode() RefreshMode
	GetRequestTimeout() time.Duration
	GetRefreshTimeout() time.Duration
	GetRememberUsername() bool
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Client
	Store
	MockAPI
	Cors
}

// New returns the environment backed configuration.
func New() Config {
	return mainConfig{}
}

// Load reads optional .env files into the process environment and returns the
// configuration. Missing files are not an error.
func Load(files ...string) Config {
	_ = godotenv.Load(files...)
	return New()
}
