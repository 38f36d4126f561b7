package config

import "strings"

// StoreBackend names a credential store implementation.
type StoreBackend string

const (
	StoreBackendMemory StoreBackend = "memory"
	StoreBackendFile   StoreBackend = "file"
	StoreBackendRedis  StoreBackend = "redis"
)

type StoreConfig interface {
	GetStoreBackend() StoreBackend
	GetCredentialFile() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisKey() string
}

type Store struct{}

var _ StoreConfig = Store{}

func (Store) GetStoreBackend() StoreBackend {
	switch b := StoreBackend(strings.ToLower(GetEnv("CREDENTIAL_STORE", ""))); b {
	case StoreBackendFile, StoreBackendRedis:
		return b
	default:
		return StoreBackendMemory
	}
}

func (Store) GetCredentialFile() string {
	return GetEnv("CREDENTIAL_FILE", "./data/credentials.json")
}

func (Store) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "localhost:6379")
}

func (Store) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

func (Store) GetRedisDB() int {
	return GetEnvInt("REDIS_DB", 0)
}

// GetRedisKey is the hash key holding this client's credentials.
func (Store) GetRedisKey() string {
	return GetEnv("REDIS_KEY", "auth-client:credentials")
}
