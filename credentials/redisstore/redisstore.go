package redisstore

import (
	"context"
	"time"

	"github.com/jrsteele09/go-auth-client/credentials"
	autherrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/redis/go-redis/v9"
)

var (
	_ credentials.Store              = (*Store)(nil)
	_ credentials.UsernameRememberer = (*Store)(nil)
)

// Config holds Redis connection settings for the credential store
type Config struct {
	Addr        string        // Redis server address
	Password    string        // Redis password
	DB          int           // Redis database number
	Key         string        // Hash key holding the credentials
	DialTimeout time.Duration // Connection timeout
}

// Store keeps the credential pair in a single Redis hash. Pair updates run in
// a MULTI/EXEC transaction so HGETALL never sees a mixed pair.
type Store struct {
	client redis.UniversalClient
	key    string
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 5 * time.Second
	}
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, autherrors.Wrapf(err, "%w: failed to connect to redis at %s", autherrors.ErrStore, cfg.Addr)
	}
	return NewWithClient(client, cfg.Key), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client redis.UniversalClient, key string) *Store {
	return &Store{client: client, key: key}
}

func (s *Store) Get(ctx context.Context) (credentials.Pair, error) {
	values, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return credentials.Pair{}, autherrors.Wrapf(err, "%w: failed to read credentials", autherrors.ErrStore)
	}
	return credentials.Pair{
		Access:  values[credentials.KeyAccess],
		Refresh: values[credentials.KeyRefresh],
	}, nil
}

func (s *Store) SetAccess(ctx context.Context, access string) error {
	if err := s.client.HSet(ctx, s.key, credentials.KeyAccess, access).Err(); err != nil {
		return autherrors.Wrapf(err, "%w: failed to store access credential", autherrors.ErrStore)
	}
	return nil
}

func (s *Store) SetBoth(ctx context.Context, access, refresh string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.key, credentials.KeyAccess, access, credentials.KeyRefresh, refresh)
		return nil
	})
	if err != nil {
		return autherrors.Wrapf(err, "%w: failed to store credentials", autherrors.ErrStore)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HDel(ctx, s.key, credentials.KeyAccess, credentials.KeyRefresh)
		return nil
	})
	if err != nil {
		return autherrors.Wrapf(err, "%w: failed to clear credentials", autherrors.ErrStore)
	}
	return nil
}

func (s *Store) RememberUsername(ctx context.Context, username string) error {
	if err := s.client.HSet(ctx, s.key, credentials.KeyRememberedUsername, username).Err(); err != nil {
		return autherrors.Wrapf(err, "%w: failed to store remembered username", autherrors.ErrStore)
	}
	return nil
}

func (s *Store) RememberedUsername(ctx context.Context) (string, error) {
	username, err := s.client.HGet(ctx, s.key, credentials.KeyRememberedUsername).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", autherrors.Wrapf(err, "%w: failed to read remembered username", autherrors.ErrStore)
	}
	return username, nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
