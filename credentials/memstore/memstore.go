package memstore

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-auth-client/credentials"
)

var (
	_ credentials.Store              = (*Store)(nil)
	_ credentials.UsernameRememberer = (*Store)(nil)
)

// Store is an in-memory credential store. It does not survive restarts and
// is the default for tests and short lived processes.
type Store struct {
	pair     credentials.Pair
	username string
	lock     sync.RWMutex
}

func New() *Store {
	return &Store{}
}

// NewWith returns a store pre-loaded with the given pair.
func NewWith(access, refresh string) *Store {
	return &Store{pair: credentials.Pair{Access: access, Refresh: refresh}}
}

func (s *Store) Get(_ context.Context) (credentials.Pair, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.pair, nil
}

func (s *Store) SetAccess(_ context.Context, access string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.pair.Access = access
	return nil
}

func (s *Store) SetBoth(_ context.Context, access, refresh string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.pair = credentials.Pair{Access: access, Refresh: refresh}
	return nil
}

func (s *Store) Clear(_ context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.pair = credentials.Pair{}
	return nil
}

func (s *Store) RememberUsername(_ context.Context, username string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.username = username
	return nil
}

func (s *Store) RememberedUsername(_ context.Context) (string, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.username, nil
}
