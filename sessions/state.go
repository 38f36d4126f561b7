package sessions

import (
	"context"
	"fmt"
	"sync"

	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// Identity is the authenticated user as returned by the login endpoint.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
}

func (i Identity) IsZero() bool {
	return i.ID == "" && i.Username == ""
}

// key identifies the user a return destination belongs to.
func (i Identity) key() string {
	if i.ID != "" {
		return i.ID
	}
	return i.Username
}

type returnDestination struct {
	path     string
	identity string
}

// State is the process wide session. It owns the authentication flag, the
// current identity and the return destination, and clears the credential
// store on logout.
type State struct {
	store      credentials.Store
	logger     zerolog.Logger
	forgetters []Forgetter

	lock          sync.RWMutex
	authenticated bool
	identity      Identity
	destination   *returnDestination
}

type Option func(*State)

// Forgetter holds a credential outside the store that must go on logout.
type Forgetter interface {
	Forget(ctx context.Context) error
}

func WithForgetter(f Forgetter) Option {
	return func(s *State) {
		s.forgetters = append(s.forgetters, f)
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *State) {
		s.logger = logger
	}
}

func NewState(store credentials.Store, opts ...Option) *State {
	s := &State{
		store:  store,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login marks the session authenticated and stores the credentials. The
// refresh credential is stored with the access credential when the login
// response carried one; otherwise only the access credential is written.
func (s *State) Login(ctx context.Context, identity Identity, token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("login for %q: missing access credential", identity.Username)
	}

	var err error
	if token.RefreshToken != "" {
		err = s.store.SetBoth(ctx, token.AccessToken, token.RefreshToken)
	} else {
		err = s.store.SetAccess(ctx, token.AccessToken)
	}
	if err != nil {
		return fmt.Errorf("store credentials: %w", err)
	}

	s.lock.Lock()
	s.authenticated = true
	s.identity = identity
	s.lock.Unlock()

	s.logger.Info().Str("user", identity.Username).Msg("session started")
	return nil
}

// Restore marks the session authenticated when the durable store still holds
// an access credential from a previous run. The identity is unknown until
// the next login.
func (s *State) Restore(ctx context.Context) bool {
	pair, err := s.store.Get(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to read credential store")
		return false
	}
	if !pair.HasAccess() {
		return false
	}

	s.lock.Lock()
	s.authenticated = true
	s.lock.Unlock()

	s.logger.Debug().Time("expiry", pair.Token().Expiry).Bool("refreshable", pair.HasRefresh()).Msg("session restored")
	return true
}

// UpdateAccess stores a new access credential without touching the
// authentication flag or identity.
func (s *State) UpdateAccess(ctx context.Context, access string) error {
	if err := s.store.SetAccess(ctx, access); err != nil {
		return fmt.Errorf("store access credential: %w", err)
	}
	return nil
}

// UpdateCredentials stores a new access credential and, when the server
// rotated it, the new refresh credential in the same write.
func (s *State) UpdateCredentials(ctx context.Context, access, refresh string) error {
	if refresh == "" {
		return s.UpdateAccess(ctx, access)
	}
	if err := s.store.SetBoth(ctx, access, refresh); err != nil {
		return fmt.Errorf("store credentials: %w", err)
	}
	return nil
}

// Logout clears the session and the credential store. It returns true only
// when the session actually went from authenticated to logged out, so
// repeated calls are no-ops.
func (s *State) Logout(ctx context.Context) bool {
	s.lock.Lock()
	wasAuthenticated := s.authenticated
	s.authenticated = false
	s.identity = Identity{}
	s.lock.Unlock()

	if err := s.store.Clear(ctx); err != nil {
		s.logger.Error().Err(err).Msg("failed to clear credential store on logout")
	}
	for _, f := range s.forgetters {
		if err := f.Forget(ctx); err != nil {
			s.logger.Error().Err(err).Msg("failed to forget refresh credential on logout")
		}
	}
	if wasAuthenticated {
		s.logger.Info().Msg("session ended")
	}
	return wasAuthenticated
}

func (s *State) Authenticated() bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.authenticated
}

func (s *State) Identity() Identity {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.identity
}

// SetReturnDestination records where to resume after re-authentication,
// keyed by the identity that was active when it was recorded.
func (s *State) SetReturnDestination(path string, identityHint Identity) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.destination = &returnDestination{path: path, identity: identityHint.key()}
}

// TakeReturnDestination returns and forgets the recorded destination. A
// destination recorded for a different identity is discarded.
func (s *State) TakeReturnDestination(identity Identity) (string, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()

	dest := s.destination
	s.destination = nil
	if dest == nil || dest.identity == "" || dest.identity != identity.key() {
		return "", false
	}
	return dest.path, true
}
