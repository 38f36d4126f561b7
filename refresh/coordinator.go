package refresh

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-auth-client/credentials"
	autherrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/internal/logging"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// State of the coordinator.
type State int

const (
	StateIdle State = iota
	StateRefreshing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRefreshing:
		return "refreshing"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Refresher exchanges a refresh credential for new credentials. A returned
// token without a refresh credential means the server did not rotate it.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

// FailureHandler runs the forced logout when credentials cannot be recovered.
// It may be called with the coordinator lock held and must not call back
// into the coordinator.
type FailureHandler interface {
	Trigger(ctx context.Context) bool
}

const defaultRefreshTimeout = 15 * time.Second

// Coordinator guarantees a single in-flight refresh. Callers that detect an
// expired access credential wait on the same refresh episode and all receive
// its result exactly once.
type Coordinator struct {
	store     credentials.Store
	source    Source
	refresher Refresher
	onFailure FailureHandler
	timeout   time.Duration
	logger    zerolog.Logger

	lock     sync.Mutex
	state    State
	waiters  []chan Result
	episodes int
}

type Option func(*Coordinator)

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithTimeout bounds the refresh call. The refresh is not tied to any
// caller's context, so this is what guarantees an episode settles.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Coordinator) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

func NewCoordinator(store credentials.Store, source Source, refresher Refresher, onFailure FailureHandler, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:     store,
		source:    source,
		refresher: refresher,
		onFailure: onFailure,
		timeout:   defaultRefreshTimeout,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Await is called by a caller whose request was rejected with a 401 while
// carrying staleAccess. It returns the access credential to replay with, or
// the failure. When the store already holds a different access credential
// (another episode finished after the caller's request was sent) it resumes
// immediately without refreshing again.
//
// If ctx ends first Await returns ctx.Err(), but the waiter stays queued and
// is still resolved by the episode.
func (c *Coordinator) Await(ctx context.Context, staleAccess string) Result {
	ch, err := c.enqueue(ctx, staleAccess)
	if err != nil {
		c.logger.Warn().Err(err).Msg("access credential expired and cannot be refreshed")
		c.onFailure.Trigger(context.WithoutCancel(ctx))
		return Failed(err)
	}

	select {
	case r := <-ch:
		return r
	case <-ctx.Done():
		return Failed(ctx.Err())
	}
}

// enqueue performs the single-flight check-and-set under the lock.
func (c *Coordinator) enqueue(ctx context.Context, staleAccess string) (<-chan Result, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	ch := make(chan Result, 1)

	if c.state == StateRefreshing {
		c.waiters = append(c.waiters, ch)
		c.logger.Debug().Int("waiters", len(c.waiters)).Msg("joined refresh in progress")
		return ch, nil
	}

	if pair, err := c.store.Get(ctx); err == nil && pair.HasAccess() && pair.Access != staleAccess {
		ch <- Resumed(pair.Access)
		return ch, nil
	}

	refreshToken, ok := c.source.RefreshCredential(ctx)
	if !ok {
		return nil, autherrors.ErrNoRefreshCredential
	}

	c.state = StateRefreshing
	c.episodes++
	c.waiters = append(c.waiters, ch)

	episode := uuid.New().String()
	go c.refresh(episode, refreshToken)
	return ch, nil
}

func (c *Coordinator) refresh(episode, refreshToken string) {
	logger := c.logger.With().Str("episode", episode).Logger()
	logger.Info().Msg("refreshing access credential")

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	var (
		token *oauth2.Token
		err   error
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("refresher panic: %v", r)
			}
		}()
		token, err = c.refresher.Refresh(ctx, refreshToken)
	}()
	if err == nil && (token == nil || token.AccessToken == "") {
		err = autherrors.New("refresh response carried no access credential")
	}

	c.lock.Lock()
	if err == nil {
		err = c.storeToken(ctx, token)
	}
	if err != nil {
		// The session ends before the coordinator goes idle, so a late 401
		// cannot start another episode with the rejected refresh credential.
		c.onFailure.Trigger(context.Background())
	}
	waiters := c.waiters
	c.waiters = nil
	c.state = StateIdle
	c.lock.Unlock()

	if err != nil {
		logger.Error().Err(err).Int("waiters", len(waiters)).Msg("refresh failed")
		release(waiters, Failed(fmt.Errorf("%w: %w", autherrors.ErrRefreshFailed, err)))
		return
	}

	logger.Info().
		Int("waiters", len(waiters)).
		Str("access", logging.MaskToken(token.AccessToken)).
		Bool("rotated", token.RefreshToken != "").
		Time("expiry", credentials.AccessExpiry(token.AccessToken)).
		Msg("access credential refreshed")
	release(waiters, Resumed(token.AccessToken))
}

// release resolves every waiter. Channels are buffered so abandoned waiters
// never block.
func release(waiters []chan Result, r Result) {
	for _, w := range waiters {
		w <- r
	}
}

func (c *Coordinator) storeToken(ctx context.Context, token *oauth2.Token) error {
	if token.RefreshToken != "" {
		return c.store.SetBoth(ctx, token.AccessToken, token.RefreshToken)
	}
	return c.store.SetAccess(ctx, token.AccessToken)
}

func (c *Coordinator) State() State {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.state
}

// Pending returns the number of waiters queued on the current episode.
func (c *Coordinator) Pending() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.waiters)
}

// Episodes returns how many refresh calls have been started.
func (c *Coordinator) Episodes() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.episodes
}
