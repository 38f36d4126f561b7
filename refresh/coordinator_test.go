package refresh_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/credentials/memstore"
	autherrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/refresh"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type fakeRefresher struct {
	gate     chan struct{}
	token    *oauth2.Token
	err      error
	panicMsg string

	calls    atomic.Int32
	lock     sync.Mutex
	received []string
}

func newFakeRefresher(token *oauth2.Token, err error) *fakeRefresher {
	return &fakeRefresher{gate: make(chan struct{}), token: token, err: err}
}

func (f *fakeRefresher) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	f.calls.Add(1)
	f.lock.Lock()
	f.received = append(f.received, refreshToken)
	f.lock.Unlock()

	<-f.gate
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	return f.token, f.err
}

func (f *fakeRefresher) release() {
	close(f.gate)
}

func (f *fakeRefresher) receivedTokens() []string {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]string(nil), f.received...)
}

type fakeFailure struct {
	triggers atomic.Int32
}

func (f *fakeFailure) Trigger(context.Context) bool {
	f.triggers.Add(1)
	return true
}

type fixture struct {
	store     *memstore.Store
	refresher *fakeRefresher
	failure   *fakeFailure
	coord     *refresh.Coordinator
}

func newFixture(access, refreshToken string, refresher *fakeRefresher) *fixture {
	store := memstore.NewWith(access, refreshToken)
	failure := &fakeFailure{}
	return &fixture{
		store:     store,
		refresher: refresher,
		failure:   failure,
		coord: refresh.NewCoordinator(store, refresh.StoreSource{Store: store}, refresher, failure,
			refresh.WithTimeout(time.Second)),
	}
}

// awaitAll starts n concurrent waiters and returns a function collecting their results.
func (f *fixture) awaitAll(t *testing.T, n int, stale string) func() []refresh.Result {
	t.Helper()
	results := make([]refresh.Result, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = f.coord.Await(context.Background(), stale)
		}(i)
	}
	require.Eventually(t, func() bool { return f.coord.Pending() == n }, time.Second, time.Millisecond)
	return func() []refresh.Result {
		wg.Wait()
		return results
	}
}

func TestCoordinator_SingleFlight(t *testing.T) {
	f := newFixture("old-access", "refresh-1", newFakeRefresher(&oauth2.Token{AccessToken: "new-access"}, nil))

	wait := f.awaitAll(t, 10, "old-access")
	require.Equal(t, refresh.StateRefreshing, f.coord.State())
	f.refresher.release()

	for _, r := range wait() {
		require.True(t, r.OK())
		require.Equal(t, "new-access", r.Access)
	}
	require.EqualValues(t, 1, f.refresher.calls.Load())
	require.Equal(t, 1, f.coord.Episodes())
	require.Equal(t, refresh.StateIdle, f.coord.State())
	require.Zero(t, f.coord.Pending())
	require.Zero(t, f.failure.triggers.Load())

	pair, err := f.store.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, credentials.Pair{Access: "new-access", Refresh: "refresh-1"}, pair, "unrotated refresh credential is kept")
}

func TestCoordinator_NoRefreshCredential(t *testing.T) {
	f := newFixture("old-access", "", newFakeRefresher(nil, nil))

	r := f.coord.Await(context.Background(), "old-access")
	require.False(t, r.OK())
	require.ErrorIs(t, r.Err, autherrors.ErrNoRefreshCredential)
	require.Zero(t, f.refresher.calls.Load())
	require.EqualValues(t, 1, f.failure.triggers.Load())
	require.Equal(t, refresh.StateIdle, f.coord.State())
}

func TestCoordinator_RefreshFailure(t *testing.T) {
	f := newFixture("old-access", "refresh-1", newFakeRefresher(nil, errors.New("connection reset")))

	wait := f.awaitAll(t, 2, "old-access")
	f.refresher.release()

	for _, r := range wait() {
		require.False(t, r.OK())
		require.ErrorIs(t, r.Err, autherrors.ErrRefreshFailed)
		require.Contains(t, r.Err.Error(), "connection reset")
	}
	// The failure cascade has run by the time waiters are released
	require.EqualValues(t, 1, f.failure.triggers.Load())
	require.EqualValues(t, 1, f.refresher.calls.Load())
	require.Equal(t, refresh.StateIdle, f.coord.State())
	require.Zero(t, f.coord.Pending())
}

func TestCoordinator_RotationUsedByNextEpisode(t *testing.T) {
	first := newFakeRefresher(&oauth2.Token{AccessToken: "access-2", RefreshToken: "refresh-2"}, nil)
	f := newFixture("access-1", "refresh-1", first)
	first.release()

	r := f.coord.Await(context.Background(), "access-1")
	require.True(t, r.OK())
	pair, _ := f.store.Get(context.Background())
	require.Equal(t, credentials.Pair{Access: "access-2", Refresh: "refresh-2"}, pair)

	// The new access credential expires too.
	f.refresher.token = &oauth2.Token{AccessToken: "access-3"}
	r = f.coord.Await(context.Background(), "access-2")
	require.True(t, r.OK())
	require.Equal(t, "access-3", r.Access)
	require.Equal(t, []string{"refresh-1", "refresh-2"}, first.receivedTokens())
	require.Equal(t, 2, f.coord.Episodes())
}

func TestCoordinator_StaleAccessResumesWithoutRefresh(t *testing.T) {
	f := newFixture("current-access", "refresh-1", newFakeRefresher(nil, nil))

	r := f.coord.Await(context.Background(), "access-from-before-last-refresh")
	require.True(t, r.OK())
	require.Equal(t, "current-access", r.Access)
	require.Zero(t, f.refresher.calls.Load())
	require.Zero(t, f.coord.Episodes())
}

func TestCoordinator_CancelledWaiterIsStillDrained(t *testing.T) {
	f := newFixture("old-access", "refresh-1", newFakeRefresher(&oauth2.Token{AccessToken: "new-access"}, nil))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan refresh.Result, 1)
	go func() { done <- f.coord.Await(ctx, "old-access") }()
	require.Eventually(t, func() bool { return f.coord.Pending() == 1 }, time.Second, time.Millisecond)

	cancel()
	r := <-done
	require.ErrorIs(t, r.Err, context.Canceled)
	require.Equal(t, refresh.StateRefreshing, f.coord.State(), "refresh is not cancelled with its caller")

	f.refresher.release()
	require.Eventually(t, func() bool { return f.coord.State() == refresh.StateIdle }, time.Second, time.Millisecond)
	require.Zero(t, f.coord.Pending())
	pair, _ := f.store.Get(context.Background())
	require.Equal(t, "new-access", pair.Access)
}

func TestCoordinator_BadRefreshResponses(t *testing.T) {
	t.Run("empty access credential", func(t *testing.T) {
		f := newFixture("old-access", "refresh-1", newFakeRefresher(&oauth2.Token{}, nil))
		f.refresher.release()

		r := f.coord.Await(context.Background(), "old-access")
		require.ErrorIs(t, r.Err, autherrors.ErrRefreshFailed)
		require.Eventually(t, func() bool { return f.failure.triggers.Load() == 1 }, time.Second, time.Millisecond)
	})

	t.Run("refresher panics", func(t *testing.T) {
		refresher := newFakeRefresher(nil, nil)
		refresher.panicMsg = "boom"
		f := newFixture("old-access", "refresh-1", refresher)

		wait := f.awaitAll(t, 3, "old-access")
		refresher.release()
		for _, r := range wait() {
			require.ErrorIs(t, r.Err, autherrors.ErrRefreshFailed)
			require.Contains(t, r.Err.Error(), "boom")
		}
		require.Equal(t, refresh.StateIdle, f.coord.State())
	})
}

type hungRefresher struct{}

func (hungRefresher) Refresh(ctx context.Context, _ string) (*oauth2.Token, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestCoordinator_RefreshTimeout(t *testing.T) {
	store := memstore.NewWith("old-access", "refresh-1")
	f := &fixture{store: store, failure: &fakeFailure{}}
	f.coord = refresh.NewCoordinator(store, refresh.StoreSource{Store: store}, hungRefresher{}, f.failure,
		refresh.WithTimeout(200*time.Millisecond))

	wait := f.awaitAll(t, 3, "old-access")
	for _, r := range wait() {
		require.False(t, r.OK())
		require.ErrorIs(t, r.Err, autherrors.ErrRefreshFailed)
		require.ErrorIs(t, r.Err, context.DeadlineExceeded)
	}
	require.Equal(t, 1, f.coord.Episodes())
	require.EqualValues(t, 1, f.failure.triggers.Load())
	require.Equal(t, refresh.StateIdle, f.coord.State())
	require.Zero(t, f.coord.Pending())

	pair, err := store.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, "old-access", pair.Access)
}
