package authapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/credentials/filestore"
	"github.com/jrsteele09/go-auth-client/credentials/memstore"
	"github.com/jrsteele09/go-auth-client/credentials/redisstore"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/navigation"
	"github.com/jrsteele09/go-auth-client/pipeline"
	"github.com/jrsteele09/go-auth-client/refresh"
	"github.com/jrsteele09/go-auth-client/sessions"
	"github.com/jrsteele09/go-auth-client/tenants"
	"github.com/rs/zerolog"
)

// RefreshCookieName is the cookie carrying the refresh credential in cookie deployments.
const RefreshCookieName = "refreshToken"

// Options wires a Client. Zero values get defaults; every collaborator can
// be injected for tests.
type Options struct {
	BaseURL          string
	LoginPath        string
	Endpoints        Endpoints
	Mode             config.RefreshMode
	Store            credentials.Store
	Navigator        navigation.Navigator
	Tenants          *tenants.Context
	Base             http.RoundTripper
	Timeout          time.Duration
	RefreshTimeout   time.Duration
	RememberUsername bool
	Logger           *zerolog.Logger
}

// New builds the session, tenant context, refresh coordinator and request
// pipeline around one cookie jar and credential store.
func New(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", opts.BaseURL, err)
	}
	if opts.Endpoints == (Endpoints{}) {
		opts.Endpoints = DefaultEndpoints
	}
	if opts.LoginPath == "" {
		opts.LoginPath = "/login"
	}
	if opts.Mode == "" {
		opts.Mode = config.RefreshModeStorage
	}
	if opts.Store == nil {
		opts.Store = memstore.New()
	}
	if opts.Navigator == nil {
		opts.Navigator = navigation.NewHistory("/")
	}
	if opts.Tenants == nil {
		opts.Tenants = tenants.NewContext()
	}
	if opts.Base == nil {
		opts.Base = http.DefaultTransport
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookiejar.New: %w", err)
	}

	refreshURL := baseURL + opts.Endpoints.Refresh
	var source refresh.Source
	switch opts.Mode {
	case config.RefreshModeCookie:
		u, err := url.Parse(refreshURL)
		if err != nil {
			return nil, fmt.Errorf("invalid refresh url %q: %w", refreshURL, err)
		}
		source = refresh.CookieSource{Jar: jar, RefreshURL: u, CookieName: RefreshCookieName}
	default:
		source = refresh.StoreSource{Store: opts.Store, Logger: logger}
	}

	session := sessions.NewState(opts.Store, sessions.WithLogger(logger), sessions.WithForgetter(source))
	cascade := sessions.NewCascade(session, opts.Navigator, opts.LoginPath, logger)

	// The refresh call bypasses the pipeline; it only shares the jar.
	refresher := NewRefresher(&http.Client{Transport: opts.Base, Jar: jar}, refreshURL)
	coordinator := refresh.NewCoordinator(opts.Store, source, refresher, cascade,
		refresh.WithLogger(logger),
		refresh.WithTimeout(opts.RefreshTimeout),
	)
	transport := pipeline.NewTransport(opts.Store, opts.Tenants, coordinator, cascade,
		pipeline.WithBase(opts.Base),
		pipeline.WithExemptPaths(opts.Endpoints.paths()...),
		pipeline.WithLogger(logger),
	)

	httpClient := pipeline.NewClient(transport, jar)
	httpClient.Timeout = opts.Timeout

	return &Client{
		baseURL:     baseURL,
		endpoints:   opts.Endpoints,
		mode:        opts.Mode,
		http:        httpClient,
		store:       opts.Store,
		session:     session,
		tenants:     opts.Tenants,
		navigator:   opts.Navigator,
		coordinator: coordinator,
		remember:    opts.RememberUsername,
		logger:      logger,
	}, nil
}

// NewFromConfig opens the configured credential store and builds a Client.
// A session persisted by a previous run is restored in storage mode; in
// cookie mode persisted credentials are discarded.
func NewFromConfig(ctx context.Context, cfg config.Config, navigator navigation.Navigator, logger zerolog.Logger) (*Client, error) {
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	c, err := New(Options{
		BaseURL:          cfg.GetAPIBaseURL(),
		LoginPath:        cfg.GetLoginPath(),
		Endpoints:        Endpoints{Login: cfg.GetLoginEndpoint(), Refresh: cfg.GetRefreshEndpoint(), Switch: cfg.GetSwitchEndpoint()},
		Mode:             cfg.GetRefreshMode(),
		Store:            store,
		Navigator:        navigator,
		Timeout:          cfg.GetRequestTimeout(),
		RefreshTimeout:   cfg.GetRefreshTimeout(),
		RememberUsername: cfg.GetRememberUsername(),
		Logger:           &logger,
	})
	if err != nil {
		return nil, err
	}

	// The cookie jar does not outlive the process, so a cookie mode session
	// persisted by an earlier run has no refresh credential to fall back on.
	if c.mode == config.RefreshModeCookie {
		if err := store.Clear(ctx); err != nil {
			logger.Warn().Err(err).Msg("failed to clear stale credentials")
		}
		return c, nil
	}
	if c.session.Restore(ctx) {
		logger.Info().Msg("restored session from credential store")
	}
	return c, nil
}

// OpenStore returns the credential store selected by configuration.
func OpenStore(ctx context.Context, cfg config.StoreConfig) (credentials.Store, error) {
	switch cfg.GetStoreBackend() {
	case config.StoreBackendFile:
		s, err := filestore.New(cfg.GetCredentialFile())
		if err != nil {
			return nil, fmt.Errorf("open file credential store: %w", err)
		}
		return s, nil
	case config.StoreBackendRedis:
		s, err := redisstore.New(ctx, redisstore.Config{
			Addr:     cfg.GetRedisAddr(),
			Password: cfg.GetRedisPassword(),
			DB:       cfg.GetRedisDB(),
			Key:      cfg.GetRedisKey(),
		})
		if err != nil {
			return nil, fmt.Errorf("open redis credential store: %w", err)
		}
		return s, nil
	default:
		return memstore.New(), nil
	}
}
