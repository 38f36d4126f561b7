package mockapi

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/tenants"
	tenantrepofakes "github.com/jrsteele09/go-auth-client/tenants/repofakes"
	"github.com/rs/zerolog"
)

const (
	contentTypeJSON   = "application/json; charset=utf-8"
	refreshCookieName = "refreshToken"
	refreshTokenTTL   = 24 * time.Hour
)

// Config is the subset of configuration the mock API reads.
type Config interface {
	config.MockAPIConfig
	config.CorsConfig
	GetEnv() string
}

// Server is an in-memory business API with login, refresh and tenant switch
// endpoints, used to exercise the client end to end.
type Server struct {
	env     string
	mux     *http.ServeMux
	routes  []string
	config  Config
	logger  zerolog.Logger
	users   *userDirectory
	tenants tenants.Repo
	access  *tokenIssuer
	refresh *refreshTokens

	rotate       bool
	cookie       bool
	refreshCalls atomic.Int64
	failRefresh  atomic.Bool
	refreshDelay atomic.Int64
	rejectAccess atomic.Bool

	employeesLock sync.Mutex
	employees     map[string][]Employee // keyed by company ID
}

type Option func(*Server)

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithTenantRepo replaces the in-memory company repository.
func WithTenantRepo(repo tenants.Repo) Option {
	return func(s *Server) {
		s.tenants = repo
	}
}

func New(cfg Config, opts ...Option) *Server {
	s := &Server{
		env:       cfg.GetEnv(),
		mux:       http.NewServeMux(),
		config:    cfg,
		logger:    zerolog.Nop(),
		users:     newUserDirectory(),
		tenants:   tenantrepofakes.NewFakeTenantRepo(),
		access:    newTokenIssuer(cfg.GetJWTSecret(), cfg.GetAccessTokenTTL()),
		refresh:   newRefreshTokens(refreshTokenTTL),
		rotate:    cfg.GetRotateRefreshTokens(),
		cookie:    cfg.GetRefreshCookie(),
		employees: make(map[string][]Employee),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.initRoutes()
	s.logRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler http.HandlerFunc) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// AddUser registers a user with a plain text password.
func (s *Server) AddUser(u User, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("[Server AddUser] failed to hash password: %w", err)
	}
	u.PasswordHash = hash
	s.users.upsert(&u)
	return nil
}

// AddCompany registers a company and its branches.
func (s *Server) AddCompany(c tenants.Company) error {
	if err := s.tenants.Upsert(&c); err != nil {
		return fmt.Errorf("[Server AddCompany] failed to store company: %w", err)
	}
	return nil
}

// ExpireAll invalidates every access token issued so far. Refresh tokens stay
// valid.
func (s *Server) ExpireAll() {
	s.access.expireAll()
}

// RevokeRefreshTokens invalidates every refresh token issued so far.
func (s *Server) RevokeRefreshTokens() {
	s.refresh.revokeAll()
}

// RefreshCalls is the number of requests the refresh endpoint has received.
func (s *Server) RefreshCalls() int {
	return int(s.refreshCalls.Load())
}

// FailRefresh makes the refresh endpoint answer 500 until reset.
func (s *Server) FailRefresh(fail bool) {
	s.failRefresh.Store(fail)
}

// DelayRefresh makes the refresh endpoint wait d before answering.
func (s *Server) DelayRefresh(d time.Duration) {
	s.refreshDelay.Store(int64(d))
}

// RejectAccessTokens makes every protected endpoint answer 401, including
// for freshly refreshed tokens.
func (s *Server) RejectAccessTokens(reject bool) {
	s.rejectAccess.Store(reject)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		method, path, found := strings.Cut(route, " ")
		if !found {
			method, path = "", route
		}
		s.logger.Debug().Str("method", method).Str("path", path).Msg("route registered")
	}
}
