package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/refresh"
	"github.com/jrsteele09/go-auth-client/tenants"
	"github.com/rs/zerolog"
)

// Coordinator is the part of refresh.Coordinator the transport depends on.
type Coordinator interface {
	Await(ctx context.Context, staleAccess string) refresh.Result
}

// Default endpoints that produce or consume credentials. A 401 from one of
// them is returned as is and never starts a refresh.
var DefaultExemptPaths = []string{"/auth/login", "/auth/refresh", "/auth/switch"}

// Transport is the authenticated request pipeline. Outbound it attaches the
// access credential and tenant headers; inbound it turns a 401 into a single
// coordinated refresh and one replay of the call.
type Transport struct {
	base        http.RoundTripper
	creds       credentials.Reader
	tenants     tenants.Reader
	coordinator Coordinator
	onFailure   refresh.FailureHandler
	exempt      []string
	logger      zerolog.Logger
}

var _ http.RoundTripper = (*Transport)(nil)

type Option func(*Transport)

func WithBase(base http.RoundTripper) Option {
	return func(t *Transport) {
		t.base = base
	}
}

func WithExemptPaths(paths ...string) Option {
	return func(t *Transport) {
		t.exempt = paths
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(t *Transport) {
		t.logger = logger
	}
}

func NewTransport(creds credentials.Reader, tenantReader tenants.Reader, coordinator Coordinator, onFailure refresh.FailureHandler, opts ...Option) *Transport {
	t := &Transport{
		base:        http.DefaultTransport,
		creds:       creds,
		tenants:     tenantReader,
		coordinator: coordinator,
		onFailure:   onFailure,
		exempt:      DefaultExemptPaths,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// IsExempt reports whether path is a credential endpoint.
func (t *Transport) IsExempt(path string) bool {
	for _, p := range t.exempt {
		if path == p || strings.HasSuffix(path, p) {
			return true
		}
	}
	return false
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	call, err := NewCall(req)
	if err != nil {
		return nil, err
	}
	return t.Send(call)
}

// Send delivers the call, recovering once from an expired access credential.
func (t *Transport) Send(call *Call) (*http.Response, error) {
	ctx := call.Context()
	access := t.currentAccess(ctx)
	logger := t.logger.With().Str("request_id", call.ID()).Str("path", call.Path()).Logger()

	resp, err := t.send(call, access)
	if err != nil || resp.StatusCode != http.StatusUnauthorized || t.IsExempt(call.Path()) {
		return resp, err
	}

	// The call must not be sent a third time.
	if call.alreadyRetried {
		logger.Warn().Msg("replayed call still unauthorized")
		t.onFailure.Trigger(context.WithoutCancel(ctx))
		return resp, nil
	}
	call.alreadyRetried = true

	original, err := bufferResponse(resp)
	if err != nil {
		return nil, err
	}

	logger.Debug().Msg("access credential rejected, waiting for refresh")
	result := t.coordinator.Await(ctx, access)
	if !result.OK() {
		if ctx.Err() != nil && errors.Is(result.Err, ctx.Err()) {
			return nil, ctx.Err()
		}
		logger.Debug().Err(result.Err).Msg("refresh unavailable, returning original response")
		return original, nil
	}

	replayed, err := t.send(call, result.Access)
	if err != nil || replayed.StatusCode != http.StatusUnauthorized {
		return replayed, err
	}
	logger.Warn().Msg("replayed call still unauthorized")
	t.onFailure.Trigger(context.WithoutCancel(ctx))
	return replayed, nil
}

func (t *Transport) send(call *Call, access string) (*http.Response, error) {
	var (
		sel       tenants.Selection
		hasTenant bool
	)
	if t.tenants != nil {
		sel, hasTenant = t.tenants.Current()
	}
	return t.base.RoundTrip(call.outgoing(access, sel, hasTenant))
}

func (t *Transport) currentAccess(ctx context.Context) string {
	pair, err := t.creds.Get(ctx)
	if err != nil {
		t.logger.Error().Err(err).Msg("failed to read access credential")
		return ""
	}
	return pair.Access
}

// bufferResponse reads and closes the body so the response can be returned
// after the connection has been reused by the replay.
func bufferResponse(resp *http.Response) (*http.Response, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}

// NewClient returns an http.Client sending through the transport. jar may be
// nil; it is required when the refresh credential is a cookie.
func NewClient(t *Transport, jar http.CookieJar) *http.Client {
	return &http.Client{Transport: t, Jar: jar}
}
