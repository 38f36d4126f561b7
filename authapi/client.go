package authapi

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/internal/config"
	autherrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/navigation"
	"github.com/jrsteele09/go-auth-client/refresh"
	"github.com/jrsteele09/go-auth-client/sessions"
	"github.com/jrsteele09/go-auth-client/tenants"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// Endpoints are the credential endpoints, relative to the base URL.
type Endpoints struct {
	Login   string
	Refresh string
	Switch  string
}

func (e Endpoints) paths() []string {
	return []string{e.Login, e.Refresh, e.Switch}
}

// DefaultEndpoints matches the business API.
var DefaultEndpoints = Endpoints{
	Login:   "/auth/login",
	Refresh: "/auth/refresh",
	Switch:  "/auth/switch",
}

// Client is the authenticated API client. Every call goes through the
// request pipeline; login and tenant switch update the session and tenant
// context.
type Client struct {
	baseURL     string
	endpoints   Endpoints
	mode        config.RefreshMode
	http        *http.Client
	store       credentials.Store
	session     *sessions.State
	tenants     *tenants.Context
	navigator   navigation.Navigator
	coordinator *refresh.Coordinator
	remember    bool
	logger      zerolog.Logger
}

// Login authenticates with username and password, starts the session and
// preselects the tenant when the user belongs to a single company. When the
// user was forced out earlier, they are sent back to the page they were on.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var resp LoginResponse
	err := doJSON(ctx, c.http, http.MethodPost, c.URL(c.endpoints.Login), LoginRequest{Username: username, Password: password}, &resp)
	if autherrors.Is(err, autherrors.ErrUnauthorized) {
		return nil, fmt.Errorf("%w: %w", autherrors.ErrInvalidCredentials, err)
	}
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	token := &oauth2.Token{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       credentials.AccessExpiry(resp.AccessToken),
	}
	// Cookie deployments never mirror the refresh credential locally.
	if c.mode == config.RefreshModeCookie {
		token.RefreshToken = ""
	}
	if err := c.session.Login(ctx, resp.User, token); err != nil {
		return nil, err
	}

	c.preselectTenant(resp)

	if c.remember {
		if r, ok := c.store.(credentials.UsernameRememberer); ok {
			if err := r.RememberUsername(ctx, username); err != nil {
				c.logger.Warn().Err(err).Msg("failed to remember username")
			}
		}
	}

	result := &LoginResult{Identity: resp.User, Companies: resp.Companies}
	if dest, ok := c.session.TakeReturnDestination(resp.User); ok {
		result.ReturnTo = dest
		c.navigator.Redirect(dest)
	}
	return result, nil
}

func (c *Client) preselectTenant(resp LoginResponse) {
	if len(resp.Companies) != 1 {
		return
	}
	company := resp.Companies[0]
	var branchIDs []string
	for _, b := range resp.Branches {
		if b.CompanyID == "" || b.CompanyID == company.ID {
			branchIDs = append(branchIDs, b.ID)
		}
	}
	c.tenants.Select(company.ID, branchIDs...)
}

// SwitchTenant asks for an access credential scoped to the given company and
// branches and makes that selection current.
func (c *Client) SwitchTenant(ctx context.Context, companyID string, branchIDs ...string) error {
	if companyID == "" {
		return fmt.Errorf("switch tenant: %w: company id is required", autherrors.ErrInvalidRequest)
	}
	if !c.session.Authenticated() {
		return fmt.Errorf("switch tenant: %w", autherrors.ErrNotAuthenticated)
	}

	var resp TokenResponse
	err := doJSON(ctx, c.http, http.MethodPost, c.URL(c.endpoints.Switch), SwitchRequest{CompanyID: companyID, BranchIDs: branchIDs}, &resp)
	if err != nil {
		var statusErr *autherrors.StatusError
		if autherrors.As(err, &statusErr) && statusErr.StatusCode == http.StatusForbidden {
			return fmt.Errorf("switch tenant %s: %w: %w", companyID, autherrors.ErrUnauthorizedTenant, err)
		}
		return fmt.Errorf("switch tenant %s: %w", companyID, err)
	}

	refreshToken := resp.RefreshToken
	if c.mode == config.RefreshModeCookie {
		refreshToken = ""
	}
	if err := c.session.UpdateCredentials(ctx, resp.AccessToken, refreshToken); err != nil {
		return err
	}
	c.tenants.Select(companyID, branchIDs...)
	c.logger.Info().Str("company", companyID).Strs("branches", branchIDs).Msg("tenant switched")
	return nil
}

// Logout ends the session locally and clears the tenant selection.
func (c *Client) Logout(ctx context.Context) {
	c.session.Logout(ctx)
	c.tenants.Clear()
}

// RememberedUsername returns the last username used to log in, if the store keeps it.
func (c *Client) RememberedUsername(ctx context.Context) string {
	r, ok := c.store.(credentials.UsernameRememberer)
	if !ok {
		return ""
	}
	name, err := r.RememberedUsername(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to read remembered username")
		return ""
	}
	return name
}

// Do calls a business endpoint through the pipeline. in is sent as JSON when
// non-nil and a 2xx body is decoded into out when non-nil.
func (c *Client) Do(ctx context.Context, method, path string, in, out any) error {
	return doJSON(ctx, c.http, method, c.URL(path), in, out)
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	return c.Do(ctx, http.MethodPost, path, in, out)
}

// HTTPClient returns the pipeline backed client for callers that need raw access.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

func (c *Client) Session() *sessions.State {
	return c.session
}

func (c *Client) Tenants() *tenants.Context {
	return c.tenants
}

func (c *Client) Navigator() navigation.Navigator {
	return c.navigator
}

func (c *Client) Coordinator() *refresh.Coordinator {
	return c.coordinator
}

// Close releases the credential store when it holds resources.
func (c *Client) Close() error {
	if closer, ok := c.store.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// URL resolves a path against the API base URL.
func (c *Client) URL(path string) string {
	return c.baseURL + path
}
