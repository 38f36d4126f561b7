package authapi

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/refresh"
	"golang.org/x/oauth2"
)

var _ refresh.Refresher = (*Refresher)(nil)

// Refresher calls POST /auth/refresh. Any non-2xx answer, including a 401
// from the refresh endpoint itself, is returned as an error and never retried.
type Refresher struct {
	client *http.Client
	url    string
}

// NewRefresher returns a refresher posting to url. client should share the
// cookie jar of the API client in cookie deployments.
func NewRefresher(client *http.Client, url string) *Refresher {
	return &Refresher{client: client, url: url}
}

func (r *Refresher) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	var resp TokenResponse
	if err := doJSON(ctx, r.client, http.MethodPost, r.url, RefreshRequest{RefreshToken: refreshToken}, &resp); err != nil {
		return nil, err
	}
	return &oauth2.Token{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       credentials.AccessExpiry(resp.AccessToken),
	}, nil
}
