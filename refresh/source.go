package refresh

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"

	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/rs/zerolog"
)

// Source is the single authoritative answer to "is a refresh credential
// available". It returns the credential to send to the refresh endpoint;
// an empty string with ok=true means the credential travels out of band
// (for example as a cookie).
//
// Forget drops the credential on logout. Sources backed by the credential
// store have nothing to do, the session clears the store itself.
type Source interface {
	RefreshCredential(ctx context.Context) (token string, ok bool)
	Forget(ctx context.Context) error
}

// StoreSource reads the refresh credential from the credential store.
type StoreSource struct {
	Store  credentials.Reader
	Logger zerolog.Logger
}

func (s StoreSource) RefreshCredential(ctx context.Context) (string, bool) {
	pair, err := s.Store.Get(ctx)
	if err != nil {
		s.Logger.Error().Err(err).Msg("failed to read refresh credential")
		return "", false
	}
	return pair.Refresh, pair.HasRefresh()
}

func (s StoreSource) Forget(context.Context) error {
	return nil
}

// CookieSource treats an HttpOnly refresh cookie held by the client's jar as
// the refresh credential. The cookie is sent by the jar, never by this code.
type CookieSource struct {
	Jar        http.CookieJar
	RefreshURL *url.URL
	CookieName string
}

func (s CookieSource) RefreshCredential(_ context.Context) (string, bool) {
	if s.Jar == nil || s.RefreshURL == nil {
		return "", false
	}
	for _, c := range s.Jar.Cookies(s.RefreshURL) {
		if c.Name == s.CookieName && c.Value != "" {
			return "", true
		}
	}
	return "", false
}

// Forget expires the refresh cookie in the jar. The cookie path is not
// visible through the jar, so the refresh URL path and each parent path are
// expired in turn; expiring a cookie the jar does not hold is a no-op.
func (s CookieSource) Forget(_ context.Context) error {
	if s.Jar == nil || s.RefreshURL == nil {
		return nil
	}
	p := s.RefreshURL.Path
	if p == "" {
		p = "/"
	}
	for {
		s.Jar.SetCookies(s.RefreshURL, []*http.Cookie{{Name: s.CookieName, Path: p, MaxAge: -1}})
		if p == "/" {
			break
		}
		p = path.Dir(p)
	}
	if _, ok := s.RefreshCredential(context.Background()); ok {
		return fmt.Errorf("refresh cookie %q still present after logout", s.CookieName)
	}
	return nil
}
