package credentials

import (
	"context"

	"golang.org/x/oauth2"
)

// Persisted key names, shared by every durable backend.
const (
	KeyAccess             = "token"
	KeyRefresh            = "refreshToken"
	KeyRememberedUsername = "rememberedUsername"
)

// Pair holds the access and refresh credentials as they were stored together.
// Either both are set, only access is set (cookie deployments), or neither.
type Pair struct {
	Access  string
	Refresh string
}

func (p Pair) HasAccess() bool {
	return p.Access != ""
}

func (p Pair) HasRefresh() bool {
	return p.Refresh != ""
}

// Token returns the pair as a bearer oauth2 token, or nil when no access credential is held.
func (p Pair) Token() *oauth2.Token {
	if !p.HasAccess() {
		return nil
	}
	return &oauth2.Token{
		AccessToken:  p.Access,
		RefreshToken: p.Refresh,
		TokenType:    "Bearer",
		Expiry:       AccessExpiry(p.Access),
	}
}

// Reader is the read-only view used by the request pipeline.
type Reader interface {
	Get(ctx context.Context) (Pair, error)
}

// Store keeps the current credentials in durable client side storage.
// Mutations must be atomic for concurrent readers: a reader sees either the
// previous pair or the complete new pair.
//
// Only the session state and the refresh coordinator call the mutating methods.
type Store interface {
	Reader

	// SetAccess replaces the access credential and keeps the refresh credential.
	SetAccess(ctx context.Context, access string) error

	// SetBoth replaces both credentials in one write.
	SetBoth(ctx context.Context, access, refresh string) error

	// Clear removes both credentials.
	Clear(ctx context.Context) error
}

// UsernameRememberer is implemented by stores that also persist the last used
// login name. It is unrelated to the credential lifecycle and survives Clear.
type UsernameRememberer interface {
	RememberUsername(ctx context.Context, username string) error
	RememberedUsername(ctx context.Context) (string, error)
}
