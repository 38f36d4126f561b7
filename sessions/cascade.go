package sessions

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-auth-client/navigation"
	"github.com/rs/zerolog"
)

// Cascade is the forced logout run when credentials cannot be recovered.
type Cascade struct {
	session   *State
	navigator navigation.Navigator
	loginPath string
	logger    zerolog.Logger

	lock sync.Mutex
}

func NewCascade(session *State, navigator navigation.Navigator, loginPath string, logger zerolog.Logger) *Cascade {
	return &Cascade{
		session:   session,
		navigator: navigator,
		loginPath: loginPath,
		logger:    logger,
	}
}

// Trigger logs the user out and sends them to the login surface, remembering
// where they were. Only the call that actually ends the session navigates,
// so concurrent failures redirect once. It reports whether it navigated.
func (c *Cascade) Trigger(ctx context.Context) bool {
	c.lock.Lock()
	defer c.lock.Unlock()

	// Capture before logout clears the identity.
	path := c.navigator.CurrentPath()
	identity := c.session.Identity()

	if !c.session.Logout(ctx) {
		c.logger.Debug().Msg("auth failure cascade skipped, session already ended")
		return false
	}

	if path == c.loginPath {
		return false
	}

	c.session.SetReturnDestination(path, identity)
	c.navigator.Redirect(c.loginPath)
	c.logger.Warn().Str("user", identity.Username).Str("return_to", path).Msg("session expired, redirected to login")
	return true
}
