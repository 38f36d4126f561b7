package navigation

import "sync"

// Navigator is the client's location surface. CurrentPath is the page the
// user is on; Redirect performs a full navigation.
type Navigator interface {
	CurrentPath() string
	Redirect(path string)
}

// History is an in-memory Navigator recording every redirect.
type History struct {
	current   string
	redirects []string
	lock      sync.RWMutex
}

var _ Navigator = (*History)(nil)

func NewHistory(start string) *History {
	return &History{current: start}
}

// Visit moves to path without recording a redirect (user navigation).
func (h *History) Visit(path string) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.current = path
}

func (h *History) CurrentPath() string {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return h.current
}

func (h *History) Redirect(path string) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.current = path
	h.redirects = append(h.redirects, path)
}

// Redirects returns the redirect targets in the order they happened.
func (h *History) Redirects() []string {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return append([]string(nil), h.redirects...)
}
