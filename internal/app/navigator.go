package app

import (
	"log/slog"
	"sync"
)

// Navigator tracks a virtual location for surfaces without a browser. The
// CLI sets the path matching the screen it is acting for; a redirect is
// recorded and logged rather than followed.
type Navigator struct {
	mu       sync.Mutex
	path     string
	redirect string
	logger   *slog.Logger
}

// NewNavigator creates a navigator positioned at the root path.
func NewNavigator(logger *slog.Logger) *Navigator {
	return &Navigator{path: "/", logger: logger}
}

// SetPath moves the virtual location.
func (n *Navigator) SetPath(path string) {
	n.mu.Lock()
	n.path = path
	n.mu.Unlock()
}

func (n *Navigator) CurrentPath() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.path
}

func (n *Navigator) Redirect(target string) {
	n.mu.Lock()
	n.redirect = target
	n.mu.Unlock()
	n.logger.Warn("session expired, login required", "redirect", target)
}

// LastRedirect returns the most recent redirect target, if any.
func (n *Navigator) LastRedirect() (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.redirect, n.redirect != ""
}
