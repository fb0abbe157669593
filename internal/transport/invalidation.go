package transport

import (
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultCooldown is how long duplicate invalidations are dropped after a
// redirect fires.
const DefaultCooldown = time.Second

// Navigator abstracts the client-side location: where the user currently is
// and how to send them somewhere else.
type Navigator interface {
	CurrentPath() string
	Redirect(target string)
}

// InvalidationGuard runs the session-invalidation flow at most once per
// cooldown window. It is a two-state machine, idle -> redirecting -> idle,
// advanced by a single compare-and-set, so N concurrent 401s within the
// window produce exactly one logout and one redirect.
type InvalidationGuard struct {
	redirecting atomic.Bool
	cooldown    time.Duration
	nav         Navigator
	logger      *slog.Logger

	mu           sync.Mutex
	onInvalidate func()
}

// NewInvalidationGuard creates a guard in the idle state. cooldown <= 0
// selects DefaultCooldown.
func NewInvalidationGuard(nav Navigator, cooldown time.Duration, logger *slog.Logger) *InvalidationGuard {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &InvalidationGuard{
		cooldown: cooldown,
		nav:      nav,
		logger:   logger,
	}
}

// Bind installs the global logout hook. The guard is constructed before the
// logout coordinator exists, so the hook arrives late.
func (g *InvalidationGuard) Bind(onInvalidate func()) {
	g.mu.Lock()
	g.onInvalidate = onInvalidate
	g.mu.Unlock()
}

// Invalidate runs the logout-and-redirect sequence if the guard is idle and
// reports whether it did. The redirect target preserves the current path for
// post-login navigation.
func (g *InvalidationGuard) Invalidate() bool {
	if !g.redirecting.CompareAndSwap(false, true) {
		return false
	}

	g.mu.Lock()
	handler := g.onInvalidate
	g.mu.Unlock()
	if handler != nil {
		handler()
	}

	target := LoginPath + "?redirect=" + url.QueryEscape(g.nav.CurrentPath())
	g.logger.Warn("session invalidated", "redirect", target)
	g.nav.Redirect(target)

	time.AfterFunc(g.cooldown, func() {
		g.redirecting.Store(false)
	})
	return true
}
