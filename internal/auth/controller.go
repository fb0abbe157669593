// Package auth holds the process-wide authentication state machine, the
// single source of truth for whether a user is logged in.
package auth

import (
	"log/slog"
	"sync"

	"github.com/ganot/labordesk/internal/api"
	"github.com/ganot/labordesk/internal/notify"
	"github.com/ganot/labordesk/internal/session"
)

// State enumerates controller states.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Controller tracks authentication state over the session store.
type Controller struct {
	mu    sync.Mutex
	state State
	token string
	user  *api.SecurityUser

	store  *session.Store
	notify notify.Sink
	logger *slog.Logger
}

// NewController creates a controller in the uninitialized state.
func NewController(store *session.Store, sink notify.Sink, logger *slog.Logger) *Controller {
	return &Controller{
		state:  StateUninitialized,
		store:  store,
		notify: sink,
		logger: logger,
	}
}

// Initialize reads the session store and settles into authenticated or
// unauthenticated. A token without a profile is corrupt state: the store is
// cleared and the controller ends unauthenticated. Runs once per process
// start and always terminates in a non-loading state.
func (c *Controller) Initialize() {
	c.mu.Lock()
	c.state = StateLoading
	c.mu.Unlock()

	token, hasToken := c.store.Token()
	user, hasUser := c.store.User()

	if hasToken && hasUser {
		c.mu.Lock()
		c.state = StateAuthenticated
		c.token = token
		c.user = user
		c.mu.Unlock()
		return
	}

	if hasToken && !hasUser {
		c.logger.Warn("token present without profile, clearing session")
		if err := c.store.Clear(); err != nil {
			c.logger.Error("clearing corrupt session", "error", err)
		}
	}

	c.mu.Lock()
	c.state = StateUnauthenticated
	c.token = ""
	c.user = nil
	c.mu.Unlock()
}

// Login writes the session through to the store and transitions to
// authenticated. Idempotent if already authenticated.
func (c *Controller) Login(token string, user api.SecurityUser) error {
	if err := c.store.SetSession(token, user); err != nil {
		return err
	}

	c.mu.Lock()
	c.state = StateAuthenticated
	c.token = token
	c.user = &user
	c.mu.Unlock()
	return nil
}

// Logout clears the store and transitions to unauthenticated. Callable from
// any state.
func (c *Controller) Logout() {
	if err := c.store.Clear(); err != nil {
		c.logger.Error("clearing session on logout", "error", err)
	}

	c.mu.Lock()
	wasAuthenticated := c.state == StateAuthenticated
	c.state = StateUnauthenticated
	c.token = ""
	c.user = nil
	c.mu.Unlock()

	if wasAuthenticated {
		c.notify.Info("logged out")
	}
}

// CheckAuth recomputes authentication from store presence and reconciles
// drifted controller state. A no-op in correct operation.
func (c *Controller) CheckAuth() bool {
	token, hasToken := c.store.Token()
	user, hasUser := c.store.User()
	authenticated := hasToken && hasUser

	c.mu.Lock()
	defer c.mu.Unlock()

	if authenticated && c.state != StateAuthenticated {
		c.logger.Warn("auth state drift, resyncing", "state", c.state.String())
		c.state = StateAuthenticated
		c.token = token
		c.user = user
	} else if !authenticated && c.state == StateAuthenticated {
		c.logger.Warn("auth state drift, resyncing", "state", c.state.String())
		c.state = StateUnauthenticated
		c.token = ""
		c.user = nil
	}
	return authenticated
}

// State returns the current controller state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CurrentUser returns the logged-in profile, if any.
func (c *Controller) CurrentUser() (*api.SecurityUser, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateAuthenticated || c.user == nil {
		return nil, false
	}
	copied := *c.user
	return &copied, true
}

// CanDeleteEmployees reports whether the logged-in user may delete employee
// records. A UX gate only; the server is the real authority.
func (c *Controller) CanDeleteEmployees() bool {
	user, ok := c.CurrentUser()
	return ok && user.JobPosition == api.PositionHR
}
