// Package app composes the client's service objects and owns the global
// logout path.
package app

import (
	"context"
	"log/slog"

	"github.com/ganot/labordesk/internal/alloc"
	"github.com/ganot/labordesk/internal/api"
	"github.com/ganot/labordesk/internal/auth"
	"github.com/ganot/labordesk/internal/cache"
	"github.com/ganot/labordesk/internal/config"
	"github.com/ganot/labordesk/internal/notify"
	"github.com/ganot/labordesk/internal/session"
	"github.com/ganot/labordesk/internal/transport"
)

// Options carries the injected edges of the application: storage, location
// handling, and the notification surface.
type Options struct {
	Config config.Config
	Repo   session.Repository
	Nav    transport.Navigator
	Sink   notify.Sink
	Logger *slog.Logger
}

// App wires the session store, auth controller, HTTP client, resource
// caches, and allocation service into one explicitly constructed unit.
type App struct {
	Session   *session.Store
	Auth      *auth.Controller
	Client    *transport.Client
	Employees *cache.Employees
	Projects  *cache.Projects
	Logs      *cache.Logs
	Alloc     *alloc.Service

	logger *slog.Logger
}

// New builds the application graph. The invalidation guard's logout hook is
// bound to PerformLogout, so a detected 401 resets everything exactly once.
func New(opts Options) *App {
	logger := opts.Logger

	store := session.NewStore(opts.Repo, logger)
	guard := transport.NewInvalidationGuard(opts.Nav, transport.DefaultCooldown, logger)
	client := transport.NewClient(transport.Config{
		BaseURL: opts.Config.API.BaseURL,
		Timeout: opts.Config.API.Timeout(),
	}, store, guard, opts.Sink, logger)

	controller := auth.NewController(store, opts.Sink, logger)
	employees := cache.NewEmployees(client, opts.Sink, logger)
	projects := cache.NewProjects(client, opts.Sink, logger)
	logs := cache.NewLogs(client, opts.Sink, logger)
	allocator := alloc.NewService(client, projects, logger)

	a := &App{
		Session:   store,
		Auth:      controller,
		Client:    client,
		Employees: employees,
		Projects:  projects,
		Logs:      logs,
		Alloc:     allocator,
		logger:    logger,
	}

	guard.Bind(a.PerformLogout)
	// Keep the controller honest when another writer touches the store.
	store.Events().Subscribe(func(session.Event) {
		controller.CheckAuth()
	})

	return a
}

// Login authenticates against the backend and establishes the session.
func (a *App) Login(ctx context.Context, realName, password string) error {
	req := api.LoginRequest{RealName: realName, Password: password}
	var resp api.LoginResponse
	if err := a.Client.Post(ctx, transport.LoginPath, req, &resp); err != nil {
		return err
	}
	return a.Auth.Login(resp.Token, resp.User)
}

// RefreshProfile re-reads the profile for the current token and writes it
// through to the session store.
func (a *App) RefreshProfile(ctx context.Context) error {
	token, ok := a.Session.Token()
	if !ok {
		return transport.ErrUnauthenticated
	}

	var user api.SecurityUser
	if err := a.Client.Get(ctx, "/test/current-user", &user); err != nil {
		return err
	}
	return a.Auth.Login(token, user)
}

// PerformLogout atomically resets all client state: session store, auth
// controller, every resource cache, and the last allocation result. Used by
// both explicit logout and implicit session expiry. Idempotent; each step
// is isolated so one failure cannot block the others, and the store clear
// is the minimum guarantee.
func (a *App) PerformLogout() {
	if err := a.Session.Clear(); err != nil {
		a.logger.Error("clearing session store", "error", err)
	}
	a.Auth.Logout()
	a.Employees.Reset()
	a.Projects.Reset()
	a.Logs.Reset()
	a.Alloc.Reset()
}
