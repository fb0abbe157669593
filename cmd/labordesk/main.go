package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ganot/labordesk/internal/api"
	"github.com/ganot/labordesk/internal/app"
	"github.com/ganot/labordesk/internal/config"
	"github.com/ganot/labordesk/internal/notify"
	"github.com/ganot/labordesk/internal/session"
	"github.com/ganot/labordesk/internal/sqlite"
	"github.com/ganot/labordesk/internal/testserver"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	args := os.Args[1:]
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}
	command, args := args[0], args[1:]

	if command == "serve-demo" {
		runDemo(cfg, logger)
		return
	}

	a, cleanup, err := buildApp(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	a.Auth.Initialize()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, a, command, args); err != nil {
		logger.Error("command failed", "command", command, "error", err)
		os.Exit(1)
	}
}

func buildApp(cfg config.Config, logger *slog.Logger) (*app.App, func(), error) {
	var repo session.Repository
	cleanup := func() {}

	if cfg.State.Path == ":memory:" || cfg.State.Path == "" {
		repo = session.NewMemoryRepository()
	} else {
		if err := ensureStateDir(cfg.State.Path); err != nil {
			return nil, nil, fmt.Errorf("preparing state path: %w", err)
		}
		db, err := sqlite.New(cfg.State.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening state database: %w", err)
		}
		if err := db.RunMigrations(); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("migrating state database: %w", err)
		}
		repo = sqlite.NewStateRepository(db)
		cleanup = func() { _ = db.Close() }
	}

	a := app.New(app.Options{
		Config: cfg,
		Repo:   repo,
		Nav:    app.NewNavigator(logger),
		Sink:   notify.NewLogSink(logger),
		Logger: logger,
	})
	return a, cleanup, nil
}

func run(ctx context.Context, a *app.App, command string, args []string) error {
	switch command {
	case "login":
		return runLogin(ctx, a, args)
	case "logout":
		a.PerformLogout()
		return nil
	case "whoami":
		return runWhoami(a)
	case "employees":
		return runEmployees(ctx, a, args)
	case "projects":
		return runProjects(ctx, a, args)
	case "allocate":
		return runAllocate(ctx, a, args)
	case "logs":
		return runLogs(ctx, a, args)
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func runLogin(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	name := fs.String("name", "", "real name")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" || *password == "" {
		return fmt.Errorf("%w: -name and -password are required", api.ErrInvalidInput)
	}

	if err := a.Login(ctx, *name, *password); err != nil {
		return err
	}
	user, _ := a.Auth.CurrentUser()
	fmt.Printf("logged in as %s (%s)\n", user.RealName, user.JobPosition)
	return nil
}

func runWhoami(a *app.App) error {
	user, ok := a.Auth.CurrentUser()
	if !ok {
		fmt.Println("not logged in")
		return nil
	}
	fmt.Printf("%s (%s)\n", user.RealName, user.JobPosition)
	return nil
}

func runEmployees(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("employees", flag.ExitOnError)
	deleteID := fs.Int64("delete", 0, "soft-delete the employee with this id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *deleteID != 0 {
		if !a.Auth.CanDeleteEmployees() {
			return fmt.Errorf("only the hr position may delete employees")
		}
		if !a.Employees.Delete(ctx, *deleteID) {
			return fmt.Errorf("delete failed")
		}
		fmt.Printf("deleted employee %d\n", *deleteID)
		return nil
	}

	if !a.Employees.Fetch(ctx, true) {
		return fmt.Errorf("loading employees failed")
	}
	for _, e := range a.Employees.Items() {
		fmt.Printf("%4d  %-12s %-10s labor=%-3d injury=%d\n",
			e.ID, e.RealName, e.JobPosition, e.LaborValue, e.InjuryStatus)
	}
	return nil
}

func runProjects(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("projects", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !a.Projects.Fetch(ctx, true) {
		return fmt.Errorf("loading projects failed")
	}
	for _, p := range a.Projects.Items() {
		fmt.Printf("%4d  %-24s required=%-3d status=%d\n",
			p.ID, p.ProjectName, p.RequiredLaborValue, p.Status)
	}
	return nil
}

func runAllocate(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("allocate", flag.ExitOnError)
	projectID := fs.Int64("project", 0, "allocate a single project (0 = all pending)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var id *int64
	if *projectID != 0 {
		id = projectID
	}
	result, err := a.Alloc.Allocate(ctx, id)
	if err != nil {
		return err
	}

	fmt.Printf("allocated %d project(s) at %s\n", result.TotalProjects, result.AllocationTime)
	for _, r := range result.AllocationResults {
		fmt.Printf("  %s: %d employees, labor %d/%d (diff %d)\n",
			r.ProjectName, len(r.AllocatedEmployees), r.TotalLaborValue, r.RequiredLaborValue, r.Difference)
	}
	return nil
}

func runLogs(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("logs", flag.ExitOnError)
	page := fs.Int("page", 0, "zero-indexed page number")
	size := fs.Int("size", 5, "page size")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !a.Logs.SetPage(*page, *size) {
		return fmt.Errorf("invalid page parameters")
	}
	if !a.Logs.Fetch(ctx, nil) {
		return fmt.Errorf("loading logs failed")
	}

	for _, entry := range a.Logs.Entries() {
		fmt.Printf("%s  %-10s %s\n", entry.Timestamp, entry.OperatorName, entry.Message)
	}
	fmt.Printf("page %d of %d (%d records)\n", *page+1, a.Logs.PageCount(), a.Logs.Total())
	return nil
}

func runDemo(cfg config.Config, logger *slog.Logger) {
	server, err := testserver.New(cfg.Demo.Secret, logger)
	if err != nil {
		logger.Error("demo server setup failed", "error", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Demo.Host, cfg.Demo.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: server.Handler(),
	}

	go func() {
		logger.Info("demo backend listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func ensureStateDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: labordesk <command> [flags]

commands:
  login -name NAME -password PASSWORD   authenticate and store the session
  logout                                clear the session and all caches
  whoami                                show the logged-in user
  employees [-delete ID]                list or soft-delete employees
  projects                              list labor projects
  allocate [-project ID]                run a work allocation
  logs [-page N] [-size N]              show allocation logs
  serve-demo                            run the built-in stub backend`)
}
