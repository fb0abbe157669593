package auth_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/ganot/labordesk/internal/api"
	"github.com/ganot/labordesk/internal/auth"
	"github.com/ganot/labordesk/internal/notify"
	"github.com/ganot/labordesk/internal/session"
	"github.com/stretchr/testify/require"
)

func newController(t *testing.T) (*auth.Controller, *session.Store, *session.MemoryRepository) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := session.NewMemoryRepository()
	store := session.NewStore(repo, logger)
	return auth.NewController(store, &notify.Recorder{}, logger), store, repo
}

func TestInitializeWithStoredSession(t *testing.T) {
	ctrl, store, _ := newController(t)
	require.NoError(t, store.SetSession("T1", api.SecurityUser{RealName: "alice"}))

	require.Equal(t, auth.StateUninitialized, ctrl.State())
	ctrl.Initialize()
	require.Equal(t, auth.StateAuthenticated, ctrl.State())

	user, ok := ctrl.CurrentUser()
	require.True(t, ok)
	require.Equal(t, "alice", user.RealName)
}

func TestInitializeEmptyStore(t *testing.T) {
	ctrl, _, _ := newController(t)
	ctrl.Initialize()
	require.Equal(t, auth.StateUnauthenticated, ctrl.State())
}

func TestInitializeCorruptSession(t *testing.T) {
	ctrl, store, repo := newController(t)
	require.NoError(t, store.SetSession("T1", api.SecurityUser{RealName: "alice"}))
	repo.Put("currentUser", "{corrupt")

	ctrl.Initialize()
	require.Equal(t, auth.StateUnauthenticated, ctrl.State())

	// The corrupt session was fully cleared, token included.
	_, hasToken := store.Token()
	require.False(t, hasToken)
}

func TestLoginLogoutCycle(t *testing.T) {
	ctrl, store, _ := newController(t)
	ctrl.Initialize()

	require.NoError(t, ctrl.Login("T1", api.SecurityUser{RealName: "alice", JobPosition: api.PositionHR}))
	require.Equal(t, auth.StateAuthenticated, ctrl.State())
	require.True(t, ctrl.CanDeleteEmployees())

	token, ok := store.Token()
	require.True(t, ok)
	require.Equal(t, "T1", token)

	// Login is idempotent when already authenticated.
	require.NoError(t, ctrl.Login("T1", api.SecurityUser{RealName: "alice", JobPosition: api.PositionHR}))
	require.Equal(t, auth.StateAuthenticated, ctrl.State())

	ctrl.Logout()
	require.Equal(t, auth.StateUnauthenticated, ctrl.State())
	_, ok = store.Token()
	require.False(t, ok)
	require.False(t, ctrl.CanDeleteEmployees())

	// Logout from any state is fine.
	ctrl.Logout()
	require.Equal(t, auth.StateUnauthenticated, ctrl.State())
}

func TestCheckAuthReconcilesDrift(t *testing.T) {
	ctrl, store, _ := newController(t)
	ctrl.Initialize()
	require.NoError(t, ctrl.Login("T1", api.SecurityUser{RealName: "alice"}))

	// Store cleared behind the controller's back (e.g. by the 401 handler).
	require.NoError(t, store.Clear())
	require.Equal(t, auth.StateAuthenticated, ctrl.State())

	require.False(t, ctrl.CheckAuth())
	require.Equal(t, auth.StateUnauthenticated, ctrl.State())

	// And the other direction.
	require.NoError(t, store.SetSession("T2", api.SecurityUser{RealName: "bob"}))
	require.True(t, ctrl.CheckAuth())
	require.Equal(t, auth.StateAuthenticated, ctrl.State())

	user, ok := ctrl.CurrentUser()
	require.True(t, ok)
	require.Equal(t, "bob", user.RealName)
}

func TestNonHRCannotDeleteEmployees(t *testing.T) {
	ctrl, _, _ := newController(t)
	ctrl.Initialize()
	require.NoError(t, ctrl.Login("T1", api.SecurityUser{RealName: "bob", JobPosition: api.PositionDeveloper}))
	require.False(t, ctrl.CanDeleteEmployees())
}
