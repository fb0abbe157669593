package sqlite_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/ganot/labordesk/internal/session"
	"github.com/ganot/labordesk/internal/sqlite"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestStateRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewStateRepository(newTestDB(t))

	_, err := repo.Get(ctx, "token")
	require.ErrorIs(t, err, session.ErrNotFound)

	require.NoError(t, repo.PutAll(ctx, map[string]string{
		"token":       "T1",
		"currentUser": `{"realName":"alice"}`,
	}))

	token, err := repo.Get(ctx, "token")
	require.NoError(t, err)
	require.Equal(t, "T1", token)

	// Overwrite keeps a single row per key.
	require.NoError(t, repo.PutAll(ctx, map[string]string{"token": "T2"}))
	token, err = repo.Get(ctx, "token")
	require.NoError(t, err)
	require.Equal(t, "T2", token)
}

func TestStateRepository_DeleteAll(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewStateRepository(newTestDB(t))

	require.NoError(t, repo.PutAll(ctx, map[string]string{
		"token":       "T1",
		"currentUser": `{}`,
	}))
	require.NoError(t, repo.DeleteAll(ctx, "token", "currentUser"))

	_, err := repo.Get(ctx, "token")
	require.ErrorIs(t, err, session.ErrNotFound)
	_, err = repo.Get(ctx, "currentUser")
	require.ErrorIs(t, err, session.ErrNotFound)

	// Deleting absent keys is not an error.
	require.NoError(t, repo.DeleteAll(ctx, "token"))
	require.NoError(t, repo.DeleteAll(ctx))
}

func TestStateRepository_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := t.TempDir() + "/state.db"

	db, err := sqlite.New(path)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	require.NoError(t, sqlite.NewStateRepository(db).PutAll(ctx, map[string]string{"token": "T1"}))
	require.NoError(t, db.Close())

	db, err = sqlite.New(path)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { _ = db.Close() })

	token, err := sqlite.NewStateRepository(db).Get(ctx, "token")
	require.NoError(t, err)
	require.Equal(t, "T1", token)
}
