package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ganot/labordesk/internal/session"
)

// StateRepository implements session.Repository over the client_state table.
type StateRepository struct {
	db *DB
}

// NewStateRepository creates a new StateRepository
func NewStateRepository(db *DB) *StateRepository {
	return &StateRepository{db: db}
}

// Get retrieves one value by key
func (r *StateRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM client_state WHERE key = ?`, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", session.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read state %q: %w", key, err)
	}
	return value, nil
}

// PutAll writes every key-value pair in one transaction, so the session's
// token and profile land together or not at all.
func (r *StateRepository) PutAll(ctx context.Context, values map[string]string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for key, value := range values {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO client_state (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		`, key, value, now)
		if err != nil {
			return fmt.Errorf("failed to write state %q: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit state: %w", err)
	}
	return nil
}

// DeleteAll removes every given key in one statement.
func (r *StateRepository) DeleteAll(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(keys)), ", ")
	args := make([]any, len(keys))
	for i, key := range keys {
		args[i] = key
	}

	_, err := r.db.ExecContext(ctx,
		`DELETE FROM client_state WHERE key IN (`+placeholders+`)`, args...,
	)
	if err != nil {
		return fmt.Errorf("failed to delete state: %w", err)
	}
	return nil
}
