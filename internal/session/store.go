// Package session owns the durable (token, profile) pair representing a
// logged-in identity.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ganot/labordesk/internal/api"
)

// Storage keys. Fixed so sessions survive process restarts.
const (
	tokenKey = "token"
	userKey  = "currentUser"
)

// ErrNotFound is returned by repositories when a key is absent.
var ErrNotFound = errors.New("not found")

// Repository is the durable key-value storage under the store.
type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	PutAll(ctx context.Context, values map[string]string) error
	DeleteAll(ctx context.Context, keys ...string) error
}

// Store is the single writer of session state. SetSession and Clear are the
// only mutation paths; every independent caller (login, logout, the 401
// handler) goes through them, which keeps concurrent writers consistent.
type Store struct {
	mu     sync.Mutex
	repo   Repository
	events *Broadcaster
	logger *slog.Logger
}

// NewStore creates a session store over repo.
func NewStore(repo Repository, logger *slog.Logger) *Store {
	return &Store{
		repo:   repo,
		events: NewBroadcaster(),
		logger: logger,
	}
}

// Events exposes the session-changed broadcaster for subscribers.
func (s *Store) Events() *Broadcaster {
	return s.events
}

// Token returns the stored auth token, if any. Reads never mutate.
func (s *Store) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.repo.Get(context.Background(), tokenKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error("reading token", "error", err)
		}
		return "", false
	}
	return token, token != ""
}

// User returns the stored user profile, if any. A corrupt stored profile
// reads as absent; the auth controller treats that as a forced logout.
func (s *Store) User() (*api.SecurityUser, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.repo.Get(context.Background(), userKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error("reading user profile", "error", err)
		}
		return nil, false
	}

	var user api.SecurityUser
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.logger.Error("stored user profile is corrupt", "error", err)
		return nil, false
	}
	return &user, true
}

// SetSession writes token and profile together. They are never set
// independently.
func (s *Store) SetSession(token string, user api.SecurityUser) error {
	s.mu.Lock()
	raw, err := json.Marshal(user)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("encoding user profile: %w", err)
	}
	err = s.repo.PutAll(context.Background(), map[string]string{
		tokenKey: token,
		userKey:  string(raw),
	})
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("writing session: %w", err)
	}

	s.events.publish(Event{Kind: Established})
	return nil
}

// Clear removes token and profile together. Safe to call when no session
// exists.
func (s *Store) Clear() error {
	s.mu.Lock()
	err := s.repo.DeleteAll(context.Background(), tokenKey, userKey)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}

	s.events.publish(Event{Kind: Cleared})
	return nil
}
