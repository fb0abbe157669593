// Package cache holds the client-side copies of server-owned collections:
// employees, labor projects, and allocation logs.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/ganot/labordesk/internal/notify"
	"github.com/ganot/labordesk/internal/transport"
)

// Fetcher loads the current server-side collection.
type Fetcher[T any] func(ctx context.Context) ([]T, error)

// Collection is a lazily-populated, force-refreshable cache of one resource
// collection. At most one fetch is in flight at a time; a second fetch
// arriving while one is outstanding is dropped, not queued, so results are
// never applied out of order.
type Collection[T any] struct {
	mu          sync.Mutex
	items       []T
	loading     bool
	initialized bool

	name   string
	fetch  Fetcher[T]
	notify notify.Sink
	logger *slog.Logger
}

// NewCollection creates an empty, uninitialized collection.
func NewCollection[T any](name string, fetch Fetcher[T], sink notify.Sink, logger *slog.Logger) *Collection[T] {
	return &Collection[T]{
		name:   name,
		fetch:  fetch,
		notify: sink,
		logger: logger,
	}
}

// Fetch populates the collection from the server. While a fetch is in
// flight, or once initialized without force, it is a no-op. On failure the
// previous items are left untouched. Reports whether the cache holds valid
// data afterwards.
func (c *Collection[T]) Fetch(ctx context.Context, force bool) bool {
	c.mu.Lock()
	if c.loading || (c.initialized && !force) {
		initialized := c.initialized
		c.mu.Unlock()
		return initialized
	}
	c.loading = true
	c.mu.Unlock()

	items, err := c.fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		c.logger.Error("fetch failed", "cache", c.name, "error", err)
		if !errors.Is(err, transport.ErrUnauthenticated) {
			c.notify.Error("failed to load " + c.name)
		}
		return c.initialized
	}

	c.items = items
	c.initialized = true
	return true
}

// Mutate runs a write call and, on success, forces a full resynchronization
// rather than patching local state. Failures become false plus a
// notification; they never propagate.
func (c *Collection[T]) Mutate(ctx context.Context, action string, call func(context.Context) error) bool {
	if err := call(ctx); err != nil {
		c.logger.Error("mutation failed", "cache", c.name, "action", action, "error", err)
		if !errors.Is(err, transport.ErrUnauthenticated) {
			c.notify.Error("failed to " + action)
		}
		return false
	}
	c.Fetch(ctx, true)
	return true
}

// Items returns a copy of the cached collection.
func (c *Collection[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]T(nil), c.items...)
}

// Loading reports whether a fetch is in flight.
func (c *Collection[T]) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Initialized reports whether a fetch has succeeded since the last reset.
func (c *Collection[T]) Initialized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initialized
}

// Reset empties the collection and drops the initialized flag. Used by the
// global logout path.
func (c *Collection[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.initialized = false
}

func (c *Collection[T]) rejectInvalid(err error) bool {
	if err == nil {
		return false
	}
	c.logger.Warn("rejected invalid input", "cache", c.name, "error", err)
	c.notify.Error(err.Error())
	return true
}
