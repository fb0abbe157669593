package session

import (
	"context"
	"sync"
)

// MemoryRepository is an in-process Repository. It backs tests and the
// ":memory:" state path; nothing survives the process.
type MemoryRepository struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{values: make(map[string]string)}
}

func (r *MemoryRepository) Get(_ context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	value, ok := r.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (r *MemoryRepository) PutAll(_ context.Context, values map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, value := range values {
		r.values[key] = value
	}
	return nil
}

func (r *MemoryRepository) DeleteAll(_ context.Context, keys ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, key := range keys {
		delete(r.values, key)
	}
	return nil
}

// Put sets a single key directly. Test helper for seeding corrupt state.
func (r *MemoryRepository) Put(key, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = value
}
