// Package alloc triggers server-side work allocation runs. The assignment
// algorithm is entirely backend-owned; this client only displays results.
package alloc

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ganot/labordesk/internal/api"
	"github.com/ganot/labordesk/internal/cache"
	"github.com/ganot/labordesk/internal/transport"
)

// Service runs allocations and keeps the last result for redisplay. The
// last result is process-scoped and never persisted, matching the original
// tool's tab-scoped cache.
type Service struct {
	mu   sync.Mutex
	last *api.BatchAllocateResult

	client   *transport.Client
	projects *cache.Projects
	logger   *slog.Logger
}

// NewService creates an allocation service. projects is refreshed after
// every successful run, since allocation changes project status.
func NewService(client *transport.Client, projects *cache.Projects, logger *slog.Logger) *Service {
	return &Service{
		client:   client,
		projects: projects,
		logger:   logger,
	}
}

// Allocate runs an allocation. A nil projectID allocates across all pending
// projects. On success the project cache is forcibly resynchronized.
func (s *Service) Allocate(ctx context.Context, projectID *int64) (*api.BatchAllocateResult, error) {
	var result api.BatchAllocateResult
	req := api.AllocateRequest{ProjectID: projectID}
	if err := s.client.Post(ctx, "/labor-allocations/allocate", req, &result); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.last = &result
	s.mu.Unlock()

	s.logger.Info("allocation completed",
		"projects", result.TotalProjects, "time", result.AllocationTime)
	s.projects.Fetch(ctx, true)
	return &result, nil
}

// Last returns the most recent allocation result, if any run has succeeded
// since start or the last reset.
func (s *Service) Last() (*api.BatchAllocateResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return nil, false
	}
	copied := *s.last
	return &copied, true
}

// Reset drops the cached result. Part of the global logout path.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = nil
}
