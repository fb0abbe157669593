package cache

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ganot/labordesk/internal/api"
	"github.com/ganot/labordesk/internal/notify"
	"github.com/ganot/labordesk/internal/transport"
)

// Projects caches the labor-project collection. The project listing is
// unpaginated.
type Projects struct {
	*Collection[api.Project]
	client *transport.Client
}

// NewProjects creates the project cache over client.
func NewProjects(client *transport.Client, sink notify.Sink, logger *slog.Logger) *Projects {
	p := &Projects{client: client}
	p.Collection = NewCollection("projects", p.query, sink, logger)
	return p
}

func (p *Projects) query(ctx context.Context) ([]api.Project, error) {
	var projects []api.Project
	if err := p.client.Post(ctx, "/labor-projects/query", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// Create adds a project and resynchronizes the cache.
func (p *Projects) Create(ctx context.Context, req api.CreateProjectRequest) bool {
	if p.rejectInvalid(req.Validate()) {
		return false
	}
	return p.Mutate(ctx, "create project", func(ctx context.Context) error {
		var id int64
		return p.client.Post(ctx, "/labor-projects/create", req, &id)
	})
}

// Update modifies a project and resynchronizes the cache.
func (p *Projects) Update(ctx context.Context, req api.UpdateProjectRequest) bool {
	if p.rejectInvalid(req.Validate()) {
		return false
	}
	return p.Mutate(ctx, "update project", func(ctx context.Context) error {
		return p.client.Put(ctx, "/labor-projects/update", req, nil)
	})
}

// Delete removes a project and resynchronizes the cache.
func (p *Projects) Delete(ctx context.Context, id int64) bool {
	return p.Mutate(ctx, "delete project", func(ctx context.Context) error {
		return p.client.Delete(ctx, fmt.Sprintf("/labor-projects/%d", id), nil)
	})
}
