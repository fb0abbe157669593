package cache

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ganot/labordesk/internal/api"
	"github.com/ganot/labordesk/internal/notify"
	"github.com/ganot/labordesk/internal/transport"
)

// employeePageSize matches the admin table's fixed page size.
const employeePageSize = 15

// Employees caches the employee collection.
type Employees struct {
	*Collection[api.Employee]
	client *transport.Client
}

// NewEmployees creates the employee cache over client.
func NewEmployees(client *transport.Client, sink notify.Sink, logger *slog.Logger) *Employees {
	e := &Employees{client: client}
	e.Collection = NewCollection("employees", e.query, sink, logger)
	return e
}

func (e *Employees) query(ctx context.Context) ([]api.Employee, error) {
	var page api.PageResult[api.Employee]
	q := api.EmployeeQuery{PageNum: 0, PageSize: employeePageSize}
	if err := e.client.Post(ctx, "/users/query", q, &page); err != nil {
		return nil, err
	}
	return page.Records, nil
}

// Create adds an employee and resynchronizes the cache.
func (e *Employees) Create(ctx context.Context, req api.CreateEmployeeRequest) bool {
	if e.rejectInvalid(req.Validate()) {
		return false
	}
	return e.Mutate(ctx, "create employee", func(ctx context.Context) error {
		var id int64
		return e.client.Post(ctx, "/users/create", req, &id)
	})
}

// Update modifies an employee and resynchronizes the cache.
func (e *Employees) Update(ctx context.Context, req api.UpdateEmployeeRequest) bool {
	if e.rejectInvalid(req.Validate()) {
		return false
	}
	return e.Mutate(ctx, "update employee", func(ctx context.Context) error {
		return e.client.Put(ctx, "/users/update", req, nil)
	})
}

// Delete soft-deletes an employee and resynchronizes the cache. Deletion
// follows the same resync policy as every other mutation; there is no
// optimistic local removal.
func (e *Employees) Delete(ctx context.Context, id int64) bool {
	return e.Mutate(ctx, "delete employee", func(ctx context.Context) error {
		return e.client.Post(ctx, fmt.Sprintf("/users/%d", id), nil, nil)
	})
}
