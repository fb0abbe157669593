package cache_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ganot/labordesk/internal/api"
	"github.com/ganot/labordesk/internal/cache"
	"github.com/ganot/labordesk/internal/notify"
	"github.com/ganot/labordesk/internal/transport"
	"github.com/stretchr/testify/require"
)

const (
	timeout = time.Second
	tick    = time.Millisecond
)

type staticTokens struct{}

func (staticTokens) Token() (string, bool) { return "T1", true }

type nopNavigator struct{}

func (nopNavigator) CurrentPath() string { return "/" }
func (nopNavigator) Redirect(string)     {}

func newClient(t *testing.T, handler http.Handler) (*transport.Client, *notify.Recorder) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sink := &notify.Recorder{}
	guard := transport.NewInvalidationGuard(nopNavigator{}, time.Minute, logger)
	client := transport.NewClient(transport.Config{BaseURL: server.URL}, staticTokens{}, guard, sink, logger)
	return client, sink
}

func writeResult(w http.ResponseWriter, result any) {
	raw, _ := json.Marshal(result)
	fmt.Fprintf(w, `{"status":0,"msg":"","result":%s}`, raw)
}

func employeePage(records ...api.Employee) api.PageResult[api.Employee] {
	if records == nil {
		records = []api.Employee{}
	}
	return api.PageResult[api.Employee]{
		PageNum:  0,
		PageSize: 15,
		Total:    int64(len(records)),
		Records:  records,
	}
}

func TestFetchIdempotence(t *testing.T) {
	var queries atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/users/query", func(w http.ResponseWriter, r *http.Request) {
		queries.Add(1)
		writeResult(w, employeePage(api.Employee{ID: 1, RealName: "alice"}))
	})

	client, _ := newClient(t, mux)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	employees := cache.NewEmployees(client, &notify.Recorder{}, logger)

	ctx := context.Background()
	require.True(t, employees.Fetch(ctx, false))
	require.True(t, employees.Initialized())
	require.Len(t, employees.Items(), 1)
	require.Equal(t, int32(1), queries.Load())

	// Initialized and not forced: served from cache.
	require.True(t, employees.Fetch(ctx, false))
	require.Equal(t, int32(1), queries.Load())

	// Forced: exactly one more call.
	require.True(t, employees.Fetch(ctx, true))
	require.Equal(t, int32(2), queries.Load())
}

func TestFetchSingleFlight(t *testing.T) {
	release := make(chan struct{})
	var queries atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/users/query", func(w http.ResponseWriter, r *http.Request) {
		queries.Add(1)
		<-release
		writeResult(w, employeePage())
	})

	client, _ := newClient(t, mux)
	employees := cache.NewEmployees(client, &notify.Recorder{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx := context.Background()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		employees.Fetch(ctx, false)
	}()

	require.Eventually(t, employees.Loading, time.Second, time.Millisecond)

	// Re-entrant fetches while one is outstanding are dropped, forced or not.
	employees.Fetch(ctx, false)
	employees.Fetch(ctx, true)

	close(release)
	wg.Wait()
	require.Equal(t, int32(1), queries.Load())
}

func TestFetchFailureKeepsItems(t *testing.T) {
	var fail atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("/users/query", func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.Write([]byte(`{"status":500,"msg":"backend down","result":null}`))
			return
		}
		writeResult(w, employeePage(api.Employee{ID: 1, RealName: "alice"}))
	})

	client, _ := newClient(t, mux)
	sink := &notify.Recorder{}
	employees := cache.NewEmployees(client, sink, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx := context.Background()
	require.True(t, employees.Fetch(ctx, false))
	require.Len(t, employees.Items(), 1)

	fail.Store(true)
	require.True(t, employees.Fetch(ctx, true)) // previous data still valid
	require.Len(t, employees.Items(), 1)
	require.False(t, employees.Loading())
	require.NotEmpty(t, sink.Errors())
}

func TestMutationsForceResync(t *testing.T) {
	var queries atomic.Int32
	served := []api.Employee{{ID: 1, RealName: "alice"}}
	var mu sync.Mutex

	mux := http.NewServeMux()
	mux.HandleFunc("/users/query", func(w http.ResponseWriter, r *http.Request) {
		queries.Add(1)
		mu.Lock()
		defer mu.Unlock()
		writeResult(w, employeePage(served...))
	})
	mux.HandleFunc("/users/create", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		served = append(served, api.Employee{ID: 2, RealName: "bob"})
		mu.Unlock()
		writeResult(w, 2)
	})
	mux.HandleFunc("/users/2", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		served = served[:1]
		mu.Unlock()
		writeResult(w, nil)
	})

	client, _ := newClient(t, mux)
	employees := cache.NewEmployees(client, &notify.Recorder{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx := context.Background()
	require.True(t, employees.Fetch(ctx, false))
	require.Equal(t, int32(1), queries.Load())

	// Create resyncs: items reflect a fresh fetch, not a local patch.
	require.True(t, employees.Create(ctx, api.CreateEmployeeRequest{
		RealName:    "bob",
		BirthDate:   "1992-03-04",
		JobPosition: api.PositionDeveloper,
		LaborValue:  80,
	}))
	require.Equal(t, int32(2), queries.Load())
	require.Len(t, employees.Items(), 2)

	// Delete resyncs the same way; no optimistic removal path.
	require.True(t, employees.Delete(ctx, 2))
	require.Equal(t, int32(3), queries.Load())
	require.Len(t, employees.Items(), 1)
}

func TestMutationFailureReportsFalse(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/create", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":400,"msg":"name taken","result":null}`))
	})

	client, _ := newClient(t, mux)
	sink := &notify.Recorder{}
	employees := cache.NewEmployees(client, sink, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ok := employees.Create(context.Background(), api.CreateEmployeeRequest{
		RealName:    "alice",
		BirthDate:   "1990-01-01",
		JobPosition: api.PositionHR,
		LaborValue:  100,
	})
	require.False(t, ok)
	require.NotEmpty(t, sink.Errors())
}

func TestValidationRejectedBeforeNetwork(t *testing.T) {
	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeResult(w, nil)
	})

	client, _ := newClient(t, handler)
	sink := &notify.Recorder{}
	employees := cache.NewEmployees(client, sink, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ok := employees.Create(context.Background(), api.CreateEmployeeRequest{
		RealName:    "",
		BirthDate:   "1990-01-01",
		JobPosition: api.PositionHR,
		LaborValue:  100,
	})
	require.False(t, ok)
	require.Equal(t, int32(0), calls.Load())
	require.NotEmpty(t, sink.Errors())
}

func TestProjectsCRUD(t *testing.T) {
	var queries atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/labor-projects/query", func(w http.ResponseWriter, r *http.Request) {
		queries.Add(1)
		writeResult(w, []api.Project{{ID: 1, ProjectName: "Warehouse move", Status: api.ProjectPending}})
	})
	mux.HandleFunc("/labor-projects/create", func(w http.ResponseWriter, r *http.Request) {
		writeResult(w, 2)
	})
	mux.HandleFunc("/labor-projects/1", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		writeResult(w, nil)
	})

	client, _ := newClient(t, mux)
	projects := cache.NewProjects(client, &notify.Recorder{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx := context.Background()
	require.True(t, projects.Fetch(ctx, false))
	require.Len(t, projects.Items(), 1)
	require.Equal(t, api.ProjectPending, projects.Items()[0].Status)

	require.True(t, projects.Create(ctx, api.CreateProjectRequest{
		ProjectName:        "Night shift",
		RequiredLaborValue: 60,
	}))
	require.Equal(t, int32(2), queries.Load())

	require.True(t, projects.Delete(ctx, 1))
	require.Equal(t, int32(3), queries.Load())
}
