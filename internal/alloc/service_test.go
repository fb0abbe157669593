package alloc_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ganot/labordesk/internal/alloc"
	"github.com/ganot/labordesk/internal/api"
	"github.com/ganot/labordesk/internal/cache"
	"github.com/ganot/labordesk/internal/notify"
	"github.com/ganot/labordesk/internal/transport"
	"github.com/stretchr/testify/require"
)

type staticTokens struct{}

func (staticTokens) Token() (string, bool) { return "T1", true }

type nopNavigator struct{}

func (nopNavigator) CurrentPath() string { return "/" }
func (nopNavigator) Redirect(string)     {}

func TestAllocateForcesProjectRefresh(t *testing.T) {
	var projectQueries atomic.Int32
	var gotReq api.AllocateRequest

	mux := http.NewServeMux()
	mux.HandleFunc("/labor-projects/query", func(w http.ResponseWriter, r *http.Request) {
		projectQueries.Add(1)
		raw, _ := json.Marshal([]api.Project{{ID: 1, ProjectName: "Warehouse move", Status: api.ProjectPending}})
		fmt.Fprintf(w, `{"status":0,"msg":"","result":%s}`, raw)
	})
	mux.HandleFunc("/labor-allocations/allocate", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		raw, _ := json.Marshal(api.BatchAllocateResult{
			AllocationResults: []api.AllocateResult{{ProjectID: 1, ProjectName: "Warehouse move"}},
			TotalProjects:     1,
			AllocationTime:    "2025-05-01 10:00:00",
		})
		fmt.Fprintf(w, `{"status":0,"msg":"","result":%s}`, raw)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	guard := transport.NewInvalidationGuard(nopNavigator{}, time.Minute, logger)
	client := transport.NewClient(transport.Config{BaseURL: server.URL}, staticTokens{}, guard, &notify.Recorder{}, logger)
	projects := cache.NewProjects(client, &notify.Recorder{}, logger)
	svc := alloc.NewService(client, projects, logger)

	ctx := context.Background()
	require.True(t, projects.Fetch(ctx, false))
	require.Equal(t, int32(1), projectQueries.Load())

	result, err := svc.Allocate(ctx, nil)
	require.NoError(t, err)
	require.Nil(t, gotReq.ProjectID)
	require.Equal(t, 1, result.TotalProjects)

	// The successful run forced a second project fetch.
	require.Equal(t, int32(2), projectQueries.Load())

	last, ok := svc.Last()
	require.True(t, ok)
	require.Equal(t, int64(1), last.AllocationResults[0].ProjectID)

	svc.Reset()
	_, ok = svc.Last()
	require.False(t, ok)
}

func TestAllocateSingleProject(t *testing.T) {
	var gotReq api.AllocateRequest
	mux := http.NewServeMux()
	mux.HandleFunc("/labor-allocations/allocate", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		fmt.Fprint(w, `{"status":0,"msg":"","result":{"allocationResults":[],"totalProjects":1,"allocationTime":""}}`)
	})
	mux.HandleFunc("/labor-projects/query", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":0,"msg":"","result":[]}`)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	guard := transport.NewInvalidationGuard(nopNavigator{}, time.Minute, logger)
	client := transport.NewClient(transport.Config{BaseURL: server.URL}, staticTokens{}, guard, &notify.Recorder{}, logger)
	projects := cache.NewProjects(client, &notify.Recorder{}, logger)
	svc := alloc.NewService(client, projects, logger)

	id := int64(7)
	_, err := svc.Allocate(context.Background(), &id)
	require.NoError(t, err)
	require.NotNil(t, gotReq.ProjectID)
	require.Equal(t, int64(7), *gotReq.ProjectID)
}

func TestAllocateFailureKeepsLast(t *testing.T) {
	var fail atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("/labor-allocations/allocate", func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			fmt.Fprint(w, `{"status":500,"msg":"no pending projects","result":null}`)
			return
		}
		fmt.Fprint(w, `{"status":0,"msg":"","result":{"allocationResults":[],"totalProjects":2,"allocationTime":""}}`)
	})
	mux.HandleFunc("/labor-projects/query", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":0,"msg":"","result":[]}`)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	guard := transport.NewInvalidationGuard(nopNavigator{}, time.Minute, logger)
	client := transport.NewClient(transport.Config{BaseURL: server.URL}, staticTokens{}, guard, &notify.Recorder{}, logger)
	svc := alloc.NewService(client, cache.NewProjects(client, &notify.Recorder{}, logger), logger)

	_, err := svc.Allocate(context.Background(), nil)
	require.NoError(t, err)

	fail.Store(true)
	_, err = svc.Allocate(context.Background(), nil)
	var apiErr *transport.APIError
	require.ErrorAs(t, err, &apiErr)

	last, ok := svc.Last()
	require.True(t, ok)
	require.Equal(t, 2, last.TotalProjects)
}
