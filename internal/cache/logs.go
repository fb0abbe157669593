package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/ganot/labordesk/internal/api"
	"github.com/ganot/labordesk/internal/notify"
	"github.com/ganot/labordesk/internal/transport"
)

// defaultLogPageSize matches the log drawer's initial page size.
const defaultLogPageSize = 5

// Entry is one allocation log prepared for display. Message summarizes the
// parsed allocation blob; when the blob does not parse, Message falls back
// to a fixed line and Details/Raw carry the original string.
type Entry struct {
	ID           int64
	Timestamp    string
	OperatorName string
	ProjectName  string
	Message      string
	Details      string
	Raw          string
}

// Logs caches the paginated allocation log listing. Unlike the other
// caches it is keyed by query parameters: a fetch arriving while one is in
// flight is dropped only when it asks for the same page.
type Logs struct {
	mu          sync.Mutex
	entries     []Entry
	total       int64
	pageNum     int
	pageSize    int
	loading     bool
	initialized bool
	inflight    *api.LogQuery

	client *transport.Client
	notify notify.Sink
	logger *slog.Logger
}

// NewLogs creates the log cache over client.
func NewLogs(client *transport.Client, sink notify.Sink, logger *slog.Logger) *Logs {
	return &Logs{
		pageSize: defaultLogPageSize,
		client:   client,
		notify:   sink,
		logger:   logger,
	}
}

// SetPage updates pagination state ahead of the next Fetch. Pages are
// zero-indexed.
func (l *Logs) SetPage(pageNum, pageSize int) bool {
	if err := (api.LogQuery{PageNum: pageNum, PageSize: pageSize}).Validate(); err != nil {
		l.logger.Warn("rejected page change", "error", err)
		l.notify.Error(err.Error())
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.pageNum = pageNum
	l.pageSize = pageSize
	return true
}

// Fetch loads one page of allocation logs. A nil query uses the current
// pagination state. Duplicate fetches for the page already in flight are
// dropped; a fetch for a different page proceeds, and the last response to
// resolve wins.
func (l *Logs) Fetch(ctx context.Context, query *api.LogQuery) bool {
	l.mu.Lock()
	q := api.LogQuery{PageNum: l.pageNum, PageSize: l.pageSize}
	if query != nil {
		q = *query
		if q.PageSize <= 0 {
			q.PageSize = l.pageSize
		}
	}
	if l.loading && l.inflight != nil &&
		l.inflight.PageNum == q.PageNum && l.inflight.PageSize == q.PageSize {
		initialized := l.initialized
		l.mu.Unlock()
		return initialized
	}
	l.loading = true
	l.inflight = &q
	l.mu.Unlock()

	var page api.PageResult[api.AllocationLog]
	err := l.client.Post(ctx, "/labor-allocations/logs", q, &page)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.loading = false
	l.inflight = nil
	if err != nil {
		l.logger.Error("fetch failed", "cache", "logs", "error", err)
		if !errors.Is(err, transport.ErrUnauthenticated) {
			l.notify.Error("failed to load logs")
		}
		return l.initialized
	}

	entries := make([]Entry, 0, len(page.Records))
	for _, rec := range page.Records {
		entries = append(entries, newEntry(rec))
	}
	l.entries = entries
	l.total = page.Total
	l.pageNum = q.PageNum
	l.pageSize = q.PageSize
	l.initialized = true
	return true
}

func newEntry(rec api.AllocationLog) Entry {
	entry := Entry{
		ID:           rec.ID,
		Timestamp:    rec.RequestTime,
		OperatorName: rec.OperatorName,
		ProjectName:  rec.ProjectName,
		Raw:          rec.AllocationResult,
	}

	summary, details, ok := api.SummarizeAllocationBlob(rec.AllocationResult)
	if !ok {
		entry.Message = "labor allocation completed"
		entry.Details = rec.AllocationResult
		return entry
	}
	entry.Message = summary
	entry.Details = details
	return entry
}

// Entries returns a copy of the current page.
func (l *Logs) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}

// Total returns the total record count from the last successful fetch.
func (l *Logs) Total() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}

// Page returns the current zero-indexed page number and page size.
func (l *Logs) Page() (pageNum, pageSize int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pageNum, l.pageSize
}

// PageCount computes the number of pages from the last fetch's total.
func (l *Logs) PageCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pageSize <= 0 {
		return 0
	}
	return int((l.total + int64(l.pageSize) - 1) / int64(l.pageSize))
}

// Loading reports whether a fetch is in flight.
func (l *Logs) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

// Initialized reports whether a fetch has succeeded since the last reset.
func (l *Logs) Initialized() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.initialized
}

// Reset empties the cache and restores default pagination. Used by the
// global logout path.
func (l *Logs) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
	l.total = 0
	l.pageNum = 0
	l.pageSize = defaultLogPageSize
	l.initialized = false
}
