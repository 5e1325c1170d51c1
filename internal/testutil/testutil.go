// Package testutil provides test utilities and helpers.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// TableFixture describes the canned response for one catalog table.
type TableFixture struct {
	Rows   []map[string]any
	Total  *int64 // nil renders "*" in Content-Range
	Status int    // 0 means 200
}

// FakeCatalog serves canned PostgREST responses for the given tables and
// records every request it receives. Unknown tables answer 404.
type FakeCatalog struct {
	Server *httptest.Server

	mu       sync.Mutex
	requests []*http.Request
	tables   map[string]TableFixture
}

// NewFakeCatalog starts a fake catalog backend. The server is shut down
// automatically when the test finishes.
func NewFakeCatalog(t *testing.T, tables map[string]TableFixture) *FakeCatalog {
	t.Helper()

	f := &FakeCatalog{tables: tables}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the base URL, suitable for a client rooted at "/rest/v1".
func (f *FakeCatalog) URL() string {
	return f.Server.URL
}

// Requests returns a copy of every request received so far.
func (f *FakeCatalog) Requests() []*http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*http.Request, len(f.requests))
	copy(out, f.requests)
	return out
}

// RequestsForTable returns the requests that targeted one table.
func (f *FakeCatalog) RequestsForTable(table string) []*http.Request {
	var out []*http.Request
	for _, r := range f.Requests() {
		if strings.TrimPrefix(r.URL.Path, "/rest/v1/") == table {
			out = append(out, r)
		}
	}
	return out
}

func (f *FakeCatalog) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	clone := r.Clone(r.Context())
	f.requests = append(f.requests, clone)
	f.mu.Unlock()

	table := strings.TrimPrefix(r.URL.Path, "/rest/v1/")
	fixture, ok := f.tables[table]
	if !ok {
		http.Error(w, `{"message":"relation does not exist"}`, http.StatusNotFound)
		return
	}

	status := fixture.Status
	if status == 0 {
		status = http.StatusOK
	}

	total := "*"
	if fixture.Total != nil {
		total = fmt.Sprintf("%d", *fixture.Total)
	}
	end := len(fixture.Rows) - 1
	if end < 0 {
		end = 0
	}
	w.Header().Set("Content-Range", fmt.Sprintf("0-%d/%s", end, total))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if status >= 200 && status < 300 {
		_ = json.NewEncoder(w).Encode(fixture.Rows)
		return
	}
	_, _ = w.Write([]byte(`{"message":"error"}`))
}

// Int64 returns a pointer to n, for TableFixture totals.
func Int64(n int64) *int64 { return &n }
