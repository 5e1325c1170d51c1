package supabase

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func TestClientExecute(t *testing.T) {
	var gotPath string
	var gotHeaders http.Header

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotHeaders = r.Header.Clone()
		w.Header().Set("Content-Range", "0-1/137")
		w.Write([]byte(`[{"id":1},{"id":2}]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret", 5*time.Second)

	params := url.Values{}
	params.Set("select", "*")
	rows, count, err := client.Execute(context.Background(), "deals", params, map[string]string{"Prefer": "count=exact"})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if gotPath != "/rest/v1/deals" {
		t.Errorf("path = %q, want /rest/v1/deals", gotPath)
	}
	if gotHeaders.Get("apikey") != "secret" {
		t.Errorf("apikey header = %q, want secret", gotHeaders.Get("apikey"))
	}
	if gotHeaders.Get("Authorization") != "Bearer secret" {
		t.Errorf("Authorization header = %q", gotHeaders.Get("Authorization"))
	}
	if gotHeaders.Get("Prefer") != "count=exact" {
		t.Errorf("Prefer header = %q", gotHeaders.Get("Prefer"))
	}
	if len(rows) != 2 {
		t.Errorf("got %d rows, want 2", len(rows))
	}
	if count == nil || *count != 137 {
		t.Errorf("count = %v, want 137", count)
	}
}

func TestClientExecuteUnknownCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Range", "0-9/*")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "key", 5*time.Second)
	_, count, err := client.Execute(context.Background(), "deals", url.Values{}, nil)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if count != nil {
		t.Errorf("count = %d, want nil for unknown total", *count)
	}
}

func TestClientExecuteProtocolError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid column"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(server.URL, "key", 5*time.Second)
	_, _, err := client.Execute(context.Background(), "deals", url.Values{}, nil)

	var protoErr *ProtocolError
	if !errors.As(err, &protoErr) {
		t.Fatalf("error = %v, want ProtocolError", err)
	}
	if protoErr.Status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", protoErr.Status)
	}
	if protoErr.Table != "deals" {
		t.Errorf("table = %q, want deals", protoErr.Table)
	}
}

func TestClientExecuteTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := NewClient(server.URL, "key", time.Second)
	_, _, err := client.Execute(context.Background(), "deals", url.Values{}, nil)

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("error = %v, want TransportError", err)
	}
	if transportErr.Table != "deals" {
		t.Errorf("table = %q, want deals", transportErr.Table)
	}
}

func TestParseContentRange(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   *int64
	}{
		{"exact total", "0-23/4512", int64Ptr(4512)},
		{"unknown total", "0-23/*", nil},
		{"zero total", "*/0", int64Ptr(0)},
		{"empty header", "", nil},
		{"garbage", "not-a-range", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseContentRange(tt.header)
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("got %d, want nil", *got)
			case tt.want != nil && got == nil:
				t.Errorf("got nil, want %d", *tt.want)
			case tt.want != nil && got != nil && *got != *tt.want:
				t.Errorf("got %d, want %d", *got, *tt.want)
			}
		})
	}
}

func int64Ptr(n int64) *int64 { return &n }
