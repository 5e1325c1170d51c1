package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client is a thin PostgREST client. It issues one GET per query, attaches
// the service credentials, and parses the Content-Range total. It does not
// retry and it does not cache.
type Client struct {
	baseURL string
	key     string
	http    *http.Client
}

// NewClient creates a client for the PostgREST API rooted at url + "/rest/v1".
func NewClient(rawURL, key string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(rawURL, "/") + "/rest/v1",
		key:     key,
		http:    &http.Client{Timeout: timeout},
	}
}

// Execute runs a single table query. The returned count is the exact total
// row count when the server reported one, nil when it is unknown ("*" in the
// Content-Range header or no count requested).
func (c *Client) Execute(ctx context.Context, table string, params url.Values, headers map[string]string) ([]json.RawMessage, *int64, error) {
	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, table, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, nil, &ProtocolError{Table: table, Body: err.Error()}
	}

	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, &TransportError{Table: table, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &TransportError{Table: table, Err: err}
	}

	// PostgREST answers 206 when a Range header limits the window.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, &ProtocolError{Table: table, Status: resp.StatusCode, Body: truncate(string(body), 200)}
	}

	count := parseContentRange(resp.Header.Get("Content-Range"))

	var rows []json.RawMessage
	if len(body) > 0 {
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, nil, &ProtocolError{Table: table, Status: resp.StatusCode, Body: "undecodable body: " + err.Error()}
		}
	}

	return rows, count, nil
}

// parseContentRange extracts the total from a "start-end/total" header.
// A total of "*" means the server does not know, which is not zero.
func parseContentRange(header string) *int64 {
	idx := strings.LastIndex(header, "/")
	if idx < 0 {
		return nil
	}
	total := header[idx+1:]
	if total == "*" || total == "" {
		return nil
	}
	n, err := strconv.ParseInt(total, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
