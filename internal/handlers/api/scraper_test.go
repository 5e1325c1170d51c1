package api

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
)

func scraperApp(baseURL string) *fiber.App {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	app := fiber.New()
	app.All("/api/scraper/*", NewScraperHandler(baseURL, log).Proxy)
	return app
}

func TestScraperProxyForwards(t *testing.T) {
	var gotMethod, gotPath, gotQuery, gotBody string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"started":true}`))
	}))
	defer upstream.Close()

	app := scraperApp(upstream.URL)

	req, _ := http.NewRequest("POST", "/api/scraper/jobs/run?scraper=keepa", strings.NewReader(`{"force":true}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if gotMethod != "POST" {
		t.Errorf("upstream method = %q, want POST", gotMethod)
	}
	if gotPath != "/jobs/run" {
		t.Errorf("upstream path = %q, want /jobs/run", gotPath)
	}
	if gotQuery != "scraper=keepa" {
		t.Errorf("upstream query = %q, want scraper=keepa", gotQuery)
	}
	if gotBody != `{"force":true}` {
		t.Errorf("upstream body = %q", gotBody)
	}
	if resp.StatusCode != http.StatusAccepted {
		t.Errorf("status = %d, want upstream's 202", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != `{"started":true}` {
		t.Errorf("body = %s, want relayed upstream body", body)
	}
}

func TestScraperProxyUnconfigured(t *testing.T) {
	app := scraperApp("")

	req, _ := http.NewRequest("GET", "/api/scraper/status", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

func TestScraperProxyUpstreamDown(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close()

	app := scraperApp(upstream.URL)

	req, _ := http.NewRequest("GET", "/api/scraper/status", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", resp.StatusCode)
	}
}
