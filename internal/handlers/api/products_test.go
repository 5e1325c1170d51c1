package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"

	"dealview/internal/query"
	"dealview/internal/sources"
	"dealview/internal/supabase"
	"dealview/internal/testutil"
)

func testApp(t *testing.T, catalog *testutil.FakeCatalog, registry sources.Registry) *fiber.App {
	t.Helper()

	client := supabase.NewClient(catalog.URL(), "test-key", 5*time.Second)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	planner := query.NewPlanner(client, registry, log, 5*time.Second)
	handler := NewProductHandler(planner, log)

	app := fiber.New()
	app.Get("/api/products", handler.List)
	app.Get("/api/products/:id", handler.Get)
	app.Get("/api/products/:id/history", handler.History)
	return app
}

func testRegistry() sources.Registry {
	d := &sources.Descriptor{
		Key:    "alpha",
		Table:  "alpha_deals",
		Label:  "Alpha",
		Region: "CA",
		Columns: sources.Columns{
			Date:  "created_at",
			Title: "title",
			Store: "store",
			Price: "price",
		},
	}
	d.Normalize = sources.NewScrapedAdapter(d)
	return sources.Registry{d}
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("undecodable response body: %v", err)
	}
	return body
}

func TestProductListEndpoint(t *testing.T) {
	catalog := testutil.NewFakeCatalog(t, map[string]testutil.TableFixture{
		"alpha_deals": {Rows: []map[string]any{
			{"id": 1, "title": "Standing Desk", "store": "Alpha", "price": 299.99, "created_at": "2026-03-01"},
			{"id": 2, "title": "Desk Lamp", "store": "Alpha", "price": 39.99, "created_at": "2026-03-02"},
		}},
	})
	app := testApp(t, catalog, testRegistry())

	req, _ := http.NewRequest("GET", "/api/products?per_page=10", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["total"] != float64(2) {
		t.Errorf("total = %v, want 2", body["total"])
	}
	if body["approximate"] != false {
		t.Errorf("approximate = %v, want false", body["approximate"])
	}
	products, ok := body["products"].([]any)
	if !ok || len(products) != 2 {
		t.Fatalf("products = %v, want 2 entries", body["products"])
	}
}

func TestProductListEndpointSearchFilter(t *testing.T) {
	catalog := testutil.NewFakeCatalog(t, map[string]testutil.TableFixture{
		"alpha_deals": {Rows: []map[string]any{
			{"id": 1, "title": "Standing Desk", "store": "Alpha", "price": 299.99, "created_at": "2026-03-01"},
			{"id": 2, "title": "Desk Lamp", "store": "Alpha", "price": 39.99, "created_at": "2026-03-02"},
		}},
	})
	app := testApp(t, catalog, testRegistry())

	// The fake backend does not evaluate filters, so the residual pass must.
	req, _ := http.NewRequest("GET", "/api/products?search=lamp", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	body := decodeBody(t, resp)
	if body["total"] != float64(1) {
		t.Errorf("total = %v, want 1 after residual search", body["total"])
	}
	applied, _ := body["applied_filters"].(map[string]any)
	if applied["search"] != "lamp" {
		t.Errorf("applied_filters.search = %v", applied["search"])
	}
}

func TestProductListEndpointAllSourcesDown(t *testing.T) {
	catalog := testutil.NewFakeCatalog(t, map[string]testutil.TableFixture{})
	app := testApp(t, catalog, testRegistry())

	req, _ := http.NewRequest("GET", "/api/products", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["error"] == nil {
		t.Error("error payload missing")
	}
}

func TestProductGetEndpoint(t *testing.T) {
	catalog := testutil.NewFakeCatalog(t, map[string]testutil.TableFixture{
		"alpha_deals": {Rows: []map[string]any{
			{"id": 7, "title": "Espresso Machine", "store": "Alpha", "price": 120.0, "original_price": 200.0, "created_at": "2026-03-01"},
		}},
	})
	app := testApp(t, catalog, testRegistry())

	req, _ := http.NewRequest("GET", "/api/products/alpha_7", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["id"] != "alpha_7" {
		t.Errorf("id = %v, want alpha_7", body["id"])
	}
	history, ok := body["price_history"].([]any)
	if !ok || len(history) == 0 {
		t.Errorf("price_history = %v, want non-empty", body["price_history"])
	}
}

func TestProductGetEndpointNotFound(t *testing.T) {
	catalog := testutil.NewFakeCatalog(t, map[string]testutil.TableFixture{
		"alpha_deals": {Rows: nil},
	})
	app := testApp(t, catalog, testRegistry())

	for _, path := range []string{"/api/products/alpha_999", "/api/products/bogus"} {
		req, _ := http.NewRequest("GET", path, nil)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("%s status = %d, want 404", path, resp.StatusCode)
		}
		body := decodeBody(t, resp)
		if body["error"] != "product not found" {
			t.Errorf("%s error = %v", path, body["error"])
		}
	}
}

func TestProductHistoryEndpoint(t *testing.T) {
	catalog := testutil.NewFakeCatalog(t, map[string]testutil.TableFixture{
		"alpha_deals": {Rows: []map[string]any{
			{"id": 7, "title": "Espresso Machine", "store": "Alpha", "price": 120.0, "original_price": 200.0, "created_at": "2026-03-01"},
		}},
	})
	app := testApp(t, catalog, testRegistry())

	req, _ := http.NewRequest("GET", "/api/products/alpha_7/history", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	stats, ok := body["stats"].(map[string]any)
	if !ok {
		t.Fatalf("stats = %v, want object", body["stats"])
	}
	if stats["lowest_price"] != float64(120) || stats["highest_price"] != float64(200) {
		t.Errorf("stats low/high = %v/%v", stats["lowest_price"], stats["highest_price"])
	}
}
