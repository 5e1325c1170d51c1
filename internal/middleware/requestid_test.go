package middleware

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v3"
)

func TestRequestIDGenerated(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())

	var seen string
	app.Get("/", func(c fiber.Ctx) error {
		seen, _ = c.Locals(RequestIDKey).(string)
		return c.SendString("ok")
	})

	req, _ := http.NewRequest("GET", "/", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if seen == "" {
		t.Error("no request ID stored in locals")
	}
	if got := resp.Header.Get("X-Request-ID"); got != seen {
		t.Errorf("echoed ID %q does not match stored ID %q", got, seen)
	}
}

func TestRequestIDHonorsIncoming(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/", func(c fiber.Ctx) error { return c.SendString("ok") })

	req, _ := http.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "upstream-abc-123")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if got := resp.Header.Get("X-Request-ID"); got != "upstream-abc-123" {
		t.Errorf("X-Request-ID = %q, want the upstream-supplied ID", got)
	}
}
