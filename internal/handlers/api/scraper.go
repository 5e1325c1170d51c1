package api

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
)

// ScraperHandler is a stateless reverse proxy to the scraper-control
// service. It forwards the method, subpath, query string, and body as-is;
// no interpretation happens here.
type ScraperHandler struct {
	baseURL string
	client  *http.Client
	log     *slog.Logger
}

// NewScraperHandler creates a proxy to the scraper-control service rooted
// at baseURL. An empty baseURL disables the proxy.
func NewScraperHandler(baseURL string, log *slog.Logger) *ScraperHandler {
	return &ScraperHandler{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     log,
	}
}

// Proxy forwards one request and relays the upstream response verbatim.
func (h *ScraperHandler) Proxy(c fiber.Ctx) error {
	if h.baseURL == "" {
		return jsonError(c, fiber.StatusServiceUnavailable, "scraper control is not configured")
	}

	target := h.baseURL + "/" + c.Params("*")
	if qs := string(c.RequestCtx().URI().QueryString()); qs != "" {
		target += "?" + qs
	}

	req, err := http.NewRequestWithContext(c.Context(), c.Method(), target, bytes.NewReader(c.Body()))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid proxy request")
	}
	if ct := c.Get(fiber.HeaderContentType); ct != "" {
		req.Header.Set(fiber.HeaderContentType, ct)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		h.log.Warn("scraper proxy failed", "target", target, "error", err)
		return jsonError(c, fiber.StatusBadGateway, "scraper control unreachable")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return jsonError(c, fiber.StatusBadGateway, "scraper control returned an unreadable response")
	}

	if ct := resp.Header.Get(fiber.HeaderContentType); ct != "" {
		c.Set(fiber.HeaderContentType, ct)
	}
	return c.Status(resp.StatusCode).Send(body)
}
