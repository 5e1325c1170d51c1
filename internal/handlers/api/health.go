package api

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"

	"dealview/internal/query"
)

// HealthHandler verifies the backing store is reachable.
type HealthHandler struct {
	planner *query.Planner
	log     *slog.Logger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(planner *query.Planner, log *slog.Logger) *HealthHandler {
	return &HealthHandler{planner: planner, log: log}
}

// Check probes the two rich tables with cheap count queries. Either
// succeeding proves the store is up; both failing is a 503.
func (h *HealthHandler) Check(c fiber.Ctx) error {
	registry := h.planner.Registry()

	var total int64
	counts := fiber.Map{}
	ok := false
	for _, key := range []string{"retailer", "keepa"} {
		desc, found := registry.ByKey(key)
		if !found {
			continue
		}
		count, err := h.planner.Probe(c.Context(), desc)
		if err != nil {
			h.log.Warn("health probe failed", "source", key, "error", err)
			continue
		}
		ok = true
		total += count
		counts[desc.Table] = count
	}

	if !ok {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":   "error",
			"database": "disconnected",
		})
	}

	return c.JSON(fiber.Map{
		"status":          "ok",
		"database":        "connected",
		"active_products": total,
		"tables":          counts,
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
	})
}
