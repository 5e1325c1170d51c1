package api

import (
	"encoding/json"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"dealview/internal/cache"
	"dealview/internal/query"
)

// Cache keys for the aggregate endpoints.
const (
	filtersCacheKey = "filters"
	statsCacheKey   = "stats"
)

// FacetHandler serves the cached aggregate endpoints: the store facet list
// for the filter UI and the lightweight stat counters. Both are cheap to
// serve stale and expensive to recompute, so reads go through the result
// cache.
type FacetHandler struct {
	planner *query.Planner
	store   cache.Store
	log     *slog.Logger
}

// NewFacetHandler creates a new facet handler.
func NewFacetHandler(planner *query.Planner, store cache.Store, log *slog.Logger) *FacetHandler {
	return &FacetHandler{planner: planner, store: store, log: log}
}

// Filters returns per-store facet counts, cached for five minutes.
func (h *FacetHandler) Filters(c fiber.Ctx) error {
	if body, ok := h.store.Get(filtersCacheKey); ok {
		return sendJSONBytes(c, body)
	}

	res, err := h.planner.Facets(c.Context())
	if err != nil {
		h.log.Error("facet aggregation failed", "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "facet aggregation failed")
	}

	body, err := json.Marshal(res)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "facet aggregation failed")
	}
	h.store.Set(filtersCacheKey, body, cache.FiltersTTL)
	return sendJSONBytes(c, body)
}

// Stats returns active/on-sale totals, cached for a minute.
func (h *FacetHandler) Stats(c fiber.Ctx) error {
	if body, ok := h.store.Get(statsCacheKey); ok {
		return sendJSONBytes(c, body)
	}

	res, err := h.planner.Stats(c.Context())
	if err != nil {
		h.log.Error("stats aggregation failed", "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "stats aggregation failed")
	}

	body, err := json.Marshal(res)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "stats aggregation failed")
	}
	h.store.Set(statsCacheKey, body, cache.StatsTTL)
	return sendJSONBytes(c, body)
}
