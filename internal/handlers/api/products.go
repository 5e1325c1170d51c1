package api

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"

	"dealview/internal/query"
	"dealview/internal/supabase"
)

// ProductHandler serves the federated listing and single-product endpoints.
type ProductHandler struct {
	planner *query.Planner
	log     *slog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(planner *query.Planner, log *slog.Logger) *ProductHandler {
	return &ProductHandler{planner: planner, log: log}
}

// List runs one federated filter/sort/page query across all eligible sources.
func (h *ProductHandler) List(c fiber.Ctx) error {
	spec := query.ParseFilterSpec(c.Queries(), time.Now())

	res, err := h.planner.Search(c.Context(), spec)
	if err != nil {
		var partial *query.PartialAggregationError
		if errors.As(err, &partial) {
			h.log.Error("federated query failed on every source", "sources", partial.Sources)
			return jsonError(c, fiber.StatusBadGateway, "all product sources are unavailable")
		}
		h.log.Error("federated query failed", "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "product query failed")
	}

	return c.JSON(res)
}

// Get returns one product with its price history.
func (h *ProductHandler) Get(c fiber.Ctx) error {
	res, err := h.planner.Get(c.Context(), c.Params("id"))
	if err != nil {
		return h.lookupError(c, err)
	}
	return c.JSON(res)
}

// History returns a product's price series with derived stats.
func (h *ProductHandler) History(c fiber.Ctx) error {
	res, err := h.planner.History(c.Context(), c.Params("id"))
	if err != nil {
		return h.lookupError(c, err)
	}
	return c.JSON(res)
}

func (h *ProductHandler) lookupError(c fiber.Ctx, err error) error {
	if errors.Is(err, query.ErrNotFound) {
		return jsonError(c, fiber.StatusNotFound, "product not found")
	}

	var transport *supabase.TransportError
	if errors.As(err, &transport) {
		h.log.Error("product lookup unreachable", "id", c.Params("id"), "error", err)
		return jsonError(c, fiber.StatusBadGateway, "backing store unreachable")
	}

	h.log.Error("product lookup failed", "id", c.Params("id"), "error", err)
	return jsonError(c, fiber.StatusInternalServerError, "product lookup failed")
}
