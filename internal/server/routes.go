package server

import (
	"log/slog"

	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dealview/internal/cache"
	"dealview/internal/handlers/api"
	"dealview/internal/query"
)

// RegisterRoutes wires every HTTP route to its handler.
func (s *Server) RegisterRoutes(planner *query.Planner, store cache.Store, log *slog.Logger) {
	products := api.NewProductHandler(planner, log)
	facets := api.NewFacetHandler(planner, store, log)
	health := api.NewHealthHandler(planner, log)
	scraper := api.NewScraperHandler(s.Cfg.DropletAPIURL, log)

	grp := s.App.Group("/api")

	grp.Get("/products", products.List)
	grp.Get("/products/:id", products.Get)
	grp.Get("/products/:id/history", products.History)

	grp.Get("/filters", facets.Filters)
	grp.Get("/stats", facets.Stats)

	grp.Get("/health", health.Check)

	grp.All("/scraper/*", scraper.Proxy)

	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}
