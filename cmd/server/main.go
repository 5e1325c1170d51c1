package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"dealview/internal/cache"
	"dealview/internal/config"
	"dealview/internal/jobs"
	"dealview/internal/metrics"
	"dealview/internal/query"
	"dealview/internal/server"
	"dealview/internal/sources"
	"dealview/internal/supabase"
)

func main() {
	config.LoadDotenv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel := slog.LevelInfo
	if cfg.IsDev() {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	metrics.Init()

	// Initialize the catalog backend
	client := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SourceTimeout)
	registry := sources.DefaultRegistry()
	planner := query.NewPlanner(client, registry, logger, cfg.SourceTimeout)

	// Response cache: Redis when configured, in-process otherwise
	var store cache.Store
	if cfg.CacheRedisURL != "" {
		store = cache.NewRedis(cfg.CacheRedisURL)
		logger.Info("using redis response cache")
	} else {
		store = cache.NewMemory()
	}

	srv := server.New(cfg)
	srv.RegisterRoutes(planner, store, logger)

	// Background source monitoring
	monitorCtx, cancelMonitor := context.WithCancel(context.Background())
	defer cancelMonitor()
	monitor := jobs.NewSourceMonitor(planner, cfg.MonitorInterval, logger)
	go monitor.Start(monitorCtx)

	// Graceful shutdown
	go func() {
		if err := srv.Start(); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("Server started on %s", cfg.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	cancelMonitor()
	if err := srv.Shutdown(); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}
