package jobs

import (
	"context"
	"log/slog"
	"time"

	"dealview/internal/metrics"
	"dealview/internal/query"
)

// SourceMonitor performs background reachability checks on catalog sources.
type SourceMonitor struct {
	planner  *query.Planner
	interval time.Duration
	log      *slog.Logger
}

// NewSourceMonitor creates a new source monitor.
func NewSourceMonitor(planner *query.Planner, interval time.Duration, log *slog.Logger) *SourceMonitor {
	return &SourceMonitor{
		planner:  planner,
		interval: interval,
		log:      log,
	}
}

// Start begins the background monitoring loop.
func (m *SourceMonitor) Start(ctx context.Context) {
	m.log.Info("source monitor started", "interval", m.interval)

	// Run immediately on start
	m.checkAll(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.log.Info("source monitor stopped")
			return
		case <-ticker.C:
			m.checkAll(ctx)
		}
	}
}

// checkAll probes every registered source and records its row count.
func (m *SourceMonitor) checkAll(ctx context.Context) {
	for _, desc := range m.planner.Registry() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		total, err := m.planner.Probe(ctx, desc)
		if err != nil {
			m.log.Warn("source probe failed", "source", desc.Key, "error", err)
			metrics.SetSourceUp(desc.Key, false)
			continue
		}

		metrics.SetSourceUp(desc.Key, true)
		metrics.SetSourceRows(desc.Key, total)
	}
}
