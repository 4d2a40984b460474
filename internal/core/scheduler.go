package core

// scheduler.go runs background maintenance on a cron schedule.
//
// Currently it purges ingest job history older than the retention window.
// Failures are logged and retried on the next tick; they never stop the
// server.

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// HistoryPurgeConfig controls job history retention.
type HistoryPurgeConfig struct {
	RetentionDays int    // Days to keep finished jobs (default: 90)
	Schedule      string // Cron expression or descriptor (default: @daily)
}

// StartHistoryPurge runs one purge immediately, then on cfg.Schedule until
// ctx is cancelled. It returns an error only for an invalid schedule.
func (s *Service) StartHistoryPurge(ctx context.Context, cfg HistoryPurgeConfig) error {
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = 90
	}
	if cfg.Schedule == "" {
		cfg.Schedule = "@daily"
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.Schedule, func() { s.runHistoryPurge(ctx, cfg.RetentionDays) }); err != nil {
		return fmt.Errorf("schedule history purge %q: %w", cfg.Schedule, err)
	}

	slog.Info("history purge scheduled",
		"retention_days", cfg.RetentionDays,
		"schedule", cfg.Schedule,
	)

	s.runHistoryPurge(ctx, cfg.RetentionDays)
	c.Start()

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
		slog.Info("history purge stopped")
	}()
	return nil
}

// PurgeHistory deletes jobs older than retentionDays and returns the count.
func (s *Service) PurgeHistory(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, fmt.Errorf("retention days must be positive")
	}
	n, err := s.store.PurgeIngestJobs(ctx, int32(retentionDays))
	if err != nil {
		return 0, fmt.Errorf("purge job history: %w", err)
	}
	return n, nil
}

func (s *Service) runHistoryPurge(ctx context.Context, retentionDays int) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()

	purged, err := s.PurgeHistory(ctx, retentionDays)
	if err != nil {
		slog.Error("history purge failed", "error", err)
		return
	}
	slog.Info("purged job history",
		"jobs_purged", purged,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
