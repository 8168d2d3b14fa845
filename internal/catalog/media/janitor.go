// Copyright (c) 2026 Bibliora. All rights reserved.
// Author: ngocanh.tran.books@gmail.com

package media

import (
	"context"
	"log/slog"
	"time"
)

// # Background Cleanup

// janitorBatchSize caps how many expired assets a single sweep reclaims.
const janitorBatchSize = 200

// Janitor periodically reclaims TEMP media that outlived the retention
// window. It replaces a cron-style scheduled task with an in-process loop.
type Janitor struct {
	service   *Service
	interval  time.Duration
	retention time.Duration
	logger    *slog.Logger
}

// NewJanitor constructs the cleanup loop.
func NewJanitor(service *Service, interval, retention time.Duration, logger *slog.Logger) *Janitor {
	return &Janitor{
		service:   service,
		interval:  interval,
		retention: retention,
		logger:    logger,
	}
}

// Run sweeps on every tick until the context is cancelled. Call it in its
// own goroutine; it returns when ctx is done.
func (janitor *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(janitor.interval)
	defer ticker.Stop()

	janitor.logger.Info("media janitor started",
		slog.Duration("interval", janitor.interval),
		slog.Duration("retention", janitor.retention))

	for {
		select {
		case <-ctx.Done():
			janitor.logger.Info("media janitor stopped")
			return
		case <-ticker.C:
			janitor.sweep(ctx)
		}
	}
}

// sweep reclaims one batch of expired assets.
func (janitor *Janitor) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-janitor.retention)

	removed, err := janitor.service.CleanupExpired(ctx, cutoff, janitorBatchSize)
	if err != nil {
		janitor.logger.Error("media cleanup sweep failed", slog.String("error", err.Error()))
		return
	}

	if removed > 0 {
		janitor.logger.Info("reclaimed expired media", slog.Int("removed", removed))
	}
}
