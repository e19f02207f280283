package core

// scheduler.go runs background maintenance for the workspace registry.
// Workspaces hold whole files in memory and browsers rarely close them
// explicitly, so idle ones are evicted on a timer.

import (
	"context"
	"log/slog"
	"time"
)

// DefaultSweepInterval is how often idle workspaces are looked for.
const DefaultSweepInterval = time.Minute

// StartWorkspaceSweeper evicts idle workspaces every interval until ctx is
// cancelled. It blocks; run it in its own goroutine.
func (s *Service) StartWorkspaceSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	slog.Info("workspace sweeper started",
		"interval", interval.String(),
		"idle_timeout", s.cfg.IdleTimeout.String(),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("workspace sweeper stopped")
			return
		case <-ticker.C:
			s.runSweep()
		}
	}
}

func (s *Service) runSweep() {
	start := time.Now()
	evicted := s.SweepIdle(s.now())
	if evicted == 0 {
		slog.Debug("workspace sweep found nothing idle")
		return
	}
	slog.Info("evicted idle workspaces",
		"evicted", evicted,
		"remaining", s.WorkspaceCount(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
