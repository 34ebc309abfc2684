package app

import (
	"context"
	"fmt"
	"time"

	"github.com/campushub/portal/internal/model"
	"github.com/campushub/portal/internal/service"
	"go.uber.org/zap"
)

// Scheduler runs background maintenance tasks.
type Scheduler struct {
	stats    *service.StatsService
	audit    *service.AuditService
	interval time.Duration
	logger   *zap.Logger
	stopChan chan struct{}
}

func NewScheduler(stats *service.StatsService, audit *service.AuditService, interval time.Duration, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Scheduler{
		stats:    stats,
		audit:    audit,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start launches the background tasks.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler")
	go s.runActivitySnapshotTask(ctx)
}

// Stop terminates the background tasks.
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
}

// runActivitySnapshotTask periodically records portal activity counters into
// the audit log, so summaries have a trail to work with even on quiet days.
func (s *Scheduler) runActivitySnapshotTask(ctx context.Context) {
	s.snapshot(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.snapshot(ctx)
		case <-s.stopChan:
			s.logger.Info("Activity snapshot task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Activity snapshot task cancelled")
			return
		}
	}
}

func (s *Scheduler) snapshot(ctx context.Context) {
	stats, err := s.stats.Snapshot(ctx)
	if err != nil {
		s.logger.Error("Failed to gather activity snapshot", zap.Error(err))
		return
	}

	s.audit.Record(ctx, "system", "Activity Snapshot",
		fmt.Sprintf("courses=%d borrowed_books=%d appointments=%v users=%v",
			stats.Courses, stats.BorrowedBooks, stats.AppointmentsByStatus, stats.UsersByRole),
		model.AuditLevelInfo)
}
