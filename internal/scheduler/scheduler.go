// Package scheduler runs the nightly KPI snapshot job across the configured
// tenants.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamoudk/plantops/internal/config"
	"github.com/mamoudk/plantops/internal/service/reporting"
	"github.com/mamoudk/plantops/pkg/logger"
)

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron         *cron.Cron
	reportingSvc *reporting.Service
	cfg          config.ReportingConfig
	logger       *zap.Logger
}

// NewScheduler creates a new scheduler instance. The cron runs in the
// configured timezone, falling back to UTC when the location cannot load.
func NewScheduler(cfg config.ReportingConfig, reportingSvc *reporting.Service, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("invalid timezone, using UTC", zap.String("timezone", cfg.Timezone), zap.Error(err))
		loc = time.UTC
	}

	return &Scheduler{
		cron:         cron.New(cron.WithLocation(loc)),
		reportingSvc: reportingSvc,
		cfg:          cfg,
		logger:       logger,
	}
}

// Start registers the snapshot job and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler",
		zap.String("schedule", s.cfg.CronSchedule),
		zap.Int("tenants", len(s.cfg.Tenants)))

	_, err := s.cron.AddFunc(s.cfg.CronSchedule, s.runSnapshots)
	if err != nil {
		s.logger.Error("failed to schedule snapshot job", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

// runSnapshots generates and persists one snapshot per configured tenant. A
// failing tenant is logged and skipped so the rest still run.
func (s *Scheduler) runSnapshots() {
	now := time.Now()

	for _, tenantID := range s.cfg.Tenants {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		log := logger.WithTenant(s.logger, tenantID)

		if _, err := s.reportingSvc.SnapshotAndExport(ctx, tenantID, now); err != nil {
			log.Error("snapshot failed", zap.Error(err))
		} else {
			log.Info("snapshot completed")
		}

		cancel()
	}
}
