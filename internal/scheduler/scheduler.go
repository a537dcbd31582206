package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/breakeven/internal/config"
	"github.com/mamadbah2/breakeven/internal/domain/models"
)

const reportTimeout = 2 * time.Minute

// Reporter builds the weekly break-even report text.
type Reporter interface {
	GenerateWeeklyReport(ctx context.Context, restaurantID string, desiredMarginPercent float64) (string, error)
}

// Sender delivers a message to the manager.
type Sender interface {
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron      *cron.Cron
	reporter  Reporter
	sender    Sender
	cfg       config.ReportingConfig
	managerID string
	logger    *zap.Logger
}

// NewScheduler creates a scheduler running in the configured timezone. sender
// may be nil, in which case reports are only recorded.
func NewScheduler(cfg config.ReportingConfig, managerID string, reporter Reporter, sender Sender, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Timezone, err)
	}

	return &Scheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		reporter:  reporter,
		sender:    sender,
		cfg:       cfg,
		managerID: managerID,
		logger:    logger,
	}, nil
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.sendWeeklyReport); err != nil {
		return fmt.Errorf("schedule weekly report %q: %w", s.cfg.CronSchedule, err)
	}

	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.CronSchedule), zap.String("timezone", s.cfg.Timezone))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sendWeeklyReport() {
	s.logger.Info("generating weekly report", zap.String("restaurant_id", s.cfg.DefaultRestaurantID))
	ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
	defer cancel()

	report, err := s.reporter.GenerateWeeklyReport(ctx, s.cfg.DefaultRestaurantID, s.cfg.DefaultMarginPct)
	if err != nil {
		s.logger.Error("failed to generate weekly report", zap.Error(err))
		return
	}

	if s.sender == nil || s.managerID == "" {
		s.logger.Info("weekly report recorded, no manager to notify")
		return
	}

	req := models.OutboundMessageRequest{
		To:      s.managerID,
		Message: report,
	}

	if err := s.sender.SendOutbound(ctx, req); err != nil {
		s.logger.Error("failed to send weekly report", zap.Error(err))
	} else {
		s.logger.Info("weekly report sent successfully")
	}
}
