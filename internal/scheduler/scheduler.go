package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/household/internal/config"
	"github.com/mamadbah2/household/internal/domain/models"
	"github.com/mamadbah2/household/internal/service/reminders"
	"github.com/mamadbah2/household/internal/service/whatsapp"
	"github.com/mamadbah2/household/pkg/clients/anthropic"
)

const jobTimeout = 2 * time.Minute

// ReportGenerator builds the weekly balance digest.
type ReportGenerator interface {
	GenerateWeeklyReport(ctx context.Context) (string, error)
}

// ReminderGenerator produces the daily reorder reminder.
type ReminderGenerator interface {
	Enabled() bool
	Generate(ctx context.Context, req reminders.Request) (anthropic.Reminders, error)
}

// Scheduler manages the recurring jobs.
type Scheduler struct {
	cron         *cron.Cron
	reportingSvc ReportGenerator
	remindersSvc ReminderGenerator
	messagingSvc whatsapp.MessagingService
	cfg          config.Config
	logger       *zap.Logger
}

// NewScheduler creates a scheduler that runs its jobs in loc.
func NewScheduler(cfg config.Config, loc *time.Location, reportingSvc ReportGenerator, remindersSvc ReminderGenerator, messagingSvc whatsapp.MessagingService, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}

	return &Scheduler{
		cron:         cron.New(cron.WithLocation(loc)),
		reportingSvc: reportingSvc,
		remindersSvc: remindersSvc,
		messagingSvc: messagingSvc,
		cfg:          cfg,
		logger:       logger,
	}
}

// Start registers every configured job and starts the cron loop. Jobs whose
// recipient or collaborators are missing are skipped.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler")

	if s.messagingSvc == nil {
		s.logger.Info("messaging disabled, no jobs scheduled")
		return nil
	}

	if s.cfg.Reporting.Recipient != "" && s.reportingSvc != nil {
		if _, err := s.cron.AddFunc(s.cfg.Reporting.CronSchedule, s.sendWeeklyReport); err != nil {
			return fmt.Errorf("schedule weekly report %q: %w", s.cfg.Reporting.CronSchedule, err)
		}
		s.logger.Info("weekly report scheduled", zap.String("schedule", s.cfg.Reporting.CronSchedule))
	}

	if s.cfg.Reminders.Recipient != "" && s.remindersSvc != nil && s.remindersSvc.Enabled() {
		if _, err := s.cron.AddFunc(s.cfg.Reminders.CronSchedule, s.sendReminders); err != nil {
			return fmt.Errorf("schedule reminders %q: %w", s.cfg.Reminders.CronSchedule, err)
		}
		s.logger.Info("reminders scheduled", zap.String("schedule", s.cfg.Reminders.CronSchedule))
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sendWeeklyReport() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.runWeeklyReport(ctx); err != nil {
		s.logger.Error("weekly report failed", zap.Error(err))
		return
	}
	s.logger.Info("weekly report sent successfully")
}

func (s *Scheduler) runWeeklyReport(ctx context.Context) error {
	report, err := s.reportingSvc.GenerateWeeklyReport(ctx)
	if err != nil {
		return fmt.Errorf("generate weekly report: %w", err)
	}

	return s.messagingSvc.SendOutbound(ctx, models.OutboundMessageRequest{
		To:      s.cfg.Reporting.Recipient,
		Message: report,
	})
}

func (s *Scheduler) sendReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.runReminders(ctx); err != nil {
		s.logger.Error("reminders failed", zap.Error(err))
		return
	}
	s.logger.Info("reminders sent successfully")
}

func (s *Scheduler) runReminders(ctx context.Context) error {
	generated, err := s.remindersSvc.Generate(ctx, reminders.Request{
		DeliverySchedule:    s.cfg.Reminders.DeliverySchedule,
		ConsumptionPatterns: s.cfg.Reminders.ConsumptionPatterns,
	})
	if err != nil {
		return err
	}

	message := reminders.Format(generated)
	if message == "" {
		return errors.New("empty reminder")
	}

	return s.messagingSvc.SendOutbound(ctx, models.OutboundMessageRequest{
		To:      s.cfg.Reminders.Recipient,
		Message: message,
	})
}
