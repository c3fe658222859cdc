package scheduler

import (
	"fmt"
	"sync"
	"time"

	"real-estate-crm/internal/alerts"
	"real-estate-crm/internal/cleanup"
	"real-estate-crm/internal/config"
	"real-estate-crm/internal/logger"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler runs the daily rental maintenance jobs
type Scheduler struct {
	cron      *cron.Cron
	alerts    *alerts.Service
	cleanup   *cleanup.Service
	config    *config.Config
	log       *logrus.Entry
	mu        sync.Mutex
	isRunning bool
}

// NewScheduler creates a new scheduler
func NewScheduler(alertSvc *alerts.Service, cleanupSvc *cleanup.Service, cfg *config.Config) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		alerts:  alertSvc,
		cleanup: cleanupSvc,
		config:  cfg,
		log:     logger.Component("scheduler"),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	if !s.config.Scheduler.Enabled {
		s.log.Info("Daily run is disabled in configuration")
		return nil
	}

	cronSpec := s.parseDailyRunTime(s.config.Scheduler.DailyRunTime)

	_, err := s.cron.AddFunc(cronSpec, func() {
		s.log.Info("Starting daily jobs...")
		if err := s.runDailyJobs(time.Now().UTC()); err != nil {
			s.log.WithError(err).Error("Daily jobs failed")
		} else {
			s.log.Info("Daily jobs completed successfully")
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.isRunning = true
	s.log.Infof("Started with daily run at %s (cron: %s)", s.config.Scheduler.DailyRunTime, cronSpec)

	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *Scheduler) Stop() {
	if s.isRunning {
		<-s.cron.Stop().Done()
		s.isRunning = false
		s.log.Info("Stopped")
	}
}

// runDailyJobs raises rental alerts and then purges old handled alerts.
// A cleanup failure is reported but does not undo the alerts.
func (s *Scheduler) runDailyJobs(now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.alerts.Generate(alerts.Config{
		PaymentDueDays:     s.config.Scheduler.PaymentDueDays,
		ContractExpiryDays: s.config.Scheduler.ContractExpiryDays,
	}, now)
	if err != nil {
		return fmt.Errorf("alert generation: %w", err)
	}
	s.log.Infof("Alerts: %d created across %d contracts", res.Created(), res.ContractsChecked)

	purge, err := s.cleanup.PurgeAlerts(cleanup.CleanupConfig{
		RetentionDays:    s.config.Cleanup.AlertRetentionDays,
		MaxDeletionCount: s.config.Cleanup.MaxDeletionCount,
	}, now)
	if err != nil {
		return fmt.Errorf("alert cleanup: %w", err)
	}
	s.log.Infof("Cleanup: %d alerts purged", purge.DeletedCount)

	return nil
}

// RunNow immediately executes the daily jobs (for manual trigger)
func (s *Scheduler) RunNow() error {
	s.log.Info("Manual trigger - starting daily jobs...")
	return s.runDailyJobs(time.Now().UTC())
}

// parseDailyRunTime converts HH:MM format to cron specification
// Example: "06:00" -> "0 6 * * *" (run at 6:00 AM every day)
func (s *Scheduler) parseDailyRunTime(timeStr string) string {
	var hour, minute int
	n, _ := fmt.Sscanf(timeStr, "%d:%d", &hour, &minute)
	if n == 2 && hour >= 0 && hour < 24 && minute >= 0 && minute < 60 {
		return fmt.Sprintf("%d %d * * *", minute, hour)
	}

	// Default to 6:00 AM if parsing fails
	s.log.Warnf("Failed to parse time '%s', using default 06:00", timeStr)
	return "0 6 * * *"
}
