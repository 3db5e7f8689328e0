// Package scheduler runs the periodic jobs of the pharmacie API: journal
// recovery for conversions interrupted between writes, and the daily
// stock and data quality report.
package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/giygas/pharmacie-api/health"
	"github.com/giygas/pharmacie-api/interfaces"
	"github.com/giygas/pharmacie-api/logging"
	"github.com/go-co-op/gocron"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// DailyReportAt is when the stock report is logged, local time.
const DailyReportAt = "06:00"

const jobTimeout = time.Minute

type recoverer interface {
	Recover(ctx context.Context) (interfaces.RecoveryReport, error)
}

type reportBuilder interface {
	Build(ctx context.Context) (health.Report, error)
}

// Scheduler runs recovery and reporting jobs with gocron
type Scheduler struct {
	workflow   recoverer
	reporter   reportBuilder
	interval   time.Duration
	scheduler  *gocron.Scheduler
	recovering atomic.Bool
}

// NewScheduler creates a scheduler that replays the conversion journal every
// interval and logs a report every day at DailyReportAt.
func NewScheduler(workflow recoverer, reporter reportBuilder, interval time.Duration) *Scheduler {
	return &Scheduler{
		workflow:  workflow,
		reporter:  reporter,
		interval:  interval,
		scheduler: gocron.NewScheduler(time.Local),
	}
}

// Start runs one recovery synchronously, then schedules the jobs.
func (s *Scheduler) Start() error {
	if err := s.runRecovery(); err != nil {
		logging.Error("Failed to perform initial recovery", "error", err)
		return fmt.Errorf("initial recovery failed: %w", err)
	}

	_, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(func() {
		if err := s.runRecovery(); err != nil {
			logging.Error("Failed to recover conversion journal", "error", err)
		}
	})
	if err != nil {
		logging.Error("Failed to schedule recovery", "error", err)
		return fmt.Errorf("failed to schedule recovery: %w", err)
	}

	_, err = s.scheduler.Every(1).Days().At(DailyReportAt).Do(func() {
		if err := s.runReport(); err != nil {
			logging.Error("Failed to build daily report", "error", err)
		}
	})
	if err != nil {
		logging.Error("Failed to schedule daily report", "error", err)
		return fmt.Errorf("failed to schedule daily report: %w", err)
	}

	s.scheduler.StartAsync()
	logging.Info("Scheduler started", "recovery_interval", s.interval.String(), "report_at", DailyReportAt)
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// runRecovery replays the journal unless a replay is already running.
func (s *Scheduler) runRecovery() error {
	if !s.recovering.CompareAndSwap(false, true) {
		logging.Info("Recovery already in progress, skipping...")
		return nil
	}
	defer s.recovering.Store(false)

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	report, err := s.workflow.Recover(ctx)
	if err != nil {
		return err
	}
	logging.Debug("Recovery completed",
		"duration", time.Since(start).String(),
		"entries", report.EntriesReplayed,
		"ordonnances_deleted", len(report.OrdonnancesDeleted))
	return nil
}

func (s *Scheduler) runReport() error {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	rep, err := s.reporter.Build(ctx)
	if err != nil {
		return err
	}
	rep.Log()
	return nil
}
