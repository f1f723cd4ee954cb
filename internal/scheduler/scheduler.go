package scheduler

import (
	"context"
	"sync"
	"time"

	"property-listings/internal/cleanup"
	"property-listings/internal/config"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Sweeper runs one orphan sweep
type Sweeper interface {
	SweepOrphans(ctx context.Context, opts cleanup.Options) (*cleanup.Result, error)
}

// Scheduler runs the orphan sweep on a cron schedule
type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	config  config.CleanupConfig
	logger  *logrus.Entry

	mu        sync.Mutex
	isRunning bool
	lastRun   *cleanup.Result
}

// NewScheduler creates a new scheduler
func NewScheduler(sweeper Sweeper, cfg config.CleanupConfig, logger logrus.FieldLogger) *Scheduler {
	entry := logger.WithField("component", "scheduler")
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(entry)))),
		sweeper: sweeper,
		config:  cfg,
		logger:  entry,
	}
}

// Start registers the sweep and starts the cron loop. It does nothing when
// cleanup is disabled.
func (s *Scheduler) Start() error {
	if !s.config.Enabled {
		s.logger.Info("Orphan sweep is disabled in configuration")
		return nil
	}

	_, err := s.cron.AddFunc(s.config.Schedule, func() {
		if _, err := s.RunNow(context.Background()); err != nil {
			s.logger.WithError(err).Error("Scheduled orphan sweep failed")
		}
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("schedule", s.config.Schedule).Info("Scheduler started")
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	running := s.isRunning
	s.isRunning = false
	s.mu.Unlock()

	if running {
		<-s.cron.Stop().Done()
		s.logger.Info("Scheduler stopped")
	}
}

// RunNow executes one sweep with the configured options
func (s *Scheduler) RunNow(ctx context.Context) (*cleanup.Result, error) {
	opts := cleanup.DefaultOptions()
	opts.MinAge = s.config.MinAge()
	opts.DryRun = s.config.DryRun

	s.logger.Info("Starting orphan sweep")
	result, err := s.sweeper.SweepOrphans(ctx, opts)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.lastRun = result
	s.mu.Unlock()
	return result, nil
}

// Status describes the scheduler for the admin API
type Status struct {
	Enabled  bool            `json:"enabled"`
	Running  bool            `json:"running"`
	Schedule string          `json:"schedule"`
	NextRun  *time.Time      `json:"nextRun,omitempty"`
	LastRun  *cleanup.Result `json:"lastRun,omitempty"`
}

func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		Enabled:  s.config.Enabled,
		Running:  s.isRunning,
		Schedule: s.config.Schedule,
		LastRun:  s.lastRun,
	}
	if entries := s.cron.Entries(); s.isRunning && len(entries) > 0 {
		next := entries[0].Next
		st.NextRun = &next
	}
	return st
}
