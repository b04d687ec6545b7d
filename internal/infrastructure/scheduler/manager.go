// Package scheduler runs periodic billing jobs using gocron v2.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/pecal-inc/pecal/internal/shared/biztime"
	"github.com/pecal-inc/pecal/internal/shared/goroutine"
	"github.com/pecal-inc/pecal/internal/shared/logger"
)

// BatchJob processes one batch and returns the number of items handled.
type BatchJob interface {
	Execute(ctx context.Context) (int, error)
}

// SchedulerManager owns the single gocron scheduler of the process.
type SchedulerManager struct {
	scheduler gocron.Scheduler
	logger    logger.Interface

	started   bool
	startedMu sync.RWMutex
}

// NewSchedulerManager creates a scheduler in the business timezone.
func NewSchedulerManager(log logger.Interface) (*SchedulerManager, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(biztime.Location()),
	)
	if err != nil {
		return nil, err
	}

	return &SchedulerManager{
		scheduler: scheduler,
		logger:    log,
	}, nil
}

// RegisterBillingJobs schedules the recurring charge run. A run that is
// still in progress when the next tick fires is rescheduled, not stacked.
func (m *SchedulerManager) RegisterBillingJobs(chargeJob BatchJob, interval, timeout time.Duration) error {
	if chargeJob == nil {
		return errors.New("charge job is required")
	}
	if interval <= 0 {
		return errors.New("charge interval must be positive")
	}
	if timeout <= 0 {
		timeout = interval
	}

	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			m.runCharges(ctx, chargeJob)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("billing", "recurring-charge"),
		gocron.WithName("billing-recurring-charge"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered billing jobs", "interval", interval.String(), "timeout", timeout.String())
	return nil
}

func (m *SchedulerManager) runCharges(ctx context.Context, job BatchJob) {
	defer goroutine.Recover(m.logger, "billing-recurring-charge")
	startTime := biztime.NowUTC()

	renewed, err := job.Execute(ctx)
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			m.logger.Warnw("recurring charge run interrupted", "error", err)
			return
		}
		m.logger.Errorw("recurring charge run failed",
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	m.logger.Infow("recurring charge run finished",
		"renewed", renewed,
		"duration", time.Since(startTime),
	)
}

// Start begins executing registered jobs. Calling it twice is a no-op.
func (m *SchedulerManager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if m.started {
		return
	}

	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler manager started", "job_count", len(m.scheduler.Jobs()))
}

// Stop shuts the scheduler down and waits for running jobs.
func (m *SchedulerManager) Stop() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if !m.started {
		return nil
	}

	m.logger.Infow("stopping scheduler manager")
	err := m.scheduler.Shutdown()
	m.started = false
	if err != nil {
		m.logger.Errorw("scheduler manager shutdown with error", "error", err)
		return err
	}

	m.logger.Infow("scheduler manager stopped")
	return nil
}

// IsStarted reports whether the scheduler is running.
func (m *SchedulerManager) IsStarted() bool {
	m.startedMu.RLock()
	defer m.startedMu.RUnlock()
	return m.started
}

// Jobs returns the registered jobs.
func (m *SchedulerManager) Jobs() []gocron.Job {
	return m.scheduler.Jobs()
}
