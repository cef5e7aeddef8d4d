package usecase

import (
	"context"
	"time"

	"github.com/riskibarqy/fannax/internal/domain/jobscheduler"
	"github.com/riskibarqy/fannax/internal/platform/logging"
	"github.com/sourcegraph/conc"
)

type JobSchedulerConfig struct {
	SyncInterval     time.Duration
	SyncDays         int
	SettleInterval   time.Duration
	TeamSyncInterval time.Duration
}

// JobScheduler runs the batch jobs on fixed intervals in-process. A zero
// interval disables that job.
type JobScheduler struct {
	runner *JobRunner
	cfg    JobSchedulerConfig
	logger *logging.Logger
}

func NewJobScheduler(runner *JobRunner, cfg JobSchedulerConfig, logger *logging.Logger) *JobScheduler {
	if logger == nil {
		logger = logging.Default()
	}
	return &JobScheduler{runner: runner, cfg: cfg, logger: logger}
}

// Run blocks until ctx is cancelled and every loop has returned.
func (s *JobScheduler) Run(ctx context.Context) {
	input := JobRunInput{Trigger: jobscheduler.TriggerScheduler}

	var wg conc.WaitGroup
	if s.cfg.SyncInterval > 0 {
		wg.Go(func() {
			s.loop(ctx, jobscheduler.JobSyncMatches, s.cfg.SyncInterval, func(ctx context.Context) error {
				_, err := s.runner.RunSyncMatches(ctx, input, s.cfg.SyncDays)
				return err
			})
		})
	}
	if s.cfg.SettleInterval > 0 {
		wg.Go(func() {
			s.loop(ctx, jobscheduler.JobSettle, s.cfg.SettleInterval, func(ctx context.Context) error {
				_, err := s.runner.RunSettle(ctx, input)
				return err
			})
		})
	}
	if s.cfg.TeamSyncInterval > 0 {
		wg.Go(func() {
			s.loop(ctx, jobscheduler.JobSyncTeams, s.cfg.TeamSyncInterval, func(ctx context.Context) error {
				_, err := s.runner.RunSyncTeams(ctx, input)
				return err
			})
		})
	}
	wg.Wait()
	s.logger.Info("job scheduler stopped")
}

func (s *JobScheduler) loop(ctx context.Context, name string, interval time.Duration, fn func(context.Context) error) {
	s.logger.Info("job loop started", "job", name, "interval", interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			return
		}
		// JobRunner already logs failures; the loop only keeps going.
		_ = fn(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
