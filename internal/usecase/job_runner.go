package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/riskibarqy/fannax/internal/domain/jobscheduler"
	"github.com/riskibarqy/fannax/internal/platform/id"
	"github.com/riskibarqy/fannax/internal/platform/logging"
)

type JobQueue interface {
	Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error
}

type noopJobQueue struct{}

func (noopJobQueue) Enqueue(_ context.Context, _ string, _ any, _ time.Duration, _ string) error {
	return nil
}

func NewNoopJobQueue() JobQueue {
	return noopJobQueue{}
}

type JobRunInput struct {
	Trigger    jobscheduler.Trigger
	DispatchID string
}

// JobRunner executes the batch jobs and records each run as dispatch events.
type JobRunner struct {
	fixtures     *FixtureSyncService
	teams        *TeamSyncService
	settlement   *SettlementService
	dispatchRepo jobscheduler.Repository
	ids          id.Generator
	logger       *logging.Logger
	now          func() time.Time
}

func NewJobRunner(
	fixtures *FixtureSyncService,
	teams *TeamSyncService,
	settlement *SettlementService,
	dispatchRepo jobscheduler.Repository,
	ids id.Generator,
	logger *logging.Logger,
) *JobRunner {
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &JobRunner{
		fixtures:     fixtures,
		teams:        teams,
		settlement:   settlement,
		dispatchRepo: dispatchRepo,
		ids:          ids,
		logger:       logger,
		now:          time.Now,
	}
}

func (r *JobRunner) RunSyncMatches(ctx context.Context, input JobRunInput, days int) (SyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JobRunner.RunSyncMatches")
	defer span.End()

	var result SyncResult
	if r.fixtures == nil {
		return result, fmt.Errorf("%w: fixture sync is not configured", ErrDependencyUnavailable)
	}
	err := r.run(ctx, input, jobscheduler.JobSyncMatches, map[string]any{"days": days}, func(ctx context.Context) (map[string]any, error) {
		var err error
		result, err = r.fixtures.Sync(ctx, days)
		return result.Fields(), err
	})
	return result, err
}

func (r *JobRunner) RunSyncTeams(ctx context.Context, input JobRunInput) (TeamSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JobRunner.RunSyncTeams")
	defer span.End()

	var result TeamSyncResult
	if r.teams == nil {
		return result, fmt.Errorf("%w: team sync is not configured", ErrDependencyUnavailable)
	}
	err := r.run(ctx, input, jobscheduler.JobSyncTeams, nil, func(ctx context.Context) (map[string]any, error) {
		var err error
		result, err = r.teams.Sync(ctx)
		return result.Fields(), err
	})
	return result, err
}

func (r *JobRunner) RunSettle(ctx context.Context, input JobRunInput) (SettlementResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JobRunner.RunSettle")
	defer span.End()

	var result SettlementResult
	if r.settlement == nil {
		return result, fmt.Errorf("%w: settlement is not configured", ErrDependencyUnavailable)
	}
	err := r.run(ctx, input, jobscheduler.JobSettle, nil, func(ctx context.Context) (map[string]any, error) {
		var err error
		result, err = r.settlement.Settle(ctx)
		return result.Fields(), err
	})
	return result, err
}

func (r *JobRunner) run(
	ctx context.Context,
	input JobRunInput,
	jobName string,
	payload map[string]any,
	fn func(context.Context) (map[string]any, error),
) error {
	dispatchID := strings.TrimSpace(input.DispatchID)
	if dispatchID == "" {
		generated, err := r.ids.NewID()
		if err != nil {
			return fmt.Errorf("generate dispatch id: %w", err)
		}
		dispatchID = jobName + "-" + generated
	}
	trigger := input.Trigger
	if trigger == "" {
		trigger = jobscheduler.TriggerHTTP
	}

	event := jobscheduler.DispatchEvent{
		DispatchID: dispatchID,
		JobName:    jobName,
		JobPath:    "/v1/internal/jobs/" + jobName,
		Trigger:    trigger,
		Status:     jobscheduler.StatusSent,
		Payload:    payload,
	}
	r.recordDispatchEvent(ctx, event)

	started := r.now()
	fields, err := fn(ctx)
	if err != nil {
		event.Status = jobscheduler.StatusFailed
		event.ErrorMessage = err.Error()
		r.logger.WarnContext(ctx, "job run failed", "job", jobName, "dispatch_id", dispatchID, "trigger", trigger, "error", err)
	} else {
		event.Status = jobscheduler.StatusCompleted
	}
	event.Result = fields
	event.OccurredAt = time.Time{}
	r.recordDispatchEvent(ctx, event)

	r.logger.DebugContext(ctx, "job run finished",
		"job", jobName,
		"dispatch_id", dispatchID,
		"duration_ms", r.now().Sub(started).Milliseconds(),
	)
	return err
}

func (r *JobRunner) recordDispatchEvent(ctx context.Context, event jobscheduler.DispatchEvent) {
	if r.dispatchRepo == nil || strings.TrimSpace(event.DispatchID) == "" {
		return
	}
	event.TraceID, event.SpanID = traceMetaFromContext(ctx)
	if event.OccurredAt.IsZero() {
		event.OccurredAt = r.now().UTC()
	}
	if err := r.dispatchRepo.UpsertEvent(ctx, event); err != nil {
		r.logger.WarnContext(ctx, "record job dispatch event failed",
			"dispatch_id", event.DispatchID,
			"status", event.Status,
			"error", err,
		)
	}
}

var dedupUnsafeCharRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// dedupKey buckets at into slots so repeated enqueues inside one slot
// collapse into one queued job.
func dedupKey(prefix, scope string, at time.Time, bucket time.Duration) string {
	if bucket <= 0 {
		bucket = time.Minute
	}
	slot := at.UTC().Truncate(bucket).Format("20060102T150405Z")
	return sanitizeDedupSegment(prefix) + "-" + sanitizeDedupSegment(scope) + "-" + slot
}

func sanitizeDedupSegment(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return dedupUnsafeCharRegex.ReplaceAllString(value, "-")
}
