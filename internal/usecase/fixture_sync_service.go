package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/fannax/internal/domain/match"
	"github.com/riskibarqy/fannax/internal/platform/id"
	"github.com/riskibarqy/fannax/internal/platform/logging"
)

const (
	defaultSyncDays = 7
	maxSyncDays     = 30
	settleJobPath   = "/v1/internal/jobs/settle"
)

var errMalformedFixture = errors.New("fixture is missing a participant")

type SyncResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Errors  int `json:"errors"`
	Total   int `json:"total"`
	// Finished counts matches that reached FINISHED during this run.
	Finished int `json:"finished"`
}

func (r SyncResult) Fields() map[string]any {
	return map[string]any{
		"created":  r.Created,
		"updated":  r.Updated,
		"errors":   r.Errors,
		"total":    r.Total,
		"finished": r.Finished,
	}
}

type FixtureSyncConfig struct {
	// SettleDelay is the delay of the queued settle job after matches finish.
	SettleDelay time.Duration
}

// FixtureSyncService pulls upcoming fixtures and upserts teams and matches.
type FixtureSyncService struct {
	provider FixtureProvider
	teams    *TeamRegistry
	matches  match.Repository
	ids      id.Generator
	queue    JobQueue
	cfg      FixtureSyncConfig
	logger   *logging.Logger
	now      func() time.Time
}

func NewFixtureSyncService(
	provider FixtureProvider,
	teams *TeamRegistry,
	matches match.Repository,
	ids id.Generator,
	queue JobQueue,
	cfg FixtureSyncConfig,
	logger *logging.Logger,
) *FixtureSyncService {
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	if queue == nil {
		queue = NewNoopJobQueue()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &FixtureSyncService{
		provider: provider,
		teams:    teams,
		matches:  matches,
		ids:      ids,
		queue:    queue,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

type fixtureOutcome int

const (
	fixtureCreated fixtureOutcome = iota + 1
	fixtureUpdated
)

// Sync ingests fixtures between today and today+daysAhead. daysAhead == 0
// means the default window.
func (s *FixtureSyncService) Sync(ctx context.Context, daysAhead int) (SyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureSyncService.Sync")
	defer span.End()

	if s.provider == nil || s.teams == nil || s.matches == nil {
		return SyncResult{}, fmt.Errorf("%w: fixture sync is not configured", ErrDependencyUnavailable)
	}
	if daysAhead == 0 {
		daysAhead = defaultSyncDays
	}
	if daysAhead < 1 || daysAhead > maxSyncDays {
		return SyncResult{}, fmt.Errorf("%w: days must be between 1 and %d", ErrInvalidInput, maxSyncDays)
	}

	start := s.now().UTC().Truncate(24 * time.Hour)
	end := start.AddDate(0, 0, daysAhead)
	fixtures, err := s.provider.FetchFixturesBetween(ctx, start, end)
	if err != nil {
		return SyncResult{}, fmt.Errorf("%w: fetch fixtures: %w", ErrUpstreamUnavailable, err)
	}

	result := SyncResult{Total: len(fixtures)}
	for _, item := range fixtures {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		outcome, finished, err := s.syncFixture(ctx, item)
		if err != nil {
			result.Errors++
			s.logger.WarnContext(ctx, "sync fixture failed", "fixture_external_id", item.ExternalID, "error", err)
			continue
		}
		switch outcome {
		case fixtureCreated:
			result.Created++
		case fixtureUpdated:
			result.Updated++
		}
		if finished {
			result.Finished++
		}
	}

	s.logger.InfoContext(ctx, "fixture sync completed",
		"days", daysAhead,
		"total", result.Total,
		"created", result.Created,
		"updated", result.Updated,
		"errors", result.Errors,
		"finished", result.Finished,
	)

	if result.Finished > 0 {
		s.enqueueSettle(ctx)
	}
	return result, nil
}

func (s *FixtureSyncService) syncFixture(ctx context.Context, item ExternalFixture) (fixtureOutcome, bool, error) {
	if item.Home == nil || item.Away == nil {
		return 0, false, errMalformedFixture
	}
	if item.ExternalID <= 0 {
		return 0, false, fmt.Errorf("fixture external id must be positive")
	}

	home, _, err := s.teams.Ensure(ctx, *item.Home)
	if err != nil {
		return 0, false, fmt.Errorf("ensure home team: %w", err)
	}
	away, _, err := s.teams.Ensure(ctx, *item.Away)
	if err != nil {
		return 0, false, fmt.Errorf("ensure away team: %w", err)
	}

	obs := match.Observation{
		ProviderStatus:   item.Status,
		HomeScore:        item.HomeScore,
		AwayScore:        item.AwayScore,
		ScheduledAt:      item.StartingAt,
		Venue:            item.Venue,
		LeagueName:       item.LeagueName,
		LeagueExternalID: item.LeagueExternalID,
	}

	existing, found, err := s.matches.GetByExternalID(ctx, item.ExternalID)
	if err != nil {
		return 0, false, fmt.Errorf("get match: %w", err)
	}
	if !found {
		matchID, err := s.ids.NewID()
		if err != nil {
			return 0, false, fmt.Errorf("generate match id: %w", err)
		}
		fresh := match.NewFromObservation(matchID, item.ExternalID, home.ID, away.ID, obs)
		if err := fresh.Validate(); err != nil {
			return 0, false, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		inserted, err := s.matches.Insert(ctx, fresh)
		if err != nil {
			return 0, false, fmt.Errorf("insert match: %w", err)
		}
		if inserted {
			return fixtureCreated, false, nil
		}

		// Lost the insert race to a concurrent sync; reconcile against its row.
		existing, found, err = s.matches.GetByExternalID(ctx, item.ExternalID)
		if err != nil {
			return 0, false, fmt.Errorf("reload match: %w", err)
		}
		if !found {
			return 0, false, fmt.Errorf("match external_id=%d vanished after conflict", item.ExternalID)
		}
	}

	next, changed := existing.Reconcile(obs)
	if !changed {
		return fixtureUpdated, false, nil
	}
	applied, err := s.matches.Update(ctx, next)
	if err != nil {
		return 0, false, fmt.Errorf("update match: %w", err)
	}
	finished := applied && existing.Status != match.StatusFinished && next.Status == match.StatusFinished
	return fixtureUpdated, finished, nil
}

func (s *FixtureSyncService) enqueueSettle(ctx context.Context) {
	now := s.now().UTC()
	dedupID := dedupKey("settle", "finished", now.Add(s.cfg.SettleDelay), time.Minute)
	payload := map[string]any{"dispatch_id": dedupID}
	if err := s.queue.Enqueue(ctx, settleJobPath, payload, s.cfg.SettleDelay, dedupID); err != nil {
		s.logger.WarnContext(ctx, "enqueue settle job failed", "dispatch_id", dedupID, "error", err)
	}
}
