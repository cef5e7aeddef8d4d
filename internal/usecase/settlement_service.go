package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/fannax/internal/domain/match"
	"github.com/riskibarqy/fannax/internal/domain/notification"
	"github.com/riskibarqy/fannax/internal/domain/prediction"
	"github.com/riskibarqy/fannax/internal/domain/scoring"
	"github.com/riskibarqy/fannax/internal/platform/logging"
)

// Notifier delivers a user notification; failures never undo a settlement.
type Notifier interface {
	Notify(ctx context.Context, n notification.Notification) error
}

type SettlementConfig struct {
	Workers          int
	MaxMatchesPerRun int
}

type SettlementResult struct {
	MatchesProcessed  int `json:"matches_processed"`
	PredictionsScored int `json:"predictions_scored"`
	// Skipped counts predictions another run settled first.
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

func (r SettlementResult) Fields() map[string]any {
	return map[string]any{
		"matches_processed":  r.MatchesProcessed,
		"predictions_scored": r.PredictionsScored,
		"skipped":            r.Skipped,
		"errors":             r.Errors,
	}
}

// SettlementService scores PENDING predictions on finished matches. Each
// prediction is one unit: CAS + ledger credit in one transaction, then a
// best-effort notification.
type SettlementService struct {
	matches     match.Repository
	predictions prediction.Repository
	settler     prediction.Settler
	notifier    Notifier
	cfg         SettlementConfig
	logger      *logging.Logger
	now         func() time.Time
}

func NewSettlementService(
	matches match.Repository,
	predictions prediction.Repository,
	settler prediction.Settler,
	notifier Notifier,
	cfg SettlementConfig,
	logger *logging.Logger,
) *SettlementService {
	if cfg.Workers <= 0 {
		cfg.Workers = 8
	}
	if cfg.MaxMatchesPerRun <= 0 {
		cfg.MaxMatchesPerRun = 200
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SettlementService{
		matches:     matches,
		predictions: predictions,
		settler:     settler,
		notifier:    notifier,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

type unitOutcome int

const (
	unitScored unitOutcome = iota
	unitSkipped
	unitFailed
)

// Settle runs one pass. Cancelling ctx stops new units from starting;
// units already running finish on a detached context.
func (s *SettlementService) Settle(ctx context.Context) (SettlementResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementService.Settle")
	defer span.End()

	if s.matches == nil || s.predictions == nil || s.settler == nil {
		return SettlementResult{}, fmt.Errorf("%w: settlement is not configured", ErrDependencyUnavailable)
	}

	finished, err := s.matches.ListSettleable(ctx, s.cfg.MaxMatchesPerRun)
	if err != nil {
		return SettlementResult{}, fmt.Errorf("list settleable matches: %w", err)
	}

	pool, err := ants.NewPool(s.cfg.Workers)
	if err != nil {
		return SettlementResult{}, fmt.Errorf("create settlement pool: %w", err)
	}
	defer pool.Release()

	var (
		result  SettlementResult
		scored  atomic.Int32
		skipped atomic.Int32
		failed  atomic.Int32
		units   sync.WaitGroup
		stopped bool
	)
	unitCtx := context.WithoutCancel(ctx)

matches:
	for _, m := range finished {
		if ctx.Err() != nil {
			stopped = true
			break
		}
		if !m.Settleable() {
			continue
		}

		pending, err := s.predictions.ListPendingByMatch(ctx, m.ID)
		if err != nil {
			failed.Add(1)
			s.logger.WarnContext(ctx, "list pending predictions failed", "match_id", m.ID, "error", err)
			continue
		}
		if len(pending) == 0 {
			// A concurrent run settled everything after ListSettleable.
			continue
		}
		result.MatchesProcessed++

		for _, p := range pending {
			if ctx.Err() != nil {
				stopped = true
				break matches
			}

			m, p := m, p
			units.Add(1)
			if err := pool.Submit(func() {
				defer units.Done()
				switch s.settleOne(unitCtx, m, p) {
				case unitScored:
					scored.Add(1)
				case unitSkipped:
					skipped.Add(1)
				default:
					failed.Add(1)
				}
			}); err != nil {
				units.Done()
				failed.Add(1)
				s.logger.WarnContext(ctx, "submit settlement unit failed", "prediction_id", p.ID, "error", err)
			}
		}
	}

	units.Wait()

	result.PredictionsScored = int(scored.Load())
	result.Skipped = int(skipped.Load())
	result.Errors = int(failed.Load())

	s.logger.InfoContext(ctx, "settlement run completed",
		"matches_processed", result.MatchesProcessed,
		"predictions_scored", result.PredictionsScored,
		"skipped", result.Skipped,
		"errors", result.Errors,
		"stopped_early", stopped,
	)
	return result, nil
}

func (s *SettlementService) settleOne(ctx context.Context, m match.Match, p prediction.Prediction) unitOutcome {
	graded := scoring.Score(p.PredictedHomeScore, p.PredictedAwayScore, *m.HomeScore, *m.AwayScore)
	settlement := prediction.Settlement{
		PredictionID: p.ID,
		UserID:       p.UserID,
		Result:       graded.Status,
		Points:       graded.Points,
		SettledAt:    s.now().UTC(),
	}

	applied, err := s.settler.Settle(ctx, settlement)
	if err != nil {
		s.logger.WarnContext(ctx, "settle prediction failed",
			"prediction_id", p.ID,
			"match_id", m.ID,
			"error", err,
		)
		return unitFailed
	}
	if !applied {
		return unitSkipped
	}

	if s.notifier != nil {
		n := notification.Notification{
			RecipientID:  p.UserID,
			Kind:         notification.KindPredictionResult,
			Message:      notification.PredictionResultMessage(graded.Status, graded.Points),
			PredictionID: p.ID,
		}
		if err := s.notifier.Notify(ctx, n); err != nil {
			s.logger.WarnContext(ctx, "prediction result notification failed",
				"prediction_id", p.ID,
				"user_id", p.UserID,
				"error", err,
			)
		}
	}
	return unitScored
}
