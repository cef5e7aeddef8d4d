package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/fannax/internal/domain/match"
	"github.com/riskibarqy/fannax/internal/domain/prediction"
	"github.com/riskibarqy/fannax/internal/domain/user"
	"github.com/riskibarqy/fannax/internal/platform/id"
	"github.com/riskibarqy/fannax/internal/platform/logging"
)

type SubmitPredictionInput struct {
	UserID    string
	Email     string
	MatchID   string
	HomeScore int
	AwayScore int
	Caption   string
}

type ListPredictionsInput struct {
	MatchID string
	UserID  string
	Cursor  string
	Limit   int
}

type PredictionPage struct {
	Items      []prediction.Prediction
	NextCursor string
}

type PredictionService struct {
	matches     match.Repository
	predictions prediction.Repository
	users       user.Repository
	ids         id.Generator
	logger      *logging.Logger
	now         func() time.Time
}

func NewPredictionService(
	matches match.Repository,
	predictions prediction.Repository,
	users user.Repository,
	ids id.Generator,
	logger *logging.Logger,
) *PredictionService {
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &PredictionService{
		matches:     matches,
		predictions: predictions,
		users:       users,
		ids:         ids,
		logger:      logger,
		now:         time.Now,
	}
}

// Submit records a PENDING prediction. Uniqueness per (user, match) is
// enforced by storage at insert time.
func (s *PredictionService) Submit(ctx context.Context, input SubmitPredictionInput) (prediction.Prediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.Submit")
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	input.MatchID = strings.TrimSpace(input.MatchID)
	input.Caption = strings.TrimSpace(input.Caption)
	if input.UserID == "" {
		return prediction.Prediction{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if input.MatchID == "" {
		return prediction.Prediction{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	if err := prediction.ValidateScores(input.HomeScore, input.AwayScore); err != nil {
		return prediction.Prediction{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := prediction.ValidateCaption(input.Caption); err != nil {
		return prediction.Prediction{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	m, found, err := s.matches.GetByID(ctx, input.MatchID)
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("get match: %w", err)
	}
	if !found {
		return prediction.Prediction{}, fmt.Errorf("%w: match=%s", ErrNotFound, input.MatchID)
	}

	now := s.now().UTC()
	if !m.AcceptsPredictions(now) {
		if m.Status != match.StatusScheduled {
			return prediction.Prediction{}, fmt.Errorf("%w: match is %s", ErrInvalidState, m.Status)
		}
		return prediction.Prediction{}, fmt.Errorf("%w: match has already kicked off", ErrInvalidState)
	}

	if s.users != nil {
		if err := s.users.EnsureExists(ctx, user.Principal{UserID: input.UserID, Email: input.Email}); err != nil {
			return prediction.Prediction{}, fmt.Errorf("ensure user: %w", err)
		}
	}

	predictionID, err := s.ids.NewID()
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("generate prediction id: %w", err)
	}
	item := prediction.Prediction{
		ID:                 predictionID,
		UserID:             input.UserID,
		MatchID:            input.MatchID,
		PredictedHomeScore: input.HomeScore,
		PredictedAwayScore: input.AwayScore,
		Caption:            input.Caption,
		ResultStatus:       prediction.ResultPending,
		CreatedAt:          now,
	}
	if err := s.predictions.Create(ctx, item); err != nil {
		if errors.Is(err, prediction.ErrDuplicate) {
			return prediction.Prediction{}, fmt.Errorf("%w: prediction already submitted for match=%s", ErrConflict, input.MatchID)
		}
		return prediction.Prediction{}, fmt.Errorf("create prediction: %w", err)
	}

	s.logger.InfoContext(ctx, "prediction submitted",
		"prediction_id", item.ID,
		"match_id", item.MatchID,
		"user_id", item.UserID,
	)
	return item, nil
}

// List returns predictions newest first.
func (s *PredictionService) List(ctx context.Context, input ListPredictionsInput) (PredictionPage, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.List")
	defer span.End()

	limit, err := normalizeLimit(input.Limit, defaultPageLimit, maxPageLimit)
	if err != nil {
		return PredictionPage{}, err
	}

	cursor := strings.TrimSpace(input.Cursor)
	if cursor != "" {
		_, found, err := s.predictions.GetByID(ctx, cursor)
		if err != nil {
			return PredictionPage{}, fmt.Errorf("get cursor prediction: %w", err)
		}
		if !found {
			return PredictionPage{}, fmt.Errorf("%w: unknown cursor", ErrInvalidInput)
		}
	}

	items, err := s.predictions.List(ctx, prediction.ListQuery{
		MatchID: strings.TrimSpace(input.MatchID),
		UserID:  strings.TrimSpace(input.UserID),
		Cursor:  cursor,
		Limit:   limit + 1,
	})
	if err != nil {
		return PredictionPage{}, fmt.Errorf("list predictions: %w", err)
	}

	page, next := splitPage(items, limit, func(p prediction.Prediction) string { return p.ID })
	return PredictionPage{Items: page, NextCursor: next}, nil
}
