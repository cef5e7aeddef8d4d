package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/fannax/internal/domain/user"
)

const (
	defaultTopPredictors = 10
	maxTopPredictors     = 50
)

type LeaderboardService struct {
	users user.Repository
}

func NewLeaderboardService(users user.Repository) *LeaderboardService {
	return &LeaderboardService{users: users}
}

func (s *LeaderboardService) TopPredictors(ctx context.Context, limit int) ([]user.User, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.TopPredictors")
	defer span.End()

	limit, err := normalizeLimit(limit, defaultTopPredictors, maxTopPredictors)
	if err != nil {
		return nil, err
	}
	items, err := s.users.ListTopPredictors(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list top predictors: %w", err)
	}
	return items, nil
}
