package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/fannax/internal/domain/team"
)

type TeamPage struct {
	Items      []team.Team
	NextCursor string
}

type TeamService struct {
	teams team.Repository
}

func NewTeamService(teams team.Repository) *TeamService {
	return &TeamService{teams: teams}
}

// List returns teams ordered by name.
func (s *TeamService) List(ctx context.Context, cursor string, limit int) (TeamPage, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.List")
	defer span.End()

	limit, err := normalizeLimit(limit, defaultPageLimit, maxPageLimit)
	if err != nil {
		return TeamPage{}, err
	}
	cursor = strings.TrimSpace(cursor)
	if cursor != "" {
		_, found, err := s.teams.GetByID(ctx, cursor)
		if err != nil {
			return TeamPage{}, fmt.Errorf("get cursor team: %w", err)
		}
		if !found {
			return TeamPage{}, fmt.Errorf("%w: unknown cursor", ErrInvalidInput)
		}
	}

	items, err := s.teams.List(ctx, team.ListQuery{Cursor: cursor, Limit: limit + 1})
	if err != nil {
		return TeamPage{}, fmt.Errorf("list teams: %w", err)
	}
	page, next := splitPage(items, limit, func(t team.Team) string { return t.ID })
	return TeamPage{Items: page, NextCursor: next}, nil
}
