package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/fannax/internal/domain/match"
	"github.com/riskibarqy/fannax/internal/domain/team"
	"github.com/sourcegraph/conc"
)

const (
	defaultUpcomingDays  = 7
	defaultUpcomingLimit = 10
	maxUpcomingLimit     = 50
)

// MatchView is a match with its two teams resolved.
type MatchView struct {
	Match    match.Match
	HomeTeam *team.Team
	AwayTeam *team.Team
}

type ListMatchesInput struct {
	Status string
	Cursor string
	Limit  int
}

type MatchPage struct {
	Items      []MatchView
	NextCursor string
}

type MatchService struct {
	matches match.Repository
	teams   team.Repository
	now     func() time.Time
}

func NewMatchService(matches match.Repository, teams team.Repository) *MatchService {
	return &MatchService{matches: matches, teams: teams, now: time.Now}
}

func (s *MatchService) List(ctx context.Context, input ListMatchesInput) (MatchPage, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.List")
	defer span.End()

	limit, err := normalizeLimit(input.Limit, defaultPageLimit, maxPageLimit)
	if err != nil {
		return MatchPage{}, err
	}

	query := match.ListQuery{Cursor: strings.TrimSpace(input.Cursor), Limit: limit + 1}
	if raw := strings.TrimSpace(input.Status); raw != "" {
		status, err := match.ParseStatus(raw)
		if err != nil {
			return MatchPage{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		query.Status = &status
	}
	if query.Cursor != "" {
		_, found, err := s.matches.GetByID(ctx, query.Cursor)
		if err != nil {
			return MatchPage{}, fmt.Errorf("get cursor match: %w", err)
		}
		if !found {
			return MatchPage{}, fmt.Errorf("%w: unknown cursor", ErrInvalidInput)
		}
	}

	items, err := s.matches.List(ctx, query)
	if err != nil {
		return MatchPage{}, fmt.Errorf("list matches: %w", err)
	}
	page, next := splitPage(items, limit, func(m match.Match) string { return m.ID })

	views, err := s.hydrate(ctx, page)
	if err != nil {
		return MatchPage{}, err
	}
	return MatchPage{Items: views, NextCursor: next}, nil
}

// Upcoming lists SCHEDULED matches kicking off within the next days.
func (s *MatchService) Upcoming(ctx context.Context, days, limit int) ([]MatchView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Upcoming")
	defer span.End()

	if days == 0 {
		days = defaultUpcomingDays
	}
	if days < 1 || days > maxSyncDays {
		return nil, fmt.Errorf("%w: days must be between 1 and %d", ErrInvalidInput, maxSyncDays)
	}
	limit, err := normalizeLimit(limit, defaultUpcomingLimit, maxUpcomingLimit)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	items, err := s.matches.ListUpcoming(ctx, now, now.AddDate(0, 0, days), limit)
	if err != nil {
		return nil, fmt.Errorf("list upcoming matches: %w", err)
	}
	return s.hydrate(ctx, items)
}

func (s *MatchService) GetByID(ctx context.Context, matchID string) (MatchView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.GetByID")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return MatchView{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	m, found, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return MatchView{}, fmt.Errorf("get match: %w", err)
	}
	if !found {
		return MatchView{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}

	view := MatchView{Match: m}
	var homeErr, awayErr error
	var wg conc.WaitGroup
	wg.Go(func() {
		view.HomeTeam, homeErr = s.lookupTeam(ctx, m.HomeTeamID)
	})
	wg.Go(func() {
		view.AwayTeam, awayErr = s.lookupTeam(ctx, m.AwayTeamID)
	})
	wg.Wait()
	if homeErr != nil {
		return MatchView{}, homeErr
	}
	if awayErr != nil {
		return MatchView{}, awayErr
	}
	return view, nil
}

func (s *MatchService) lookupTeam(ctx context.Context, teamID string) (*team.Team, error) {
	t, found, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("get team id=%s: %w", teamID, err)
	}
	if !found {
		return nil, nil
	}
	return &t, nil
}

func (s *MatchService) hydrate(ctx context.Context, items []match.Match) ([]MatchView, error) {
	if len(items) == 0 {
		return []MatchView{}, nil
	}

	ids := make([]string, 0, len(items)*2)
	seen := make(map[string]struct{}, len(items)*2)
	for _, m := range items {
		for _, teamID := range []string{m.HomeTeamID, m.AwayTeamID} {
			if _, ok := seen[teamID]; ok {
				continue
			}
			seen[teamID] = struct{}{}
			ids = append(ids, teamID)
		}
	}

	teams, err := s.teams.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list match teams: %w", err)
	}
	byID := make(map[string]team.Team, len(teams))
	for _, t := range teams {
		byID[t.ID] = t
	}

	out := make([]MatchView, 0, len(items))
	for _, m := range items {
		view := MatchView{Match: m}
		if t, ok := byID[m.HomeTeamID]; ok {
			view.HomeTeam = &t
		}
		if t, ok := byID[m.AwayTeamID]; ok {
			view.AwayTeam = &t
		}
		out = append(out, view)
	}
	return out, nil
}
