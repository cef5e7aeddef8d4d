package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/fannax/internal/domain/match"
	"github.com/riskibarqy/fannax/internal/domain/team"
	"github.com/riskibarqy/fannax/internal/domain/user"
	"github.com/riskibarqy/fannax/internal/infrastructure/repository/memory"
	matchmock "github.com/riskibarqy/fannax/internal/mocks/domain/match"
	teammock "github.com/riskibarqy/fannax/internal/mocks/domain/team"
	usermock "github.com/riskibarqy/fannax/internal/mocks/domain/user"
	"github.com/stretchr/testify/mock"
)

func TestMatchService_GetByID_ResolvesTeamsUsingMockery(t *testing.T) {
	t.Parallel()

	matchRepo := matchmock.NewRepository(t)
	teamRepo := teammock.NewRepository(t)
	service := NewMatchService(matchRepo, teamRepo)

	m := scheduledMatch("m1", testNow.Add(time.Hour))
	matchRepo.On("GetByID", mock.Anything, "m1").Return(m, true, nil).Once()
	teamRepo.On("GetByID", mock.Anything, "t-home").Return(team.Team{ID: "t-home", Name: "Arsenal"}, true, nil).Once()
	teamRepo.On("GetByID", mock.Anything, "t-away").Return(team.Team{}, false, nil).Once()

	view, err := service.GetByID(context.Background(), "m1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.HomeTeam == nil || view.HomeTeam.Name != "Arsenal" || view.AwayTeam != nil {
		t.Fatalf("unexpected view: %+v", view)
	}
}

func TestMatchService_GetByID_NotFound(t *testing.T) {
	t.Parallel()

	matchRepo := matchmock.NewRepository(t)
	matchRepo.On("GetByID", mock.Anything, "nope").Return(match.Match{}, false, nil).Once()
	service := NewMatchService(matchRepo, teammock.NewRepository(t))

	if _, err := service.GetByID(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMatchService_ListAndUpcoming(t *testing.T) {
	t.Parallel()

	h := newSyncHarness()
	h.provider.fixtures = []ExternalFixture{
		externalFixture(1, 10, "Arsenal", 11, "Chelsea"),
		externalFixture(2, 12, "Everton", 13, "Fulham"),
		externalFixture(300, 14, "Leeds", 15, "Burnley"),
	}
	if _, err := h.service.Sync(context.Background(), 7); err != nil {
		t.Fatalf("sync: %v", err)
	}

	service := NewMatchService(h.store.Matches(), h.store.Teams())
	service.now = fixedNow

	page, err := service.List(context.Background(), ListMatchesInput{Status: "scheduled", Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Items) != 2 || page.NextCursor == "" {
		t.Fatalf("unexpected page: %+v", page)
	}
	if page.Items[0].HomeTeam == nil || page.Items[0].HomeTeam.Name != "Arsenal" {
		t.Fatalf("expected hydrated home team, got %+v", page.Items[0])
	}

	upcoming, err := service.Upcoming(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("upcoming: %v", err)
	}
	if len(upcoming) != 2 {
		t.Fatalf("expected 2 matches within one day, got %d", len(upcoming))
	}

	if _, err := service.List(context.Background(), ListMatchesInput{Status: "postponed"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad status, got %v", err)
	}
	if _, err := service.Upcoming(context.Background(), 31, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for days, got %v", err)
	}
}

func TestLeaderboardService_TopPredictors(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	store.SeedUsers(
		user.User{ID: "a", Username: "a", TotalPoints: 5},
		user.User{ID: "b", Username: "b", TotalPoints: 9},
		user.User{ID: "c", Username: "c"},
	)
	service := NewLeaderboardService(store.Users())

	items, err := service.TopPredictors(context.Background(), 0)
	if err != nil {
		t.Fatalf("top predictors: %v", err)
	}
	if len(items) != 2 || items[0].ID != "b" || items[1].ID != "a" {
		t.Fatalf("unexpected ranking: %+v", items)
	}

	if _, err := service.TopPredictors(context.Background(), -1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestLeaderboardService_PropagatesRepositoryError(t *testing.T) {
	t.Parallel()

	users := usermock.NewRepository(t)
	users.On("ListTopPredictors", mock.Anything, 10).Return(nil, errors.New("db down")).Once()

	if _, err := NewLeaderboardService(users).TopPredictors(context.Background(), 0); err == nil {
		t.Fatalf("expected error")
	}
}

func TestTeamService_List_PagesByName(t *testing.T) {
	t.Parallel()

	h := newSyncHarness()
	h.provider.fixtures = []ExternalFixture{
		externalFixture(1, 10, "Chelsea", 11, "Arsenal"),
		externalFixture(2, 12, "Brentford", 13, "Derby"),
	}
	if _, err := h.service.Sync(context.Background(), 7); err != nil {
		t.Fatalf("sync: %v", err)
	}

	service := NewTeamService(h.store.Teams())
	page, err := service.List(context.Background(), "", 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Items) != 3 || page.Items[0].Name != "Arsenal" || page.Items[2].Name != "Chelsea" {
		t.Fatalf("unexpected page: %+v", page.Items)
	}
	next, err := service.List(context.Background(), page.NextCursor, 3)
	if err != nil || len(next.Items) != 1 || next.Items[0].Name != "Derby" || next.NextCursor != "" {
		t.Fatalf("unexpected next page: %+v err=%v", next, err)
	}
}
