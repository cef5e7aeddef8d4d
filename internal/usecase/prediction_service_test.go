package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/fannax/internal/domain/match"
	"github.com/riskibarqy/fannax/internal/domain/prediction"
	"github.com/riskibarqy/fannax/internal/domain/user"
	"github.com/riskibarqy/fannax/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fannax/internal/platform/id"
	matchmock "github.com/riskibarqy/fannax/internal/mocks/domain/match"
	predictionmock "github.com/riskibarqy/fannax/internal/mocks/domain/prediction"
	"github.com/stretchr/testify/mock"
)

func scheduledMatch(matchID string, kickoff time.Time) match.Match {
	return match.Match{
		ID:          matchID,
		ExternalID:  1,
		HomeTeamID:  "t-home",
		AwayTeamID:  "t-away",
		ScheduledAt: kickoff,
		Status:      match.StatusScheduled,
	}
}

func newMockPredictionService(t *testing.T) (*PredictionService, *matchmock.Repository, *predictionmock.Repository) {
	matchRepo := matchmock.NewRepository(t)
	predictionRepo := predictionmock.NewRepository(t)
	service := NewPredictionService(matchRepo, predictionRepo, nil, &id.SequenceGenerator{Prefix: "pred"}, nil)
	service.now = fixedNow
	return service, matchRepo, predictionRepo
}

func TestPredictionService_Submit_SuccessUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service, matchRepo, predictionRepo := newMockPredictionService(t)

	matchRepo.
		On("GetByID", mock.MatchedBy(func(v context.Context) bool { return v != nil }), "m1").
		Return(scheduledMatch("m1", testNow.Add(time.Hour)), true, nil).
		Once()
	predictionRepo.
		On("Create", mock.Anything, mock.MatchedBy(func(p prediction.Prediction) bool {
			return p.ID == "pred-1" && p.UserID == "u1" && p.MatchID == "m1" &&
				p.PredictedHomeScore == 2 && p.PredictedAwayScore == 1 &&
				p.ResultStatus == prediction.ResultPending && p.PointsAwarded == nil
		})).
		Return(nil).
		Once()

	got, err := service.Submit(ctx, SubmitPredictionInput{UserID: "u1", MatchID: "m1", HomeScore: 2, AwayScore: 1, Caption: "  home win  "})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got.Caption != "home win" || !got.CreatedAt.Equal(testNow) {
		t.Fatalf("unexpected prediction: %+v", got)
	}
}

func TestPredictionService_Submit_ValidatesBeforeLookup(t *testing.T) {
	t.Parallel()

	service, _, _ := newMockPredictionService(t)
	cases := []SubmitPredictionInput{
		{UserID: "u1", MatchID: "m1", HomeScore: -1, AwayScore: 0},
		{UserID: "u1", MatchID: "m1", HomeScore: 0, AwayScore: 21},
		{UserID: "", MatchID: "m1"},
		{UserID: "u1", MatchID: ""},
		{UserID: "u1", MatchID: "m1", Caption: string(make([]rune, prediction.MaxCaptionLength+1))},
	}
	for i, input := range cases {
		if _, err := service.Submit(context.Background(), input); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
}

func TestPredictionService_Submit_MatchNotFound(t *testing.T) {
	t.Parallel()

	service, matchRepo, _ := newMockPredictionService(t)
	matchRepo.On("GetByID", mock.Anything, "missing").Return(match.Match{}, false, nil).Once()

	_, err := service.Submit(context.Background(), SubmitPredictionInput{UserID: "u1", MatchID: "missing", HomeScore: 1, AwayScore: 1})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPredictionService_Submit_InvalidState(t *testing.T) {
	t.Parallel()

	live := scheduledMatch("live", testNow.Add(-10*time.Minute))
	live.Status = match.StatusLive
	kickedOff := scheduledMatch("kicked", testNow)
	atKickoff := scheduledMatch("past", testNow.Add(-time.Second))

	for _, m := range []match.Match{live, kickedOff, atKickoff} {
		service, matchRepo, _ := newMockPredictionService(t)
		matchRepo.On("GetByID", mock.Anything, m.ID).Return(m, true, nil).Once()

		_, err := service.Submit(context.Background(), SubmitPredictionInput{UserID: "u1", MatchID: m.ID, HomeScore: 1, AwayScore: 0})
		if !errors.Is(err, ErrInvalidState) {
			t.Fatalf("match %s: expected ErrInvalidState, got %v", m.ID, err)
		}
	}
}

func TestPredictionService_Submit_DuplicateMapsToConflict(t *testing.T) {
	t.Parallel()

	service, matchRepo, predictionRepo := newMockPredictionService(t)
	matchRepo.On("GetByID", mock.Anything, "m1").Return(scheduledMatch("m1", testNow.Add(time.Hour)), true, nil).Once()
	predictionRepo.On("Create", mock.Anything, mock.Anything).Return(fmt.Errorf("insert: %w", prediction.ErrDuplicate)).Once()

	_, err := service.Submit(context.Background(), SubmitPredictionInput{UserID: "u1", MatchID: "m1", HomeScore: 1, AwayScore: 0})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestPredictionService_Submit_ConcurrentDuplicatesYieldOneWinner(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	store.SeedUsers(user.User{ID: "u1", Username: "alice"})
	if _, err := store.Matches().Insert(context.Background(), scheduledMatch("m1", testNow.Add(time.Hour))); err != nil {
		t.Fatalf("seed match: %v", err)
	}
	service := NewPredictionService(store.Matches(), store.Predictions(), store.Users(), id.NewUUIDGenerator(), nil)
	service.now = fixedNow

	const attempts = 16
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(home int) {
			defer wg.Done()
			_, err := service.Submit(context.Background(), SubmitPredictionInput{UserID: "u1", MatchID: "m1", HomeScore: home % 5, AwayScore: 1})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	var ok, conflicts int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || conflicts != attempts-1 {
		t.Fatalf("expected exactly one success, got ok=%d conflicts=%d", ok, conflicts)
	}
}

func TestPredictionService_List_PagesNewestFirst(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.NewStore()
	for i := 1; i <= 5; i++ {
		err := store.Predictions().Create(ctx, prediction.Prediction{
			ID:           fmt.Sprintf("p%d", i),
			UserID:       fmt.Sprintf("u%d", i),
			MatchID:      "m1",
			ResultStatus: prediction.ResultPending,
			CreatedAt:    testNow.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	service := NewPredictionService(store.Matches(), store.Predictions(), nil, nil, nil)

	first, err := service.List(ctx, ListPredictionsInput{MatchID: "m1", Limit: 2})
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if len(first.Items) != 2 || first.Items[0].ID != "p5" || first.Items[1].ID != "p4" || first.NextCursor != "p3" {
		t.Fatalf("unexpected first page: %+v", first)
	}

	second, err := service.List(ctx, ListPredictionsInput{MatchID: "m1", Limit: 2, Cursor: first.NextCursor})
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(second.Items) != 2 || second.Items[0].ID != "p3" || second.NextCursor != "p1" {
		t.Fatalf("unexpected second page: %+v", second)
	}

	last, err := service.List(ctx, ListPredictionsInput{MatchID: "m1", Limit: 2, Cursor: second.NextCursor})
	if err != nil {
		t.Fatalf("last page: %v", err)
	}
	if len(last.Items) != 1 || last.NextCursor != "" {
		t.Fatalf("unexpected last page: %+v", last)
	}

	if _, err := service.List(ctx, ListPredictionsInput{Cursor: "nope"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown cursor, got %v", err)
	}
}
