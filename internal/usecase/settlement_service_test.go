package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/fannax/internal/domain/match"
	"github.com/riskibarqy/fannax/internal/domain/prediction"
	"github.com/riskibarqy/fannax/internal/domain/user"
	"github.com/riskibarqy/fannax/internal/infrastructure/repository/memory"
	matchmock "github.com/riskibarqy/fannax/internal/mocks/domain/match"
	predictionmock "github.com/riskibarqy/fannax/internal/mocks/domain/prediction"
	"github.com/stretchr/testify/mock"
)

type settleFixture struct {
	store    *memory.Store
	notifier *recordingNotifier
	service  *SettlementService
}

// newSettleFixture seeds one match finished 2-1 and three predictions:
// alice exact, bob correct winner, carol wrong.
func newSettleFixture(t *testing.T) *settleFixture {
	t.Helper()

	ctx := context.Background()
	store := memory.NewStore()
	store.SeedUsers(
		user.User{ID: "alice", Username: "alice"},
		user.User{ID: "bob", Username: "bob"},
		user.User{ID: "carol", Username: "carol"},
	)

	kickoff := testNow.Add(-3 * time.Hour)
	if _, err := store.Matches().Insert(ctx, match.Match{
		ID: "m1", ExternalID: 100, HomeTeamID: "t1", AwayTeamID: "t2",
		ScheduledAt: kickoff, Status: match.StatusScheduled,
	}); err != nil {
		t.Fatalf("seed match: %v", err)
	}
	seeds := []struct {
		id, userID string
		home, away int
	}{
		{"p-alice", "alice", 2, 1},
		{"p-bob", "bob", 1, 0},
		{"p-carol", "carol", 0, 2},
	}
	for i, seed := range seeds {
		err := store.Predictions().Create(ctx, prediction.Prediction{
			ID: seed.id, UserID: seed.userID, MatchID: "m1",
			PredictedHomeScore: seed.home, PredictedAwayScore: seed.away,
			ResultStatus: prediction.ResultPending,
			CreatedAt:    kickoff.Add(-time.Duration(i+1) * time.Hour),
		})
		if err != nil {
			t.Fatalf("seed prediction %s: %v", seed.id, err)
		}
	}
	applied, err := store.Matches().Update(ctx, match.Match{
		ID: "m1", ExternalID: 100, HomeTeamID: "t1", AwayTeamID: "t2",
		ScheduledAt: kickoff, Status: match.StatusFinished,
		HomeScore: intPtr(2), AwayScore: intPtr(1),
	})
	if err != nil || !applied {
		t.Fatalf("finish match: applied=%v err=%v", applied, err)
	}

	notifier := &recordingNotifier{}
	service := NewSettlementService(store.Matches(), store.Predictions(), store.Settler(), notifier, SettlementConfig{Workers: 4}, nil)
	service.now = fixedNow
	return &settleFixture{store: store, notifier: notifier, service: service}
}

func (f *settleFixture) points(t *testing.T, userID string) int {
	t.Helper()
	u, found, err := f.store.Users().GetByID(context.Background(), userID)
	if err != nil || !found {
		t.Fatalf("get user %s: found=%v err=%v", userID, found, err)
	}
	return u.TotalPoints
}

func TestSettlementService_Settle_ScoresAndNotifies(t *testing.T) {
	t.Parallel()

	f := newSettleFixture(t)
	result, err := f.service.Settle(context.Background())
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	want := SettlementResult{MatchesProcessed: 1, PredictionsScored: 3}
	if result != want {
		t.Fatalf("unexpected result: got %+v want %+v", result, want)
	}

	for userID, points := range map[string]int{"alice": 3, "bob": 2, "carol": -1} {
		if got := f.points(t, userID); got != points {
			t.Fatalf("%s points: got %d want %d", userID, got, points)
		}
	}

	messages := f.notifier.messages()
	wantMessages := map[string]string{
		"p-alice": "Your prediction was a perfect match! (+3 points)",
		"p-bob":   "Your prediction was correct! (+2 points)",
		"p-carol": "Your prediction was incorrect. (-1 points)",
	}
	for predictionID, msg := range wantMessages {
		if messages[predictionID] != msg {
			t.Fatalf("message for %s: got %q want %q", predictionID, messages[predictionID], msg)
		}
	}

	p, _, _ := f.store.Predictions().GetByID(context.Background(), "p-bob")
	if p.ResultStatus != prediction.ResultCorrectWinner || p.PointsAwarded == nil || *p.PointsAwarded != 2 || p.SettledAt == nil {
		t.Fatalf("unexpected settled prediction: %+v", p)
	}
}

func TestSettlementService_Settle_RerunIsIdempotent(t *testing.T) {
	t.Parallel()

	f := newSettleFixture(t)
	if _, err := f.service.Settle(context.Background()); err != nil {
		t.Fatalf("first settle: %v", err)
	}
	again, err := f.service.Settle(context.Background())
	if err != nil {
		t.Fatalf("second settle: %v", err)
	}
	if again != (SettlementResult{}) {
		t.Fatalf("expected no-op rerun, got %+v", again)
	}
	if got := f.points(t, "alice"); got != 3 {
		t.Fatalf("alice credited twice: %d", got)
	}
	if got := len(f.notifier.messages()); got != 3 {
		t.Fatalf("expected 3 notifications, got %d", got)
	}
}

func TestSettlementService_Settle_ConcurrentRunsCreditOnce(t *testing.T) {
	t.Parallel()

	f := newSettleFixture(t)
	const runs = 8
	results := make(chan SettlementResult, runs)
	var wg sync.WaitGroup
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := f.service.Settle(context.Background())
			if err != nil {
				t.Errorf("settle: %v", err)
				return
			}
			results <- result
		}()
	}
	wg.Wait()
	close(results)

	var scored, errs int
	for r := range results {
		scored += r.PredictionsScored
		errs += r.Errors
	}
	if scored != 3 || errs != 0 {
		t.Fatalf("expected 3 scored across runs and no errors, got scored=%d errors=%d", scored, errs)
	}
	for userID, points := range map[string]int{"alice": 3, "bob": 2, "carol": -1} {
		if got := f.points(t, userID); got != points {
			t.Fatalf("%s points: got %d want %d", userID, got, points)
		}
	}
}

func TestSettlementService_Settle_NotificationFailureStillScores(t *testing.T) {
	t.Parallel()

	f := newSettleFixture(t)
	f.notifier.err = errors.New("inbox down")

	result, err := f.service.Settle(context.Background())
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if result.PredictionsScored != 3 || result.Errors != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestSettlementService_Settle_CancelledContextStartsNothing(t *testing.T) {
	t.Parallel()

	f := newSettleFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := f.service.Settle(ctx)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if result.PredictionsScored != 0 {
		t.Fatalf("expected no units, got %+v", result)
	}
	if got := f.points(t, "alice"); got != 0 {
		t.Fatalf("expected no credit, got %d", got)
	}
}

func TestSettlementService_Settle_LostRaceAndFailuresUsingMockery(t *testing.T) {
	t.Parallel()

	matchRepo := matchmock.NewRepository(t)
	predictionRepo := predictionmock.NewRepository(t)
	settler := predictionmock.NewSettler(t)
	notifier := &recordingNotifier{}

	finished := match.Match{
		ID: "m1", ExternalID: 1, HomeTeamID: "t1", AwayTeamID: "t2",
		ScheduledAt: testNow.Add(-2 * time.Hour), Status: match.StatusFinished,
		HomeScore: intPtr(0), AwayScore: intPtr(0),
	}
	matchRepo.On("ListSettleable", mock.Anything, 200).Return([]match.Match{finished}, nil).Once()
	predictionRepo.On("ListPendingByMatch", mock.Anything, "m1").Return([]prediction.Prediction{
		{ID: "won", UserID: "u1", MatchID: "m1", ResultStatus: prediction.ResultPending},
		{ID: "lost", UserID: "u2", MatchID: "m1", PredictedHomeScore: 1, ResultStatus: prediction.ResultPending},
		{ID: "broken", UserID: "u3", MatchID: "m1", ResultStatus: prediction.ResultPending},
	}, nil).Once()

	settler.On("Settle", mock.Anything, mock.MatchedBy(func(s prediction.Settlement) bool {
		return s.PredictionID == "won" && s.Result == prediction.ResultExactMatch && s.Points == 3
	})).Return(true, nil).Once()
	settler.On("Settle", mock.Anything, mock.MatchedBy(func(s prediction.Settlement) bool {
		return s.PredictionID == "lost"
	})).Return(false, nil).Once()
	settler.On("Settle", mock.Anything, mock.MatchedBy(func(s prediction.Settlement) bool {
		return s.PredictionID == "broken"
	})).Return(false, errors.New("deadlock detected")).Once()

	service := NewSettlementService(matchRepo, predictionRepo, settler, notifier, SettlementConfig{Workers: 2}, nil)
	service.now = fixedNow

	result, err := service.Settle(context.Background())
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	want := SettlementResult{MatchesProcessed: 1, PredictionsScored: 1, Skipped: 1, Errors: 1}
	if result != want {
		t.Fatalf("unexpected result: got %+v want %+v", result, want)
	}
	if got := notifier.messages(); len(got) != 1 || got["won"] == "" {
		t.Fatalf("expected one notification for the applied unit, got %v", got)
	}
}

func TestSettlementService_Settle_DrainedMatchIsNotCounted(t *testing.T) {
	t.Parallel()

	matchRepo := matchmock.NewRepository(t)
	predictionRepo := predictionmock.NewRepository(t)
	settler := predictionmock.NewSettler(t)

	drained := match.Match{
		ID: "m1", ExternalID: 1, HomeTeamID: "t1", AwayTeamID: "t2",
		ScheduledAt: testNow.Add(-2 * time.Hour), Status: match.StatusFinished,
		HomeScore: intPtr(1), AwayScore: intPtr(0),
	}
	matchRepo.On("ListSettleable", mock.Anything, 200).Return([]match.Match{drained}, nil).Once()
	predictionRepo.On("ListPendingByMatch", mock.Anything, "m1").Return([]prediction.Prediction{}, nil).Once()

	service := NewSettlementService(matchRepo, predictionRepo, settler, nil, SettlementConfig{Workers: 1}, nil)
	result, err := service.Settle(context.Background())
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if result != (SettlementResult{}) {
		t.Fatalf("expected empty result for a drained match, got %+v", result)
	}
	settler.AssertNotCalled(t, "Settle", mock.Anything, mock.Anything)
}

func TestSettlementService_Settle_NotConfigured(t *testing.T) {
	t.Parallel()

	service := NewSettlementService(nil, nil, nil, nil, SettlementConfig{}, nil)
	if _, err := service.Settle(context.Background()); !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}
