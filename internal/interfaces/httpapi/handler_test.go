package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/fannax/internal/domain/match"
	"github.com/riskibarqy/fannax/internal/domain/notification"
	"github.com/riskibarqy/fannax/internal/domain/prediction"
	"github.com/riskibarqy/fannax/internal/domain/team"
	"github.com/riskibarqy/fannax/internal/domain/user"
	"github.com/riskibarqy/fannax/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fannax/internal/platform/id"
	"github.com/riskibarqy/fannax/internal/platform/logging"
	"github.com/riskibarqy/fannax/internal/usecase"
)

const testJobToken = "job-secret"

type routerFixture struct {
	store   *memory.Store
	handler http.Handler
}

type envelope struct {
	Data  map[string]any `json:"data"`
	Error *struct {
		Code   int    `json:"code"`
		Status string `json:"status"`
	} `json:"error"`
}

type listEnvelope struct {
	Data []map[string]any `json:"data"`
}

func intPtr(v int) *int { return &v }

// newRouterFixture seeds two teams, an open match m-open and a finished
// match m-done carrying one exact pending prediction by u1.
func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	ctx := context.Background()
	store := memory.NewStore()
	store.SeedUsers(user.User{ID: "u1", Username: "alice"}, user.User{ID: "u2", Username: "bob"})

	for _, item := range []team.Team{
		{ID: "t1", ExternalID: 1, Name: "Arsenal", ReservedHandle: "arsenal"},
		{ID: "t2", ExternalID: 2, Name: "Chelsea", ReservedHandle: "chelsea"},
	} {
		if _, _, err := store.Teams().Create(ctx, item); err != nil {
			t.Fatalf("seed team: %v", err)
		}
	}

	now := time.Now().UTC()
	seedMatch := func(matchID string, externalID int64, at time.Time) match.Match {
		m := match.Match{
			ID: matchID, ExternalID: externalID, HomeTeamID: "t1", AwayTeamID: "t2",
			ScheduledAt: at, Status: match.StatusScheduled,
		}
		if _, err := store.Matches().Insert(ctx, m); err != nil {
			t.Fatalf("seed match: %v", err)
		}
		return m
	}
	seedMatch("m-open", 10, now.Add(24*time.Hour))
	done := seedMatch("m-done", 11, now.Add(-3*time.Hour))

	if err := store.Predictions().Create(ctx, prediction.Prediction{
		ID: "p-done", UserID: "u1", MatchID: "m-done",
		PredictedHomeScore: 2, PredictedAwayScore: 1,
		ResultStatus: prediction.ResultPending,
		CreatedAt:    now.Add(-4 * time.Hour),
	}); err != nil {
		t.Fatalf("seed prediction: %v", err)
	}
	done.Status = match.StatusFinished
	done.HomeScore, done.AwayScore = intPtr(2), intPtr(1)
	if applied, err := store.Matches().Update(ctx, done); err != nil || !applied {
		t.Fatalf("finish match: applied=%v err=%v", applied, err)
	}

	logger := logging.NewNop()
	notifications := usecase.NewNotificationService(store.Notifications(), nil, &id.SequenceGenerator{Prefix: "n"}, logger)
	settlement := usecase.NewSettlementService(store.Matches(), store.Predictions(), store.Settler(), notifications, usecase.SettlementConfig{Workers: 2}, logger)
	jobs := usecase.NewJobRunner(nil, nil, settlement, store.JobDispatches(), &id.SequenceGenerator{Prefix: "d"}, logger)

	handler := NewHandler(Services{
		Matches:       usecase.NewMatchService(store.Matches(), store.Teams()),
		Teams:         usecase.NewTeamService(store.Teams()),
		Predictions:   usecase.NewPredictionService(store.Matches(), store.Predictions(), store.Users(), &id.SequenceGenerator{Prefix: "p"}, logger),
		Leaderboard:   usecase.NewLeaderboardService(store.Users()),
		Notifications: notifications,
		Jobs:          jobs,
	}, logger)

	verifier := &stubVerifier{principal: user.Principal{UserID: "u2", Email: "bob@example.com"}}
	router := NewRouter(handler, verifier, logger, RouterConfig{InternalJobToken: testJobToken})
	return &routerFixture{store: store, handler: router}
}

func newTestNotification(recipientID string) notification.Notification {
	return notification.Notification{
		RecipientID: recipientID,
		Kind:        notification.KindPredictionResult,
		Message:     "Your prediction was settled",
	}
}

func (f *routerFixture) do(t *testing.T, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()

	var out envelope
	if err := sonic.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}

var bearerHeaders = map[string]string{"Authorization": "Bearer tok"}

func TestHealthz(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if got := decodeEnvelope(t, rec).Data["status"]; got != "ok" {
		t.Fatalf("unexpected health payload: %v", got)
	}
}

func TestGetMatch(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/v1/matches/m-done", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", rec.Code, rec.Body.String())
	}
	data := decodeEnvelope(t, rec).Data
	if data["status"] != "FINISHED" || data["home_score"] != float64(2) || data["away_score"] != float64(1) {
		t.Fatalf("unexpected match payload: %v", data)
	}
	home, ok := data["home_team"].(map[string]any)
	if !ok || home["reserved_handle"] != "arsenal" {
		t.Fatalf("expected hydrated home team, got %v", data["home_team"])
	}

	rec = f.do(t, http.MethodGet, "/v1/matches/m-open", "", nil)
	data = decodeEnvelope(t, rec).Data
	if data["home_score"] != nil || data["away_score"] != nil {
		t.Fatalf("scheduled match must not expose scores: %v", data)
	}

	rec = f.do(t, http.MethodGet, "/v1/matches/missing", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestListMatches_Pagination(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/v1/matches?limit=1", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	data := decodeEnvelope(t, rec).Data
	items, _ := data["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected one item, got %d", len(items))
	}
	if first := items[0].(map[string]any); first["id"] != "m-done" {
		t.Fatalf("expected kickoff order, got %v", first["id"])
	}
	if data["next_cursor"] != "m-open" {
		t.Fatalf("unexpected next cursor: %v", data["next_cursor"])
	}

	rec = f.do(t, http.MethodGet, "/v1/matches?limit=1&cursor=m-open", "", nil)
	data = decodeEnvelope(t, rec).Data
	if data["next_cursor"] != nil {
		t.Fatalf("expected null cursor at end, got %v", data["next_cursor"])
	}

	rec = f.do(t, http.MethodGet, "/v1/matches?status=bogus", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad status, got %d", rec.Code)
	}
	rec = f.do(t, http.MethodGet, "/v1/matches?limit=abc", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", rec.Code)
	}
}

func TestListUpcomingMatches(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/v1/matches/upcoming?days=2", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	var out listEnvelope
	if err := sonic.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Data) != 1 || out.Data[0]["id"] != "m-open" {
		t.Fatalf("unexpected upcoming list: %v", out.Data)
	}
}

func TestListTeams(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/v1/teams?limit=5", "", nil)
	data := decodeEnvelope(t, rec).Data
	items, _ := data["items"].([]any)
	if len(items) != 2 || items[0].(map[string]any)["name"] != "Arsenal" {
		t.Fatalf("unexpected teams: %v", items)
	}
}

func TestSubmitPrediction(t *testing.T) {
	f := newRouterFixture(t)

	body := `{"match_id":"m-open","predicted_home_score":1,"predicted_away_score":1,"caption":"draw"}`
	rec := f.do(t, http.MethodPost, "/v1/predictions", body, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without bearer, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/v1/predictions", body, bearerHeaders)
	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected status: %d body=%s", rec.Code, rec.Body.String())
	}
	data := decodeEnvelope(t, rec).Data
	if data["user_id"] != "u2" || data["result_status"] != "PENDING" || data["points_awarded"] != nil {
		t.Fatalf("unexpected prediction payload: %v", data)
	}

	rec = f.do(t, http.MethodPost, "/v1/predictions", body, bearerHeaders)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate, got %d", rec.Code)
	}
	if got := decodeEnvelope(t, rec).Error; got == nil || got.Status != "ALREADY_EXISTS" {
		t.Fatalf("unexpected duplicate error: %+v", got)
	}
}

func TestSubmitPrediction_Rejections(t *testing.T) {
	f := newRouterFixture(t)

	cases := []struct {
		name       string
		body       string
		wantCode   int
		wantStatus string
	}{
		{"score above range", `{"match_id":"m-open","predicted_home_score":21,"predicted_away_score":0}`, http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"negative score", `{"match_id":"m-open","predicted_home_score":-1,"predicted_away_score":0}`, http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"missing score", `{"match_id":"m-open","predicted_home_score":1}`, http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"bad json", `{"match_id":`, http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"unknown match", `{"match_id":"nope","predicted_home_score":1,"predicted_away_score":0}`, http.StatusNotFound, "NOT_FOUND"},
		{"finished match", `{"match_id":"m-done","predicted_home_score":1,"predicted_away_score":0}`, http.StatusConflict, "FAILED_PRECONDITION"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/v1/predictions", tc.body, bearerHeaders)
			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d body=%s", tc.wantCode, rec.Code, rec.Body.String())
			}
			if got := decodeEnvelope(t, rec).Error; got == nil || got.Status != tc.wantStatus {
				t.Fatalf("unexpected error: %+v", got)
			}
		})
	}
}

func TestSettleJob_CreditsAndNotifies(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/v1/internal/jobs/settle", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without job token, got %d", rec.Code)
	}

	jobHeaders := map[string]string{internalJobTokenHeader: testJobToken, queueMessageIDHeader: "msg-1"}
	rec = f.do(t, http.MethodPost, "/v1/internal/jobs/settle", "", jobHeaders)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", rec.Code, rec.Body.String())
	}
	if got := decodeEnvelope(t, rec).Data["predictions_scored"]; got != float64(1) {
		t.Fatalf("expected one settled prediction, got %v", got)
	}

	rec = f.do(t, http.MethodPost, "/v1/internal/jobs/settle", "", jobHeaders)
	if got := decodeEnvelope(t, rec).Data["predictions_scored"]; got != float64(0) {
		t.Fatalf("second run must settle nothing, got %v", got)
	}

	rec = f.do(t, http.MethodGet, "/v1/users/top-predictors", "", nil)
	var board listEnvelope
	if err := sonic.Unmarshal(rec.Body.Bytes(), &board); err != nil {
		t.Fatalf("decode leaderboard: %v", err)
	}
	if len(board.Data) != 1 || board.Data[0]["user_id"] != "u1" || board.Data[0]["total_points"] != float64(3) {
		t.Fatalf("unexpected leaderboard: %v", board.Data)
	}
	if board.Data[0]["rank"] != float64(1) {
		t.Fatalf("expected rank 1, got %v", board.Data[0]["rank"])
	}

	rec = f.do(t, http.MethodGet, "/v1/predictions?match_id=m-done", "", nil)
	items, _ := decodeEnvelope(t, rec).Data["items"].([]any)
	if len(items) != 1 || items[0].(map[string]any)["result_status"] != "EXACT_MATCH" {
		t.Fatalf("unexpected predictions: %v", items)
	}

	dispatches, err := f.store.JobDispatches().ListRecent(context.Background(), "", 10)
	if err != nil {
		t.Fatalf("list dispatches: %v", err)
	}
	if len(dispatches) != 1 || dispatches[0].DispatchID != "msg-1" {
		t.Fatalf("expected redeliveries to share one dispatch row, got %+v", dispatches)
	}
}

func TestSyncMatchesJob_Validation(t *testing.T) {
	f := newRouterFixture(t)

	headers := map[string]string{internalJobTokenHeader: testJobToken}
	rec := f.do(t, http.MethodPost, "/v1/internal/jobs/sync-matches", `{"days":31}`, headers)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for days out of range, got %d", rec.Code)
	}

	// fixture sync is not wired in this fixture
	rec = f.do(t, http.MethodPost, "/v1/internal/jobs/sync-matches", `{"days":3}`, headers)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestNotifications_ReadFlow(t *testing.T) {
	f := newRouterFixture(t)
	ctx := context.Background()

	notifications := usecase.NewNotificationService(f.store.Notifications(), nil, &id.SequenceGenerator{Prefix: "bn"}, logging.NewNop())
	for i := 0; i < 2; i++ {
		if err := notifications.Notify(ctx, newTestNotification("u2")); err != nil {
			t.Fatalf("seed notification: %v", err)
		}
	}

	rec := f.do(t, http.MethodGet, "/v1/notifications", "", bearerHeaders)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", rec.Code, rec.Body.String())
	}
	data := decodeEnvelope(t, rec).Data
	items, _ := data["items"].([]any)
	if len(items) != 2 || data["unread_count"] != float64(2) {
		t.Fatalf("unexpected notification page: %v", data)
	}
	firstID, _ := items[0].(map[string]any)["id"].(string)

	rec = f.do(t, http.MethodPost, "/v1/notifications/"+firstID+"/read", "", bearerHeaders)
	if rec.Code != http.StatusOK {
		t.Fatalf("mark read: %d body=%s", rec.Code, rec.Body.String())
	}
	rec = f.do(t, http.MethodPost, "/v1/notifications/missing/read", "", bearerHeaders)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown notification, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/v1/notifications/read-all", "", bearerHeaders)
	if got := decodeEnvelope(t, rec).Data["updated"]; got != float64(1) {
		t.Fatalf("expected one remaining unread, got %v", got)
	}
}
