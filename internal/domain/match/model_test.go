package match

import (
	"slices"
	"testing"
	"time"
)

func intPtr(v int) *int { return &v }

var kickoff = time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)

func scheduled() Match {
	return Match{
		ID:          "m1",
		ExternalID:  1001,
		HomeTeamID:  "t-home",
		AwayTeamID:  "t-away",
		ScheduledAt: kickoff,
		Status:      StatusScheduled,
	}
}

func TestAcceptsPredictions(t *testing.T) {
	t.Parallel()

	m := scheduled()
	if !m.AcceptsPredictions(kickoff.Add(-time.Minute)) {
		t.Fatalf("expected open before kickoff")
	}
	if m.AcceptsPredictions(kickoff) {
		t.Fatalf("expected closed at kickoff")
	}

	m.Status = StatusLive
	if m.AcceptsPredictions(kickoff.Add(-time.Hour)) {
		t.Fatalf("expected closed once live")
	}
}

func TestReconcile_Lifecycle(t *testing.T) {
	t.Parallel()

	m := scheduled()

	live, changed := m.Reconcile(Observation{ProviderStatus: "LIVE", HomeScore: intPtr(1), AwayScore: intPtr(0)})
	if !changed || live.Status != StatusLive {
		t.Fatalf("expected live, got %+v changed=%v", live, changed)
	}
	if live.HomeScore != nil || live.AwayScore != nil {
		t.Fatalf("live match must not carry scores: %+v", live)
	}
	if err := live.Validate(); err != nil {
		t.Fatalf("live match invalid: %v", err)
	}

	finished, changed := live.Reconcile(Observation{ProviderStatus: "FINISHED", HomeScore: intPtr(2), AwayScore: intPtr(1)})
	if !changed || !finished.Settleable() {
		t.Fatalf("expected settleable finished match, got %+v", finished)
	}
	if err := finished.Validate(); err != nil {
		t.Fatalf("finished match invalid: %v", err)
	}

	again, changed := finished.Reconcile(Observation{ProviderStatus: "FINISHED", HomeScore: intPtr(3), AwayScore: intPtr(3), Venue: "Elsewhere"})
	if changed {
		t.Fatalf("finished match must be immutable, got %+v", again)
	}
	if *again.HomeScore != 2 || *again.AwayScore != 1 {
		t.Fatalf("score changed after finish: %+v", again)
	}
}

func TestReconcile_NoRegression(t *testing.T) {
	t.Parallel()

	m := scheduled()
	m.Status = StatusLive

	for _, status := range []string{"SCHEDULED", ProviderPostponed, ProviderCancelled, "", "WHATEVER"} {
		next, changed := m.Reconcile(Observation{ProviderStatus: status})
		if changed || next.Status != StatusLive {
			t.Fatalf("status %q regressed match to %s", status, next.Status)
		}
	}
}

func TestReconcile_FinishedWithoutScoresStaysLive(t *testing.T) {
	t.Parallel()

	next, changed := scheduled().Reconcile(Observation{ProviderStatus: "FINISHED", HomeScore: intPtr(1)})
	if !changed || next.Status != StatusLive || next.HomeScore != nil {
		t.Fatalf("expected live without scores, got %+v", next)
	}
}

func TestReconcile_RefreshesScheduleWhileScheduled(t *testing.T) {
	t.Parallel()

	moved := kickoff.Add(24 * time.Hour)
	next, changed := scheduled().Reconcile(Observation{ProviderStatus: ProviderPostponed, ScheduledAt: moved, Venue: "Emirates"})
	if !changed || !next.ScheduledAt.Equal(moved) || next.Venue != "Emirates" || next.Status != StatusScheduled {
		t.Fatalf("unexpected reconcile: %+v", next)
	}

	_, changed = next.Reconcile(Observation{ProviderStatus: "SCHEDULED", ScheduledAt: moved, Venue: "Emirates"})
	if changed {
		t.Fatalf("identical observation must be a no-op")
	}
}

func TestNewFromObservation(t *testing.T) {
	t.Parallel()

	m := NewFromObservation("m2", 1002, "a", "b", Observation{
		ProviderStatus: "FINISHED",
		HomeScore:      intPtr(0),
		AwayScore:      intPtr(0),
		ScheduledAt:    kickoff,
	})
	if m.Status != StatusScheduled || m.HomeScore != nil || m.AwayScore != nil {
		t.Fatalf("new match must start SCHEDULED without scores: %+v", m)
	}
	if !m.ScheduledAt.Equal(kickoff) {
		t.Fatalf("unexpected kickoff: %v", m.ScheduledAt)
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("invalid match: %v", err)
	}
}

func TestReplaceableStatuses(t *testing.T) {
	t.Parallel()

	cases := []struct {
		next   Status
		stored Status
		want   bool
	}{
		{StatusScheduled, StatusScheduled, true},
		{StatusScheduled, StatusLive, false},
		{StatusLive, StatusScheduled, true},
		{StatusLive, StatusLive, true},
		{StatusFinished, StatusLive, true},
		{StatusFinished, StatusFinished, false},
		{StatusLive, StatusFinished, false},
	}
	for _, tc := range cases {
		got := slices.Contains(ReplaceableStatuses(tc.next), tc.stored)
		if got != tc.want {
			t.Fatalf("update to %s over %s: want %v got %v", tc.next, tc.stored, tc.want, got)
		}
	}
}

func TestParseStatus(t *testing.T) {
	t.Parallel()

	if s, err := ParseStatus(" live "); err != nil || s != StatusLive {
		t.Fatalf("unexpected parse: %v %v", s, err)
	}
	if _, err := ParseStatus("POSTPONED"); err == nil {
		t.Fatalf("expected error")
	}
}
