package match

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusLive      Status = "LIVE"
	StatusFinished  Status = "FINISHED"
)

// ParseStatus accepts the three stored values, case-insensitively.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.ToUpper(strings.TrimSpace(raw))); s {
	case StatusScheduled, StatusLive, StatusFinished:
		return s, nil
	default:
		return "", fmt.Errorf("unknown match status %q", raw)
	}
}

// ReplaceableStatuses lists the stored statuses a row may hold for an
// update to status s to apply. Status never moves backwards and FINISHED
// is never replaced.
func ReplaceableStatuses(s Status) []Status {
	switch s {
	case StatusScheduled:
		return []Status{StatusScheduled}
	case StatusLive, StatusFinished:
		return []Status{StatusScheduled, StatusLive}
	default:
		return nil
	}
}

// Match is one fixture between two teams. HomeScore and AwayScore are set
// exactly when Status is FINISHED.
type Match struct {
	ID               string
	ExternalID       int64
	HomeTeamID       string
	AwayTeamID       string
	ScheduledAt      time.Time
	Venue            string
	LeagueName       string
	LeagueExternalID int64
	Status           Status
	HomeScore        *int
	AwayScore        *int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (m Match) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("match id is required")
	}
	if m.HomeTeamID == "" || m.AwayTeamID == "" {
		return fmt.Errorf("match teams are required")
	}
	if m.HomeTeamID == m.AwayTeamID {
		return fmt.Errorf("match home and away team must differ")
	}
	if m.ScheduledAt.IsZero() {
		return fmt.Errorf("match scheduled time is required")
	}
	hasScores := m.HomeScore != nil && m.AwayScore != nil
	if (m.Status == StatusFinished) != hasScores {
		return fmt.Errorf("match scores must be set exactly when finished")
	}
	if m.Status != StatusFinished && (m.HomeScore != nil || m.AwayScore != nil) {
		return fmt.Errorf("match scores must be empty before finish")
	}
	return nil
}

// AcceptsPredictions reports whether a prediction may still be placed.
func (m Match) AcceptsPredictions(now time.Time) bool {
	return m.Status == StatusScheduled && m.ScheduledAt.After(now)
}

// Settleable reports whether predictions on the match can be scored.
func (m Match) Settleable() bool {
	return m.Status == StatusFinished && m.HomeScore != nil && m.AwayScore != nil
}

// Observation is what the provider currently reports for a fixture.
// ProviderStatus is the normalized provider state and may be outside the
// three stored statuses (POSTPONED, CANCELLED).
type Observation struct {
	ProviderStatus   string
	HomeScore        *int
	AwayScore        *int
	ScheduledAt      time.Time
	Venue            string
	LeagueName       string
	LeagueExternalID int64
}

const (
	ProviderPostponed = "POSTPONED"
	ProviderCancelled = "CANCELLED"
)

// NewFromObservation builds a fresh match. New matches always start
// SCHEDULED without scores whatever the provider reports; later syncs
// advance them through Reconcile.
func NewFromObservation(id string, externalID int64, homeTeamID, awayTeamID string, obs Observation) Match {
	m := Match{
		ID:               id,
		ExternalID:       externalID,
		HomeTeamID:       homeTeamID,
		AwayTeamID:       awayTeamID,
		ScheduledAt:      obs.ScheduledAt,
		Venue:            obs.Venue,
		LeagueName:       obs.LeagueName,
		LeagueExternalID: obs.LeagueExternalID,
		Status:           StatusScheduled,
	}
	return m
}

// Reconcile folds a provider observation into m. FINISHED matches are
// immutable. Status only moves forward: SCHEDULED -> LIVE -> FINISHED.
func (m Match) Reconcile(obs Observation) (Match, bool) {
	if m.Status == StatusFinished {
		return m, false
	}

	next := m
	if obs.Venue != "" {
		next.Venue = obs.Venue
	}
	if obs.LeagueName != "" {
		next.LeagueName = obs.LeagueName
	}
	if obs.LeagueExternalID > 0 {
		next.LeagueExternalID = obs.LeagueExternalID
	}
	if m.Status == StatusScheduled && !obs.ScheduledAt.IsZero() {
		next.ScheduledAt = obs.ScheduledAt
	}

	switch Status(strings.ToUpper(obs.ProviderStatus)) {
	case StatusFinished:
		if obs.HomeScore != nil && obs.AwayScore != nil {
			home, away := *obs.HomeScore, *obs.AwayScore
			next.Status = StatusFinished
			next.HomeScore = &home
			next.AwayScore = &away
		} else {
			next.Status = StatusLive
		}
	case StatusLive:
		next.Status = StatusLive
	}

	return next, !sameState(m, next)
}

func sameState(a, b Match) bool {
	return a.Status == b.Status &&
		a.ScheduledAt.Equal(b.ScheduledAt) &&
		a.Venue == b.Venue &&
		a.LeagueName == b.LeagueName &&
		a.LeagueExternalID == b.LeagueExternalID &&
		equalScore(a.HomeScore, b.HomeScore) &&
		equalScore(a.AwayScore, b.AwayScore)
}

func equalScore(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
