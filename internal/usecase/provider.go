package usecase

import (
	"context"
	"time"
)

// ExternalTeam is a club as reported by the fixture provider.
type ExternalTeam struct {
	ExternalID int64
	Name       string
	ShortCode  string
	LogoURL    string
	CountryID  int64
}

// ExternalFixture is one provider fixture. Home or Away is nil when the
// provider did not return that participant.
type ExternalFixture struct {
	ExternalID       int64
	Home             *ExternalTeam
	Away             *ExternalTeam
	StartingAt       time.Time
	Status           string
	HomeScore        *int
	AwayScore        *int
	Venue            string
	LeagueName       string
	LeagueExternalID int64
}

type ExternalTeamPage struct {
	Teams   []ExternalTeam
	Page    int
	HasMore bool
}

// FixtureProvider is the upstream sports data source.
type FixtureProvider interface {
	FetchFixturesBetween(ctx context.Context, start, end time.Time) ([]ExternalFixture, error)
	FetchTeamsPage(ctx context.Context, page, perPage int) (ExternalTeamPage, error)
}
