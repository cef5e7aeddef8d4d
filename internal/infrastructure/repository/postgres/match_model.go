package postgres

import (
	"database/sql"
	"time"
)

type matchTableModel struct {
	ID               string        `db:"id"`
	ExternalID       int64         `db:"external_id"`
	HomeTeamID       string        `db:"home_team_id"`
	AwayTeamID       string        `db:"away_team_id"`
	ScheduledAt      time.Time     `db:"scheduled_at"`
	Venue            string        `db:"venue"`
	LeagueName       string        `db:"league_name"`
	LeagueExternalID sql.NullInt64 `db:"league_external_id"`
	Status           string        `db:"status"`
	HomeScore        sql.NullInt32 `db:"home_score"`
	AwayScore        sql.NullInt32 `db:"away_score"`
	CreatedAt        time.Time     `db:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at"`
}

type matchInsertModel struct {
	ID               string    `db:"id"`
	ExternalID       int64     `db:"external_id"`
	HomeTeamID       string    `db:"home_team_id"`
	AwayTeamID       string    `db:"away_team_id"`
	ScheduledAt      time.Time `db:"scheduled_at"`
	Venue            string    `db:"venue"`
	LeagueName       string    `db:"league_name"`
	LeagueExternalID *int64    `db:"league_external_id"`
	Status           string    `db:"status"`
	HomeScore        *int      `db:"home_score"`
	AwayScore        *int      `db:"away_score"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}
