package user

import "time"

// User is the read model of an account as far as predictions care.
// TotalPoints is written only through the points ledger.
type User struct {
	ID              string
	Username        string
	DisplayName     string
	AvatarURL       string
	IsVerified      bool
	TotalPoints     int
	PredictionCount int
	CreatedAt       time.Time
}

// Principal is the authenticated caller resolved from a bearer token.
type Principal struct {
	UserID string
	Email  string
}
