package team

import (
	"errors"
	"fmt"
	"time"
)

// ErrHandleTaken is returned by storage when a reserved handle collides.
var ErrHandleTaken = errors.New("team handle already taken")

// Team is a football club known to the provider. Its ReservedHandle is a
// username nobody else may register.
type Team struct {
	ID             string
	ExternalID     int64
	Name           string
	ShortCode      string
	LogoURL        string
	CountryID      int64
	ReservedHandle string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (t Team) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("team id is required")
	}
	if t.ExternalID <= 0 {
		return fmt.Errorf("team external id must be positive")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}
	if t.ReservedHandle == "" {
		return fmt.Errorf("team reserved handle is required")
	}
	return nil
}

// Profile is the provider-side view used by upserts.
type Profile struct {
	ExternalID int64
	Name       string
	ShortCode  string
	LogoURL    string
	CountryID  int64
}

// Apply refreshes mutable fields from the provider. The handle is never touched.
func (t Team) Apply(p Profile) (Team, bool) {
	next := t
	if p.Name != "" {
		next.Name = p.Name
	}
	if p.ShortCode != "" {
		next.ShortCode = p.ShortCode
	}
	if p.LogoURL != "" {
		next.LogoURL = p.LogoURL
	}
	if p.CountryID > 0 {
		next.CountryID = p.CountryID
	}
	changed := next.Name != t.Name || next.ShortCode != t.ShortCode || next.LogoURL != t.LogoURL || next.CountryID != t.CountryID
	return next, changed
}
