package sportmonks

import (
	"strings"
	"time"

	"github.com/riskibarqy/fannax/internal/usecase"
)

func mapTeam(item teamItem) usecase.ExternalTeam {
	return usecase.ExternalTeam{
		ExternalID: item.ID,
		Name:       strings.TrimSpace(item.Name),
		ShortCode:  strings.TrimSpace(deref(item.ShortCode)),
		LogoURL:    strings.TrimSpace(deref(item.ImagePath)),
		CountryID:  derefInt64(item.CountryID),
	}
}

func mapFixture(item fixtureItem) usecase.ExternalFixture {
	out := usecase.ExternalFixture{
		ExternalID:       item.ID,
		Status:           mapFixtureStatus(item.StateID, deref(item.ResultInfo)),
		LeagueExternalID: item.LeagueID,
	}

	if parsed, ok := parseProviderDateTime(item.StartingAt); ok {
		out.StartingAt = parsed
	} else if item.StartingAtTS > 0 {
		out.StartingAt = time.Unix(item.StartingAtTS, 0).UTC()
	}
	if item.Venue.Set {
		out.Venue = strings.TrimSpace(item.Venue.Data.Name)
	}
	if item.League.Set {
		out.LeagueName = strings.TrimSpace(item.League.Data.Name)
		if out.LeagueExternalID == 0 {
			out.LeagueExternalID = item.League.Data.ID
		}
	}

	home, away := resolveFixtureParticipants(item.Participants)
	if home != nil {
		t := mapParticipant(*home)
		out.Home = &t
	}
	if away != nil {
		t := mapParticipant(*away)
		out.Away = &t
	}

	var homeID, awayID int64
	if home != nil {
		homeID = home.ID
	}
	if away != nil {
		awayID = away.ID
	}
	out.HomeScore, out.AwayScore = resolveFixtureScores(item.Scores, homeID, awayID)
	return out
}

func mapParticipant(p fixtureParticipant) usecase.ExternalTeam {
	return usecase.ExternalTeam{
		ExternalID: p.ID,
		Name:       strings.TrimSpace(p.Name),
		ShortCode:  strings.TrimSpace(deref(p.ShortCode)),
		LogoURL:    strings.TrimSpace(deref(p.ImagePath)),
		CountryID:  derefInt64(p.CountryID),
	}
}

// resolveFixtureParticipants picks sides by meta.location. A side is nil
// when the provider omitted it or sent an unusable row.
func resolveFixtureParticipants(participants []fixtureParticipant) (home, away *fixtureParticipant) {
	for i := range participants {
		item := &participants[i]
		if item.ID <= 0 || strings.TrimSpace(item.Name) == "" {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(item.Meta.Location)) {
		case "home":
			if home == nil {
				home = item
			}
		case "away":
			if away == nil {
				away = item
			}
		}
	}
	return home, away
}

// resolveFixtureScores reads goals per side from the highest-weighted score
// rows, CURRENT first. Rows are matched to a side by score.participant or,
// failing that, participant_id.
func resolveFixtureScores(scores []fixtureScoreItem, homeID, awayID int64) (*int, *int) {
	var home, away *int
	homeWeight, awayWeight := 0, 0
	for _, score := range scores {
		if score.Score.Goals == nil || *score.Score.Goals < 0 {
			continue
		}
		weight := scoreDescriptionWeight(score.Description)
		value := *score.Score.Goals

		side := strings.ToLower(strings.TrimSpace(score.Score.Participant))
		if side == "" {
			switch {
			case homeID > 0 && score.ParticipantID == homeID:
				side = "home"
			case awayID > 0 && score.ParticipantID == awayID:
				side = "away"
			}
		}

		switch side {
		case "home":
			if weight > homeWeight {
				home, homeWeight = ptrInt(value), weight
			}
		case "away":
			if weight > awayWeight {
				away, awayWeight = ptrInt(value), weight
			}
		}
	}
	return home, away
}

func scoreDescriptionWeight(raw string) int {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "CURRENT":
		return 5
	case "AFTER-PENALTIES", "PENALTIES":
		return 4
	case "AFTER-EXTRA-TIME", "EXTRA-TIME":
		return 3
	case "2ND_HALF":
		return 2
	default:
		return 1
	}
}

func mapFixtureStatus(stateID int64, resultInfo string) string {
	switch stateID {
	case 2, 3, 4, 6, 7, 8, 9, 22, 25:
		return "LIVE"
	case 5, 13, 14:
		return "FINISHED"
	case 10:
		return "POSTPONED"
	case 11, 12, 15, 16, 17:
		return "CANCELLED"
	case 1:
		return "SCHEDULED"
	}

	info := strings.ToLower(strings.TrimSpace(resultInfo))
	switch {
	case strings.Contains(info, "postpon"):
		return "POSTPONED"
	case strings.Contains(info, "cancel"), strings.Contains(info, "abandon"):
		return "CANCELLED"
	case strings.Contains(info, "won"), strings.Contains(info, "draw"), strings.Contains(info, "finish"),
		strings.Contains(info, "full time"), strings.Contains(info, "aet"), strings.Contains(info, "pen"):
		return "FINISHED"
	case strings.Contains(info, "live"), strings.Contains(info, "in play"), strings.Contains(info, "half"):
		return "LIVE"
	default:
		return "SCHEDULED"
	}
}

func parseProviderDateTime(raw string) (time.Time, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.DateTime, time.RFC3339} {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return parsed.UTC(), true
		}
	}
	return time.Time{}, false
}

func ptrInt(value int) *int {
	v := value
	return &v
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func derefInt64(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
