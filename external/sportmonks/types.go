package sportmonks

import (
	"bytes"

	sonic "github.com/bytedance/sonic"
)

type pagination struct {
	Count       int     `json:"count"`
	PerPage     int     `json:"per_page"`
	CurrentPage int     `json:"current_page"`
	NextPage    *string `json:"next_page"`
	HasMore     bool    `json:"has_more"`
}

type fixturesEnvelope struct {
	Data       []fixtureItem `json:"data"`
	Pagination pagination    `json:"pagination"`
}

type teamsEnvelope struct {
	Data       []teamItem `json:"data"`
	Pagination pagination `json:"pagination"`
}

type teamItem struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	ShortCode *string `json:"short_code"`
	ImagePath *string `json:"image_path"`
	CountryID *int64  `json:"country_id"`
}

type fixtureItem struct {
	ID           int64                `json:"id"`
	Name         string               `json:"name"`
	StartingAt   string               `json:"starting_at"`
	StartingAtTS int64                `json:"starting_at_timestamp"`
	StateID      int64                `json:"state_id"`
	ResultInfo   *string              `json:"result_info"`
	LeagueID     int64                `json:"league_id"`
	Participants []fixtureParticipant `json:"participants"`
	Scores       []fixtureScoreItem   `json:"scores"`
	Venue        relation[venueRef]   `json:"venue"`
	League       relation[leagueRef]  `json:"league"`
}

type fixtureParticipant struct {
	ID        int64                  `json:"id"`
	Name      string                 `json:"name"`
	ShortCode *string                `json:"short_code"`
	ImagePath *string                `json:"image_path"`
	CountryID *int64                 `json:"country_id"`
	Meta      fixtureParticipantMeta `json:"meta"`
}

type fixtureParticipantMeta struct {
	Location string `json:"location"`
}

type fixtureScoreItem struct {
	ParticipantID int64      `json:"participant_id"`
	Description   string     `json:"description"`
	Score         scoreValue `json:"score"`
}

type scoreValue struct {
	Goals       *int   `json:"goals"`
	Participant string `json:"participant"`
}

type venueRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type leagueRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// relation decodes an include that may arrive bare, wrapped in {"data": ...},
// or as null.
type relation[T any] struct {
	Data T
	Set  bool
}

func (r *relation[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		r.Set = false
		return nil
	}

	var wrapped struct {
		Data *T `json:"data"`
	}
	if err := sonic.Unmarshal(trimmed, &wrapped); err == nil && wrapped.Data != nil {
		r.Data = *wrapped.Data
		r.Set = true
		return nil
	}

	var direct T
	if err := sonic.Unmarshal(trimmed, &direct); err != nil {
		return err
	}
	r.Data = direct
	r.Set = true
	return nil
}
