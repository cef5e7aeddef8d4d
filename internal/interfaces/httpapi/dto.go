package httpapi

import (
	"time"

	"github.com/riskibarqy/fannax/internal/domain/match"
	"github.com/riskibarqy/fannax/internal/domain/notification"
	"github.com/riskibarqy/fannax/internal/domain/prediction"
	"github.com/riskibarqy/fannax/internal/domain/team"
	"github.com/riskibarqy/fannax/internal/domain/user"
	"github.com/riskibarqy/fannax/internal/usecase"
)

type submitPredictionRequest struct {
	MatchID   string `json:"match_id" validate:"required"`
	HomeScore *int   `json:"predicted_home_score" validate:"required,min=0,max=20"`
	AwayScore *int   `json:"predicted_away_score" validate:"required,min=0,max=20"`
	Caption   string `json:"caption" validate:"max=280"`
}

type syncMatchesRequest struct {
	Days       int    `json:"days" validate:"omitempty,min=1,max=30"`
	DispatchID string `json:"dispatch_id" validate:"omitempty,max=200"`
}

type jobRequest struct {
	DispatchID string `json:"dispatch_id" validate:"omitempty,max=200"`
}

type pageDTO[T any] struct {
	Items      []T     `json:"items"`
	NextCursor *string `json:"next_cursor"`
}

func newPage[T any](items []T, next string) pageDTO[T] {
	page := pageDTO[T]{Items: items}
	if next != "" {
		page.NextCursor = &next
	}
	return page
}

type teamDTO struct {
	ID             string `json:"id"`
	ExternalID     int64  `json:"external_id"`
	Name           string `json:"name"`
	ShortCode      string `json:"short_code,omitempty"`
	LogoURL        string `json:"logo_url,omitempty"`
	ReservedHandle string `json:"reserved_handle"`
}

type matchDTO struct {
	ID          string   `json:"id"`
	ExternalID  int64    `json:"external_id"`
	HomeTeamID  string   `json:"home_team_id"`
	AwayTeamID  string   `json:"away_team_id"`
	HomeTeam    *teamDTO `json:"home_team,omitempty"`
	AwayTeam    *teamDTO `json:"away_team,omitempty"`
	ScheduledAt string   `json:"scheduled_at"`
	Venue       string   `json:"venue,omitempty"`
	LeagueName  string   `json:"league_name,omitempty"`
	Status      string   `json:"status"`
	HomeScore   *int     `json:"home_score"`
	AwayScore   *int     `json:"away_score"`
}

type predictionDTO struct {
	ID                 string  `json:"id"`
	UserID             string  `json:"user_id"`
	MatchID            string  `json:"match_id"`
	PredictedHomeScore int     `json:"predicted_home_score"`
	PredictedAwayScore int     `json:"predicted_away_score"`
	Caption            string  `json:"caption,omitempty"`
	ResultStatus       string  `json:"result_status"`
	PointsAwarded      *int    `json:"points_awarded"`
	SettledAt          *string `json:"settled_at"`
	CreatedAt          string  `json:"created_at"`
}

type leaderboardEntryDTO struct {
	Rank            int    `json:"rank"`
	UserID          string `json:"user_id"`
	Username        string `json:"username"`
	DisplayName     string `json:"display_name,omitempty"`
	AvatarURL       string `json:"avatar_url,omitempty"`
	IsVerified      bool   `json:"is_verified"`
	TotalPoints     int    `json:"total_points"`
	PredictionCount int    `json:"prediction_count"`
}

type notificationDTO struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	Link      string `json:"link,omitempty"`
	IsRead    bool   `json:"is_read"`
	CreatedAt string `json:"created_at"`
}

type notificationPageDTO struct {
	pageDTO[notificationDTO]
	UnreadCount int `json:"unread_count"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatOptionalTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	out := formatTime(*t)
	return &out
}

func teamToDTO(v team.Team) teamDTO {
	return teamDTO{
		ID:             v.ID,
		ExternalID:     v.ExternalID,
		Name:           v.Name,
		ShortCode:      v.ShortCode,
		LogoURL:        v.LogoURL,
		ReservedHandle: v.ReservedHandle,
	}
}

func optionalTeamDTO(v *team.Team) *teamDTO {
	if v == nil {
		return nil
	}
	out := teamToDTO(*v)
	return &out
}

func matchToDTO(v usecase.MatchView) matchDTO {
	m := v.Match
	return matchDTO{
		ID:          m.ID,
		ExternalID:  m.ExternalID,
		HomeTeamID:  m.HomeTeamID,
		AwayTeamID:  m.AwayTeamID,
		HomeTeam:    optionalTeamDTO(v.HomeTeam),
		AwayTeam:    optionalTeamDTO(v.AwayTeam),
		ScheduledAt: formatTime(m.ScheduledAt),
		Venue:       m.Venue,
		LeagueName:  m.LeagueName,
		Status:      string(m.Status),
		HomeScore:   scoreIfFinished(m, m.HomeScore),
		AwayScore:   scoreIfFinished(m, m.AwayScore),
	}
}

func scoreIfFinished(m match.Match, score *int) *int {
	if m.Status != match.StatusFinished {
		return nil
	}
	return score
}

func predictionToDTO(v prediction.Prediction) predictionDTO {
	return predictionDTO{
		ID:                 v.ID,
		UserID:             v.UserID,
		MatchID:            v.MatchID,
		PredictedHomeScore: v.PredictedHomeScore,
		PredictedAwayScore: v.PredictedAwayScore,
		Caption:            v.Caption,
		ResultStatus:       string(v.ResultStatus),
		PointsAwarded:      v.PointsAwarded,
		SettledAt:          formatOptionalTime(v.SettledAt),
		CreatedAt:          formatTime(v.CreatedAt),
	}
}

func leaderboardToDTO(items []user.User) []leaderboardEntryDTO {
	out := make([]leaderboardEntryDTO, 0, len(items))
	for i, item := range items {
		out = append(out, leaderboardEntryDTO{
			Rank:            i + 1,
			UserID:          item.ID,
			Username:        item.Username,
			DisplayName:     item.DisplayName,
			AvatarURL:       item.AvatarURL,
			IsVerified:      item.IsVerified,
			TotalPoints:     item.TotalPoints,
			PredictionCount: item.PredictionCount,
		})
	}
	return out
}

func notificationToDTO(v notification.Notification) notificationDTO {
	return notificationDTO{
		ID:        v.ID,
		Kind:      string(v.Kind),
		Message:   v.Message,
		Link:      v.PredictionID,
		IsRead:    v.IsRead,
		CreatedAt: formatTime(v.CreatedAt),
	}
}
