package prediction

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"
)

// ErrDuplicate is returned when (user, match) already has a prediction.
var ErrDuplicate = errors.New("prediction already exists for user and match")

type ResultStatus string

const (
	ResultPending       ResultStatus = "PENDING"
	ResultExactMatch    ResultStatus = "EXACT_MATCH"
	ResultCorrectWinner ResultStatus = "CORRECT_WINNER"
	ResultIncorrect     ResultStatus = "INCORRECT"
)

func (s ResultStatus) Terminal() bool {
	switch s {
	case ResultExactMatch, ResultCorrectWinner, ResultIncorrect:
		return true
	default:
		return false
	}
}

const (
	MinScore         = 0
	MaxScore         = 20
	MaxCaptionLength = 280
)

// Prediction is one user's scoreline guess for one match.
type Prediction struct {
	ID                 string
	UserID             string
	MatchID            string
	PredictedHomeScore int
	PredictedAwayScore int
	Caption            string
	ResultStatus       ResultStatus
	PointsAwarded      *int
	SettledAt          *time.Time
	CreatedAt          time.Time
}

func ValidateScores(home, away int) error {
	if home < MinScore || home > MaxScore {
		return fmt.Errorf("home score must be between %d and %d", MinScore, MaxScore)
	}
	if away < MinScore || away > MaxScore {
		return fmt.Errorf("away score must be between %d and %d", MinScore, MaxScore)
	}
	return nil
}

func ValidateCaption(caption string) error {
	if utf8.RuneCountInString(caption) > MaxCaptionLength {
		return fmt.Errorf("caption must be at most %d characters", MaxCaptionLength)
	}
	return nil
}

func (p Prediction) Validate() error {
	if p.ID == "" || p.UserID == "" || p.MatchID == "" {
		return fmt.Errorf("prediction id, user id and match id are required")
	}
	if err := ValidateScores(p.PredictedHomeScore, p.PredictedAwayScore); err != nil {
		return err
	}
	if err := ValidateCaption(p.Caption); err != nil {
		return err
	}
	if (p.ResultStatus == ResultPending) != (p.PointsAwarded == nil) {
		return fmt.Errorf("points must be set exactly when settled")
	}
	return nil
}

// Settlement is the terminal state written by one settlement unit.
type Settlement struct {
	PredictionID string
	UserID       string
	Result       ResultStatus
	Points       int
	SettledAt    time.Time
}
