package notification

import (
	"fmt"
	"time"

	"github.com/riskibarqy/fannax/internal/domain/prediction"
)

type Kind string

const KindPredictionResult Kind = "PREDICTION_RESULT"

type Notification struct {
	ID           string
	RecipientID  string
	Kind         Kind
	Message      string
	PredictionID string
	IsRead       bool
	CreatedAt    time.Time
}

// PredictionResultMessage renders the user-facing settlement message. Only
// positive points carry an explicit sign.
func PredictionResultMessage(status prediction.ResultStatus, points int) string {
	var verdict string
	switch status {
	case prediction.ResultExactMatch:
		verdict = "was a perfect match!"
	case prediction.ResultCorrectWinner:
		verdict = "was correct!"
	default:
		verdict = "was incorrect."
	}
	return fmt.Sprintf("Your prediction %s (%s points)", verdict, signedPoints(points))
}

func signedPoints(points int) string {
	if points > 0 {
		return fmt.Sprintf("+%d", points)
	}
	return fmt.Sprintf("%d", points)
}
