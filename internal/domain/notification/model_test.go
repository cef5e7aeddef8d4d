package notification

import (
	"testing"

	"github.com/riskibarqy/fannax/internal/domain/prediction"
)

func TestPredictionResultMessage(t *testing.T) {
	t.Parallel()

	cases := []struct {
		status prediction.ResultStatus
		points int
		want   string
	}{
		{prediction.ResultExactMatch, 3, "Your prediction was a perfect match! (+3 points)"},
		{prediction.ResultCorrectWinner, 2, "Your prediction was correct! (+2 points)"},
		{prediction.ResultIncorrect, -1, "Your prediction was incorrect. (-1 points)"},
		{prediction.ResultIncorrect, 0, "Your prediction was incorrect. (0 points)"},
	}
	for _, tc := range cases {
		if got := PredictionResultMessage(tc.status, tc.points); got != tc.want {
			t.Fatalf("want %q got %q", tc.want, got)
		}
	}
}
