// Package scoring grades a predicted scoreline against the final result.
package scoring

import "github.com/riskibarqy/fannax/internal/domain/prediction"

const (
	PointsExactMatch    = 3
	PointsCorrectWinner = 2
	PointsIncorrect     = -1
)

type Outcome string

const (
	OutcomeHome Outcome = "home"
	OutcomeAway Outcome = "away"
	OutcomeDraw Outcome = "draw"
)

func OutcomeOf(home, away int) Outcome {
	switch {
	case home > away:
		return OutcomeHome
	case home < away:
		return OutcomeAway
	default:
		return OutcomeDraw
	}
}

type Result struct {
	Status prediction.ResultStatus
	Points int
}

// Score is pure and total over integer inputs.
func Score(predictedHome, predictedAway, actualHome, actualAway int) Result {
	if predictedHome == actualHome && predictedAway == actualAway {
		return Result{Status: prediction.ResultExactMatch, Points: PointsExactMatch}
	}
	if OutcomeOf(predictedHome, predictedAway) == OutcomeOf(actualHome, actualAway) {
		return Result{Status: prediction.ResultCorrectWinner, Points: PointsCorrectWinner}
	}
	return Result{Status: prediction.ResultIncorrect, Points: PointsIncorrect}
}
