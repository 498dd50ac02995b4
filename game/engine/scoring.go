package engine

import "fmt"

// AnswerResult is the outcome of resolving a submitted answer or a timeout.
type AnswerResult struct {
	Correct     bool   `json:"correct"`
	ScoreChange int    `json:"score_change"`
	CoinReward  int    `json:"coin_reward"`
	NewStreak   int    `json:"new_streak"`
	Message     string `json:"message"`
}

// SpecialTileResult is the fixed effect of landing on the Start or Penalty
// corner.
type SpecialTileResult struct {
	ScoreChange int    `json:"score_change"`
	Message     string `json:"message"`
}

// PassStartResult is the fixed bonus for wrapping past the Start tile.
type PassStartResult struct {
	ScoreChange int    `json:"score_change"`
	CoinReward  int    `json:"coin_reward"`
	Message     string `json:"message"`
}

// CalculateAnswerResult scores a submitted answer. A correct answer earns
// the tile's points, a fixed coin reward, and extends the streak; a wrong
// answer deducts the points only when negative points are enabled and
// always resets the streak.
func CalculateAnswerResult(userAnswer, correctAnswer float64, points, currentStreak int, negativePointsEnabled bool) AnswerResult {
	if userAnswer == correctAnswer {
		return AnswerResult{
			Correct:     true,
			ScoreChange: points,
			CoinReward:  CorrectAnswerCoins,
			NewStreak:   currentStreak + 1,
			Message:     fmt.Sprintf("+%d points!", points),
		}
	}

	if negativePointsEnabled {
		return AnswerResult{
			ScoreChange: -points,
			NewStreak:   0,
			Message:     fmt.Sprintf("The answer was %s. -%d points!", formatAnswer(correctAnswer), points),
		}
	}
	return AnswerResult{
		NewStreak: 0,
		Message:   fmt.Sprintf("The answer was %s.", formatAnswer(correctAnswer)),
	}
}

// CalculateTimeoutResult applies the wrong-answer deduction policy with
// timeout framing. No coin reward, streak resets.
func CalculateTimeoutResult(correctAnswer float64, points int, negativePointsEnabled bool) AnswerResult {
	if negativePointsEnabled {
		return AnswerResult{
			ScoreChange: -points,
			NewStreak:   0,
			Message:     fmt.Sprintf("You ran out of time! The correct answer was %s. -%d points!", formatAnswer(correctAnswer), points),
		}
	}
	return AnswerResult{
		NewStreak: 0,
		Message:   fmt.Sprintf("You ran out of time! The correct answer was %s.", formatAnswer(correctAnswer)),
	}
}

// CalculateSpecialTileScore returns the fixed score effect for the Start and
// Penalty corners. Bonus and Challenge corners route to a math problem
// instead and return nil here.
func CalculateSpecialTileScore(position int) *SpecialTileResult {
	switch position {
	case PositionStart:
		return &SpecialTileResult{
			ScoreChange: StartTileScore,
			Message:     fmt.Sprintf("Landed on START! +%d points!", StartTileScore),
		}
	case PositionPenalty:
		return &SpecialTileResult{
			ScoreChange: PenaltyTileScore,
			Message:     fmt.Sprintf("PENALTY! %d points!", PenaltyTileScore),
		}
	}
	return nil
}

// PenaltyNoDeductMessage is shown for the Penalty corner when negative
// points are disabled.
const PenaltyNoDeductMessage = "PENALTY! (No points deducted)"

// CalculatePassStartBonus returns the fixed bonus for passing Start.
func CalculatePassStartBonus() PassStartResult {
	return PassStartResult{
		ScoreChange: PassStartScore,
		CoinReward:  PassStartCoins,
		Message:     fmt.Sprintf("Passed START! +%d points!", PassStartScore),
	}
}

// ApplyScoreChange applies a delta to a player's score, clamped at zero.
// Scores never go negative regardless of deduction size.
func ApplyScoreChange(player Player, scoreChange int) Player {
	player.Score += scoreChange
	if player.Score < 0 {
		player.Score = 0
	}
	return player
}

// ShouldCelebrate reports whether the streak warrants a celebration.
func ShouldCelebrate(streak int) bool {
	return streak >= 3
}

// formatAnswer renders an answer without a trailing ".0" for whole numbers.
func formatAnswer(answer float64) string {
	if answer == float64(int64(answer)) {
		return fmt.Sprintf("%d", int64(answer))
	}
	return fmt.Sprintf("%g", answer)
}
