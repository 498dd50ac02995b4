package engine

import "fmt"

// ObstacleResult is the computed effect of one hazard tile.
type ObstacleResult struct {
	ScoreChange    int    `json:"score_change"`
	PositionChange int    `json:"position_change"`
	Message        string `json:"message"`
}

// HandleSlip moves the player back three tiles, clamped at the Start tile.
// Slipping never wraps backward past zero.
func HandleSlip(currentPosition int) ObstacleResult {
	newPosition := currentPosition - SlipDistance
	if newPosition < 0 {
		newPosition = 0
	}
	return ObstacleResult{
		PositionChange: newPosition - currentPosition,
		Message:        fmt.Sprintf("You hit an ice tile! Slipped back %d spaces!", SlipDistance),
	}
}

// HandleTrap deducts a fixed percentage of the player's current score,
// rounded down.
func HandleTrap(currentScore int) ObstacleResult {
	penalty := int(float64(currentScore) * TrapPenaltyRate)
	return ObstacleResult{
		ScoreChange: -penalty,
		Message:     fmt.Sprintf("You hit a trap! Lost 15%% of your points (-%d points)!", penalty),
	}
}

// ApplyObstacleEffect computes the outcome of landing on a hazard tile. A
// held Shield negates the obstacle entirely at the cost of one use;
// otherwise slip moves the player back and trap deducts score, and either
// way the streak resets.
func ApplyObstacleEffect(player Player, obstacleType ObstacleType) (Player, string) {
	if HasItem(player, ItemShield) {
		player = UseItem(player, ItemShield)
		return player, "Your Shield absorbed the hit! No penalty."
	}

	switch obstacleType {
	case ObstacleSlip:
		result := HandleSlip(player.Position)
		player.Position += result.PositionChange
		if player.Position < 0 {
			player.Position = 0
		}
		player.Streak = 0
		return player, result.Message

	case ObstacleTrap:
		result := HandleTrap(player.Score)
		player = ApplyScoreChange(player, result.ScoreChange)
		player.Streak = 0
		return player, result.Message
	}

	return player, ""
}
