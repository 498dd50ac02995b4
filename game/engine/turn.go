package engine

// TurnState holds the counters the turn sequencer advances.
type TurnState struct {
	CurrentPlayer int `json:"current_player"`
	Round         int `json:"round"`
	MovesInRound  int `json:"moves_in_round"`
}

// NextTurnResult is the outcome of advancing the turn counters.
type NextTurnResult struct {
	NewState       TurnState `json:"new_state"`
	ShouldEndGame  bool      `json:"should_end_game"`
	RoundCompleted bool      `json:"round_completed"`
}

// AdvanceTurn advances the player/round counters and detects game end.
// It must run exactly once per completed turn: skipping it breaks round
// accounting and double-invoking it skips a player. When the incremented
// round exceeds maxRounds the current player is frozen and ShouldEndGame is
// set; the caller transitions to game over without further mutation.
func AdvanceTurn(currentPlayer, round, movesInRound, totalPlayers, maxRounds int) NextTurnResult {
	moves := movesInRound + 1
	newRound := round
	roundCompleted := false

	if moves >= totalPlayers {
		newRound = round + 1
		moves = 0
		roundCompleted = true

		if newRound > maxRounds {
			return NextTurnResult{
				NewState: TurnState{
					CurrentPlayer: currentPlayer,
					Round:         newRound,
					MovesInRound:  moves,
				},
				ShouldEndGame:  true,
				RoundCompleted: true,
			}
		}
	}

	return NextTurnResult{
		NewState: TurnState{
			CurrentPlayer: (currentPlayer + 1) % totalPlayers,
			Round:         newRound,
			MovesInRound:  moves,
		},
		RoundCompleted: roundCompleted,
	}
}

// IsFirstTurn reports whether no turn has completed yet.
func IsFirstTurn(round, movesInRound int) bool {
	return round == 1 && movesInRound == 0
}
