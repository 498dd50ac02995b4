package engine

import "testing"

func TestAdvanceTurn_CyclesPlayers(t *testing.T) {
	result := AdvanceTurn(0, 1, 0, 3, 10)

	if result.ShouldEndGame {
		t.Error("Game must not end mid-round")
	}
	if result.NewState.CurrentPlayer != 1 {
		t.Errorf("Expected player 1, got %d", result.NewState.CurrentPlayer)
	}
	if result.NewState.Round != 1 {
		t.Errorf("Expected round 1, got %d", result.NewState.Round)
	}
	if result.NewState.MovesInRound != 1 {
		t.Errorf("Expected 1 move in round, got %d", result.NewState.MovesInRound)
	}
}

func TestAdvanceTurn_FullRoundIncrementsRound(t *testing.T) {
	// Exactly totalPlayers invocations advance the round by one and return
	// movesInRound to zero.
	state := TurnState{CurrentPlayer: 0, Round: 1, MovesInRound: 0}
	totalPlayers := 4

	for i := 0; i < totalPlayers; i++ {
		result := AdvanceTurn(state.CurrentPlayer, state.Round, state.MovesInRound, totalPlayers, 10)
		if result.ShouldEndGame {
			t.Fatalf("Unexpected game end on move %d", i)
		}
		state = result.NewState
	}

	if state.Round != 2 {
		t.Errorf("Expected round 2 after a full cycle, got %d", state.Round)
	}
	if state.MovesInRound != 0 {
		t.Errorf("Expected movesInRound 0 after a full cycle, got %d", state.MovesInRound)
	}
	if state.CurrentPlayer != 0 {
		t.Errorf("Expected turn back at player 0, got %d", state.CurrentPlayer)
	}
}

func TestAdvanceTurn_WrapsToFirstPlayer(t *testing.T) {
	result := AdvanceTurn(2, 1, 2, 3, 10)
	if result.NewState.CurrentPlayer != 0 {
		t.Errorf("Expected wrap to player 0, got %d", result.NewState.CurrentPlayer)
	}
	if !result.RoundCompleted {
		t.Error("Expected round completion")
	}
}

func TestAdvanceTurn_EndGame(t *testing.T) {
	// Last move of the last round: round would exceed maxRounds.
	result := AdvanceTurn(1, 10, 1, 2, 10)

	if !result.ShouldEndGame {
		t.Fatal("Expected game end signal")
	}
	if !result.RoundCompleted {
		t.Error("Expected round completion on game end")
	}
	// The current player freezes; the caller transitions to game over.
	if result.NewState.CurrentPlayer != 1 {
		t.Errorf("Expected frozen current player 1, got %d", result.NewState.CurrentPlayer)
	}
	if result.NewState.Round != 11 {
		t.Errorf("Expected round 11, got %d", result.NewState.Round)
	}
}

func TestAdvanceTurn_SinglePlayer(t *testing.T) {
	result := AdvanceTurn(0, 1, 0, 1, 10)
	if result.NewState.CurrentPlayer != 0 {
		t.Errorf("Expected single player to keep the turn, got %d", result.NewState.CurrentPlayer)
	}
	if result.NewState.Round != 2 {
		t.Errorf("Expected round 2, got %d", result.NewState.Round)
	}
}

func TestIsFirstTurn(t *testing.T) {
	if !IsFirstTurn(1, 0) {
		t.Error("Round 1, no moves should be the first turn")
	}
	if IsFirstTurn(1, 1) {
		t.Error("Round 1 with a move is not the first turn")
	}
	if IsFirstTurn(2, 0) {
		t.Error("Round 2 is not the first turn")
	}
}
