package service

import (
	"time"

	"github.com/mathquest/mathquest/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string            `json:"id"`
	PresetName     string            `json:"preset_name"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	GameState      *engine.GameState `json:"game_state"`
	Options        *engine.Options   `json:"options"`
}

// StartGameRequest carries everything needed to begin a game
type StartGameRequest struct {
	PlayerCount int                      `json:"player_count"`
	Problems    *engine.ImportedProblems `json:"problems,omitempty"`
	Options     *engine.OptionOverrides  `json:"options,omitempty"`
}

// RollResult contains the outcome of a dice roll or a Lucky Dice choice
type RollResult struct {
	GameState *engine.GameState `json:"game_state"`
	DiceValue int               `json:"dice_value"`
}

// MoveResult contains the result of resolving a player's movement
type MoveResult struct {
	GameState   *engine.GameState    `json:"game_state"`
	PlayerID    int                  `json:"player_id"`
	From        int                  `json:"from"`
	To          int                  `json:"to"`
	Steps       int                  `json:"steps"`
	PassedStart bool                 `json:"passed_start"`
	Landing     engine.LandingResult `json:"landing"`
	TurnEnded   bool                 `json:"turn_ended"`
	Events      []GameEvent          `json:"events,omitempty"`
}

// AnswerResult contains the result of resolving a math problem
type AnswerResult struct {
	GameState  *engine.GameState `json:"game_state"`
	PlayerID   int               `json:"player_id"`
	Correct    bool              `json:"correct"`
	ScoreDelta int               `json:"score_delta"`
	CoinDelta  int               `json:"coin_delta"`
	Streak     int               `json:"streak"`
	Message    string            `json:"message,omitempty"`
	TurnEnded  bool              `json:"turn_ended"`
	GameOver   bool              `json:"game_over"`
}

// PurchaseResult contains the outcome of a shop purchase
type PurchaseResult struct {
	GameState      *engine.GameState `json:"game_state"`
	Success        bool              `json:"success"`
	PlayerID       int               `json:"player_id"`
	ItemType       string            `json:"item_type"`
	CoinsRemaining int               `json:"coins_remaining"`
}

// ItemUseResult contains the outcome of using an item
type ItemUseResult struct {
	GameState       *engine.GameState `json:"game_state"`
	Used            bool              `json:"used"`
	ItemType        string            `json:"item_type"`
	LuckyDiceValues []int             `json:"lucky_dice_values,omitempty"`
}

// TeleportResult contains the outcome of a teleporter operation
type TeleportResult struct {
	GameState *engine.GameState `json:"game_state"`
	Success   bool              `json:"success"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string    `json:"type"` // "move", "pass_start", "obstacle", "shop", "problem", "game_over"
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Position  int       `json:"position,omitempty"`
}

// PresetInfo provides information about a rule preset
type PresetInfo struct {
	Filename    string `json:"filename"`
	PresetID    string `json:"preset_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	BoardSize   int    `json:"board_size"`
	MaxRounds   int    `json:"max_rounds"`
}
