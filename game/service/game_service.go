package service

import (
	"context"
	"time"

	"github.com/mathquest/mathquest/game/engine"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, presetName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Setup
	StartGame(ctx context.Context, sessionID string, req StartGameRequest) (*engine.GameState, error)
	StartAvatarSelection(ctx context.Context, sessionID string, req StartGameRequest) (*engine.GameState, error)
	SelectAvatar(ctx context.Context, sessionID string, avatarIndex int, color string) (*engine.GameState, error)
	ResetGame(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Turn Flow
	Roll(ctx context.Context, sessionID string) (*RollResult, error)
	ChooseDiceValue(ctx context.Context, sessionID string, value int) (*RollResult, error)
	Move(ctx context.Context, sessionID string) (*MoveResult, error)
	Answer(ctx context.Context, sessionID string, answer float64) (*AnswerResult, error)
	AnswerTimeout(ctx context.Context, sessionID string) (*AnswerResult, error)
	EndTurn(ctx context.Context, sessionID string) (*engine.GameState, error)
	TogglePause(ctx context.Context, sessionID string) (*engine.GameState, error)
	SetTimeLeft(ctx context.Context, sessionID string, seconds int) error

	// Shop & Items
	BuyItem(ctx context.Context, sessionID string, playerID int, itemType string) (*PurchaseResult, error)
	CloseShop(ctx context.Context, sessionID string) (*engine.GameState, error)
	UseItem(ctx context.Context, sessionID string, playerID int, itemType string) (*ItemUseResult, error)

	// Teleporter
	ActivateTeleporter(ctx context.Context, sessionID string, playerID int) (*TeleportResult, error)
	SelectTeleportTile(ctx context.Context, sessionID string, tileIndex int) (*TeleportResult, error)
	ConfirmTeleport(ctx context.Context, sessionID string) (*TeleportResult, error)
	CancelTeleport(ctx context.Context, sessionID string) (*TeleportResult, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Problem Sets
	ValidateProblems(ctx context.Context, problems *engine.ImportedProblems) error

	// Presets
	ListPresets(ctx context.Context) ([]*PresetInfo, error)
	LoadPreset(ctx context.Context, presetName string) (*engine.Options, error)
	SavePreset(ctx context.Context, presetName string, preset *engine.Options) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, options *engine.Options) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, options *engine.Options) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// PresetManager handles rule preset loading
type PresetManager interface {
	LoadPreset(name string) (*engine.Options, error)
	ListPresets() ([]*PresetInfo, error)
	GetDefault() *engine.Options
	SavePreset(name string, preset *engine.Options) error
}

// Session represents an active game session
type Session struct {
	ID             string
	Engine         *engine.Engine
	Options        *engine.Options
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
