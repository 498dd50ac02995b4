package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mathquest/mathquest/game/engine"
)

var (
	ErrRollBlocked   = errors.New("dice roll is blocked")
	ErrNoDiceValue   = errors.New("no dice value to move with")
	ErrNoOpenProblem = errors.New("no math problem is open")
	ErrNotPlaying    = errors.New("game is not in the playing phase")
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	presets  PresetManager
	logger   *zap.Logger
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, presets PresetManager, logger *zap.Logger) GameService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &gameServiceImpl{
		sessions: sessions,
		presets:  presets,
		logger:   logger,
	}
}

// getPresetID returns the preset_id for a given preset display name, used for
// consistent API responses
func (s *gameServiceImpl) getPresetID(presetName string) string {
	available, err := s.presets.ListPresets()
	if err == nil {
		for _, p := range available {
			if p.Name == presetName {
				return p.PresetID
			}
		}
	}
	// Fallback: return as-is or "default"
	if presetName == "" {
		return "default"
	}
	return presetName
}

// persist saves a session after a mutation, logging instead of failing.
func (s *gameServiceImpl) persist(sessionID string) {
	if err := s.sessions.Save(sessionID); err != nil {
		s.logger.Warn("failed to persist session", zap.String("session_id", sessionID), zap.Error(err))
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, presetName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var preset *engine.Options
	var err error
	if presetName != "" {
		preset, err = s.presets.LoadPreset(presetName)
		if err != nil {
			// Provide helpful error message with available options
			if strings.Contains(err.Error(), "preset not found") {
				available, listErr := s.presets.ListPresets()
				if listErr == nil && len(available) > 0 {
					var presetIDs []string
					for _, p := range available {
						presetIDs = append(presetIDs, p.PresetID)
					}
					return nil, fmt.Errorf("preset '%s' not found. Available presets: %v", presetName, presetIDs)
				}
				return nil, fmt.Errorf("preset '%s' not found. Use /api/presets to list available presets", presetName)
			}
			return nil, fmt.Errorf("failed to load preset %s: %w", presetName, err)
		}
	} else {
		preset = s.presets.GetDefault()
	}

	// Let session manager generate a shareable ID
	session, err := s.sessions.Create("", preset)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	presetID := presetName
	if presetID == "" && preset != nil {
		presetID = s.getPresetID(preset.Name)
	}

	return s.sessionInfo(session, presetID), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	return s.sessionInfo(session, ""), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))

	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess, ""))
	}

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

func (s *gameServiceImpl) sessionInfo(sess *Session, presetID string) *SessionInfo {
	if presetID == "" && sess.Options != nil {
		presetID = s.getPresetID(sess.Options.Name)
	}
	return &SessionInfo{
		ID:             sess.ID,
		PresetName:     presetID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.State(),
		Options:        sess.Options,
	}
}

// StartGame begins a game directly with default avatars
func (s *gameServiceImpl) StartGame(ctx context.Context, sessionID string, req StartGameRequest) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	if err := validateStartRequest(req); err != nil {
		return nil, err
	}

	sess.Engine.StartGame(req.PlayerCount, req.Problems, req.Options)
	s.persist(sessionID)

	return sess.Engine.State(), nil
}

// StartAvatarSelection moves a session into the avatar-selection phase
func (s *gameServiceImpl) StartAvatarSelection(ctx context.Context, sessionID string, req StartGameRequest) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	if err := validateStartRequest(req); err != nil {
		return nil, err
	}

	sess.Engine.StartAvatarSelection(req.PlayerCount, req.Problems, req.Options)
	s.persist(sessionID)

	return sess.Engine.State(), nil
}

func validateStartRequest(req StartGameRequest) error {
	if req.PlayerCount < 2 || req.PlayerCount > 4 {
		return fmt.Errorf("player count must be between 2 and 4, got %d", req.PlayerCount)
	}
	if req.Problems != nil {
		if err := engine.ValidateImportedProblems(req.Problems); err != nil {
			return fmt.Errorf("invalid problem set: %w", err)
		}
	}
	return nil
}

// SelectAvatar records one player's avatar choice
func (s *gameServiceImpl) SelectAvatar(ctx context.Context, sessionID string, avatarIndex int, color string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	if sess.Engine.State().Screen != engine.ScreenAvatarSelection {
		return nil, fmt.Errorf("session is not in avatar selection")
	}

	sess.Engine.SelectAvatar(avatarIndex, color)
	s.persist(sessionID)

	return sess.Engine.State(), nil
}

// ResetGame resets a session back to the setup screen
func (s *gameServiceImpl) ResetGame(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	sess.Engine.ResetGame()
	if sess.Options != nil {
		sess.Engine.SetOptions(*sess.Options)
	}
	s.persist(sessionID)

	return sess.Engine.State(), nil
}

// Roll performs the current player's dice roll
func (s *gameServiceImpl) Roll(ctx context.Context, sessionID string) (*RollResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	if sess.Engine.State().Screen != engine.ScreenPlaying {
		return nil, ErrNotPlaying
	}

	value := sess.Engine.RollDice()
	if value == 0 {
		return nil, ErrRollBlocked
	}

	// The server has no roll animation; the value lands immediately.
	sess.Engine.CompleteDiceRoll(value)
	sess.Engine.SetRolling(false)
	s.persist(sessionID)

	return &RollResult{
		GameState: sess.Engine.State(),
		DiceValue: value,
	}, nil
}

// ChooseDiceValue commits one of the two Lucky Dice candidates
func (s *gameServiceImpl) ChooseDiceValue(ctx context.Context, sessionID string, value int) (*RollResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	if !sess.Engine.ChooseDiceValue(value) {
		return nil, fmt.Errorf("value %d is not one of the rolled candidates", value)
	}
	s.persist(sessionID)

	return &RollResult{
		GameState: sess.Engine.State(),
		DiceValue: value,
	}, nil
}

// Move walks the current player forward by the rolled dice value and
// resolves the landing tile
func (s *gameServiceImpl) Move(ctx context.Context, sessionID string) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	eng := sess.Engine
	state := eng.State()
	if state.Screen != engine.ScreenPlaying {
		return nil, ErrNotPlaying
	}
	if state.DiceValue == 0 {
		return nil, ErrNoDiceValue
	}

	playerID := state.CurrentPlayer
	player := state.PlayerByID(playerID)
	if player == nil {
		return nil, fmt.Errorf("current player %d not found", playerID)
	}

	boardSize := state.Options.BoardSize
	steps := state.DiceValue
	from := player.Position

	eng.StartMovingPlayer(playerID)

	passedStart := false
	pos := from
	for i := 0; i < steps; i++ {
		pos = (pos + 1) % boardSize
		if eng.MovePlayerStep(playerID, pos) {
			passedStart = true
		}
	}

	eng.CompletePlayerMovement()

	if passedStart {
		eng.ApplyPassStartBonus(playerID)
	}

	landing := eng.HandleTileLanding(pos, playerID)

	events := s.moveEvents(eng.State(), playerID, from, pos, passedStart, landing)

	turnEnded := false
	if landing == engine.LandingNext {
		eng.NextTurn()
		turnEnded = true
	}

	final := eng.State()
	if final.Screen == engine.ScreenGameOver {
		events = append(events, GameEvent{
			Type:      "game_over",
			Message:   "Game over!",
			Timestamp: time.Now(),
		})
	}

	s.persist(sessionID)

	return &MoveResult{
		GameState:   final,
		PlayerID:    playerID,
		From:        from,
		To:          pos,
		Steps:       steps,
		PassedStart: passedStart,
		Landing:     landing,
		TurnEnded:   turnEnded,
		Events:      events,
	}, nil
}

// moveEvents generates events from a resolved movement
func (s *gameServiceImpl) moveEvents(state *engine.GameState, playerID, from, to int, passedStart bool, landing engine.LandingResult) []GameEvent {
	events := []GameEvent{
		{
			Type:      "move",
			Message:   fmt.Sprintf("Player %d moved from tile %d to tile %d", playerID, from, to),
			Timestamp: time.Now(),
			Position:  to,
		},
	}

	if passedStart {
		events = append(events, GameEvent{
			Type:      "pass_start",
			Message:   fmt.Sprintf("Player %d passed Start! +%d points, +%d coins", playerID, engine.PassStartScore, engine.PassStartCoins),
			Timestamp: time.Now(),
			Position:  to,
		})
	}

	tile := state.TileAt(to)
	switch {
	case tile != nil && tile.Type == engine.TileObstacle:
		message := ""
		if state.Message != nil {
			message = state.Message.Text
		}
		events = append(events, GameEvent{
			Type:      "obstacle",
			Message:   message,
			Timestamp: time.Now(),
			Position:  to,
		})
	case landing == engine.LandingSpecial:
		events = append(events, GameEvent{
			Type:      "shop",
			Message:   "The shop is open",
			Timestamp: time.Now(),
			Position:  to,
		})
	case landing == engine.LandingMath:
		question := ""
		if state.MathProblem != nil {
			question = state.MathProblem.Question
		}
		events = append(events, GameEvent{
			Type:      "problem",
			Message:   question,
			Timestamp: time.Now(),
			Position:  to,
		})
	}

	return events
}

// Answer resolves the open math problem and advances the turn
func (s *gameServiceImpl) Answer(ctx context.Context, sessionID string, answer float64) (*AnswerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.resolveProblem(sessionID, func(eng *engine.Engine) bool {
		return eng.SubmitAnswer(answer)
	})
}

// AnswerTimeout resolves the open math problem as a timeout and advances
// the turn
func (s *gameServiceImpl) AnswerTimeout(ctx context.Context, sessionID string) (*AnswerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.resolveProblem(sessionID, func(eng *engine.Engine) bool {
		eng.SubmitAnswerTimeout()
		return false
	})
}

func (s *gameServiceImpl) resolveProblem(sessionID string, resolve func(*engine.Engine) bool) (*AnswerResult, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	eng := sess.Engine
	state := eng.State()
	if state.MathProblem == nil {
		return nil, ErrNoOpenProblem
	}

	playerID := state.CurrentPlayer
	before := state.Players[playerID]

	correct := resolve(eng)

	resolved := eng.State()
	after := resolved.Players[playerID]
	message := ""
	if resolved.Message != nil {
		message = resolved.Message.Text
	}

	eng.CloseMessage()
	eng.NextTurn()

	final := eng.State()
	s.persist(sessionID)

	return &AnswerResult{
		GameState:  final,
		PlayerID:   playerID,
		Correct:    correct,
		ScoreDelta: after.Score - before.Score,
		CoinDelta:  after.Coins - before.Coins,
		Streak:     after.Streak,
		Message:    message,
		TurnEnded:  true,
		GameOver:   final.Screen == engine.ScreenGameOver,
	}, nil
}

// EndTurn closes any open shop and advances to the next player
func (s *gameServiceImpl) EndTurn(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	if sess.Engine.State().ShopOpen {
		sess.Engine.CloseShop()
	}
	sess.Engine.NextTurn()
	s.persist(sessionID)

	return sess.Engine.State(), nil
}

// TogglePause flips the problem timer's pause flag
func (s *gameServiceImpl) TogglePause(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	sess.Engine.TogglePause()
	return sess.Engine.State(), nil
}

// SetTimeLeft records the externally driven countdown value
func (s *gameServiceImpl) SetTimeLeft(ctx context.Context, sessionID string, seconds int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return fmt.Errorf("session not found: %w", err)
	}

	sess.Engine.SetTimeLeft(seconds)
	return nil
}

// BuyItem purchases a shop item for a player
func (s *gameServiceImpl) BuyItem(ctx context.Context, sessionID string, playerID int, itemType string) (*PurchaseResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	item := engine.ItemType(itemType)
	if _, ok := engine.ItemCatalog[item]; !ok {
		return nil, fmt.Errorf("unknown item type %q", itemType)
	}

	success := sess.Engine.BuyItem(playerID, item)
	state := sess.Engine.State()

	coins := 0
	if player := state.PlayerByID(playerID); player != nil {
		coins = player.Coins
	}

	if success {
		s.persist(sessionID)
	}

	return &PurchaseResult{
		GameState:      state,
		Success:        success,
		PlayerID:       playerID,
		ItemType:       itemType,
		CoinsRemaining: coins,
	}, nil
}

// CloseShop closes the shop and ends the shopping player's turn
func (s *gameServiceImpl) CloseShop(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	sess.Engine.CloseShop()
	sess.Engine.NextTurn()
	s.persist(sessionID)

	return sess.Engine.State(), nil
}

// UseItem activates an item for a player. Only items with a player-driven
// trigger can be used this way; the Shield fires on its own and the
// Teleporter has its own selection flow.
func (s *gameServiceImpl) UseItem(ctx context.Context, sessionID string, playerID int, itemType string) (*ItemUseResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	eng := sess.Engine
	item := engine.ItemType(itemType)

	switch item {
	case engine.ItemPointMultiplier, engine.ItemExtraDiceRoll:
	case engine.ItemTeleport:
		return nil, fmt.Errorf("the teleporter is used through the teleport endpoints")
	default:
		return nil, fmt.Errorf("item %q cannot be used directly", itemType)
	}

	if !eng.PromptItemUse(playerID, item) {
		return &ItemUseResult{
			GameState: eng.State(),
			Used:      false,
			ItemType:  itemType,
		}, nil
	}

	used := eng.AcceptItemUse()
	state := eng.State()

	result := &ItemUseResult{
		GameState: state,
		Used:      used,
		ItemType:  itemType,
	}
	if item == engine.ItemExtraDiceRoll && used {
		result.LuckyDiceValues = state.LuckyDiceValues
	}

	if used {
		s.persist(sessionID)
	}

	return result, nil
}

// ActivateTeleporter enters teleport selection mode for a player
func (s *gameServiceImpl) ActivateTeleporter(ctx context.Context, sessionID string, playerID int) (*TeleportResult, error) {
	return s.teleportOp(sessionID, func(eng *engine.Engine) bool {
		return eng.ActivateTeleporter(playerID)
	})
}

// SelectTeleportTile stages a destination tile
func (s *gameServiceImpl) SelectTeleportTile(ctx context.Context, sessionID string, tileIndex int) (*TeleportResult, error) {
	return s.teleportOp(sessionID, func(eng *engine.Engine) bool {
		return eng.SelectTeleportTile(tileIndex)
	})
}

// ConfirmTeleport commits the staged destination and consumes the item
func (s *gameServiceImpl) ConfirmTeleport(ctx context.Context, sessionID string) (*TeleportResult, error) {
	return s.teleportOp(sessionID, func(eng *engine.Engine) bool {
		return eng.ConfirmTeleport()
	})
}

// CancelTeleport exits selection mode without consuming the item
func (s *gameServiceImpl) CancelTeleport(ctx context.Context, sessionID string) (*TeleportResult, error) {
	return s.teleportOp(sessionID, func(eng *engine.Engine) bool {
		eng.CancelTeleport()
		return true
	})
}

func (s *gameServiceImpl) teleportOp(sessionID string, op func(*engine.Engine) bool) (*TeleportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	success := op(sess.Engine)
	if success {
		s.persist(sessionID)
	}

	return &TeleportResult{
		GameState: sess.Engine.State(),
		Success:   success,
	}, nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return sess.Engine.State(), nil
}

// ValidateProblems checks an imported problem set without touching any session
func (s *gameServiceImpl) ValidateProblems(ctx context.Context, problems *engine.ImportedProblems) error {
	return engine.ValidateImportedProblems(problems)
}

// ListPresets returns available rule presets
func (s *gameServiceImpl) ListPresets(ctx context.Context) ([]*PresetInfo, error) {
	return s.presets.ListPresets()
}

// LoadPreset loads a specific rule preset
func (s *gameServiceImpl) LoadPreset(ctx context.Context, presetName string) (*engine.Options, error) {
	return s.presets.LoadPreset(presetName)
}

// SavePreset saves a rule preset to disk
func (s *gameServiceImpl) SavePreset(ctx context.Context, presetName string, preset *engine.Options) error {
	return s.presets.SavePreset(presetName, preset)
}
