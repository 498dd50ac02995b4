package engine

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// Listener receives the full new state snapshot after every mutation.
type Listener func(*GameState)

// Engine owns the authoritative game state. Every public operation applies
// the pure rule functions, replaces the snapshot atomically, and notifies
// all subscribers synchronously. The engine has no internal timers; all
// time-based behavior is driven by the caller. It is not safe for
// concurrent use by multiple goroutines; the owning service serializes
// access.
type Engine struct {
	state          *GameState
	listeners      map[int]Listener
	nextListenerID int
}

// New creates an engine in the setup screen.
func New() *Engine {
	return &Engine{
		state:     NewInitialState(),
		listeners: make(map[int]Listener),
	}
}

// Subscribe registers a listener and returns its unsubscribe function.
// Unsubscribing removes exactly one registration.
func (e *Engine) Subscribe(listener Listener) func() {
	id := e.nextListenerID
	e.nextListenerID++
	e.listeners[id] = listener
	return func() { delete(e.listeners, id) }
}

// State returns the current snapshot. Callers must not mutate it.
func (e *Engine) State() *GameState {
	return e.state
}

func (e *Engine) publish(next *GameState) {
	e.state = next
	for _, listener := range e.listeners {
		listener(next)
	}
}

// Restore replaces the current state with a previously captured snapshot, for
// example one loaded from session persistence. Listeners are notified.
func (e *Engine) Restore(state *GameState) error {
	if state == nil {
		return errors.New("state cannot be nil")
	}
	e.publish(state.Clone())
	return nil
}

// ===== Game lifecycle =====

// StartAvatarSelection moves from setup to the avatar-selection screen,
// storing the player count, imported problems, and merged options.
func (e *Engine) StartAvatarSelection(playerCount int, problems *ImportedProblems, overrides *OptionOverrides) {
	next := e.state.Clone()
	next.Screen = ScreenAvatarSelection
	next.AvatarPlayerCount = playerCount
	next.AvatarCurrentPlayer = 0
	next.SelectedAvatars = []int{}
	next.SelectedColors = []string{}
	next.ImportedProblems = problems
	next.Options = mergeOptions(next.Options, overrides)
	e.publish(next)
}

// SelectAvatar records one player's avatar/color choice. When every player
// has chosen, the game starts; otherwise selection advances to the next
// player.
func (e *Engine) SelectAvatar(avatarIndex int, color string) {
	next := e.state.Clone()
	next.SelectedAvatars = append(next.SelectedAvatars, avatarIndex)
	next.SelectedColors = append(next.SelectedColors, color)

	if len(next.SelectedAvatars) >= next.AvatarPlayerCount {
		e.startGameWithAvatars(next, next.SelectedAvatars, next.SelectedColors)
		return
	}

	next.AvatarCurrentPlayer++
	e.publish(next)
}

// StartGame starts a game directly with default avatars, skipping the
// avatar-selection screen.
func (e *Engine) StartGame(playerCount int, problems *ImportedProblems, overrides *OptionOverrides) {
	next := e.state.Clone()
	next.ImportedProblems = problems
	next.Options = mergeOptions(next.Options, overrides)
	next.Players = InitializePlayers(playerCount)
	e.beginPlaying(next)
}

func (e *Engine) startGameWithAvatars(next *GameState, avatars []int, colors []string) {
	next.Players = InitializePlayersWithAvatars(avatars, colors)
	e.beginPlaying(next)
}

func (e *Engine) beginPlaying(next *GameState) {
	next.Tiles = CreateBoard(next.Options.BoardSize, next.ImportedProblems)

	pool := InitializePool(next.ImportedProblems)
	next.ProblemPool = pool.Pool
	next.UsedProblemIDs = pool.UsedIDs

	next.Screen = ScreenPlaying
	next.CurrentPlayer = 0
	next.Round = 1
	next.MovesInRound = 0
	next.DiceValue = 0
	next.IsRolling = false
	next.MovingPlayer = nil
	next.MathProblem = nil
	next.LuckyDiceValues = nil
	next.Message = nil
	next.Banner = nil
	next.ShopOpen = false
	next.PendingItemUse = nil
	next.Teleport = nil
	e.publish(next)
}

// ResetGame replaces the state wholesale with a fresh setup snapshot.
func (e *Engine) ResetGame() {
	e.publish(NewInitialState())
}

// SetOptions replaces the base rule options, typically with a session's
// preset. Per-game overrides still apply on top when a game starts.
func (e *Engine) SetOptions(opts Options) {
	next := e.state.Clone()
	next.Options = opts
	e.publish(next)
}

// ===== Dice =====

// RollDice produces a dice value in [1,6] and marks the dice as rolling.
// It returns 0 without any state change when a roll is already in flight,
// a player is mid-move, a math problem is open, or a die value is pending.
func (e *Engine) RollDice() int {
	s := e.state
	if s.IsRolling || s.MovingPlayer != nil || s.MathProblem != nil || s.DiceValue != 0 {
		return 0
	}

	value := rand.Intn(DiceSides) + 1
	next := s.Clone()
	next.IsRolling = true
	e.publish(next)
	return value
}

// CompleteDiceRoll finalizes the displayed die value. Movement is initiated
// by the caller, not automatically.
func (e *Engine) CompleteDiceRoll(value int) {
	next := e.state.Clone()
	next.DiceValue = value
	e.publish(next)
}

// SetRolling sets the rolling flag.
func (e *Engine) SetRolling(rolling bool) {
	next := e.state.Clone()
	next.IsRolling = rolling
	e.publish(next)
}

// RollLuckyDice rolls two candidate values for the Lucky Dice flow and
// stores them for ChooseDiceValue. Returns nil when the current player does
// not hold the item or a roll is otherwise blocked.
func (e *Engine) RollLuckyDice() []int {
	s := e.state
	if s.IsRolling || s.MovingPlayer != nil || s.MathProblem != nil || s.DiceValue != 0 {
		return nil
	}
	player := s.PlayerByID(s.CurrentPlayer)
	if player == nil || !HasItem(*player, ItemExtraDiceRoll) {
		return nil
	}

	values := []int{rand.Intn(DiceSides) + 1, rand.Intn(DiceSides) + 1}
	next := s.Clone()
	next.LuckyDiceValues = values
	next.PendingItemUse = nil
	e.publish(next)
	return values
}

// ChooseDiceValue commits one of the two Lucky Dice candidates. The chosen
// value is applied directly, bypassing the normal roll, and one use of the
// item is consumed by the choice.
func (e *Engine) ChooseDiceValue(value int) bool {
	s := e.state
	if len(s.LuckyDiceValues) == 0 {
		return false
	}
	valid := false
	for _, v := range s.LuckyDiceValues {
		if v == value {
			valid = true
			break
		}
	}
	if !valid {
		return false
	}

	next := s.Clone()
	next.Players[next.CurrentPlayer] = UseItem(next.Players[next.CurrentPlayer], ItemExtraDiceRoll)
	next.DiceValue = value
	next.LuckyDiceValues = nil
	next.IsRolling = false
	e.publish(next)
	return true
}

// ===== Movement =====

// StartMovingPlayer marks a player as mid-move, blocking dice rolls until
// CompletePlayerMovement.
func (e *Engine) StartMovingPlayer(playerID int) {
	next := e.state.Clone()
	next.MovingPlayer = &playerID
	e.publish(next)
}

// CompletePlayerMovement clears the mid-move flag.
func (e *Engine) CompletePlayerMovement() {
	next := e.state.Clone()
	next.MovingPlayer = nil
	e.publish(next)
}

// MovePlayerStep advances one player to a new ring position and reports
// whether this step wrapped past the Start tile.
func (e *Engine) MovePlayerStep(playerID, newPosition int) bool {
	s := e.state
	player := s.PlayerByID(playerID)
	if player == nil {
		return false
	}

	oldPosition := player.Position
	next := s.Clone()
	next.Players[playerID] = MovePlayerToPosition(next.Players[playerID], newPosition, next.Options.BoardSize)
	e.publish(next)

	return DidPassStart(oldPosition, next.Players[playerID].Position)
}

// ApplyPassStartBonus credits the fixed pass-start score and coin bonus.
func (e *Engine) ApplyPassStartBonus(playerID int) {
	s := e.state
	if s.PlayerByID(playerID) == nil {
		return
	}

	bonus := CalculatePassStartBonus()
	next := s.Clone()
	next.Players[playerID] = ApplyScoreChange(next.Players[playerID], bonus.ScoreChange)
	next.Players[playerID] = AwardCoins(next.Players[playerID], bonus.CoinReward)
	next.Banner = &BannerMessage{Text: bonus.Message, Type: MessageSuccess}
	e.publish(next)
}

// ===== Tile landing =====

// HandleTileLanding dispatches the effect of landing on a tile and tells
// the caller how the turn proceeds: LandingMath means a problem is open and
// the turn advances after it resolves, LandingSpecial means the shop opened
// and the turn does not auto-advance, LandingNext means the turn advances
// immediately.
func (e *Engine) HandleTileLanding(position, playerID int) LandingResult {
	s := e.state
	tile := s.TileAt(position)
	if tile == nil {
		return LandingNext
	}

	if tile.Type == TileObstacle {
		if player := s.PlayerByID(playerID); player != nil {
			updated, message := ApplyObstacleEffect(*player, tile.ObstacleType)
			next := s.Clone()
			next.Players[playerID] = updated
			next.Message = &GameMessage{Text: message, Type: MessageError}
			e.publish(next)
		}
		return LandingNext
	}

	if tile.Type == TileShop {
		next := s.Clone()
		next.ShopOpen = true
		next.Banner = &BannerMessage{Text: "Welcome to the shop!", Type: MessageSuccess}
		e.publish(next)
		return LandingSpecial
	}

	if special := CalculateSpecialTileScore(position); special != nil {
		if player := s.PlayerByID(playerID); player != nil {
			next := s.Clone()
			deductible := next.Options.NegativePointsEnabled || special.ScoreChange > 0
			text := special.Message
			if deductible {
				next.Players[playerID] = ApplyScoreChange(next.Players[playerID], special.ScoreChange)
			} else {
				text = PenaltyNoDeductMessage
			}
			messageType := MessageSuccess
			if special.ScoreChange < 0 {
				messageType = MessageError
			}
			next.Banner = &BannerMessage{Text: text, Type: messageType}
			e.publish(next)
		}
		return LandingNext
	}

	boardSize := s.Options.BoardSize
	switch position {
	case boardSize / 4:
		// Bonus corner: a fresh Medium base value is drawn and doubled, the
		// same way the board generator prices a Medium tile.
		base := int(DifficultyMedium)*10 + rand.Intn(20)
		e.setBanner("BONUS! Your next correct answer worth double!", MessageSuccess)
		e.showGeneratedProblem(DifficultyMedium, base*2)
		return LandingMath
	case boardSize / 2:
		e.setBanner("CHALLENGE! High risk, high reward!", MessageSuccess)
		e.showGeneratedProblem(DifficultyHard, ChallengePoints)
		return LandingMath
	}

	if tile.Type == TileRegular && tile.Question != "" {
		// The question bound at board creation is presented as-is, never
		// re-rolled.
		e.showBoundProblem(tile.Question, tile.Answer, tile.Points)
		return LandingMath
	}

	return LandingNext
}

// ===== Math problems =====

func (e *Engine) showGeneratedProblem(difficulty Difficulty, points int) {
	s := e.state
	problem, poolState := NextProblem(difficulty, s.ImportedProblems, s.ProblemPool, s.UsedProblemIDs)

	next := s.Clone()
	next.ProblemPool = poolState.Pool
	next.UsedProblemIDs = poolState.UsedIDs
	e.presentProblem(next, problem.Question, problem.Answer, points)
}

func (e *Engine) showBoundProblem(question string, answer float64, points int) {
	e.presentProblem(e.state.Clone(), question, answer, points)
}

func (e *Engine) presentProblem(next *GameState, question string, answer float64, points int) {
	next.MathProblem = &MathProblem{Question: question, Answer: answer, Points: points}
	next.TimeLeft = 0
	if next.Options.TimerEnabled {
		next.TimeLeft = next.Options.TimerDuration
	}
	next.IsPaused = false
	e.publish(next)
}

// SubmitAnswer resolves the open math problem against the submitted value
// and reports correctness. With no problem open it is a no-op returning
// false. An active Point Booster multiplies the points of a correct answer
// and is consumed by it.
func (e *Engine) SubmitAnswer(userAnswer float64) bool {
	s := e.state
	if s.MathProblem == nil {
		return false
	}
	player := s.PlayerByID(s.CurrentPlayer)
	if player == nil {
		return false
	}

	points := s.MathProblem.Points
	boosted := ActiveItem(*player, ItemPointMultiplier) != nil
	if boosted {
		points = int(math.Floor(float64(points) * PointMultiplierFactor))
	}

	result := CalculateAnswerResult(userAnswer, s.MathProblem.Answer, s.MathProblem.Points, player.Streak, s.Options.NegativePointsEnabled)

	next := s.Clone()
	updated := next.Players[next.CurrentPlayer]
	if result.Correct {
		scoreChange := result.ScoreChange
		if boosted {
			scoreChange = points
			result.Message = fmt.Sprintf("+%d points! (Point Booster)", points)
			updated = UseItem(updated, ItemPointMultiplier)
			if !HasItem(updated, ItemPointMultiplier) {
				updated = DeactivateItem(updated, ItemPointMultiplier)
			}
		}
		updated = ApplyScoreChange(updated, scoreChange)
		updated = AwardCoins(updated, result.CoinReward)
	} else {
		updated = ApplyScoreChange(updated, result.ScoreChange)
	}
	updated.Streak = result.NewStreak
	next.Players[next.CurrentPlayer] = updated

	messageType := MessageError
	if result.Correct {
		messageType = MessageSuccess
	}
	next.MathProblem = nil
	next.Message = &GameMessage{Text: result.Message, Type: messageType, Streak: result.NewStreak}
	e.publish(next)

	return result.Correct
}

// SubmitAnswerTimeout resolves the open problem as a timeout. The external
// timer must invoke this exactly once when time expires and suppress it if
// the player answered first; with no problem open it is a no-op.
func (e *Engine) SubmitAnswerTimeout() {
	s := e.state
	if s.MathProblem == nil {
		return
	}
	if s.PlayerByID(s.CurrentPlayer) == nil {
		return
	}

	result := CalculateTimeoutResult(s.MathProblem.Answer, s.MathProblem.Points, s.Options.NegativePointsEnabled)

	next := s.Clone()
	updated := ApplyScoreChange(next.Players[next.CurrentPlayer], result.ScoreChange)
	updated.Streak = 0
	next.Players[next.CurrentPlayer] = updated
	next.MathProblem = nil
	next.Message = &GameMessage{Text: result.Message, Type: MessageError}
	e.publish(next)
}

// TogglePause flips the timer pause flag. The engine runs no clock of its
// own; pausing is a contract with the external timer.
func (e *Engine) TogglePause() {
	next := e.state.Clone()
	next.IsPaused = !next.IsPaused
	e.publish(next)
}

// SetTimeLeft records the externally driven countdown value.
func (e *Engine) SetTimeLeft(seconds int) {
	next := e.state.Clone()
	next.TimeLeft = seconds
	e.publish(next)
}

// ===== Turn management =====

// NextTurn advances the turn counters. On the end-game signal the screen
// transitions to game over and nothing else is mutated.
func (e *Engine) NextTurn() {
	s := e.state
	if len(s.Players) == 0 {
		return
	}

	result := AdvanceTurn(s.CurrentPlayer, s.Round, s.MovesInRound, len(s.Players), s.Options.MaxRounds)

	next := s.Clone()
	if result.ShouldEndGame {
		next.Screen = ScreenGameOver
		e.publish(next)
		return
	}

	next.CurrentPlayer = result.NewState.CurrentPlayer
	next.Round = result.NewState.Round
	next.MovesInRound = result.NewState.MovesInRound
	next.DiceValue = 0
	next.LuckyDiceValues = nil
	next.Message = nil
	e.publish(next)
}

// ===== Messages =====

// CloseMessage dismisses the current result message.
func (e *Engine) CloseMessage() {
	next := e.state.Clone()
	next.Message = nil
	e.publish(next)
}

// SetBannerMessage sets the transient banner.
func (e *Engine) SetBannerMessage(text string, messageType MessageType) {
	e.setBanner(text, messageType)
}

// ClearBannerMessage clears the transient banner.
func (e *Engine) ClearBannerMessage() {
	next := e.state.Clone()
	next.Banner = nil
	e.publish(next)
}

func (e *Engine) setBanner(text string, messageType MessageType) {
	next := e.state.Clone()
	next.Banner = &BannerMessage{Text: text, Type: messageType}
	e.publish(next)
}

// ===== Shop & items =====

// OpenShop opens the shop overlay.
func (e *Engine) OpenShop() {
	next := e.state.Clone()
	next.ShopOpen = true
	e.publish(next)
}

// CloseShop closes the shop overlay.
func (e *Engine) CloseShop() {
	next := e.state.Clone()
	next.ShopOpen = false
	e.publish(next)
}

// BuyItem purchases an item for a player, returning whether the purchase
// succeeded. Failure leaves state unchanged.
func (e *Engine) BuyItem(playerID int, itemType ItemType) bool {
	s := e.state
	player := s.PlayerByID(playerID)
	if player == nil {
		return false
	}

	updated, ok := PurchaseItem(*player, itemType)
	if !ok {
		return false
	}

	next := s.Clone()
	next.Players[playerID] = updated
	e.publish(next)
	return true
}

// ConsumeItem spends one use of a player's item. Absent or exhausted items
// are a no-op.
func (e *Engine) ConsumeItem(playerID int, itemType ItemType) {
	s := e.state
	player := s.PlayerByID(playerID)
	if player == nil {
		return
	}

	next := s.Clone()
	next.Players[playerID] = UseItem(next.Players[playerID], itemType)
	e.publish(next)
}

// AwardPlayerCoins credits coins to one player unconditionally.
func (e *Engine) AwardPlayerCoins(playerID, amount int) {
	s := e.state
	if s.PlayerByID(playerID) == nil {
		return
	}

	next := s.Clone()
	next.Players[playerID] = AwardCoins(next.Players[playerID], amount)
	e.publish(next)
}

// PromptItemUse opens the single pending-item-use prompt. It fails when a
// prompt is already open or the player does not hold the item.
func (e *Engine) PromptItemUse(playerID int, itemType ItemType) bool {
	s := e.state
	if s.PendingItemUse != nil {
		return false
	}
	player := s.PlayerByID(playerID)
	if player == nil || !HasItem(*player, itemType) {
		return false
	}
	def, ok := ItemCatalog[itemType]
	if !ok {
		return false
	}

	next := s.Clone()
	next.PendingItemUse = &PendingItemUse{PlayerID: playerID, ItemType: itemType, Trigger: def.Trigger}
	e.publish(next)
	return true
}

// AcceptItemUse resolves the pending prompt affirmatively. A Point Booster
// is activated for upcoming answers; Lucky Dice rolls its two candidate
// values. Consumption happens at the effect, not at acceptance.
func (e *Engine) AcceptItemUse() bool {
	s := e.state
	pending := s.PendingItemUse
	if pending == nil {
		return false
	}

	switch pending.ItemType {
	case ItemPointMultiplier:
		next := s.Clone()
		next.Players[pending.PlayerID] = ActivateItem(next.Players[pending.PlayerID], ItemPointMultiplier)
		next.PendingItemUse = nil
		e.publish(next)
		return true
	case ItemExtraDiceRoll:
		return e.RollLuckyDice() != nil
	default:
		next := s.Clone()
		next.PendingItemUse = nil
		e.publish(next)
		return false
	}
}

// DeclineItemUse discards the pending prompt without consuming anything.
func (e *Engine) DeclineItemUse() {
	s := e.state
	if s.PendingItemUse == nil {
		return
	}
	next := s.Clone()
	next.PendingItemUse = nil
	e.publish(next)
}

// ===== Teleporter =====

// ActivateTeleporter enters tile-selection mode for a player holding a
// Teleporter.
func (e *Engine) ActivateTeleporter(playerID int) bool {
	s := e.state
	if s.Teleport != nil {
		return false
	}
	player := s.PlayerByID(playerID)
	if player == nil || !HasItem(*player, ItemTeleport) {
		return false
	}

	next := s.Clone()
	next.Teleport = &TeleportSelection{PlayerID: playerID, StagedTile: -1}
	e.publish(next)
	return true
}

// SelectTeleportTile stages a candidate destination without moving the
// player. Obstacle tiles cannot be selected.
func (e *Engine) SelectTeleportTile(index int) bool {
	s := e.state
	if s.Teleport == nil {
		return false
	}
	tile := s.TileAt(index)
	if tile == nil || tile.Type == TileObstacle {
		return false
	}

	next := s.Clone()
	next.Teleport.StagedTile = index
	e.publish(next)
	return true
}

// ConfirmTeleport commits the staged move, consumes the Teleporter, and
// exits selection mode. With nothing staged it fails and changes nothing.
func (e *Engine) ConfirmTeleport() bool {
	s := e.state
	if s.Teleport == nil || s.Teleport.StagedTile < 0 {
		return false
	}

	playerID := s.Teleport.PlayerID
	next := s.Clone()
	next.Players[playerID] = MovePlayerToPosition(next.Players[playerID], next.Teleport.StagedTile, next.Options.BoardSize)
	next.Players[playerID] = UseItem(next.Players[playerID], ItemTeleport)
	next.Teleport = nil
	e.publish(next)
	return true
}

// CancelTeleport exits selection mode, discarding any staged tile. The
// item is not consumed.
func (e *Engine) CancelTeleport() {
	s := e.state
	if s.Teleport == nil {
		return
	}
	next := s.Clone()
	next.Teleport = nil
	e.publish(next)
}

func mergeOptions(base Options, overrides *OptionOverrides) Options {
	if overrides == nil {
		return base
	}
	if overrides.NegativePointsEnabled != nil {
		base.NegativePointsEnabled = *overrides.NegativePointsEnabled
	}
	if overrides.TimerEnabled != nil {
		base.TimerEnabled = *overrides.TimerEnabled
	}
	if overrides.TimerDuration != nil {
		base.TimerDuration = *overrides.TimerDuration
	}
	if overrides.AutoCloseModal != nil {
		base.AutoCloseModal = *overrides.AutoCloseModal
	}
	if overrides.DisplayProblemsInTiles != nil {
		base.DisplayProblemsInTiles = *overrides.DisplayProblemsInTiles
	}
	return base
}
