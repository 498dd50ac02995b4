package engine

// Screen identifies which screen of the game flow is active
type Screen string

const (
	ScreenSetup           Screen = "setup"
	ScreenAvatarSelection Screen = "avatar_selection"
	ScreenPlaying         Screen = "playing"
	ScreenGameOver        Screen = "game_over"
)

// TileType represents the different kinds of board tiles
type TileType string

const (
	TileCorner   TileType = "corner"
	TileRegular  TileType = "regular"
	TileObstacle TileType = "obstacle"
	TileShop     TileType = "shop"
)

// ObstacleType distinguishes the two hazard tiles
type ObstacleType string

const (
	ObstacleSlip ObstacleType = "slip"
	ObstacleTrap ObstacleType = "trap"
)

// Difficulty is the tier of a math problem
type Difficulty int

const (
	DifficultyEasy   Difficulty = 1
	DifficultyMedium Difficulty = 2
	DifficultyHard   Difficulty = 3
)

// MessageType classifies player-facing messages
type MessageType string

const (
	MessageSuccess MessageType = "success"
	MessageError   MessageType = "error"
)

// LandingResult tells the caller what landing on a tile triggered
type LandingResult string

const (
	LandingMath    LandingResult = "math"
	LandingSpecial LandingResult = "special"
	LandingNext    LandingResult = "next"
)

// Board layout constants. The four corners sit at quarter intervals of the
// 40-tile ring; obstacle and shop positions are fixed, not randomized.
const (
	DefaultBoardSize = 40
	DefaultMaxRounds = 10

	PositionStart     = 0
	PositionBonus     = 10
	PositionChallenge = 20
	PositionPenalty   = 30

	DiceSides = 6
)

// Slip, trap, and shop tile positions on the default 40-tile board.
var (
	SlipPositions = []int{7, 28}
	TrapPositions = []int{18, 38}
	ShopPositions = []int{5, 25}
)

// Scoring constants
const (
	StartTileScore     = 50
	PenaltyTileScore   = -30
	ChallengePoints    = 100
	PassStartScore     = 50
	PassStartCoins     = 30
	CorrectAnswerCoins = 15

	SlipDistance    = 3
	TrapPenaltyRate = 0.15
)

// Corner tile labels keep the scoring semantics visible on the board.
const (
	LabelStart     = "START +50pts"
	LabelBonus     = "BONUS x2pts"
	LabelChallenge = "CHALLENGE +/-100pts"
	LabelPenalty   = "PENALTY -30pts"
)

// Options represents the per-game configuration. It is set once at game
// start and read-only afterward.
type Options struct {
	Name                   string `json:"name,omitempty"`
	Description            string `json:"description,omitempty"`
	NegativePointsEnabled  bool   `json:"negative_points_enabled"`
	TimerEnabled           bool   `json:"timer_enabled"`
	TimerDuration          int    `json:"timer_duration"`
	AutoCloseModal         bool   `json:"auto_close_modal"`
	DisplayProblemsInTiles bool   `json:"display_problems_in_tiles"`
	MaxRounds              int    `json:"max_rounds"`
	BoardSize              int    `json:"board_size"`
}

// OptionOverrides carries optional per-field overrides applied on top of the
// current options at game start. Nil fields keep the existing value.
type OptionOverrides struct {
	NegativePointsEnabled  *bool `json:"negative_points_enabled,omitempty"`
	TimerEnabled           *bool `json:"timer_enabled,omitempty"`
	TimerDuration          *int  `json:"timer_duration,omitempty"`
	AutoCloseModal         *bool `json:"auto_close_modal,omitempty"`
	DisplayProblemsInTiles *bool `json:"display_problems_in_tiles,omitempty"`
}

// Player represents one participant in the game
type Player struct {
	ID          int          `json:"id"`
	Name        string       `json:"name"`
	Position    int          `json:"position"`
	Score       int          `json:"score"`
	Color       string       `json:"color"`
	Streak      int          `json:"streak"`
	AvatarIndex int          `json:"avatar_index"`
	Coins       int          `json:"coins"`
	Inventory   []PlayerItem `json:"inventory"`
}

// PlayerItem is an owned item in a player's inventory. The entry is removed
// from the inventory once UsesRemaining reaches zero.
type PlayerItem struct {
	ItemType      ItemType `json:"item_type"`
	UsesRemaining int      `json:"uses_remaining"`
	IsActive      bool     `json:"is_active,omitempty"`
}

// TileData represents one cell of the board ring. Type-specific fields are
// populated according to Type; tiles are immutable after board creation.
type TileData struct {
	Index        int          `json:"index"`
	Type         TileType     `json:"type"`
	Label        string       `json:"label,omitempty"`
	ObstacleType ObstacleType `json:"obstacle_type,omitempty"`
	Difficulty   Difficulty   `json:"difficulty,omitempty"`
	Points       int          `json:"points,omitempty"`
	Question     string       `json:"question,omitempty"`
	Answer       float64      `json:"answer,omitempty"`
}

// MathProblem is the in-flight problem being presented to the current player
type MathProblem struct {
	Question string  `json:"question"`
	Answer   float64 `json:"answer"`
	Points   int     `json:"points"`
}

// GeneratedProblem is a question/answer pair produced by the generator or
// drawn from the imported pool.
type GeneratedProblem struct {
	Question string  `json:"question"`
	Answer   float64 `json:"answer"`
}

// ImportedProblem is a single entry of an externally supplied problem set.
// The answer stays a string until drawn; parsing happens at draw time.
type ImportedProblem struct {
	ID       int    `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ImportedProblems is the shape of an imported problem file
type ImportedProblems struct {
	ProblemCount string            `json:"problem_count"`
	Problems     []ImportedProblem `json:"problems"`
}

// GameMessage is a modal result message shown after answer resolution
type GameMessage struct {
	Text   string      `json:"text"`
	Type   MessageType `json:"type"`
	Streak int         `json:"streak,omitempty"`
}

// BannerMessage is a transient banner shown during play
type BannerMessage struct {
	Text string      `json:"text"`
	Type MessageType `json:"type"`
}

// PendingItemUse is the single-slot prompt asking a player whether to
// consume an owned item in a given context. At most one prompt is open.
type PendingItemUse struct {
	PlayerID int         `json:"player_id"`
	ItemType ItemType    `json:"item_type"`
	Trigger  ItemTrigger `json:"trigger"`
}

// TeleportSelection tracks the three-phase teleporter flow: activated,
// candidate staged, then confirmed or cancelled.
type TeleportSelection struct {
	PlayerID   int `json:"player_id"`
	StagedTile int `json:"staged_tile"` // -1 until a candidate is selected
}
