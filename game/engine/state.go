package engine

// GameState is the single source of truth for one game. The engine replaces
// the whole snapshot on every mutation; callers and subscribers must treat a
// received state as read-only.
type GameState struct {
	// Screen & flow
	Screen        Screen `json:"screen"`
	CurrentPlayer int    `json:"current_player"`
	Round         int    `json:"round"`
	MovesInRound  int    `json:"moves_in_round"`

	// Players & board
	Players []Player   `json:"players"`
	Tiles   []TileData `json:"tiles"`

	// Dice
	DiceValue       int   `json:"dice_value"`
	IsRolling       bool  `json:"is_rolling"`
	LuckyDiceValues []int `json:"lucky_dice_values,omitempty"`

	// Movement
	MovingPlayer *int `json:"moving_player,omitempty"`

	// Math problem & timer
	MathProblem *MathProblem `json:"math_problem,omitempty"`
	TimeLeft    int          `json:"time_left"`
	IsPaused    bool         `json:"is_paused"`

	// Imported problems
	ImportedProblems *ImportedProblems `json:"imported_problems,omitempty"`
	ProblemPool      []ImportedProblem `json:"problem_pool,omitempty"`
	UsedProblemIDs   map[int]bool      `json:"used_problem_ids,omitempty"`

	// Shop & items
	ShopOpen       bool               `json:"shop_open"`
	PendingItemUse *PendingItemUse    `json:"pending_item_use,omitempty"`
	Teleport       *TeleportSelection `json:"teleport,omitempty"`

	// Avatar selection staging
	AvatarPlayerCount   int      `json:"avatar_player_count,omitempty"`
	AvatarCurrentPlayer int      `json:"avatar_current_player,omitempty"`
	SelectedAvatars     []int    `json:"selected_avatars,omitempty"`
	SelectedColors      []string `json:"selected_colors,omitempty"`

	// Configuration & messages
	Options Options        `json:"options"`
	Message *GameMessage   `json:"message,omitempty"`
	Banner  *BannerMessage `json:"banner,omitempty"`
}

// DefaultOptions returns the fixed defaults recognized at game start.
func DefaultOptions() Options {
	return Options{
		NegativePointsEnabled:  true,
		TimerEnabled:           false,
		TimerDuration:          30,
		AutoCloseModal:         true,
		DisplayProblemsInTiles: true,
		MaxRounds:              DefaultMaxRounds,
		BoardSize:              DefaultBoardSize,
	}
}

// NewInitialState builds a fresh setup-screen snapshot.
func NewInitialState() *GameState {
	return &GameState{
		Screen:         ScreenSetup,
		CurrentPlayer:  0,
		Round:          1,
		MovesInRound:   0,
		Players:        []Player{},
		Tiles:          []TileData{},
		UsedProblemIDs: map[int]bool{},
		Options:        DefaultOptions(),
	}
}

// Clone produces a deep copy of the snapshot so that a mutation never
// becomes visible to holders of a previously published state.
func (gs *GameState) Clone() *GameState {
	next := *gs

	next.Players = make([]Player, len(gs.Players))
	for i, p := range gs.Players {
		next.Players[i] = p
		next.Players[i].Inventory = append([]PlayerItem(nil), p.Inventory...)
	}

	// Tiles are immutable after board creation; sharing the backing array
	// would be safe, but copying keeps the snapshot fully self-contained.
	next.Tiles = append([]TileData(nil), gs.Tiles...)

	next.ProblemPool = append([]ImportedProblem(nil), gs.ProblemPool...)
	next.UsedProblemIDs = make(map[int]bool, len(gs.UsedProblemIDs))
	for id := range gs.UsedProblemIDs {
		next.UsedProblemIDs[id] = true
	}

	next.LuckyDiceValues = append([]int(nil), gs.LuckyDiceValues...)
	next.SelectedAvatars = append([]int(nil), gs.SelectedAvatars...)
	next.SelectedColors = append([]string(nil), gs.SelectedColors...)

	if gs.MovingPlayer != nil {
		id := *gs.MovingPlayer
		next.MovingPlayer = &id
	}
	if gs.MathProblem != nil {
		mp := *gs.MathProblem
		next.MathProblem = &mp
	}
	if gs.PendingItemUse != nil {
		p := *gs.PendingItemUse
		next.PendingItemUse = &p
	}
	if gs.Teleport != nil {
		t := *gs.Teleport
		next.Teleport = &t
	}
	if gs.Message != nil {
		m := *gs.Message
		next.Message = &m
	}
	if gs.Banner != nil {
		b := *gs.Banner
		next.Banner = &b
	}

	return &next
}

// TileAt returns the tile at the given ring position, or nil when the
// position is out of range.
func (gs *GameState) TileAt(position int) *TileData {
	if position < 0 || position >= len(gs.Tiles) {
		return nil
	}
	return &gs.Tiles[position]
}

// PlayerByID returns the player with the given ID, or nil. Player IDs are
// dense and 0-based, so the ID doubles as the slice index.
func (gs *GameState) PlayerByID(id int) *Player {
	if id < 0 || id >= len(gs.Players) {
		return nil
	}
	return &gs.Players[id]
}
