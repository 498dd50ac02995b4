package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mathquest/mathquest/game/engine"
	"github.com/mathquest/mathquest/game/service"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	CreateSessionFunc func(ctx context.Context, presetName string) (*service.SessionInfo, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error

	StartGameFunc            func(ctx context.Context, sessionID string, req service.StartGameRequest) (*engine.GameState, error)
	StartAvatarSelectionFunc func(ctx context.Context, sessionID string, req service.StartGameRequest) (*engine.GameState, error)
	SelectAvatarFunc         func(ctx context.Context, sessionID string, avatarIndex int, color string) (*engine.GameState, error)
	ResetGameFunc            func(ctx context.Context, sessionID string) (*engine.GameState, error)

	RollFunc            func(ctx context.Context, sessionID string) (*service.RollResult, error)
	ChooseDiceValueFunc func(ctx context.Context, sessionID string, value int) (*service.RollResult, error)
	MoveFunc            func(ctx context.Context, sessionID string) (*service.MoveResult, error)
	AnswerFunc          func(ctx context.Context, sessionID string, answer float64) (*service.AnswerResult, error)
	AnswerTimeoutFunc   func(ctx context.Context, sessionID string) (*service.AnswerResult, error)
	EndTurnFunc         func(ctx context.Context, sessionID string) (*engine.GameState, error)
	TogglePauseFunc     func(ctx context.Context, sessionID string) (*engine.GameState, error)
	SetTimeLeftFunc     func(ctx context.Context, sessionID string, seconds int) error

	BuyItemFunc   func(ctx context.Context, sessionID string, playerID int, itemType string) (*service.PurchaseResult, error)
	CloseShopFunc func(ctx context.Context, sessionID string) (*engine.GameState, error)
	UseItemFunc   func(ctx context.Context, sessionID string, playerID int, itemType string) (*service.ItemUseResult, error)

	ActivateTeleporterFunc func(ctx context.Context, sessionID string, playerID int) (*service.TeleportResult, error)
	SelectTeleportTileFunc func(ctx context.Context, sessionID string, tileIndex int) (*service.TeleportResult, error)
	ConfirmTeleportFunc    func(ctx context.Context, sessionID string) (*service.TeleportResult, error)
	CancelTeleportFunc     func(ctx context.Context, sessionID string) (*service.TeleportResult, error)

	GetGameStateFunc     func(ctx context.Context, sessionID string) (*engine.GameState, error)
	ValidateProblemsFunc func(ctx context.Context, problems *engine.ImportedProblems) error

	ListPresetsFunc func(ctx context.Context) ([]*service.PresetInfo, error)
	LoadPresetFunc  func(ctx context.Context, presetName string) (*engine.Options, error)
	SavePresetFunc  func(ctx context.Context, presetName string, preset *engine.Options) error
}

func playingState() *engine.GameState {
	eng := engine.New()
	eng.StartGame(2, nil, nil)
	return eng.State()
}

func (m *MockGameService) CreateSession(ctx context.Context, presetName string) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, presetName)
	}
	return &service.SessionInfo{
		ID:         "test-session",
		PresetName: presetName,
		CreatedAt:  time.Now(),
	}, nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{
		ID:         sessionID,
		PresetName: "Classic",
		CreatedAt:  time.Now(),
	}, nil
}

func (m *MockGameService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockGameService) StartGame(ctx context.Context, sessionID string, req service.StartGameRequest) (*engine.GameState, error) {
	if m.StartGameFunc != nil {
		return m.StartGameFunc(ctx, sessionID, req)
	}
	return playingState(), nil
}

func (m *MockGameService) StartAvatarSelection(ctx context.Context, sessionID string, req service.StartGameRequest) (*engine.GameState, error) {
	if m.StartAvatarSelectionFunc != nil {
		return m.StartAvatarSelectionFunc(ctx, sessionID, req)
	}
	return &engine.GameState{Screen: engine.ScreenAvatarSelection}, nil
}

func (m *MockGameService) SelectAvatar(ctx context.Context, sessionID string, avatarIndex int, color string) (*engine.GameState, error) {
	if m.SelectAvatarFunc != nil {
		return m.SelectAvatarFunc(ctx, sessionID, avatarIndex, color)
	}
	return &engine.GameState{Screen: engine.ScreenAvatarSelection}, nil
}

func (m *MockGameService) ResetGame(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.ResetGameFunc != nil {
		return m.ResetGameFunc(ctx, sessionID)
	}
	return &engine.GameState{Screen: engine.ScreenSetup}, nil
}

func (m *MockGameService) Roll(ctx context.Context, sessionID string) (*service.RollResult, error) {
	if m.RollFunc != nil {
		return m.RollFunc(ctx, sessionID)
	}
	state := playingState()
	state.DiceValue = 4
	return &service.RollResult{GameState: state, DiceValue: 4}, nil
}

func (m *MockGameService) ChooseDiceValue(ctx context.Context, sessionID string, value int) (*service.RollResult, error) {
	if m.ChooseDiceValueFunc != nil {
		return m.ChooseDiceValueFunc(ctx, sessionID, value)
	}
	state := playingState()
	state.DiceValue = value
	return &service.RollResult{GameState: state, DiceValue: value}, nil
}

func (m *MockGameService) Move(ctx context.Context, sessionID string) (*service.MoveResult, error) {
	if m.MoveFunc != nil {
		return m.MoveFunc(ctx, sessionID)
	}
	return &service.MoveResult{
		GameState: playingState(),
		From:      0,
		To:        4,
		Steps:     4,
		Landing:   engine.LandingMath,
	}, nil
}

func (m *MockGameService) Answer(ctx context.Context, sessionID string, answer float64) (*service.AnswerResult, error) {
	if m.AnswerFunc != nil {
		return m.AnswerFunc(ctx, sessionID, answer)
	}
	return &service.AnswerResult{
		GameState:  playingState(),
		Correct:    true,
		ScoreDelta: 20,
		CoinDelta:  engine.CorrectAnswerCoins,
		TurnEnded:  true,
	}, nil
}

func (m *MockGameService) AnswerTimeout(ctx context.Context, sessionID string) (*service.AnswerResult, error) {
	if m.AnswerTimeoutFunc != nil {
		return m.AnswerTimeoutFunc(ctx, sessionID)
	}
	return &service.AnswerResult{GameState: playingState(), TurnEnded: true}, nil
}

func (m *MockGameService) EndTurn(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.EndTurnFunc != nil {
		return m.EndTurnFunc(ctx, sessionID)
	}
	return playingState(), nil
}

func (m *MockGameService) TogglePause(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.TogglePauseFunc != nil {
		return m.TogglePauseFunc(ctx, sessionID)
	}
	state := playingState()
	state.IsPaused = true
	return state, nil
}

func (m *MockGameService) SetTimeLeft(ctx context.Context, sessionID string, seconds int) error {
	if m.SetTimeLeftFunc != nil {
		return m.SetTimeLeftFunc(ctx, sessionID, seconds)
	}
	return nil
}

func (m *MockGameService) BuyItem(ctx context.Context, sessionID string, playerID int, itemType string) (*service.PurchaseResult, error) {
	if m.BuyItemFunc != nil {
		return m.BuyItemFunc(ctx, sessionID, playerID, itemType)
	}
	return &service.PurchaseResult{
		GameState: playingState(),
		Success:   true,
		PlayerID:  playerID,
		ItemType:  itemType,
	}, nil
}

func (m *MockGameService) CloseShop(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.CloseShopFunc != nil {
		return m.CloseShopFunc(ctx, sessionID)
	}
	return playingState(), nil
}

func (m *MockGameService) UseItem(ctx context.Context, sessionID string, playerID int, itemType string) (*service.ItemUseResult, error) {
	if m.UseItemFunc != nil {
		return m.UseItemFunc(ctx, sessionID, playerID, itemType)
	}
	return &service.ItemUseResult{
		GameState: playingState(),
		Used:      true,
		ItemType:  itemType,
	}, nil
}

func (m *MockGameService) ActivateTeleporter(ctx context.Context, sessionID string, playerID int) (*service.TeleportResult, error) {
	if m.ActivateTeleporterFunc != nil {
		return m.ActivateTeleporterFunc(ctx, sessionID, playerID)
	}
	return &service.TeleportResult{GameState: playingState(), Success: true}, nil
}

func (m *MockGameService) SelectTeleportTile(ctx context.Context, sessionID string, tileIndex int) (*service.TeleportResult, error) {
	if m.SelectTeleportTileFunc != nil {
		return m.SelectTeleportTileFunc(ctx, sessionID, tileIndex)
	}
	return &service.TeleportResult{GameState: playingState(), Success: true}, nil
}

func (m *MockGameService) ConfirmTeleport(ctx context.Context, sessionID string) (*service.TeleportResult, error) {
	if m.ConfirmTeleportFunc != nil {
		return m.ConfirmTeleportFunc(ctx, sessionID)
	}
	return &service.TeleportResult{GameState: playingState(), Success: true}, nil
}

func (m *MockGameService) CancelTeleport(ctx context.Context, sessionID string) (*service.TeleportResult, error) {
	if m.CancelTeleportFunc != nil {
		return m.CancelTeleportFunc(ctx, sessionID)
	}
	return &service.TeleportResult{GameState: playingState(), Success: true}, nil
}

func (m *MockGameService) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.GetGameStateFunc != nil {
		return m.GetGameStateFunc(ctx, sessionID)
	}
	return playingState(), nil
}

func (m *MockGameService) ValidateProblems(ctx context.Context, problems *engine.ImportedProblems) error {
	if m.ValidateProblemsFunc != nil {
		return m.ValidateProblemsFunc(ctx, problems)
	}
	return nil
}

func (m *MockGameService) ListPresets(ctx context.Context) ([]*service.PresetInfo, error) {
	if m.ListPresetsFunc != nil {
		return m.ListPresetsFunc(ctx)
	}
	return []*service.PresetInfo{
		{PresetID: "classic", Name: "Classic", BoardSize: engine.DefaultBoardSize, MaxRounds: 10},
	}, nil
}

func (m *MockGameService) LoadPreset(ctx context.Context, presetName string) (*engine.Options, error) {
	if m.LoadPresetFunc != nil {
		return m.LoadPresetFunc(ctx, presetName)
	}
	opts := engine.DefaultOptions()
	opts.Name = "Classic"
	return &opts, nil
}

func (m *MockGameService) SavePreset(ctx context.Context, presetName string, preset *engine.Options) error {
	if m.SavePresetFunc != nil {
		return m.SavePresetFunc(ctx, presetName, preset)
	}
	return nil
}

// Test helpers

func newTestServer(mock *MockGameService) *Server {
	return NewServer(mock, nil, nil)
}

func doRequest(t *testing.T, server *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(into); err != nil {
		t.Fatalf("Failed to decode response body: %v", err)
	}
}

// Session tests

func TestHandleCreateSession(t *testing.T) {
	server := newTestServer(&MockGameService{})

	rec := doRequest(t, server, "POST", "/api/sessions", map[string]string{"preset_id": "classic"})

	if rec.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", rec.Code)
	}

	var session service.SessionInfo
	decodeBody(t, rec, &session)
	if session.ID != "test-session" {
		t.Errorf("Expected session ID 'test-session', got %s", session.ID)
	}
	if session.PresetName != "classic" {
		t.Errorf("Expected preset 'classic', got %s", session.PresetName)
	}
}

func TestHandleCreateSession_NoBody(t *testing.T) {
	server := newTestServer(&MockGameService{})

	rec := doRequest(t, server, "POST", "/api/sessions", nil)

	if rec.Code != http.StatusCreated {
		t.Errorf("Expected status 201 for empty body, got %d", rec.Code)
	}
}

func TestHandleCreateSession_UnknownPreset(t *testing.T) {
	server := newTestServer(&MockGameService{
		CreateSessionFunc: func(ctx context.Context, presetName string) (*service.SessionInfo, error) {
			return nil, fmt.Errorf("preset %q not found", presetName)
		},
	})

	rec := doRequest(t, server, "POST", "/api/sessions", map[string]string{"preset_id": "bogus"})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestHandleListSessions(t *testing.T) {
	now := time.Now()
	server := newTestServer(&MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "old", LastAccessedAt: now.Add(-time.Hour)},
				{ID: "new", LastAccessedAt: now},
				{ID: "mid", LastAccessedAt: now.Add(-30 * time.Minute)},
			}, nil
		},
	})

	rec := doRequest(t, server, "GET", "/api/sessions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var resp struct {
		Count    int                    `json:"count"`
		Total    int                    `json:"total"`
		Sessions []*service.SessionInfo `json:"sessions"`
	}
	decodeBody(t, rec, &resp)

	if resp.Total != 3 {
		t.Errorf("Expected total 3, got %d", resp.Total)
	}
	// Default sort: most recently accessed first.
	if resp.Sessions[0].ID != "new" || resp.Sessions[2].ID != "old" {
		t.Errorf("Sessions not sorted by access time: %s, %s, %s",
			resp.Sessions[0].ID, resp.Sessions[1].ID, resp.Sessions[2].ID)
	}
}

func TestHandleListSessions_Limit(t *testing.T) {
	now := time.Now()
	server := newTestServer(&MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "a", LastAccessedAt: now},
				{ID: "b", LastAccessedAt: now.Add(-time.Minute)},
				{ID: "c", LastAccessedAt: now.Add(-2 * time.Minute)},
			}, nil
		},
	})

	rec := doRequest(t, server, "GET", "/api/sessions?limit=2", nil)

	var resp struct {
		Count int `json:"count"`
		Total int `json:"total"`
	}
	decodeBody(t, rec, &resp)

	if resp.Count != 2 {
		t.Errorf("Expected count 2, got %d", resp.Count)
	}
	if resp.Total != 3 {
		t.Errorf("Expected total 3, got %d", resp.Total)
	}
}

func TestHandleGetSession_NotFound(t *testing.T) {
	server := newTestServer(&MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			return nil, errors.New("session not found")
		},
	})

	rec := doRequest(t, server, "GET", "/api/sessions/missing", nil)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestHandleDeleteSession(t *testing.T) {
	deleted := ""
	server := newTestServer(&MockGameService{
		DeleteSessionFunc: func(ctx context.Context, sessionID string) error {
			deleted = sessionID
			return nil
		},
	})

	rec := doRequest(t, server, "DELETE", "/api/sessions/abc123", nil)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
	if deleted != "abc123" {
		t.Errorf("Expected delete of 'abc123', got %q", deleted)
	}
}

// Game setup tests

func TestHandleStartGame(t *testing.T) {
	var gotReq service.StartGameRequest
	server := newTestServer(&MockGameService{
		StartGameFunc: func(ctx context.Context, sessionID string, req service.StartGameRequest) (*engine.GameState, error) {
			gotReq = req
			return playingState(), nil
		},
	})

	rec := doRequest(t, server, "POST", "/api/sessions/s1/start", map[string]interface{}{
		"player_count": 3,
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotReq.PlayerCount != 3 {
		t.Errorf("Expected player count 3, got %d", gotReq.PlayerCount)
	}

	var state engine.GameState
	decodeBody(t, rec, &state)
	if state.Screen != engine.ScreenPlaying {
		t.Errorf("Expected playing screen, got %s", state.Screen)
	}
	if len(state.Tiles) != engine.DefaultBoardSize {
		t.Errorf("Expected %d tiles, got %d", engine.DefaultBoardSize, len(state.Tiles))
	}
}

func TestHandleStartGame_InvalidPlayerCount(t *testing.T) {
	server := newTestServer(&MockGameService{
		StartGameFunc: func(ctx context.Context, sessionID string, req service.StartGameRequest) (*engine.GameState, error) {
			return nil, errors.New("player count must be between 2 and 4")
		},
	})

	rec := doRequest(t, server, "POST", "/api/sessions/s1/start", map[string]interface{}{
		"player_count": 9,
	})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestHandleSelectAvatar(t *testing.T) {
	var gotIndex int
	var gotColor string
	server := newTestServer(&MockGameService{
		SelectAvatarFunc: func(ctx context.Context, sessionID string, avatarIndex int, color string) (*engine.GameState, error) {
			gotIndex = avatarIndex
			gotColor = color
			return &engine.GameState{Screen: engine.ScreenAvatarSelection}, nil
		},
	})

	rec := doRequest(t, server, "POST", "/api/sessions/s1/avatar", map[string]interface{}{
		"avatar_index": 2,
		"color":        "#ff6b6b",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if gotIndex != 2 || gotColor != "#ff6b6b" {
		t.Errorf("Avatar selection not forwarded: index=%d color=%s", gotIndex, gotColor)
	}
}

func TestHandleReset(t *testing.T) {
	server := newTestServer(&MockGameService{})

	rec := doRequest(t, server, "POST", "/api/sessions/s1/reset", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var resp struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	decodeBody(t, rec, &resp)
	if resp.State == nil || resp.State.Screen != engine.ScreenSetup {
		t.Error("Expected setup screen after reset")
	}
}

// Turn flow tests

func TestHandleRoll(t *testing.T) {
	server := newTestServer(&MockGameService{})

	rec := doRequest(t, server, "POST", "/api/sessions/s1/roll", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var result service.RollResult
	decodeBody(t, rec, &result)
	if result.DiceValue != 4 {
		t.Errorf("Expected dice value 4, got %d", result.DiceValue)
	}
}

func TestHandleRoll_Blocked(t *testing.T) {
	server := newTestServer(&MockGameService{
		RollFunc: func(ctx context.Context, sessionID string) (*service.RollResult, error) {
			return nil, service.ErrRollBlocked
		},
	})

	rec := doRequest(t, server, "POST", "/api/sessions/s1/roll", nil)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestHandleChooseDiceValue(t *testing.T) {
	var gotValue int
	server := newTestServer(&MockGameService{
		ChooseDiceValueFunc: func(ctx context.Context, sessionID string, value int) (*service.RollResult, error) {
			gotValue = value
			state := playingState()
			state.DiceValue = value
			return &service.RollResult{GameState: state, DiceValue: value}, nil
		},
	})

	rec := doRequest(t, server, "POST", "/api/sessions/s1/dice-choice", map[string]int{"value": 5})

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if gotValue != 5 {
		t.Errorf("Expected chosen value 5, got %d", gotValue)
	}
}

func TestHandleMove(t *testing.T) {
	server := newTestServer(&MockGameService{})

	rec := doRequest(t, server, "POST", "/api/sessions/s1/move", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var result service.MoveResult
	decodeBody(t, rec, &result)
	if result.To != 4 {
		t.Errorf("Expected destination 4, got %d", result.To)
	}
	if result.Landing != engine.LandingMath {
		t.Errorf("Expected math landing, got %s", result.Landing)
	}
}

func TestHandleAnswer(t *testing.T) {
	var gotAnswer float64
	server := newTestServer(&MockGameService{
		AnswerFunc: func(ctx context.Context, sessionID string, answer float64) (*service.AnswerResult, error) {
			gotAnswer = answer
			return &service.AnswerResult{GameState: playingState(), Correct: true, ScoreDelta: 20, TurnEnded: true}, nil
		},
	})

	rec := doRequest(t, server, "POST", "/api/sessions/s1/answer", map[string]float64{"answer": 42})

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if gotAnswer != 42 {
		t.Errorf("Expected answer 42, got %f", gotAnswer)
	}

	var result service.AnswerResult
	decodeBody(t, rec, &result)
	if !result.Correct {
		t.Error("Expected correct answer result")
	}
}

func TestHandleAnswer_InvalidBody(t *testing.T) {
	server := newTestServer(&MockGameService{})

	req := httptest.NewRequest("POST", "/api/sessions/s1/answer", bytes.NewBufferString("not json"))
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestHandleAnswerTimeout(t *testing.T) {
	server := newTestServer(&MockGameService{})

	rec := doRequest(t, server, "POST", "/api/sessions/s1/answer-timeout", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
}

func TestHandleEndTurn(t *testing.T) {
	server := newTestServer(&MockGameService{})

	rec := doRequest(t, server, "POST", "/api/sessions/s1/end-turn", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
}

func TestHandleSetTimeLeft(t *testing.T) {
	var gotSeconds int
	server := newTestServer(&MockGameService{
		SetTimeLeftFunc: func(ctx context.Context, sessionID string, seconds int) error {
			gotSeconds = seconds
			return nil
		},
	})

	rec := doRequest(t, server, "POST", "/api/sessions/s1/time-left", map[string]int{"seconds": 17})

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if gotSeconds != 17 {
		t.Errorf("Expected 17 seconds, got %d", gotSeconds)
	}
}

// Shop & item tests

func TestHandleBuyItem(t *testing.T) {
	server := newTestServer(&MockGameService{})

	rec := doRequest(t, server, "POST", "/api/sessions/s1/shop/buy", map[string]interface{}{
		"player_id": 1,
		"item_type": "shield",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var result service.PurchaseResult
	decodeBody(t, rec, &result)
	if !result.Success {
		t.Error("Expected successful purchase")
	}
	if result.ItemType != "shield" {
		t.Errorf("Expected item 'shield', got %s", result.ItemType)
	}
}

func TestHandleBuyItem_UnknownItem(t *testing.T) {
	server := newTestServer(&MockGameService{
		BuyItemFunc: func(ctx context.Context, sessionID string, playerID int, itemType string) (*service.PurchaseResult, error) {
			return nil, fmt.Errorf("unknown item type %q", itemType)
		},
	})

	rec := doRequest(t, server, "POST", "/api/sessions/s1/shop/buy", map[string]interface{}{
		"player_id": 0,
		"item_type": "wand",
	})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestHandleUseItem(t *testing.T) {
	server := newTestServer(&MockGameService{})

	rec := doRequest(t, server, "POST", "/api/sessions/s1/items/use", map[string]interface{}{
		"player_id": 0,
		"item_type": "point_multiplier",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var result service.ItemUseResult
	decodeBody(t, rec, &result)
	if !result.Used {
		t.Error("Expected item to be used")
	}
}

// Teleporter tests

func TestHandleTeleportEndpoints(t *testing.T) {
	server := newTestServer(&MockGameService{})

	steps := []struct {
		path string
		body interface{}
	}{
		{"/api/sessions/s1/teleport/activate", map[string]int{"player_id": 0}},
		{"/api/sessions/s1/teleport/tile", map[string]int{"tile_index": 15}},
		{"/api/sessions/s1/teleport/confirm", nil},
		{"/api/sessions/s1/teleport/cancel", nil},
	}

	for _, step := range steps {
		rec := doRequest(t, server, "POST", step.path, step.body)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected status 200, got %d", step.path, rec.Code)
		}

		var result service.TeleportResult
		decodeBody(t, rec, &result)
		if !result.Success {
			t.Errorf("%s: expected success", step.path)
		}
	}
}

// State & problem tests

func TestHandleGetGameState(t *testing.T) {
	server := newTestServer(&MockGameService{})

	rec := doRequest(t, server, "GET", "/api/sessions/s1/state", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var state engine.GameState
	decodeBody(t, rec, &state)
	if len(state.Players) != 2 {
		t.Errorf("Expected 2 players, got %d", len(state.Players))
	}
}

func TestHandleGetGameState_NotFound(t *testing.T) {
	server := newTestServer(&MockGameService{
		GetGameStateFunc: func(ctx context.Context, sessionID string) (*engine.GameState, error) {
			return nil, errors.New("session not found")
		},
	})

	rec := doRequest(t, server, "GET", "/api/sessions/missing/state", nil)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestHandleValidateProblems(t *testing.T) {
	server := newTestServer(&MockGameService{})

	rec := doRequest(t, server, "POST", "/api/problems/validate", map[string]interface{}{
		"problem_count": "1",
		"problems": []map[string]interface{}{
			{"id": 1, "question": "1/2 + 1/2", "answer": "1"},
		},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var resp struct {
		Valid bool `json:"valid"`
	}
	decodeBody(t, rec, &resp)
	if !resp.Valid {
		t.Error("Expected valid problem set")
	}
}

func TestHandleValidateProblems_Invalid(t *testing.T) {
	server := newTestServer(&MockGameService{
		ValidateProblemsFunc: func(ctx context.Context, problems *engine.ImportedProblems) error {
			return errors.New("duplicate problem id 1")
		},
	})

	rec := doRequest(t, server, "POST", "/api/problems/validate", map[string]interface{}{
		"problem_count": "2",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var resp struct {
		Valid bool   `json:"valid"`
		Error string `json:"error"`
	}
	decodeBody(t, rec, &resp)
	if resp.Valid {
		t.Error("Expected invalid problem set")
	}
	if resp.Error == "" {
		t.Error("Expected validation error message")
	}
}

// Preset tests

func TestHandleListPresets(t *testing.T) {
	server := newTestServer(&MockGameService{})

	rec := doRequest(t, server, "GET", "/api/presets", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var presets []*service.PresetInfo
	decodeBody(t, rec, &presets)
	if len(presets) != 1 || presets[0].PresetID != "classic" {
		t.Errorf("Unexpected presets: %+v", presets)
	}
}

func TestHandleGetPreset_StripsExtension(t *testing.T) {
	var gotName string
	server := newTestServer(&MockGameService{
		LoadPresetFunc: func(ctx context.Context, presetName string) (*engine.Options, error) {
			gotName = presetName
			opts := engine.DefaultOptions()
			return &opts, nil
		},
	})

	rec := doRequest(t, server, "GET", "/api/presets/classic.json", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if gotName != "classic" {
		t.Errorf("Expected preset name 'classic', got %q", gotName)
	}
}

func TestHandleCreatePreset(t *testing.T) {
	var savedName string
	server := newTestServer(&MockGameService{
		SavePresetFunc: func(ctx context.Context, presetName string, preset *engine.Options) error {
			savedName = presetName
			return nil
		},
	})

	opts := engine.DefaultOptions()
	opts.Name = "Speed Run"
	rec := doRequest(t, server, "POST", "/api/presets", opts)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if savedName != "speed_run" {
		t.Errorf("Expected preset id 'speed_run', got %q", savedName)
	}
}

func TestHandleCreatePreset_RequiresName(t *testing.T) {
	server := newTestServer(&MockGameService{})

	rec := doRequest(t, server, "POST", "/api/presets", map[string]interface{}{
		"max_rounds": 5,
	})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

// Misc

func TestHandleHealth(t *testing.T) {
	server := newTestServer(&MockGameService{})

	rec := doRequest(t, server, "GET", "/api/health", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var resp map[string]string
	decodeBody(t, rec, &resp)
	if resp["status"] != "healthy" {
		t.Errorf("Expected healthy status, got %s", resp["status"])
	}
}

func TestHandleWebSocket_RequiresSession(t *testing.T) {
	server := newTestServer(&MockGameService{})

	rec := doRequest(t, server, "GET", "/ws", nil)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 without session param, got %d", rec.Code)
	}
}

func TestHandleWebSocket_UnknownSession(t *testing.T) {
	server := newTestServer(&MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			return nil, errors.New("session not found")
		},
	})

	rec := doRequest(t, server, "GET", "/ws?sessionId=nope", nil)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for unknown session, got %d", rec.Code)
	}
}
