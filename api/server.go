package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/mathquest/mathquest/game/engine"
	"github.com/mathquest/mathquest/game/service"
	"github.com/mathquest/mathquest/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
	logger  *zap.Logger
}

// NewServer creates a new API server
func NewServer(gameService service.GameService, hub *websocket.Hub, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
		logger:  logger,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Game setup
	api.HandleFunc("/sessions/{id}/start", s.handleStartGame).Methods("POST")
	api.HandleFunc("/sessions/{id}/avatar-selection", s.handleStartAvatarSelection).Methods("POST")
	api.HandleFunc("/sessions/{id}/avatar", s.handleSelectAvatar).Methods("POST")
	api.HandleFunc("/sessions/{id}/reset", s.handleReset).Methods("POST")

	// Turn flow
	api.HandleFunc("/sessions/{id}/roll", s.handleRoll).Methods("POST")
	api.HandleFunc("/sessions/{id}/dice-choice", s.handleChooseDiceValue).Methods("POST")
	api.HandleFunc("/sessions/{id}/move", s.handleMove).Methods("POST")
	api.HandleFunc("/sessions/{id}/answer", s.handleAnswer).Methods("POST")
	api.HandleFunc("/sessions/{id}/answer-timeout", s.handleAnswerTimeout).Methods("POST")
	api.HandleFunc("/sessions/{id}/end-turn", s.handleEndTurn).Methods("POST")
	api.HandleFunc("/sessions/{id}/pause", s.handleTogglePause).Methods("POST")
	api.HandleFunc("/sessions/{id}/time-left", s.handleSetTimeLeft).Methods("POST")

	// Shop & items
	api.HandleFunc("/sessions/{id}/shop/buy", s.handleBuyItem).Methods("POST")
	api.HandleFunc("/sessions/{id}/shop/close", s.handleCloseShop).Methods("POST")
	api.HandleFunc("/sessions/{id}/items/use", s.handleUseItem).Methods("POST")

	// Teleporter
	api.HandleFunc("/sessions/{id}/teleport/activate", s.handleActivateTeleporter).Methods("POST")
	api.HandleFunc("/sessions/{id}/teleport/tile", s.handleSelectTeleportTile).Methods("POST")
	api.HandleFunc("/sessions/{id}/teleport/confirm", s.handleConfirmTeleport).Methods("POST")
	api.HandleFunc("/sessions/{id}/teleport/cancel", s.handleCancelTeleport).Methods("POST")

	// Game state
	api.HandleFunc("/sessions/{id}/state", s.handleGetGameState).Methods("GET")

	// Problem sets
	api.HandleFunc("/problems/validate", s.handleValidateProblems).Methods("POST")

	// Presets
	api.HandleFunc("/presets", s.handleListPresets).Methods("GET")
	api.HandleFunc("/presets", s.handleCreatePreset).Methods("POST")
	api.HandleFunc("/presets/{name}", s.handleGetPreset).Methods("GET")

	// Health
	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)

	// Static files (the game board)
	s.router.PathPrefix("/").Handler(http.FileServer(http.Dir("./static/")))
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// broadcast pushes the current state to WebSocket clients after a mutation.
func (s *Server) broadcast(sessionID string, state *engine.GameState) {
	if s.hub != nil && state != nil {
		s.hub.BroadcastState(sessionID, state)
	}
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PresetID string `json:"preset_id,omitempty"`
	}

	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	session, err := s.service.CreateSession(r.Context(), req.PresetID)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default: "desc")
	limitStr := query.Get("limit") // number of sessions to return

	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	sort.Slice(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else { // "accessed"
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj) // desc
	})

	total := len(sessions)
	limit := total
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < total {
			limit = l
		}
	}
	sessions = sessions[:limit]

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	session, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Game Setup Handlers

func (s *Server) decodeStartRequest(w http.ResponseWriter, r *http.Request) (service.StartGameRequest, bool) {
	var req service.StartGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return req, false
	}
	return req, true
}

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	req, ok := s.decodeStartRequest(w, r)
	if !ok {
		return
	}

	state, err := s.service.StartGame(r.Context(), sessionID, req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.broadcast(sessionID, state)
	s.logger.Info("game started",
		zap.String("session_id", sessionID),
		zap.Int("players", req.PlayerCount))

	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleStartAvatarSelection(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	req, ok := s.decodeStartRequest(w, r)
	if !ok {
		return
	}

	state, err := s.service.StartAvatarSelection(r.Context(), sessionID, req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.broadcast(sessionID, state)
	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleSelectAvatar(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		AvatarIndex int    `json:"avatar_index"`
		Color       string `json:"color"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	state, err := s.service.SelectAvatar(r.Context(), sessionID, req.AvatarIndex, req.Color)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.broadcast(sessionID, state)
	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.ResetGame(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	s.broadcast(sessionID, state)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Game reset successfully",
		"state":   state,
	})
}

// Turn Flow Handlers

func (s *Server) handleRoll(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	result, err := s.service.Roll(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.broadcast(sessionID, result.GameState)
	s.logger.Info("dice rolled",
		zap.String("session_id", sessionID),
		zap.Int("player", result.GameState.CurrentPlayer),
		zap.Int("value", result.DiceValue))

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleChooseDiceValue(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Value int `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.ChooseDiceValue(r.Context(), sessionID, req.Value)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.broadcast(sessionID, result.GameState)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	result, err := s.service.Move(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.broadcast(sessionID, result.GameState)
	s.logger.Info("player moved",
		zap.String("session_id", sessionID),
		zap.Int("player", result.PlayerID),
		zap.Int("from", result.From),
		zap.Int("to", result.To),
		zap.Bool("passed_start", result.PassedStart),
		zap.String("landing", string(result.Landing)))

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Answer float64 `json:"answer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.Answer(r.Context(), sessionID, req.Answer)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.broadcast(sessionID, result.GameState)
	s.logger.Info("answer submitted",
		zap.String("session_id", sessionID),
		zap.Int("player", result.PlayerID),
		zap.Bool("correct", result.Correct),
		zap.Int("score_delta", result.ScoreDelta))

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleAnswerTimeout(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	result, err := s.service.AnswerTimeout(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.broadcast(sessionID, result.GameState)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleEndTurn(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.EndTurn(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.broadcast(sessionID, state)
	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleTogglePause(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.TogglePause(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.broadcast(sessionID, state)
	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleSetTimeLeft(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Seconds int `json:"seconds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.service.SetTimeLeft(r.Context(), sessionID, req.Seconds); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Timer updated"})
}

// Shop & Item Handlers

func (s *Server) handleBuyItem(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		PlayerID int    `json:"player_id"`
		ItemType string `json:"item_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.BuyItem(r.Context(), sessionID, req.PlayerID, req.ItemType)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.broadcast(sessionID, result.GameState)
	s.logger.Info("item purchase",
		zap.String("session_id", sessionID),
		zap.Int("player", req.PlayerID),
		zap.String("item", req.ItemType),
		zap.Bool("success", result.Success))

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleCloseShop(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.CloseShop(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.broadcast(sessionID, state)
	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleUseItem(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		PlayerID int    `json:"player_id"`
		ItemType string `json:"item_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.UseItem(r.Context(), sessionID, req.PlayerID, req.ItemType)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.broadcast(sessionID, result.GameState)
	respondJSON(w, http.StatusOK, result)
}

// Teleporter Handlers

func (s *Server) handleActivateTeleporter(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		PlayerID int `json:"player_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.ActivateTeleporter(r.Context(), sessionID, req.PlayerID)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.broadcast(sessionID, result.GameState)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleSelectTeleportTile(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		TileIndex int `json:"tile_index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.SelectTeleportTile(r.Context(), sessionID, req.TileIndex)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.broadcast(sessionID, result.GameState)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleConfirmTeleport(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	result, err := s.service.ConfirmTeleport(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.broadcast(sessionID, result.GameState)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleCancelTeleport(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	result, err := s.service.CancelTeleport(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.broadcast(sessionID, result.GameState)
	respondJSON(w, http.StatusOK, result)
}

// Game State Handler

func (s *Server) handleGetGameState(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.GetGameState(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, state)
}

// Problem Set Handlers

func (s *Server) handleValidateProblems(w http.ResponseWriter, r *http.Request) {
	var problems engine.ImportedProblems
	if err := json.NewDecoder(r.Body).Decode(&problems); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.service.ValidateProblems(r.Context(), &problems); err != nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"valid":    true,
		"problems": len(problems.Problems),
	})
}

// Preset Handlers

func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	presets, err := s.service.ListPresets(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, presets)
}

func (s *Server) handleGetPreset(w http.ResponseWriter, r *http.Request) {
	presetName := mux.Vars(r)["name"]
	presetName = strings.TrimSuffix(presetName, ".json")

	preset, err := s.service.LoadPreset(r.Context(), presetName)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, preset)
}

func (s *Server) handleCreatePreset(w http.ResponseWriter, r *http.Request) {
	var preset engine.Options
	if err := json.NewDecoder(r.Body).Decode(&preset); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if preset.Name == "" {
		respondError(w, http.StatusBadRequest, "Preset name is required")
		return
	}

	name := strings.ToLower(strings.ReplaceAll(preset.Name, " ", "_"))
	if err := s.service.SavePreset(r.Context(), name, &preset); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("Failed to save preset: %v", err))
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "Preset saved successfully",
		"preset_id": name,
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		sessionID = r.URL.Query().Get("session")
	}
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	// Verify session exists
	if _, err := s.service.GetSession(context.Background(), sessionID); err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, sessionID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
