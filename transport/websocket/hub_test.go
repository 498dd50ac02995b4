package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mathquest/mathquest/game/engine"
)

func TestNewHub(t *testing.T) {
	hub := NewHub(nil)

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}
	if hub.sessions == nil {
		t.Error("Hub sessions map is nil")
	}
	if hub.broadcast == nil {
		t.Error("Hub broadcast channel is nil")
	}
	if hub.register == nil {
		t.Error("Hub register channel is nil")
	}
	if hub.unregister == nil {
		t.Error("Hub unregister channel is nil")
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub(nil)

	client := &Client{
		hub:       hub,
		sessionID: "test-session",
		send:      make(chan []byte, 256),
	}

	hub.registerClient(client)

	if _, exists := hub.sessions["test-session"]; !exists {
		t.Error("Session was not created")
	}
	if !hub.sessions["test-session"][client] {
		t.Error("Client was not registered in session")
	}
	if len(hub.sessions["test-session"]) != 1 {
		t.Errorf("Expected 1 client in session, got %d", len(hub.sessions["test-session"]))
	}
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub(nil)

	client := &Client{
		hub:       hub,
		sessionID: "test-session",
		send:      make(chan []byte, 256),
	}

	hub.registerClient(client)
	hub.unregisterClient(client)

	if _, exists := hub.sessions["test-session"]; exists {
		t.Error("Session should have been cleaned up after last client unregistered")
	}
}

func TestHubMultipleClientsInSession(t *testing.T) {
	hub := NewHub(nil)
	sessionID := "multi-client-session"

	client1 := &Client{
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, 256),
	}
	client2 := &Client{
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, 256),
	}

	hub.registerClient(client1)
	hub.registerClient(client2)

	if len(hub.sessions[sessionID]) != 2 {
		t.Errorf("Expected 2 clients in session, got %d", len(hub.sessions[sessionID]))
	}

	hub.unregisterClient(client1)

	if len(hub.sessions[sessionID]) != 1 {
		t.Errorf("Expected 1 client remaining in session, got %d", len(hub.sessions[sessionID]))
	}
	if !hub.sessions[sessionID][client2] {
		t.Error("client2 should still be registered")
	}
}

func TestHubBroadcastState(t *testing.T) {
	hub := NewHub(nil)
	sessionID := "broadcast-test"

	client := &Client{
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, 256),
	}
	hub.registerClient(client)

	go hub.Run()

	state := &engine.GameState{
		Screen:        engine.ScreenPlaying,
		CurrentPlayer: 1,
		DiceValue:     4,
	}
	hub.BroadcastState(sessionID, state)

	select {
	case data := <-client.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if message.SessionID != sessionID {
			t.Errorf("Expected sessionID %s, got %s", sessionID, message.SessionID)
		}
		if message.Event != "state_update" {
			t.Errorf("Expected event 'state_update', got %s", message.Event)
		}
		if message.GameState == nil {
			t.Fatal("GameState missing from broadcast")
		}
		if message.GameState.Screen != engine.ScreenPlaying || message.GameState.DiceValue != 4 {
			t.Error("GameState not correctly transmitted")
		}

	case <-time.After(100 * time.Millisecond):
		t.Error("No message received within timeout")
	}
}

func TestHubBroadcastEvent(t *testing.T) {
	hub := NewHub(nil)
	sessionID := "event-test"

	client := &Client{
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, 256),
	}
	hub.registerClient(client)

	go hub.Run()

	hub.BroadcastEvent(sessionID, "shop_opened", map[string]int{"player_id": 0})

	select {
	case data := <-client.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if message.Event != "shop_opened" {
			t.Errorf("Expected event 'shop_opened', got %s", message.Event)
		}
		if message.GameState != nil {
			t.Error("Custom events should not carry a game state")
		}

	case <-time.After(100 * time.Millisecond):
		t.Error("No message received within timeout")
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub(nil)
	sessionID := "slow-client"

	// Zero-capacity send channel with nobody reading it.
	client := &Client{
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte),
	}
	hub.registerClient(client)

	hub.broadcastMessage(&Message{SessionID: sessionID, Event: "state_update"})

	if _, exists := hub.sessions[sessionID]; exists {
		t.Error("Slow client should have been dropped and its session cleaned up")
	}
}

func TestWebSocketUpgrade(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("sessionId")
		if sessionID == "" {
			sessionID = "default"
		}
		hub.ServeWS(w, r, sessionID)
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?sessionId=ws-test"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	// Give some time for registration.
	time.Sleep(50 * time.Millisecond)

	if len(hub.sessions["ws-test"]) != 1 {
		t.Errorf("Expected 1 client in session, got %d", len(hub.sessions["ws-test"]))
	}

	conn.Close()
	time.Sleep(50 * time.Millisecond)

	if _, exists := hub.sessions["ws-test"]; exists {
		t.Error("Session should have been cleaned up after WebSocket close")
	}
}

func TestWebSocketReceivesStateUpdate(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, "state-recv")
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	time.Sleep(50 * time.Millisecond)

	eng := engine.New()
	eng.StartGame(2, nil, nil)
	hub.BroadcastState("state-recv", eng.State())

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read message: %v", err)
	}

	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}
	if message.GameState == nil {
		t.Fatal("Expected a game state in the broadcast")
	}
	if message.GameState.Screen != engine.ScreenPlaying {
		t.Errorf("Expected playing screen, got %s", message.GameState.Screen)
	}
	if len(message.GameState.Players) != 2 {
		t.Errorf("Expected 2 players, got %d", len(message.GameState.Players))
	}
}
