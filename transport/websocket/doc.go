// Package websocket pushes live game state to connected boards.
//
// The package uses a hub-and-spoke model: a central Hub tracks every
// connection grouped by session ID, and each connection gets a read and a
// write goroutine. The game itself is driven through the REST API; the
// WebSocket side is broadcast-only, so clients never need to send anything
// beyond the pings that keep the connection alive.
//
// Message Protocol:
//
// Every frame is a JSON-encoded Message. State updates carry the complete
// GameState so clients can render without tracking diffs:
//
//	{"session_id": "a1b2c3d4", "event": "state_update", "game_state": {...}}
//
// Session Integration:
//
// Clients specify their session via query parameter (?sessionId=a1b2c3d4)
// when connecting. Broadcasts only reach clients attached to that session,
// so multiple classrooms can share one server.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run()
//
//	// after each engine state change:
//	hub.BroadcastState(sessionID, state)
//
// Concurrency:
//
// All session-map access happens on the Run goroutine; BroadcastState and
// BroadcastEvent hand messages to it through a channel. A client whose send
// buffer fills up is dropped instead of blocking the hub.
package websocket
