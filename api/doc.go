// Package api provides the REST interface to the game.
//
// The api package implements:
//   - Session management endpoints (create, list, get, delete)
//   - Game setup endpoints (start, avatar selection, reset)
//   - Turn flow endpoints (roll, dice choice, move, answer, end turn)
//   - Shop, item, and teleporter endpoints
//   - Problem set validation and rule preset management
//   - WebSocket upgrade for live state updates
//
// API Design:
//
// The API follows REST conventions with game actions modeled as POSTs on
// session sub-resources:
//
//	POST   /api/sessions                     - Create a new session
//	GET    /api/sessions                     - List sessions (sort, order, limit)
//	GET    /api/sessions/{id}                - Get session info
//	DELETE /api/sessions/{id}                - Delete a session
//	POST   /api/sessions/{id}/start          - Start a game
//	POST   /api/sessions/{id}/roll           - Roll the dice
//	POST   /api/sessions/{id}/move           - Move the current player
//	POST   /api/sessions/{id}/answer         - Answer the open problem
//	POST   /api/sessions/{id}/shop/buy       - Buy an item
//	POST   /api/sessions/{id}/items/use      - Use a held item
//	POST   /api/sessions/{id}/teleport/...   - Teleporter flow
//	GET    /api/sessions/{id}/state          - Current game state
//	POST   /api/problems/validate            - Validate an imported problem set
//	GET    /api/presets                      - List rule presets
//	GET    /ws?sessionId={id}                - WebSocket state stream
//
// Response Format:
//
// All responses are JSON. Mutating endpoints return the operation result
// including a full game state snapshot; errors return {"error": "message"}
// with an appropriate status code.
//
// WebSocket Integration:
//
// After every successful mutation the server broadcasts the resulting game
// state to all WebSocket clients attached to the session, so every open
// board stays in sync without polling.
package api
