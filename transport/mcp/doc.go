// Package mcp provides a Model Context Protocol interface to the game.
//
// The mcp package implements:
//   - MCP server for AI agent integration
//   - Tool definitions for every game operation
//   - Session-aware command execution
//   - Stdio and HTTP transport modes
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - create_session / get_session / list_sessions: session management
//   - start_game: begin a game with 2-4 players
//   - game_state: current board, scores, and open problem
//   - roll_dice / choose_dice_value / move_player: movement
//   - answer_problem: answer the open math problem
//   - buy_item / use_item / close_shop: shop and inventory
//   - teleport: four-phase teleporter item flow
//   - end_turn / reset_game: turn and game control
//   - list_presets: available rule presets
//   - game_instructions: complete rules reference
//
// Architecture:
//
// The MCP layer is a thin client over the REST API rather than a second
// integration with the service layer. Every tool call becomes an HTTP
// request, so MCP agents and browser clients always observe identical
// behavior, and state broadcasts reach WebSocket watchers regardless of
// which transport drove the change.
//
// Transport Modes:
//
// The server supports two transport modes:
//   - Stdio: direct stdio communication for local MCP clients
//   - HTTP: POST /mcp endpoint on the game server for remote integration
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
