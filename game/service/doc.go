// Package service provides the business logic layer for Math Quest.
//
// The service package implements:
//   - Multi-session game management
//   - Turn orchestration: roll, move, landing resolution, answer, advance
//   - Shop purchases, item activation, and the teleporter flow
//   - Rule preset management and problem-set validation
//   - Session lifecycle management
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// PresetManager manages rule preset loading and validation.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine, providing session isolation, preset management, and turn
// orchestration. Each session maintains its own game engine instance with
// independent state. The engine itself is single-threaded; the service
// serializes access with its own lock.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	presetMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, presetMgr, logger)
//
//	// Create a new session
//	sessionInfo, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Play a turn
//	roll, err := gameService.Roll(ctx, sessionInfo.ID)
//	move, err := gameService.Move(ctx, sessionInfo.ID)
//	if move.Landing == engine.LandingMath {
//		result, err := gameService.Answer(ctx, sessionInfo.ID, 42)
//	}
//
// Session Management:
//
// Sessions are identified by short shareable IDs and maintain independent
// game state. Multiple sessions can run concurrently with different rule
// presets. Sessions track creation time and last access time, and are
// persisted after every mutation when a persistence layer is configured.
package service
