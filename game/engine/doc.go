// Package engine provides the core game logic for Math Quest.
//
// The engine package implements the game rules as a deterministic state
// machine, decoupled from any rendering or transport concern:
//   - Board generation: a 40-tile ring with fixed corners, obstacle,
//     and shop positions, and randomized math tiles
//   - Problem generation and the imported-problem pool
//   - Scoring, streaks, and the coin economy
//   - Turn sequencing over a fixed number of rounds
//   - Obstacle effects and item-based mitigation
//   - The item shop, Lucky Dice, Point Booster, and Teleporter flows
//
// Core Types:
//
// Engine owns the single authoritative GameState snapshot and exposes all
// player-facing operations. The rule modules (scoring.go, turn.go,
// obstacles.go, items.go, board.go, problems.go, mathgen.go) are pure
// functions consumed by the engine; they have no dependencies on each
// other.
//
// Usage:
//
//	eng := engine.New()
//	unsubscribe := eng.Subscribe(func(s *engine.GameState) {
//		// render s
//	})
//	defer unsubscribe()
//
//	eng.StartGame(2, nil, nil)
//	value := eng.RollDice()
//	eng.CompleteDiceRoll(value)
//
// Every public operation atomically replaces the state snapshot and
// notifies all subscribers synchronously. Operations invoked in an invalid
// state (a double roll, an answer with no open problem, a teleport confirm
// with nothing staged) are safe no-ops returning a failure indicator; the
// engine never panics on any reachable call order.
package engine
