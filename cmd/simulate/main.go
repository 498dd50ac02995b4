// Command simulate plays complete games against the rules engine with simple
// bot players and prints aggregate statistics per scenario: win distribution,
// score and coin averages, answer accuracy, obstacle hits, and shop activity.
// It is a quick sanity check that long games terminate and that the scoring
// economy stays balanced after rule changes.
package main

import (
	"fmt"
	"math/rand"

	"github.com/mathquest/mathquest/game/engine"
)

// Scenario describes one batch of simulated games.
type Scenario struct {
	Name     string
	Games    int
	Players  int
	Accuracy float64 // chance a bot answers a problem correctly
}

// Stats aggregates outcomes across one scenario's games.
type Stats struct {
	Games         int
	Wins          map[int]int
	Ties          int
	TotalScore    int
	TotalCoins    int
	Correct       int
	Wrong         int
	ObstacleHits  int
	ShopPurchases int
	StartPasses   int
	Stalled       int
}

func main() {
	scenarios := []Scenario{
		{Name: "two players, sharp", Games: 50, Players: 2, Accuracy: 0.9},
		{Name: "two players, struggling", Games: 50, Players: 2, Accuracy: 0.4},
		{Name: "four players, mixed", Games: 50, Players: 4, Accuracy: 0.7},
		{Name: "full table", Games: 25, Players: 6, Accuracy: 0.6},
	}

	for _, scenario := range scenarios {
		fmt.Printf("\n=== %s (%d games, %d players, %.0f%% accuracy) ===\n",
			scenario.Name, scenario.Games, scenario.Players, scenario.Accuracy*100)
		stats := runScenario(scenario)
		printStats(scenario, stats)
	}
}

func runScenario(scenario Scenario) Stats {
	stats := Stats{Wins: make(map[int]int)}
	for i := 0; i < scenario.Games; i++ {
		simulateGame(scenario, &stats)
	}
	return stats
}

// simulateGame plays one game to completion and folds the outcome into
// stats. The turn guard caps runaway games; a game that hits it counts as
// stalled, which would indicate a turn-sequencing bug.
func simulateGame(scenario Scenario, stats *Stats) {
	eng := engine.New()
	eng.StartGame(scenario.Players, nil, nil)

	const maxTurns = 5000
	turns := 0
	for ; turns < maxTurns; turns++ {
		state := eng.State()
		if state.Screen != engine.ScreenPlaying {
			break
		}
		playTurn(eng, scenario, stats)
	}
	if turns == maxTurns {
		stats.Stalled++
		return
	}

	stats.Games++
	final := eng.State()
	for _, p := range final.Players {
		stats.TotalScore += p.Score
		stats.TotalCoins += p.Coins
	}
	recordWinner(final, stats)
}

// playTurn drives one full turn for the current player: roll (possibly via
// Lucky Dice), move, resolve the landing, advance.
func playTurn(eng *engine.Engine, scenario Scenario, stats *Stats) {
	state := eng.State()
	playerID := state.CurrentPlayer
	player := state.PlayerByID(playerID)
	if player == nil {
		eng.NextTurn()
		return
	}

	// Spend a Lucky Dice use half the time when holding one.
	if engine.HasItem(*player, engine.ItemExtraDiceRoll) && rand.Intn(2) == 0 {
		if values := eng.RollLuckyDice(); values != nil {
			best := values[0]
			if values[1] > best {
				best = values[1]
			}
			eng.ChooseDiceValue(best)
		}
	}

	if eng.State().DiceValue == 0 {
		value := eng.RollDice()
		if value == 0 {
			eng.NextTurn()
			return
		}
		eng.CompleteDiceRoll(value)
		eng.SetRolling(false)
	}

	state = eng.State()
	steps := state.DiceValue
	boardSize := state.Options.BoardSize
	pos := state.PlayerByID(playerID).Position

	eng.StartMovingPlayer(playerID)
	passedStart := false
	for i := 0; i < steps; i++ {
		pos = (pos + 1) % boardSize
		if eng.MovePlayerStep(playerID, pos) {
			passedStart = true
		}
	}
	eng.CompletePlayerMovement()
	if passedStart {
		eng.ApplyPassStartBonus(playerID)
		stats.StartPasses++
	}

	landing := eng.HandleTileLanding(pos, playerID)
	state = eng.State()
	if tile := state.TileAt(pos); tile != nil && tile.Type == engine.TileObstacle {
		stats.ObstacleHits++
	}

	switch landing {
	case engine.LandingMath:
		answerProblem(eng, scenario, stats)
	case engine.LandingSpecial:
		maybeBuy(eng, playerID, stats)
		eng.CloseShop()
		eng.NextTurn()
	default:
		eng.CloseMessage()
		eng.NextTurn()
	}
}

func answerProblem(eng *engine.Engine, scenario Scenario, stats *Stats) {
	state := eng.State()
	problem := state.MathProblem
	if problem == nil {
		eng.NextTurn()
		return
	}

	playerID := state.CurrentPlayer
	player := state.PlayerByID(playerID)

	// Arm a held Point Booster before a confident answer.
	if player != nil && engine.HasItem(*player, engine.ItemPointMultiplier) && rand.Float64() < scenario.Accuracy {
		if eng.PromptItemUse(playerID, engine.ItemPointMultiplier) {
			eng.AcceptItemUse()
		}
	}

	answer := problem.Answer
	if rand.Float64() > scenario.Accuracy {
		answer++
	}
	if eng.SubmitAnswer(answer) {
		stats.Correct++
	} else {
		stats.Wrong++
	}
	eng.CloseMessage()
	eng.NextTurn()
}

// maybeBuy picks a random affordable item from the catalog.
func maybeBuy(eng *engine.Engine, playerID int, stats *Stats) {
	state := eng.State()
	player := state.PlayerByID(playerID)
	if player == nil {
		return
	}

	var affordable []engine.ItemType
	for itemType := range engine.ItemCatalog {
		if engine.CanAffordItem(*player, itemType) {
			affordable = append(affordable, itemType)
		}
	}
	if len(affordable) == 0 {
		return
	}

	if eng.BuyItem(playerID, affordable[rand.Intn(len(affordable))]) {
		stats.ShopPurchases++
	}
}

func recordWinner(state *engine.GameState, stats *Stats) {
	best := state.Players[0].Score
	for _, p := range state.Players[1:] {
		if p.Score > best {
			best = p.Score
		}
	}
	winners := 0
	winnerID := -1
	for _, p := range state.Players {
		if p.Score == best {
			winners++
			winnerID = p.ID
		}
	}
	if winners > 1 {
		stats.Ties++
		return
	}
	stats.Wins[winnerID]++
}

func printStats(scenario Scenario, stats Stats) {
	if stats.Stalled > 0 {
		fmt.Printf("⚠️  WARNING: %d games hit the turn guard without finishing!\n", stats.Stalled)
	}
	if stats.Games == 0 {
		return
	}

	fmt.Printf("Completed games: %d\n", stats.Games)
	for id := 0; id < scenario.Players; id++ {
		fmt.Printf("  Player %d wins: %d\n", id, stats.Wins[id])
	}
	fmt.Printf("  Ties: %d\n", stats.Ties)

	players := stats.Games * scenario.Players
	fmt.Printf("Average final score: %.1f\n", float64(stats.TotalScore)/float64(players))
	fmt.Printf("Average final coins: %.1f\n", float64(stats.TotalCoins)/float64(players))

	answered := stats.Correct + stats.Wrong
	if answered > 0 {
		fmt.Printf("Answers: %d correct / %d wrong (%.0f%% observed accuracy)\n",
			stats.Correct, stats.Wrong, float64(stats.Correct)/float64(answered)*100)
	}
	fmt.Printf("Obstacle hits: %d\n", stats.ObstacleHits)
	fmt.Printf("Shop purchases: %d\n", stats.ShopPurchases)
	fmt.Printf("Start passes: %d\n", stats.StartPasses)
}
