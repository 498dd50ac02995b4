package engine

import "math/rand"

// CreateBoard lays out the tile ring. The shape is deterministic: corners
// at quarter intervals, slip/trap/shop tiles at fixed positions, and every
// remaining index a regular math tile. Content is randomized: difficulty is
// drawn uniformly, points are difficulty*10 plus a random offset, and each
// regular tile gets a question bound at creation time, taken from the
// imported set when one is supplied and synthesized otherwise.
func CreateBoard(boardSize int, imported *ImportedProblems) []TileData {
	tiles := make([]TileData, 0, boardSize)

	var pool []ImportedProblem
	if imported != nil {
		pool = append([]ImportedProblem(nil), imported.Problems...)
	}

	for i := 0; i < boardSize; i++ {
		switch {
		case i == PositionStart:
			tiles = append(tiles, TileData{Index: i, Type: TileCorner, Label: LabelStart})
		case i == boardSize/4:
			tiles = append(tiles, TileData{Index: i, Type: TileCorner, Label: LabelBonus})
		case i == boardSize/2:
			tiles = append(tiles, TileData{Index: i, Type: TileCorner, Label: LabelChallenge})
		case i == 3*boardSize/4:
			tiles = append(tiles, TileData{Index: i, Type: TileCorner, Label: LabelPenalty})
		case containsPosition(SlipPositions, i):
			tiles = append(tiles, TileData{Index: i, Type: TileObstacle, ObstacleType: ObstacleSlip})
		case containsPosition(TrapPositions, i):
			tiles = append(tiles, TileData{Index: i, Type: TileObstacle, ObstacleType: ObstacleTrap})
		case containsPosition(ShopPositions, i):
			tiles = append(tiles, TileData{Index: i, Type: TileShop, Label: "SHOP"})
		default:
			difficulty := Difficulty(rand.Intn(3) + 1)
			points := int(difficulty)*10 + rand.Intn(20)

			var problem GeneratedProblem
			if len(pool) > 0 {
				idx := rand.Intn(len(pool))
				drawn := pool[idx]
				pool = append(pool[:idx], pool[idx+1:]...)
				if len(pool) == 0 && imported != nil {
					pool = append([]ImportedProblem(nil), imported.Problems...)
				}
				problem = GeneratedProblem{
					Question: trimProblemText(drawn.Question),
					Answer:   parseAnswer(drawn.Answer),
				}
			} else {
				problem = GenerateProblem(difficulty)
			}

			tiles = append(tiles, TileData{
				Index:      i,
				Type:       TileRegular,
				Difficulty: difficulty,
				Points:     points,
				Question:   problem.Question,
				Answer:     problem.Answer,
			})
		}
	}

	return tiles
}

func containsPosition(positions []int, index int) bool {
	for _, p := range positions {
		if p == index {
			return true
		}
	}
	return false
}
