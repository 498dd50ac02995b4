package engine

import (
	"math/rand"
	"strconv"
	"strings"
)

// PoolState is the depleting working set of imported problems plus the
// ledger of ids already drawn.
type PoolState struct {
	Pool    []ImportedProblem
	UsedIDs map[int]bool
}

// InitializePool copies the imported problem list into a fresh pool. The
// import source itself is never mutated.
func InitializePool(imported *ImportedProblems) PoolState {
	state := PoolState{UsedIDs: map[int]bool{}}
	if imported != nil {
		state.Pool = append([]ImportedProblem(nil), imported.Problems...)
	}
	return state
}

// NextProblem draws the next problem. With an import source and a non-empty
// pool it removes a uniformly random entry, records its id, and refills the
// pool when the draw empties it, excluding the just-used problem unless it
// is the only one in the source. Without imported problems it falls back to
// the generator for the given difficulty.
func NextProblem(difficulty Difficulty, imported *ImportedProblems, current []ImportedProblem, usedIDs map[int]bool) (GeneratedProblem, PoolState) {
	if imported != nil && len(current) > 0 {
		idx := rand.Intn(len(current))
		drawn := current[idx]

		pool := append([]ImportedProblem(nil), current...)
		pool = append(pool[:idx], pool[idx+1:]...)

		used := make(map[int]bool, len(usedIDs)+1)
		for id := range usedIDs {
			used[id] = true
		}
		used[drawn.ID] = true

		if len(pool) == 0 && len(imported.Problems) > 1 {
			for _, p := range imported.Problems {
				if p.ID != drawn.ID {
					pool = append(pool, p)
				}
			}
		}

		return GeneratedProblem{
			Question: trimProblemText(drawn.Question),
			Answer:   parseAnswer(drawn.Answer),
		}, PoolState{Pool: pool, UsedIDs: used}
	}

	return GenerateProblem(difficulty), PoolState{Pool: current, UsedIDs: usedIDs}
}

// parseAnswer converts an imported answer string to a number. Internal
// whitespace is stripped first so formatted numbers like "1 055" parse; an
// unparseable answer silently becomes 0.
func parseAnswer(raw string) float64 {
	cleaned := strings.Join(strings.Fields(raw), "")
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return value
}

func trimProblemText(raw string) string {
	return strings.TrimSpace(raw)
}
