package engine

import (
	"errors"
	"fmt"
)

// ErrInvalidProblemSet reports a structurally invalid imported problem set.
var ErrInvalidProblemSet = errors.New("invalid problem set")

// ValidateImportedProblems checks the structural shape of an imported
// problem set: a non-empty list where every entry carries an id, a question,
// and an answer, with no duplicate ids. The engine itself trusts imported
// data; this check belongs to the caller before handing data over.
func ValidateImportedProblems(imported *ImportedProblems) error {
	if imported == nil {
		return fmt.Errorf("%w: no data", ErrInvalidProblemSet)
	}
	if len(imported.Problems) == 0 {
		return fmt.Errorf("%w: empty problem list", ErrInvalidProblemSet)
	}

	seen := make(map[int]bool, len(imported.Problems))
	for i, p := range imported.Problems {
		if p.Question == "" {
			return fmt.Errorf("%w: problem %d has no question", ErrInvalidProblemSet, i)
		}
		if p.Answer == "" {
			return fmt.Errorf("%w: problem %d has no answer", ErrInvalidProblemSet, i)
		}
		if seen[p.ID] {
			return fmt.Errorf("%w: duplicate problem id %d", ErrInvalidProblemSet, p.ID)
		}
		seen[p.ID] = true
	}
	return nil
}
