package engine

import (
	"fmt"
	"math/rand"
)

// GenerateProblem produces a random arithmetic question for the given
// difficulty tier.
//
// Easy uses two operands in [1,20] with + or -. Medium uses operands in
// [10,59] and [5,34] with +, -, or *. Hard is either multiplication of two
// operands in [5,24], or a division constructed backward from divisor and
// quotient so the answer is always an exact integer.
func GenerateProblem(difficulty Difficulty) GeneratedProblem {
	var a, b, answer int
	var op string

	switch difficulty {
	case DifficultyEasy:
		a = rand.Intn(20) + 1
		b = rand.Intn(20) + 1
		if rand.Intn(2) == 0 {
			op = "+"
			answer = a + b
		} else {
			op = "-"
			answer = a - b
		}

	case DifficultyMedium:
		a = rand.Intn(50) + 10
		b = rand.Intn(30) + 5
		switch rand.Intn(3) {
		case 0:
			op = "+"
			answer = a + b
		case 1:
			op = "-"
			answer = a - b
		default:
			op = "*"
			answer = a * b
		}

	case DifficultyHard:
		if rand.Intn(2) == 0 {
			op = "*"
			a = rand.Intn(20) + 5
			b = rand.Intn(20) + 5
			answer = a * b
		} else {
			op = "/"
			b = rand.Intn(10) + 2
			answer = rand.Intn(20) + 5
			a = b * answer
		}

	default:
		op = "+"
	}

	return GeneratedProblem{
		Question: fmt.Sprintf("%d %s %d", a, op, b),
		Answer:   float64(answer),
	}
}
