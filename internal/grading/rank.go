package grading

import (
	"math"
	"sort"
)

// Positions assigns competition ranking to the given scores: tied scores
// share the same position and the next distinct score is placed at
// (count of strictly higher scores + 1). The returned slice is index
// aligned with the input.
func Positions(scores []float64) []int {
	n := len(scores)
	positions := make([]int, n)
	if n == 0 {
		return positions
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })

	rank := 1
	for i, idx := range order {
		if i > 0 && scores[idx] != scores[order[i-1]] {
			rank = i + 1
		}
		positions[idx] = rank
	}
	return positions
}

// Mean returns the arithmetic mean of the scores, rounded to two
// decimal places. An empty input yields zero.
func Mean(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return Round2(sum / float64(len(scores)))
}

// Round2 rounds to two decimal places using round-half-to-even, so
// repeated recomputation of derived values is stable.
func Round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
