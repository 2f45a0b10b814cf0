package probability

import (
	"fmt"
	"math"
	"sort"

	"github.com/bcdannyboy/stocsim/models"
)

// TerminalReturns computes the simple return S_T/S_0 - 1 of every path.
func TerminalReturns(paths models.PathSet) []float64 {
	returns := make([]float64, paths.Len())
	for i, path := range paths {
		returns[i] = path[len(path)-1]/path[0] - 1
	}
	return returns
}

// ValueAtRisk computes the loss threshold not exceeded with the given
// confidence. Losses are reported as positive numbers.
func ValueAtRisk(returns []float64, confidence float64) (float64, error) {
	losses, err := sortedLosses(returns, confidence)
	if err != nil {
		return 0, err
	}
	return losses[varIndex(len(losses), confidence)], nil
}

// ExpectedShortfall averages the losses at or beyond the VaR threshold.
func ExpectedShortfall(returns []float64, confidence float64) (float64, error) {
	losses, err := sortedLosses(returns, confidence)
	if err != nil {
		return 0, err
	}
	tail := losses[:varIndex(len(losses), confidence)+1]
	sum := 0.0
	for _, l := range tail {
		sum += l
	}
	return sum / float64(len(tail)), nil
}

// sortedLosses returns -returns sorted from the largest loss down.
func sortedLosses(returns []float64, confidence float64) ([]float64, error) {
	if len(returns) == 0 {
		return nil, fmt.Errorf("no returns to evaluate")
	}
	if confidence <= 0 || confidence >= 1 || math.IsNaN(confidence) {
		return nil, fmt.Errorf("confidence level must be in (0, 1), got %g", confidence)
	}

	losses := make([]float64, len(returns))
	for i, r := range returns {
		losses[i] = -r
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(losses)))
	return losses, nil
}

func varIndex(n int, confidence float64) int {
	index := int(float64(n) * (1 - confidence))
	if index >= n {
		index = n - 1
	}
	return index
}
