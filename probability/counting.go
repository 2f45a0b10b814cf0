package probability

import (
	"math"

	"github.com/bcdannyboy/stocsim/models"
)

// CountingPath evaluates the compound counting process N(t), the sum of marks
// of all events at or before t, on the grid t = k*step. Event times are
// matched to grid points by index, so float drift in the times is harmless.
func CountingPath(series models.JumpSeries, horizon, step float64) []float64 {
	n := make([]float64, models.StepCount(horizon, step)+1)
	for i, t := range series.Times {
		k := int(math.Round(t / step))
		if k < 0 || k >= len(n) {
			continue
		}
		n[k] += float64(series.Marks[i])
	}
	for k := 1; k < len(n); k++ {
		n[k] += n[k-1]
	}
	return n
}

// EmpiricalIntensity estimates lambda as events per unit time.
func EmpiricalIntensity(series models.JumpSeries, horizon float64) float64 {
	if horizon <= 0 {
		return 0
	}
	return float64(series.Len()) / horizon
}
