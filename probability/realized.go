package probability

import (
	"math"

	"github.com/bcdannyboy/stocsim/models"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// LogReturns returns log(path[k+1]/path[k]) for every step.
func LogReturns(path []float64) []float64 {
	if len(path) < 2 {
		return nil
	}
	returns := make([]float64, len(path)-1)
	for k := 1; k < len(path); k++ {
		returns[k-1] = math.Log(path[k] / path[k-1])
	}
	return returns
}

// RealizedVolatility is the close-to-close estimate of sigma per unit time:
// the sample standard deviation of the log returns divided by sqrt(step).
func RealizedVolatility(path []float64, step float64) float64 {
	returns := LogReturns(path)
	if len(returns) < 2 || step <= 0 {
		return 0
	}
	return stat.StdDev(returns, nil) / math.Sqrt(step)
}

// ParkinsonVolatility groups the path into bars of barSteps steps and applies
// the Parkinson high-low range estimator, scaled to a unit of time. Sampling
// the range on a grid biases it low, more so for short bars.
func ParkinsonVolatility(path []float64, step float64, barSteps int) float64 {
	if barSteps < 1 || step <= 0 || len(path) < barSteps+1 {
		return 0
	}

	var sum float64
	bars := 0
	for start := 0; start+barSteps < len(path); start += barSteps {
		bar := path[start : start+barSteps+1]
		logRatio := math.Log(floats.Max(bar) / floats.Min(bar))
		sum += logRatio * logRatio
		bars++
	}

	perBar := sum / (4 * float64(bars) * math.Ln2)
	return math.Sqrt(perBar / (float64(barSteps) * step))
}

// MeanRealizedVolatility averages RealizedVolatility over every path.
func MeanRealizedVolatility(paths models.PathSet, step float64) float64 {
	if paths.Len() == 0 {
		return 0
	}
	vols := make([]float64, paths.Len())
	for i, path := range paths {
		vols[i] = RealizedVolatility(path, step)
	}
	return stat.Mean(vols, nil)
}
