package models

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// StepCount returns floor(horizon/step). When horizon/step is not exactly
// representable the last grid point falls strictly before horizon.
func StepCount(horizon, step float64) int {
	return int(math.Floor(horizon / step))
}

// TimeLabels returns StepCount+1 evenly spaced labels from 0 to horizon
// inclusive, for plotting a PathSet against time.
func TimeLabels(horizon, step float64) []float64 {
	n := StepCount(horizon, step) + 1
	if n < 2 {
		return []float64{0}
	}
	return floats.Span(make([]float64, n), 0, horizon)
}

// StepTimes returns k*step for k = 0..StepCount, the grid the Poisson
// thinning walks.
func StepTimes(horizon, step float64) []float64 {
	n := StepCount(horizon, step) + 1
	times := make([]float64, n)
	for k := range times {
		times[k] = float64(k) * step
	}
	return times
}

// Limits bounds the size of a single generate call. A zero field means no limit.
type Limits struct {
	MaxSteps   int // grid points along one path
	MaxSamples int // float64 values held by one result
}

// DefaultLimits keeps a single result around one gigabyte.
func DefaultLimits() Limits {
	return Limits{
		MaxSteps:   1 << 24,
		MaxSamples: 1 << 27,
	}
}

// checkGrid rejects grids larger than the limits before StepCount is
// converted to int, so a pathological step cannot overflow.
func (l Limits) checkGrid(horizon, step float64, paths int) (int, error) {
	n := math.Floor(horizon / step)
	if n > math.MaxInt32 || (l.MaxSteps > 0 && n > float64(l.MaxSteps)) {
		return 0, fmt.Errorf("%w: %g steps exceeds limit of %d", ErrResourceLimitExceeded, n, l.MaxSteps)
	}
	steps := int(n)
	if l.MaxSamples > 0 && paths > 0 && steps+1 > l.MaxSamples/paths {
		return 0, fmt.Errorf("%w: %d paths of %d points exceeds limit of %d samples", ErrResourceLimitExceeded, paths, steps+1, l.MaxSamples)
	}
	return steps, nil
}
