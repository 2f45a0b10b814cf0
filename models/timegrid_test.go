package models

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepCount(t *testing.T) {
	tests := []struct {
		name    string
		horizon float64
		step    float64
		want    int
	}{
		{name: "exact division", horizon: 1.0, step: 0.5, want: 2},
		{name: "truncates remainder", horizon: 1.0, step: 0.3, want: 3},
		{name: "step larger than horizon", horizon: 1.0, step: 2.0, want: 0},
		{name: "daily steps over a year", horizon: 1.0, step: 1.0 / 365, want: int(math.Floor(1.0 / (1.0 / 365)))},
		{name: "unit step", horizon: 10, step: 1, want: 10},
		{name: "inexact ratio floors below", horizon: 0.3, step: 0.1, want: 2},
		{name: "inexact ratio floors below again", horizon: 0.7, step: 0.1, want: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StepCount(tt.horizon, tt.step))
		})
	}
}

func TestStepTimesInexactRatio(t *testing.T) {
	times := StepTimes(0.3, 0.1)
	require.Len(t, times, 3)
	assert.Less(t, times[2], 0.3)
}

func TestTimeLabels(t *testing.T) {
	labels := TimeLabels(1.0, 0.25)
	require.Len(t, labels, 5)
	assert.InDeltaSlice(t, []float64{0, 0.25, 0.5, 0.75, 1.0}, labels, 1e-12)

	// labels always end at horizon, even when the grid stops short of it
	labels = TimeLabels(1.0, 0.3)
	require.Len(t, labels, 4)
	assert.Equal(t, 0.0, labels[0])
	assert.InDelta(t, 1.0, labels[3], 1e-12)

	assert.Equal(t, []float64{0}, TimeLabels(1.0, 5.0))
}

func TestStepTimes(t *testing.T) {
	times := StepTimes(1.0, 0.3)
	require.Len(t, times, 4)
	for k, v := range times {
		assert.Equal(t, float64(k)*0.3, v)
	}
	assert.Less(t, times[3], 1.0)
}

func TestLimitsCheckGrid(t *testing.T) {
	limits := Limits{MaxSteps: 100, MaxSamples: 1000}

	steps, err := limits.checkGrid(1.0, 0.01, 9)
	require.NoError(t, err)
	assert.Equal(t, 100, steps)

	_, err = limits.checkGrid(1.0, 0.001, 1)
	assert.True(t, errors.Is(err, ErrResourceLimitExceeded))

	_, err = limits.checkGrid(1.0, 0.01, 10)
	assert.True(t, errors.Is(err, ErrResourceLimitExceeded), "101 points x 10 paths is over 1000 samples")

	_, err = Limits{}.checkGrid(1.0, 1e-300, 1)
	assert.True(t, errors.Is(err, ErrResourceLimitExceeded), "grid must not overflow int")

	steps, err = Limits{}.checkGrid(1.0, 1e-6, 1000)
	require.NoError(t, err)
	assert.Equal(t, StepCount(1.0, 1e-6), steps)
}
