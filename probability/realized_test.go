package probability

import (
	"math"
	"testing"

	"github.com/bcdannyboy/stocsim/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func longPath(t *testing.T, vol float64) []float64 {
	t.Helper()
	p := models.SimulationParameters{
		Horizon:      100,
		Step:         0.01,
		PathCount:    1,
		InitialValue: 100,
		Volatility:   vol,
		Drift:        0.05,
	}
	paths, err := models.NewGBM(models.DefaultLimits()).Generate(p, rand.NewSource(17))
	require.NoError(t, err)
	return paths[0]
}

func TestLogReturns(t *testing.T) {
	r := LogReturns([]float64{100, 110, 99})
	require.Len(t, r, 2)
	assert.InDelta(t, math.Log(1.1), r[0], 1e-15)
	assert.InDelta(t, math.Log(0.9), r[1], 1e-15)

	assert.Nil(t, LogReturns([]float64{100}))
}

func TestRealizedVolatilityRecoversSigma(t *testing.T) {
	path := longPath(t, 0.2)
	assert.InDelta(t, 0.2, RealizedVolatility(path, 0.01), 0.01)
}

func TestRealizedVolatilityZeroVol(t *testing.T) {
	path := longPath(t, 0)
	assert.InDelta(t, 0, RealizedVolatility(path, 0.01), 1e-9)
	assert.Less(t, ParkinsonVolatility(path, 0.01, 10), 0.02)
}

func TestParkinsonVolatility(t *testing.T) {
	path := longPath(t, 0.2)
	v := ParkinsonVolatility(path, 0.01, 10)
	assert.Greater(t, v, 0.12)
	assert.Less(t, v, 0.22)

	assert.Zero(t, ParkinsonVolatility(path[:5], 0.01, 10))
	assert.Zero(t, ParkinsonVolatility(path, 0.01, 0))
}

func TestMeanRealizedVolatility(t *testing.T) {
	assert.Zero(t, MeanRealizedVolatility(nil, 0.01))

	path := longPath(t, 0.3)
	v := MeanRealizedVolatility(models.PathSet{path, path}, 0.01)
	assert.InDelta(t, RealizedVolatility(path, 0.01), v, 1e-12)
}
