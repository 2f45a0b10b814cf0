package models

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultWarnThreshold is the lambda*dt above which thinning is considered coarse.
const DefaultWarnThreshold = 0.1

// PoissonJump generates jump times of a Poisson process by Bernoulli thinning
// on the step grid, with an optional Poisson distributed jump size per event.
//
// Thinning assumes at most one arrival per grid cell, so it is only accurate
// while Intensity*Step is small. Generate logs a warning (and carries on) when
// Intensity*Step exceeds WarnThreshold; a non-positive threshold disables it.
type PoissonJump struct {
	Limits        Limits
	WarnThreshold float64

	log zerolog.Logger
}

// NewPoissonJump creates a Poisson jump generator.
func NewPoissonJump(limits Limits, log zerolog.Logger) *PoissonJump {
	return &PoissonJump{
		Limits:        limits,
		WarnThreshold: DefaultWarnThreshold,
		log:           log.With().Str("component", "poisson_jump").Logger(),
	}
}

// Generate walks t = k*Step for k = 0..StepCount, drawing one uniform u per
// grid point and recording an event at t when u < 1 - exp(-Intensity*Step).
// Marks are drawn from src right after their event, so draws stay in time
// order.
func (g *PoissonJump) Generate(p SimulationParameters, src rand.Source) (JumpSeries, error) {
	if err := p.ValidatePoisson(); err != nil {
		return JumpSeries{}, err
	}
	if src == nil {
		return JumpSeries{}, fmt.Errorf("%w: nil random source", ErrInvalidParameter)
	}
	steps, err := g.Limits.checkGrid(p.Horizon, p.Step, 1)
	if err != nil {
		return JumpSeries{}, err
	}

	lambdaDt := p.Intensity * p.Step
	if g.WarnThreshold > 0 && lambdaDt > g.WarnThreshold {
		g.log.Warn().
			Float64("lambda_dt", lambdaDt).
			Float64("threshold", g.WarnThreshold).
			Msg("Thinning step is coarse relative to intensity, jumps will be undercounted")
	}

	// probability of at least one arrival in a cell of width Step
	f := -math.Expm1(-lambdaDt)

	rng := rand.New(src)
	sizes := distuv.Poisson{Lambda: p.JumpSizeMean, Src: src}

	series := JumpSeries{Times: []float64{}, Marks: []int{}}
	for k := 0; k <= steps; k++ {
		if rng.Float64() >= f {
			continue
		}
		t := math.Min(float64(k)*p.Step, p.Horizon)
		mark := 1
		if !p.UnitJumpSize {
			mark = int(sizes.Rand())
		}
		series.Times = append(series.Times, t)
		series.Marks = append(series.Marks, mark)
	}
	return series, nil
}
