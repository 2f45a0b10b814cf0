package models

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
)

// GBM generates Geometric Brownian Motion paths from the exact solution of
// dS = S(mu dt + sigma dW):
//
//	S[k+1] = S[k] * exp((mu - sigma^2/2) dt + sigma sqrt(dt) Z)
type GBM struct {
	Limits Limits
}

// NewGBM creates a GBM generator bounded by limits.
func NewGBM(limits Limits) *GBM {
	return &GBM{Limits: limits}
}

// Generate simulates p.PathCount independent paths, drawing every normal
// variate from src in path-major, step-minor order. The same parameters and
// an identically seeded src always give the same PathSet.
func (g *GBM) Generate(p SimulationParameters, src rand.Source) (PathSet, error) {
	if err := p.ValidateGBM(); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrInvalidParameter)
	}
	steps, err := g.Limits.checkGrid(p.Horizon, p.Step, p.PathCount)
	if err != nil {
		return nil, err
	}

	rng := rand.New(src)
	paths := make(PathSet, p.PathCount)
	for i := range paths {
		paths[i] = simulatePath(p, steps, rng)
	}
	return paths, nil
}

func simulatePath(p SimulationParameters, steps int, rng *rand.Rand) []float64 {
	dt := p.Step
	drift := (p.Drift - 0.5*p.Volatility*p.Volatility) * dt
	diffusion := p.Volatility * math.Sqrt(dt)

	path := make([]float64, steps+1)
	path[0] = p.InitialValue
	for k := 1; k <= steps; k++ {
		z := rng.NormFloat64()
		if p.Increment == SourceCompatibleIncrement {
			z *= p.Volatility
		}
		path[k] = path[k-1] * math.Exp(drift+diffusion*z)
	}
	return path
}
