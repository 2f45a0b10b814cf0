package probability

import (
	"math"
	"sort"

	"github.com/bcdannyboy/stocsim/models"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// TerminalSummary describes the cross-section of path values at the horizon.
type TerminalSummary struct {
	Paths  int     `json:"paths"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	P05    float64 `json:"p05"`
	Median float64 `json:"median"`
	P95    float64 `json:"p95"`
}

// SummarizeTerminal computes statistics of the last value of every path.
// StdDev is the sample standard deviation and is 0 for a single path.
func SummarizeTerminal(paths models.PathSet) TerminalSummary {
	if paths.Len() == 0 {
		return TerminalSummary{}
	}

	terminal := paths.Terminal()
	sort.Float64s(terminal)

	summary := TerminalSummary{
		Paths:  len(terminal),
		Mean:   stat.Mean(terminal, nil),
		Min:    floats.Min(terminal),
		Max:    floats.Max(terminal),
		P05:    stat.Quantile(0.05, stat.Empirical, terminal, nil),
		Median: stat.Quantile(0.5, stat.Empirical, terminal, nil),
		P95:    stat.Quantile(0.95, stat.Empirical, terminal, nil),
	}
	if len(terminal) > 1 {
		summary.StdDev = stat.StdDev(terminal, nil)
	}
	return summary
}

// MeanPath returns the cross-sectional mean at every step.
func MeanPath(paths models.PathSet) []float64 {
	if paths.Len() == 0 {
		return nil
	}
	mean := make([]float64, paths.Steps()+1)
	for _, path := range paths {
		floats.Add(mean, path)
	}
	floats.Scale(1/float64(paths.Len()), mean)
	return mean
}

// ExpectedTerminal is the analytic mean of S at the last simulated grid point,
// S0 * exp(mu * StepCount * dt). Only the exact increment scheme has this mean.
func ExpectedTerminal(p models.SimulationParameters) float64 {
	t := float64(p.StepCount()) * p.Step
	return p.InitialValue * math.Exp(p.Drift*t)
}
