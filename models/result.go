package models

// PathSet holds GBM realizations; every inner slice has StepCount+1 values
// with the initial value at index 0.
type PathSet [][]float64

// Len is the number of paths.
func (ps PathSet) Len() int {
	return len(ps)
}

// Steps is the number of steps per path, 0 for an empty set.
func (ps PathSet) Steps() int {
	if len(ps) == 0 {
		return 0
	}
	return len(ps[0]) - 1
}

// Terminal returns the last value of every path.
func (ps PathSet) Terminal() []float64 {
	out := make([]float64, len(ps))
	for i, path := range ps {
		out[i] = path[len(path)-1]
	}
	return out
}

// JumpSeries is one Poisson realization: event times and their jump sizes.
// len(Times) == len(Marks) always.
type JumpSeries struct {
	Times []float64 `json:"times" msgpack:"times"`
	Marks []int     `json:"marks" msgpack:"marks"`
}

func (js JumpSeries) Len() int {
	return len(js.Times)
}

// Total is the sum of all marks, N(horizon) for the compound process.
func (js JumpSeries) Total() int {
	total := 0
	for _, m := range js.Marks {
		total += m
	}
	return total
}

// Kind identifies which generator produced a SimulationResult.
type Kind string

const (
	KindGBM     Kind = "gbm"
	KindPoisson Kind = "poisson"
)

// SimulationResult is the envelope handed to output writers. Exactly one of
// Paths or Jumps is set, according to Kind.
type SimulationResult struct {
	Kind   Kind                 `json:"kind" msgpack:"kind"`
	Params SimulationParameters `json:"params" msgpack:"params"`
	Seed   uint64               `json:"seed" msgpack:"seed"`
	Paths  PathSet              `json:"paths,omitempty" msgpack:"paths,omitempty"`
	Jumps  *JumpSeries          `json:"jumps,omitempty" msgpack:"jumps,omitempty"`
}

// NewGBMResult wraps a PathSet.
func NewGBMResult(p SimulationParameters, seed uint64, paths PathSet) SimulationResult {
	return SimulationResult{Kind: KindGBM, Params: p, Seed: seed, Paths: paths}
}

// NewPoissonResult wraps a JumpSeries.
func NewPoissonResult(p SimulationParameters, seed uint64, jumps JumpSeries) SimulationResult {
	return SimulationResult{Kind: KindPoisson, Params: p, Seed: seed, Jumps: &jumps}
}
