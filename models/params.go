package models

import (
	"math"
)

// IncrementScheme selects how the GBM normal increment is drawn.
type IncrementScheme int

const (
	// ExactIncrement draws Z ~ N(0, 1) and scales it once by sigma*sqrt(dt).
	ExactIncrement IncrementScheme = iota
	// SourceCompatibleIncrement draws Z ~ N(0, sigma) and then scales it by
	// sigma*sqrt(dt) again, matching output produced by the legacy scripts.
	SourceCompatibleIncrement
)

func (s IncrementScheme) String() string {
	switch s {
	case ExactIncrement:
		return "exact"
	case SourceCompatibleIncrement:
		return "source-compatible"
	default:
		return "unknown"
	}
}

// MaxJumpSizeMean bounds JumpSizeMean so every Poisson mark fits an int and
// stays exact in a float64.
const MaxJumpSizeMean = 1 << 53

// SimulationParameters is the full input record for both generators.
type SimulationParameters struct {
	Horizon   float64 `json:"horizon" msgpack:"horizon"`       // T, simulation end time
	Step      float64 `json:"step" msgpack:"step"`             // dt, discretization interval
	PathCount int     `json:"path_count" msgpack:"path_count"` // GBM realizations

	InitialValue float64         `json:"initial_value" msgpack:"initial_value"`
	Volatility   float64         `json:"volatility" msgpack:"volatility"`
	Drift        float64         `json:"drift" msgpack:"drift"` // raw mean rate, before the -sigma^2/2 adjustment
	Increment    IncrementScheme `json:"increment" msgpack:"increment"`

	Intensity    float64 `json:"intensity" msgpack:"intensity"` // lambda, jumps per unit time
	UnitJumpSize bool    `json:"unit_jump_size" msgpack:"unit_jump_size"`
	JumpSizeMean float64 `json:"jump_size_mean" msgpack:"jump_size_mean"`
}

// StepCount is the number of discretization steps for these parameters.
func (p SimulationParameters) StepCount() int {
	return StepCount(p.Horizon, p.Step)
}

// ValidateGBM checks the preconditions of the GBM generator.
func (p SimulationParameters) ValidateGBM() error {
	if err := p.validateGrid(); err != nil {
		return err
	}
	if !isFinite(p.InitialValue) || p.InitialValue <= 0 {
		return &ParameterError{Field: "initial_value", Value: p.InitialValue, Reason: "must be positive"}
	}
	if !isFinite(p.Volatility) || p.Volatility < 0 {
		return &ParameterError{Field: "volatility", Value: p.Volatility, Reason: "must be non-negative"}
	}
	if !isFinite(p.Drift) {
		return &ParameterError{Field: "drift", Value: p.Drift, Reason: "must be finite"}
	}
	if p.PathCount < 1 {
		return &ParameterError{Field: "path_count", Value: float64(p.PathCount), Reason: "must be at least 1"}
	}
	switch p.Increment {
	case ExactIncrement, SourceCompatibleIncrement:
	default:
		return &ParameterError{Field: "increment", Value: float64(p.Increment), Reason: "unknown increment scheme"}
	}
	return nil
}

// ValidatePoisson checks the preconditions of the Poisson jump generator.
// PathCount is ignored: one realization is produced per call.
func (p SimulationParameters) ValidatePoisson() error {
	if err := p.validateGrid(); err != nil {
		return err
	}
	if !isFinite(p.Intensity) || p.Intensity < 0 {
		return &ParameterError{Field: "intensity", Value: p.Intensity, Reason: "must be non-negative"}
	}
	if !p.UnitJumpSize && (!isFinite(p.JumpSizeMean) || p.JumpSizeMean < 0) {
		return &ParameterError{Field: "jump_size_mean", Value: p.JumpSizeMean, Reason: "must be non-negative"}
	}
	if !p.UnitJumpSize && p.JumpSizeMean > MaxJumpSizeMean {
		return &ParameterError{Field: "jump_size_mean", Value: p.JumpSizeMean, Reason: "must not exceed 2^53"}
	}
	return nil
}

func (p SimulationParameters) validateGrid() error {
	if !isFinite(p.Horizon) || p.Horizon <= 0 {
		return &ParameterError{Field: "horizon", Value: p.Horizon, Reason: "must be positive"}
	}
	if !isFinite(p.Step) || p.Step <= 0 {
		return &ParameterError{Field: "step", Value: p.Step, Reason: "must be positive"}
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
