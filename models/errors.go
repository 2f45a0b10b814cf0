package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter is returned when a SimulationParameters precondition is violated.
	ErrInvalidParameter = errors.New("invalid simulation parameter")

	// ErrResourceLimitExceeded is returned when the requested grid would exceed the configured Limits.
	ErrResourceLimitExceeded = errors.New("simulation resource limit exceeded")
)

// ParameterError names the offending field. It unwraps to ErrInvalidParameter.
type ParameterError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%s: %s %s (got %g)", ErrInvalidParameter, e.Field, e.Reason, e.Value)
}

func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}
