package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for integration.
var (
	// ErrIntegration is wrapped by every failure of the numerical solver.
	ErrIntegration = errors.New("dynamo: integration failed")

	// ErrInvalidState indicates a state vector with NaN or Inf entries.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrParameterBounds indicates a solver setting outside its valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrStepTooSmall indicates the adaptive timestep fell below MinDt.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")

	// ErrMaxSteps indicates the step budget ran out before the end time.
	ErrMaxSteps = errors.New("dynamo: step budget exhausted")

	// ErrSingular indicates a linear solve in an implicit method failed.
	ErrSingular = errors.New("dynamo: singular iteration matrix")

	// ErrDimensionMismatch indicates a state whose length differs from the system.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")
)

// IntegrationError wraps a solver failure with the step, time and last good
// state at which it happened.
type IntegrationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *IntegrationError) Error() string {
	return fmt.Sprintf("%v: step %d (t=%.4f): %v", ErrIntegration, e.Step, e.Time, e.Wrapped)
}

func (e *IntegrationError) Unwrap() []error {
	return []error{ErrIntegration, e.Wrapped}
}
