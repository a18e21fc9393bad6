package dynamo

import (
	"fmt"
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// System is a first-order ODE dx/dt = f(x, t).
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

type Integrator interface {
	Step(sys System, x State, t, dt float64) State
}

// AdaptiveIntegrator attempts a step of size dt and reports the scaled local
// error (accepted when <= 1) together with the step size to try next.
type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(sys System, x State, t, dt float64, cfg Config) (State, float64, float64, error)
}

type Config struct {
	RelTol        float64
	AbsTol        float64
	InitialDt     float64
	MinDt         float64
	MaxDt         float64
	MaxSteps      int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		RelTol:        1e-6,
		AbsTol:        1e-8,
		InitialDt:     0.01,
		MinDt:         1e-10,
		MaxDt:         0,
		MaxSteps:      200000,
		ValidateState: true,
	}
}

func (c Config) Validate() error {
	if c.RelTol <= 0 && c.AbsTol <= 0 {
		return fmt.Errorf("%w: tolerances must not both be zero", ErrParameterBounds)
	}
	if c.RelTol < 0 || c.AbsTol < 0 {
		return fmt.Errorf("%w: tolerances must be non-negative", ErrParameterBounds)
	}
	if c.InitialDt < 0 || c.MinDt < 0 || c.MaxDt < 0 {
		return fmt.Errorf("%w: step sizes must be non-negative", ErrParameterBounds)
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("%w: max steps must be positive, got %d", ErrParameterBounds, c.MaxSteps)
	}
	return nil
}

// ErrorNorm is the max-norm of the local error estimate, each component scaled
// by AbsTol + RelTol*max(|x|, |xNew|).
func ErrorNorm(errEst, x, xNew State, cfg Config) float64 {
	errMax := 0.0
	for i := range errEst {
		scale := cfg.AbsTol + cfg.RelTol*math.Max(math.Abs(x[i]), math.Abs(xNew[i]))
		if scale == 0 {
			scale = 1e-300
		}
		errMax = math.Max(errMax, math.Abs(errEst[i])/scale)
	}
	return errMax
}
