package dynamo

import (
	"context"
	"fmt"
	"math"
)

// Solve integrates sys from times[0] through every later entry of times and
// returns the state at each of them. out[0] is a copy of x0. Steps are clipped
// so that every requested time is hit exactly.
//
// Adaptive integrators are driven with accept/reject control. Any other
// Integrator takes fixed steps of cfg.InitialDt.
func Solve(ctx context.Context, integ Integrator, sys System, x0 State, times []float64, cfg Config) ([]State, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(x0) != sys.StateDim() {
		return nil, fmt.Errorf("%w: state has %d entries, system has %d", ErrDimensionMismatch, len(x0), sys.StateDim())
	}
	if len(times) == 0 {
		return nil, nil
	}
	for i := 1; i < len(times); i++ {
		if times[i] < times[i-1] {
			return nil, fmt.Errorf("%w: sample times must be non-decreasing", ErrParameterBounds)
		}
	}

	out := make([]State, 0, len(times))
	x := x0.Clone()
	t := times[0]
	out = append(out, x.Clone())

	span := times[len(times)-1] - times[0]
	dt := cfg.InitialDt
	if dt <= 0 {
		dt = span / 100
	}
	if cfg.MaxDt > 0 {
		dt = math.Min(dt, cfg.MaxDt)
	}

	adaptive, isAdaptive := integ.(AdaptiveIntegrator)
	steps := 0

	fail := func(err error) error {
		return &IntegrationError{Step: steps, Time: t, State: x.Clone(), Wrapped: err}
	}

	for _, target := range times[1:] {
		for t < target {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}

			if steps >= cfg.MaxSteps {
				return nil, fail(ErrMaxSteps)
			}
			steps++

			h := math.Min(dt, target-t)
			clipped := h < dt

			var newX State
			if isAdaptive {
				var errRatio, dtNext float64
				var err error
				newX, errRatio, dtNext, err = adaptive.StepAdaptive(sys, x, t, h, cfg)
				if err != nil {
					return nil, fail(err)
				}
				if cfg.MaxDt > 0 {
					dtNext = math.Min(dtNext, cfg.MaxDt)
				}
				if errRatio > 1 || math.IsNaN(errRatio) {
					dt = dtNext
					if math.IsNaN(errRatio) {
						dt = h / 4
					}
					if dt < cfg.MinDt {
						return nil, fail(ErrStepTooSmall)
					}
					continue
				}
				if !clipped || dtNext > dt {
					dt = dtNext
				}
			} else {
				newX = integ.Step(sys, x, t, h)
			}

			if cfg.ValidateState && !newX.IsValid() {
				return nil, fail(ErrInvalidState)
			}

			x = newX
			if h >= target-t {
				t = target
			} else {
				t += h
			}
		}
		out = append(out, x.Clone())
	}

	return out, nil
}

// Linspace returns n evenly spaced points covering [a, b], endpoints included.
func Linspace(a, b float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{a}
	}
	pts := make([]float64, n)
	step := (b - a) / float64(n-1)
	for i := range pts {
		pts[i] = a + float64(i)*step
	}
	pts[n-1] = b
	return pts
}
