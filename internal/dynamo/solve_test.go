package dynamo

import (
	"context"
	"errors"
	"math"
	"testing"
)

type decay struct{ k float64 }

func (d *decay) Derive(x State, t float64) State { return State{-d.k * x[0]} }
func (d *decay) StateDim() int                   { return 1 }

type euler struct{}

func (euler) Step(sys System, x State, t, dt float64) State {
	dx := sys.Derive(x, t)
	return State{x[0] + dt*dx[0]}
}

// rejecting never accepts a step and halves the proposal each time.
type rejecting struct{ euler }

func (rejecting) StepAdaptive(sys System, x State, t, dt float64, cfg Config) (State, float64, float64, error) {
	return x, 10, dt / 2, nil
}

type exploding struct{ euler }

func (exploding) StepAdaptive(sys System, x State, t, dt float64, cfg Config) (State, float64, float64, error) {
	return State{math.Inf(1)}, 0, dt, nil
}

func TestSolveFixedStep(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialDt = 0.001

	times := Linspace(0, 1, 11)
	states, err := Solve(context.Background(), euler{}, &decay{k: 1}, State{1}, times, cfg)
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if len(states) != len(times) {
		t.Fatalf("expected %d states, got %d", len(times), len(states))
	}
	if states[0][0] != 1 {
		t.Errorf("first sample should be the initial state, got %v", states[0])
	}
	final := states[len(states)-1][0]
	if math.Abs(final-math.Exp(-1)) > 1e-3 {
		t.Errorf("expected final state ~%.4f, got %.4f", math.Exp(-1), final)
	}
}

func TestSolveDoesNotMutateInitialState(t *testing.T) {
	x0 := State{2}
	if _, err := Solve(context.Background(), euler{}, &decay{k: 1}, x0, Linspace(0, 1, 3), DefaultConfig()); err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if x0[0] != 2 {
		t.Errorf("x0 was modified: %v", x0)
	}
}

func TestSolveStepTooSmall(t *testing.T) {
	_, err := Solve(context.Background(), rejecting{}, &decay{k: 1}, State{1}, Linspace(0, 1, 2), DefaultConfig())
	if !errors.Is(err, ErrStepTooSmall) {
		t.Fatalf("expected ErrStepTooSmall, got %v", err)
	}
	var ierr *IntegrationError
	if !errors.As(err, &ierr) {
		t.Fatalf("expected *IntegrationError, got %T", err)
	}
	if len(ierr.State) != 1 {
		t.Errorf("expected state snapshot, got %v", ierr.State)
	}
}

func TestSolveInvalidState(t *testing.T) {
	_, err := Solve(context.Background(), exploding{}, &decay{k: 1}, State{1}, Linspace(0, 1, 2), DefaultConfig())
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestSolveMaxSteps(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialDt = 0.001
	cfg.MaxSteps = 10
	_, err := Solve(context.Background(), euler{}, &decay{k: 1}, State{1}, Linspace(0, 1, 2), cfg)
	if !errors.Is(err, ErrMaxSteps) {
		t.Fatalf("expected ErrMaxSteps, got %v", err)
	}
}

func TestSolveDimensionMismatch(t *testing.T) {
	_, err := Solve(context.Background(), euler{}, &decay{k: 1}, State{1, 2}, Linspace(0, 1, 2), DefaultConfig())
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestSolveCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Solve(ctx, euler{}, &decay{k: 1}, State{1}, Linspace(0, 1, 2), DefaultConfig())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestLinspace(t *testing.T) {
	pts := Linspace(0, 250, 251)
	if len(pts) != 251 {
		t.Fatalf("expected 251 points, got %d", len(pts))
	}
	if pts[0] != 0 || pts[250] != 250 {
		t.Errorf("endpoints wrong: %v, %v", pts[0], pts[250])
	}
	if math.Abs(pts[100]-100) > 1e-12 {
		t.Errorf("expected pts[100] = 100, got %v", pts[100])
	}
	if got := Linspace(1, 2, 1); len(got) != 1 || got[0] != 1 {
		t.Errorf("single point: got %v", got)
	}
}
