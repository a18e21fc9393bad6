package integrators

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/grnsim/internal/dynamo"
)

// relaxation pulls x towards 1 with rate k.
type relaxation struct{ k float64 }

func (r *relaxation) StateDim() int { return 1 }

func (r *relaxation) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{-r.k * (x[0] - 1)}
}

// countingSystem records how often it is evaluated.
type countingSystem struct {
	dynamo.System
	calls int
}

func (c *countingSystem) Derive(x dynamo.State, t float64) dynamo.State {
	c.calls++
	return c.System.Derive(x, t)
}

func TestRosenbrock_Decay(t *testing.T) {
	dyn := &linearDecay{k: 1}
	states, err := dynamo.Solve(context.Background(), NewRosenbrock(), dyn, dynamo.State{1}, []float64{0, 1}, dynamo.DefaultConfig())
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}

	got := states[1][0]
	if math.Abs(got-math.Exp(-1)) > 1e-4 {
		t.Errorf("expected ~%.6f, got %.6f", math.Exp(-1), got)
	}
}

func TestRosenbrock_Oscillator(t *testing.T) {
	dyn := &harmonicOscillator{}
	cfg := dynamo.DefaultConfig()
	states, err := dynamo.Solve(context.Background(), NewRosenbrock(), dyn, dynamo.State{1, 0}, []float64{0, math.Pi}, cfg)
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}

	final := states[1]
	if math.Abs(final[0]+1) > 1e-3 || math.Abs(final[1]) > 1e-3 {
		t.Errorf("expected ~[-1, 0], got %v", final)
	}
}

func TestRosenbrock_StiffFewerEvaluations(t *testing.T) {
	times := []float64{0, 10}
	cfg := dynamo.DefaultConfig()
	cfg.RelTol = 1e-4
	cfg.AbsTol = 1e-6

	stiff := &countingSystem{System: &relaxation{k: 1e4}}
	states, err := dynamo.Solve(context.Background(), NewRosenbrock(), stiff, dynamo.State{0}, times, cfg)
	if err != nil {
		t.Fatalf("rosenbrock failed: %v", err)
	}
	if math.Abs(states[1][0]-1) > 1e-4 {
		t.Errorf("expected relaxation to 1, got %v", states[1][0])
	}

	explicit := &countingSystem{System: &relaxation{k: 1e4}}
	if _, err := dynamo.Solve(context.Background(), NewRK45(), explicit, dynamo.State{0}, times, cfg); err != nil {
		t.Fatalf("rk45 failed: %v", err)
	}

	t.Logf("evaluations: rosenbrock=%d rk45=%d", stiff.calls, explicit.calls)
	if stiff.calls >= explicit.calls {
		t.Errorf("expected rosenbrock to need fewer evaluations on a stiff problem (%d vs %d)", stiff.calls, explicit.calls)
	}
}
