package integrators

import (
	"testing"

	"github.com/san-kum/grnsim/internal/dynamo"
)

type benchDynamics struct{}

func (b *benchDynamics) StateDim() int { return 2 }
func (b *benchDynamics) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func BenchmarkEuler(b *testing.B) {
	integrator := NewEuler()
	dyn := &benchDynamics{}
	x := dynamo.State{1.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, x, 0, 0.01)
	}
}

func BenchmarkRK4(b *testing.B) {
	integrator := NewRK4()
	dyn := &benchDynamics{}
	x := dynamo.State{1.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, x, 0, 0.01)
	}
}

func BenchmarkRK45(b *testing.B) {
	integrator := NewRK45()
	dyn := &benchDynamics{}
	x := dynamo.State{1.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, x, 0, 0.01)
	}
}

func BenchmarkRosenbrock(b *testing.B) {
	integrator := NewRosenbrock()
	dyn := &benchDynamics{}
	x := dynamo.State{1.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, x, 0, 0.01)
	}
}

type benchChain struct{}

func (b *benchChain) StateDim() int { return 20 }
func (b *benchChain) Derive(x dynamo.State, t float64) dynamo.State {
	dx := make(dynamo.State, 20)
	dx[0] = -0.1 * x[0]
	for i := 1; i < 20; i++ {
		dx[i] = 10/(1+x[i-1]*x[i-1]*x[i-1]/125) - 0.1*x[i]
	}
	return dx
}

func BenchmarkRosenbrock_Chain20(b *testing.B) {
	integrator := NewRosenbrock()
	dyn := &benchChain{}
	x := make(dynamo.State, 20)
	for i := range x {
		x[i] = float64(i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, x, 0, 0.5)
	}
}
