package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/grnsim/internal/circuits"
	"github.com/san-kum/grnsim/internal/dynamo"
	"github.com/san-kum/grnsim/internal/grn"
	"github.com/san-kum/grnsim/internal/integrators"
)

// Circuit is a named network constructor.
type Circuit struct {
	Description string
	Build       func(depth int, p circuits.CounterParams) (*grn.Network, error)
	// Outputs lists the species worth plotting for a given depth.
	Outputs func(depth int) []string
}

type Registry struct {
	circuits    map[string]Circuit
	integrators map[string]func() dynamo.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		circuits:    make(map[string]Circuit),
		integrators: make(map[string]func() dynamo.Integrator),
	}

	r.circuits["inverter"] = Circuit{
		Description: "clock-repressed single gene",
		Build: func(depth int, p circuits.CounterParams) (*grn.Network, error) {
			return circuits.Inverter(first(p.Cell.Kds), first(p.Cell.Ns))
		},
		Outputs: func(int) []string { return []string{"Y"} },
	}
	r.circuits["flipflop"] = Circuit{
		Description: "master-slave D flip-flop",
		Build: func(depth int, p circuits.CounterParams) (*grn.Network, error) {
			return circuits.FlipFlop(p.Cell)
		},
		Outputs: func(int) []string { return []string{"FF_Q", "FF_QBAR"} },
	}
	r.circuits["counter"] = Circuit{
		Description: "Johnson counter with instruction decoder",
		Build:       circuits.NewCounter,
		Outputs:     circuits.Instructions,
	}

	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() dynamo.Integrator { return integrators.NewRK4() }
	r.integrators["rk45"] = func() dynamo.Integrator { return integrators.NewRK45() }
	r.integrators["rosenbrock"] = func() dynamo.Integrator { return integrators.NewRosenbrock() }

	return r
}

func first(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return values[0]
}

func (r *Registry) GetCircuit(name string) (Circuit, error) {
	c, ok := r.circuits[name]
	if !ok {
		return Circuit{}, fmt.Errorf("unknown circuit: %s", name)
	}
	return c, nil
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

// IntegratorFactory returns a constructor, for callers that need one
// integrator per goroutine.
func (r *Registry) IntegratorFactory(name string) (func() dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn, nil
}

func (r *Registry) ListCircuits() []string {
	return sortedKeys(r.circuits)
}

func (r *Registry) ListIntegrators() []string {
	return sortedKeys(r.integrators)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
