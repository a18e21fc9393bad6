package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/grnsim/internal/circuits"
	"github.com/san-kum/grnsim/internal/config"
	"github.com/san-kum/grnsim/internal/grn"
	"github.com/san-kum/grnsim/internal/metrics"
	"github.com/san-kum/grnsim/internal/optim"
	"github.com/san-kum/grnsim/internal/sim"
)

type Experiment struct {
	cfg       *config.Config
	reg       *Registry
	circuit   Circuit
	net       *grn.Network
	simulator *sim.Simulator
	metrics   []metrics.Metric
}

func New(cfg *config.Config, reg *Registry) *Experiment {
	return &Experiment{cfg: cfg, reg: reg}
}

// Setup builds the configured circuit and simulator.
func (e *Experiment) Setup(observers ...sim.Observer) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	circuit, err := e.reg.GetCircuit(e.cfg.Circuit)
	if err != nil {
		return err
	}
	integ, err := e.reg.GetIntegrator(e.cfg.Integrator)
	if err != nil {
		return err
	}

	net, err := circuit.Build(e.cfg.Depth, e.cfg.Params)
	if err != nil {
		return fmt.Errorf("build %s: %w", e.cfg.Circuit, err)
	}

	opts := []sim.Option{
		sim.WithIntegrator(integ),
		sim.WithConfig(e.cfg.IntegrationConfig()),
	}
	if e.cfg.Samples > 0 {
		opts = append(opts, sim.WithSamples(e.cfg.Samples))
	}
	for _, o := range observers {
		opts = append(opts, sim.WithObserver(o))
	}

	high := e.cfg.High()
	e.metrics = []metrics.Metric{metrics.NewBounded(1.5*high, 1e-6*high)}
	if circuit.Outputs != nil {
		for _, name := range circuit.Outputs(e.cfg.Depth) {
			if j, ok := net.Index(name); ok {
				e.metrics = append(e.metrics, metrics.NewSettling(name, j, 0.01*high))
			}
		}
	}
	for _, m := range e.metrics {
		opts = append(opts, sim.WithObserver(m))
	}

	e.circuit = circuit
	e.net = net
	e.simulator = sim.New(net, opts...)
	return nil
}

// Sequence builds the input sequence: the clock species follows the clock
// pattern and every other input follows its entry in Inputs.
func (e *Experiment) Sequence() (sim.Sequence, error) {
	if e.net == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	inputs := e.net.Inputs()
	known := make(map[string]bool, len(inputs))
	columns := make([][]float64, len(inputs))
	for j, name := range inputs {
		known[name] = true
		if name == circuits.DefaultClock {
			columns[j] = e.cfg.ClockPattern()
			continue
		}
		columns[j] = e.cfg.Inputs[name]
	}
	for name := range e.cfg.Inputs {
		if !known[name] {
			return nil, fmt.Errorf("%w: %q is not an input of %s", grn.ErrUnknownSpecies, name, e.cfg.Circuit)
		}
	}

	seq := circuits.Sequence(columns...)
	// Inputs longer than the clock do not extend the run.
	if n := len(e.cfg.ClockPattern()); len(seq) > n {
		seq = seq[:n]
	}
	return seq, nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Trajectory, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	seq, err := e.Sequence()
	if err != nil {
		return nil, err
	}
	for _, m := range e.metrics {
		m.Reset()
	}
	return e.simulator.Run(ctx, seq, e.cfg.Duration, nil)
}

// Metrics summarizes the last run: the observed metrics, the final value of
// every plotted output and, for counters, the decoder fitness.
func (e *Experiment) Metrics(tr *sim.Trajectory) (map[string]float64, error) {
	results := make(map[string]float64)
	for _, m := range e.metrics {
		results[m.Name()] = m.Value()
	}
	final := tr.Final()
	for _, name := range e.Outputs() {
		for j, s := range tr.Species {
			if s == name {
				results["final."+name] = final[j]
			}
		}
	}

	if e.cfg.Circuit == "counter" {
		fitness, err := optim.Fitness(tr, e.cfg.Depth, e.cfg.High())
		if err != nil {
			return nil, err
		}
		results["fitness"] = fitness
	}
	return results, nil
}

func (e *Experiment) Outputs() []string {
	if e.circuit.Outputs == nil {
		return nil
	}
	return e.circuit.Outputs(e.cfg.Depth)
}

func (e *Experiment) Network() *grn.Network {
	return e.net
}

// NewEvaluator returns a counter evaluator matching cfg.
func NewEvaluator(cfg *config.Config, reg *Registry) (*optim.Evaluator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Depth < 1 {
		return nil, fmt.Errorf("optimize needs a counter depth of at least 1")
	}
	factory, err := reg.IntegratorFactory(cfg.Integrator)
	if err != nil {
		return nil, err
	}
	return &optim.Evaluator{
		Depth:         cfg.Depth,
		Clock:         cfg.ClockPattern(),
		High:          cfg.High(),
		Duration:      cfg.Duration,
		Samples:       cfg.Samples,
		Config:        cfg.IntegrationConfig(),
		NewIntegrator: factory,
	}, nil
}
