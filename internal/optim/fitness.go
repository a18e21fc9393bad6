package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/grnsim/internal/circuits"
	"github.com/san-kum/grnsim/internal/dynamo"
	"github.com/san-kum/grnsim/internal/sim"
)

// ErrMissingSpecies indicates a trajectory without a column the fitness needs.
var ErrMissingSpecies = errors.New("optim: trajectory is missing a species")

// MSE returns the mean squared difference of two equally long series.
func MSE(got, want []float64) float64 {
	if len(got) == 0 {
		return 0
	}
	diff := make([]float64, len(got))
	floats.SubTo(diff, got, want)
	return floats.Dot(diff, diff) / float64(len(got))
}

// Fitness scores a counter trajectory as the negative sum over decoder outputs
// of the MSE against CounterTruth. 0 is a perfect counter.
func Fitness(tr *sim.Trajectory, depth int, high float64) (float64, error) {
	clk, ok := tr.Column(circuits.DefaultClock)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingSpecies, circuits.DefaultClock)
	}
	truth := circuits.CounterTruth(clk, depth, high)

	score := 0.0
	for i, name := range circuits.Instructions(depth) {
		col, ok := tr.Column(name)
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrMissingSpecies, name)
		}
		score -= MSE(col, truth[i])
	}
	return score, nil
}

// Evaluator simulates a counter built from candidate parameters and scores
// it with Fitness. Each call builds its own network, so Evaluate is safe for
// concurrent use as long as NewIntegrator returns a fresh integrator.
type Evaluator struct {
	Depth         int
	Clock         []float64
	High          float64
	Duration      float64
	Samples       int
	Config        dynamo.Config
	NewIntegrator func() dynamo.Integrator
}

// Evaluate returns the fitness of p. A counter whose integration fails scores
// -Inf; only context errors and malformed parameters are returned as errors.
func (e *Evaluator) Evaluate(ctx context.Context, p circuits.CounterParams) (float64, error) {
	net, err := circuits.NewCounter(e.Depth, p)
	if err != nil {
		return 0, err
	}

	var opts []sim.Option
	if e.NewIntegrator != nil {
		opts = append(opts, sim.WithIntegrator(e.NewIntegrator()))
	}
	if e.Samples > 0 {
		opts = append(opts, sim.WithSamples(e.Samples))
	}
	if e.Config != (dynamo.Config{}) {
		opts = append(opts, sim.WithConfig(e.Config))
	}

	tr, err := sim.New(net, opts...).Run(ctx, sim.Scalar(e.Clock...), e.Duration, nil)
	if err != nil {
		var segErr *sim.SegmentError
		if errors.As(err, &segErr) {
			return math.Inf(-1), nil
		}
		return 0, err
	}

	high := e.High
	if high == 0 {
		high = circuits.DefaultHigh
	}
	return Fitness(tr, e.Depth, high)
}

// Genome adapts the evaluator to a genetic search over space.
func (e *Evaluator) Genome(space Space) GenomeFitness {
	return func(ctx context.Context, genes []int) (float64, error) {
		p, err := space.Decode(genes)
		if err != nil {
			return 0, err
		}
		return e.Evaluate(ctx, p)
	}
}

// Objective adapts the evaluator to a grid search keyed like ParamsFromMap.
func (e *Evaluator) Objective() Objective {
	return func(ctx context.Context, values map[string]float64) (float64, error) {
		return e.Evaluate(ctx, ParamsFromMap(values))
	}
}
