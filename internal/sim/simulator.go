package sim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/grnsim/internal/dynamo"
	"github.com/san-kum/grnsim/internal/grn"
	"github.com/san-kum/grnsim/internal/integrators"
)

// DefaultSamples is the number of recorded samples per segment, both segment
// endpoints included.
const DefaultSamples = 251

type Simulator struct {
	net        *grn.Network
	integrator dynamo.Integrator
	cfg        dynamo.Config
	samples    int
	observers  []Observer
}

type Option func(*Simulator)

func WithIntegrator(integ dynamo.Integrator) Option {
	return func(s *Simulator) { s.integrator = integ }
}

func WithConfig(cfg dynamo.Config) Option {
	return func(s *Simulator) { s.cfg = cfg }
}

// WithSamples sets the samples recorded per segment. Values below 2 are raised
// to 2 so that both segment endpoints are always recorded.
func WithSamples(n int) Option {
	return func(s *Simulator) {
		if n < 2 {
			n = 2
		}
		s.samples = n
	}
}

func WithObserver(o Observer) Option {
	return func(s *Simulator) { s.observers = append(s.observers, o) }
}

// New returns a simulator for net. The network is borrowed read-only for the
// duration of each Run and must not be modified concurrently.
func New(net *grn.Network, opts ...Option) *Simulator {
	s := &Simulator{
		net:        net,
		integrator: integrators.NewRosenbrock(),
		cfg:        dynamo.DefaultConfig(),
		samples:    DefaultSamples,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run drives the network through seq, holding every row of inputs constant
// for duration time units. Input species are overwritten at the start of each
// segment; every other species continues from the final state of the previous
// segment. x0 may be nil for an all-zero initial state.
//
// The network is assembled once, before any integration. A failure inside a
// segment aborts the whole run with a *SegmentError and no trajectory.
func (s *Simulator) Run(ctx context.Context, seq Sequence, duration float64, x0 dynamo.State) (*Trajectory, error) {
	if !(duration > 0) || math.IsInf(duration, 0) {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidDuration, duration)
	}
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}
	if len(seq) == 0 {
		return nil, fmt.Errorf("%w: no segments", ErrSequenceShape)
	}

	ode, err := grn.Assemble(s.net)
	if err != nil {
		return nil, err
	}

	dim := ode.StateDim()
	if dim == 0 {
		return nil, ErrEmptyNetwork
	}

	inputs := ode.Inputs()
	for k, row := range seq {
		if len(row) != len(inputs) {
			return nil, fmt.Errorf("%w: segment %d has %d values, network has %d inputs", ErrSequenceShape, k, len(row), len(inputs))
		}
	}

	x := make(dynamo.State, dim)
	if x0 != nil {
		if len(x0) != dim {
			return nil, fmt.Errorf("%w: initial state has %d entries, network has %d species", dynamo.ErrDimensionMismatch, len(x0), dim)
		}
		copy(x, x0)
	}

	local := dynamo.Linspace(0, duration, s.samples)
	rows := len(seq) * len(local)
	times := make([]float64, 0, rows)
	data := make([]float64, 0, rows*dim)
	boundaries := make([]int, 0, len(seq))

	for k, row := range seq {
		for j, idx := range inputs {
			x[idx] = row[j]
		}

		offset := float64(k) * duration
		states, err := dynamo.Solve(ctx, s.integrator, ode, x, local, s.cfg)
		if err != nil {
			return nil, segmentError(k, offset, x, err)
		}

		boundaries = append(boundaries, len(times))
		segTimes := make([]float64, len(local))
		for i, st := range states {
			segTimes[i] = offset + local[i]
			data = append(data, st...)
		}
		times = append(times, segTimes...)

		x = states[len(states)-1].Clone()

		for _, o := range s.observers {
			o.OnSegment(k, segTimes, states)
		}
	}

	return &Trajectory{
		Species:    ode.Species(),
		Times:      times,
		States:     mat.NewDense(len(times), dim, data),
		Boundaries: boundaries,
	}, nil
}

func segmentError(k int, offset float64, x dynamo.State, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	segErr := &SegmentError{Segment: k, Time: offset, State: x.Clone(), Err: err}
	var ierr *dynamo.IntegrationError
	if errors.As(err, &ierr) {
		segErr.Time = offset + ierr.Time
		segErr.State = ierr.State.Clone()
	}
	return segErr
}

// SimulateSequence runs seq on net with the default integrator and settings.
func SimulateSequence(ctx context.Context, net *grn.Network, seq Sequence, duration float64, x0 dynamo.State) (*Trajectory, error) {
	return New(net).Run(ctx, seq, duration, x0)
}
