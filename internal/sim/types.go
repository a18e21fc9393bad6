package sim

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/grnsim/internal/dynamo"
)

var (
	// ErrSequenceShape indicates a segment whose width differs from the number
	// of input species, or an empty sequence.
	ErrSequenceShape = errors.New("sim: input sequence shape mismatch")

	// ErrInvalidDuration indicates a non-positive or non-finite segment duration.
	ErrInvalidDuration = errors.New("sim: segment duration must be positive")

	// ErrEmptyNetwork indicates a network without species.
	ErrEmptyNetwork = errors.New("sim: network has no species")
)

// Sequence holds one row per segment and one value per input species in
// registration order.
type Sequence [][]float64

// Scalar builds a sequence for a network with a single input species.
func Scalar(values ...float64) Sequence {
	seq := make(Sequence, len(values))
	for i, v := range values {
		seq[i] = []float64{v}
	}
	return seq
}

func (s Sequence) Len() int { return len(s) }

// Trajectory is the concatenated result of a sequence run. States has one row
// per sample and one column per species, in Species order. Each segment
// contributes the same number of samples, so the boundary instant between two
// segments appears twice: once with the old inputs and once with the new.
type Trajectory struct {
	Species    []string
	Times      []float64
	States     *mat.Dense
	Boundaries []int
}

func (tr *Trajectory) Len() int { return len(tr.Times) }

func (tr *Trajectory) index(name string) int {
	for i, s := range tr.Species {
		if s == name {
			return i
		}
	}
	return -1
}

// Column returns a copy of the named species' samples.
func (tr *Trajectory) Column(name string) ([]float64, bool) {
	j := tr.index(name)
	if j < 0 {
		return nil, false
	}
	return mat.Col(nil, j, tr.States), true
}

func (tr *Trajectory) Row(i int) dynamo.State {
	return dynamo.State(mat.Row(nil, i, tr.States))
}

func (tr *Trajectory) Final() dynamo.State {
	return tr.Row(tr.Len() - 1)
}

// Segment returns the half-open row range [start, end) of segment k.
func (tr *Trajectory) Segment(k int) (int, int) {
	start := tr.Boundaries[k]
	end := tr.Len()
	if k+1 < len(tr.Boundaries) {
		end = tr.Boundaries[k+1]
	}
	return start, end
}

// Rows returns the state matrix as a slice of rows, the layout expected by
// CSV and JSON writers.
func (tr *Trajectory) Rows() [][]float64 {
	rows := make([][]float64, tr.Len())
	for i := range rows {
		rows[i] = mat.Row(nil, i, tr.States)
	}
	return rows
}

// SegmentError reports an integration failure inside one segment. Time is
// measured on the global time axis.
type SegmentError struct {
	Segment int
	Time    float64
	State   dynamo.State
	Err     error
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("sim: segment %d failed at t=%.4f: %v", e.Segment, e.Time, e.Err)
}

func (e *SegmentError) Unwrap() error {
	return e.Err
}

// Observer is notified after every completed segment.
type Observer interface {
	OnSegment(k int, times []float64, states []dynamo.State)
}
