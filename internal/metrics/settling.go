package metrics

import (
	"math"

	"github.com/san-kum/grnsim/internal/dynamo"
)

// Settling tracks how long one species takes to settle after an input
// change. Within a segment the settling time is the time from the segment
// start until the species stays within tol of its value at the segment end.
// Value reports the slowest segment.
type Settling struct {
	species string
	index   int
	tol     float64
	worst   float64
}

func NewSettling(species string, index int, tol float64) *Settling {
	return &Settling{species: species, index: index, tol: tol}
}

func (s *Settling) Name() string { return "settling." + s.species }

func (s *Settling) OnSegment(k int, times []float64, states []dynamo.State) {
	n := len(states)
	if n == 0 || s.index >= len(states[0]) {
		return
	}
	final := states[n-1][s.index]

	settled := n - 1
	for settled > 0 && math.Abs(states[settled-1][s.index]-final) <= s.tol {
		settled--
	}
	s.worst = math.Max(s.worst, times[settled]-times[0])
}

func (s *Settling) Value() float64 { return s.worst }

func (s *Settling) Reset() { s.worst = 0 }
