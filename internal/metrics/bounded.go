package metrics

import (
	"github.com/san-kum/grnsim/internal/dynamo"
)

// Bounded is the fraction of samples whose every concentration lies in
// [-tol, limit]. Integration undershoot below zero and runaway growth both
// count as violations.
type Bounded struct {
	limit      float64
	tol        float64
	violations int
	samples    int
}

func NewBounded(limit, tol float64) *Bounded {
	return &Bounded{limit: limit, tol: tol}
}

func (b *Bounded) Name() string { return "bounded" }

func (b *Bounded) OnSegment(k int, times []float64, states []dynamo.State) {
	for _, x := range states {
		b.samples++
		for _, v := range x {
			if v < -b.tol || v > b.limit {
				b.violations++
				break
			}
		}
	}
}

func (b *Bounded) Value() float64 {
	if b.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(b.violations)/float64(b.samples)
}

func (b *Bounded) Reset() {
	b.violations = 0
	b.samples = 0
}
