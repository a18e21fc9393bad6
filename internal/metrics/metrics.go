// Package metrics accumulates scalar summaries of a sequence run. Every
// metric is a sim.Observer and sees the samples of each segment as soon as
// the segment completes.
package metrics

import "github.com/san-kum/grnsim/internal/sim"

type Metric interface {
	sim.Observer
	Name() string
	Value() float64
	Reset()
}
