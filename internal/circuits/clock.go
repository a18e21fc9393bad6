package circuits

import "github.com/san-kum/grnsim/internal/sim"

// DefaultHigh is the input level of a high clock or data segment.
const DefaultHigh = 100.0

// Clock returns cycles periods of a square wave, one segment low followed by
// one segment high.
func Clock(cycles int, high float64) []float64 {
	if cycles < 0 {
		cycles = 0
	}
	values := make([]float64, 2*cycles)
	for i := 1; i < len(values); i += 2 {
		values[i] = high
	}
	return values
}

// Pulses returns lead low segments followed by count pulses. Every pulse is
// one high segment followed by period-1 low segments.
func Pulses(lead, period, count int, high float64) []float64 {
	if period < 1 {
		period = 1
	}
	values := make([]float64, 0, lead+period*count)
	for i := 0; i < lead; i++ {
		values = append(values, 0)
	}
	for p := 0; p < count; p++ {
		values = append(values, high)
		for i := 1; i < period; i++ {
			values = append(values, 0)
		}
	}
	return values
}

// Sequence zips per-input value columns into a simulator sequence. Columns
// shorter than the longest one hold their last value; empty columns are 0.
func Sequence(columns ...[]float64) sim.Sequence {
	n := 0
	for _, c := range columns {
		n = max(n, len(c))
	}
	seq := make(sim.Sequence, n)
	for k := range seq {
		row := make([]float64, len(columns))
		for j, c := range columns {
			switch {
			case k < len(c):
				row[j] = c[k]
			case len(c) > 0:
				row[j] = c[len(c)-1]
			}
		}
		seq[k] = row
	}
	return seq
}
