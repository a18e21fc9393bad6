package circuits

// CounterTruth returns the ideal decoder waveforms for a counter of depth
// cells started from the all-zero state, sampled at the same instants as the
// clock column. Row i belongs to INSTRUCTION_{i+1}.
//
// A rising edge is a rise of more than half of high between consecutive
// samples. The first edge loads every cell, which selects INSTRUCTION_{d+1};
// every further edge advances the register by one state. Before the first
// edge every output is 0. The active output is high, the rest are 0.
func CounterTruth(clock []float64, depth int, high float64) [][]float64 {
	if depth < 1 {
		return nil
	}
	width := 2 * depth
	truth := make([][]float64, width)
	for i := range truth {
		truth[i] = make([]float64, len(clock))
	}

	edges := 0
	for s := range clock {
		if s > 0 && clock[s]-clock[s-1] > high/2 {
			edges++
		}
		if edges == 0 {
			continue
		}
		active := (edges - 1 + depth) % width
		truth[active][s] = high
	}
	return truth
}

// RisingEdges returns the sample indices just after each rising edge of clock.
func RisingEdges(clock []float64, high float64) []int {
	var edges []int
	for s := 1; s < len(clock); s++ {
		if clock[s]-clock[s-1] > high/2 {
			edges = append(edges, s)
		}
	}
	return edges
}
