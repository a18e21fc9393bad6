package circuits

import (
	"fmt"

	"github.com/san-kum/grnsim/internal/grn"
)

// Defaults shared by every gate of the flip-flop and the decoder.
const (
	DefaultRate  = 10.0
	DefaultDecay = 0.1
	DefaultKd    = 5.0
	DefaultN     = 3.0
)

// CellParams tunes one flip-flop cell. Decays takes one value for all eight
// species or one per species. Kds and Ns take one value for all sixteen
// regulators, two values (activators, repressors), or one per regulator in
// gate order. Empty slices select the defaults.
type CellParams struct {
	Decays []float64 `json:"decays,omitempty" yaml:"decays,omitempty"`
	Kds    []float64 `json:"kds,omitempty" yaml:"kds,omitempty"`
	Ns     []float64 `json:"ns,omitempty" yaml:"ns,omitempty"`
}

// CounterParams tunes a counter: every cell shares Cell, and the decoder uses
// InstrDecays (one or 2*depth values) and ConnKds/ConnNs (one, two, or 4*depth
// values, following the CellParams patterns).
type CounterParams struct {
	Cell        CellParams `json:"cell" yaml:"cell"`
	InstrDecays []float64  `json:"instr_decays,omitempty" yaml:"instr_decays,omitempty"`
	ConnKds     []float64  `json:"conn_kds,omitempty" yaml:"conn_kds,omitempty"`
	ConnNs      []float64  `json:"conn_ns,omitempty" yaml:"conn_ns,omitempty"`
}

// perItem expands values to n entries: one value for all or one per item.
func perItem(field string, values []float64, def float64, n int) ([]float64, error) {
	out := make([]float64, n)
	switch len(values) {
	case 0:
		for i := range out {
			out[i] = def
		}
	case 1:
		for i := range out {
			out[i] = values[0]
		}
	case n:
		copy(out, values)
	default:
		return nil, fmt.Errorf("%w: %s takes 1 or %d values, got %d", grn.ErrInvalidParameter, field, n, len(values))
	}
	return out, nil
}

// perRegulator expands values to one entry per regulator. Two values select
// the first for activators and the second for repressors.
func perRegulator(field string, values []float64, def float64, signs []grn.Sign) ([]float64, error) {
	if len(values) != 2 || len(signs) == 2 {
		return perItem(field, values, def, len(signs))
	}
	out := make([]float64, len(signs))
	for i, s := range signs {
		if s == grn.Activator {
			out[i] = values[0]
		} else {
			out[i] = values[1]
		}
	}
	return out, nil
}
