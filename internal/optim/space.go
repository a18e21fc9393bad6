package optim

import (
	"fmt"

	"github.com/san-kum/grnsim/internal/circuits"
)

// Pools lists the admissible values of every counter parameter. Genes are
// indices into these pools.
type Pools struct {
	CellDecays  []float64 `yaml:"cell_decays"`
	CellKds     []float64 `yaml:"cell_kds"`
	CellNs      []float64 `yaml:"cell_ns"`
	InstrDecays []float64 `yaml:"instr_decays"`
	ConnKds     []float64 `yaml:"conn_kds"`
	ConnNs      []float64 `yaml:"conn_ns"`
}

func DefaultPools() Pools {
	decays := []float64{0, 0.1, 0.2, 0.5}
	kds := []float64{0.1, 0.2, 0.5, 1, 2, 5, 10}
	ns := []float64{1, 2, 3, 5, 10}
	return Pools{
		CellDecays:  decays,
		CellKds:     kds,
		CellNs:      ns,
		InstrDecays: decays,
		ConnKds:     kds,
		ConnNs:      ns,
	}
}

// Layout is the number of genes per parameter. Each count must be a pattern
// length the circuits package accepts: 1, 2 (activators, repressors) or one
// per item. 0 leaves the parameter at its default.
type Layout struct {
	CellDecays  int `yaml:"cell_decays"`
	CellKds     int `yaml:"cell_kds"`
	CellNs      int `yaml:"cell_ns"`
	InstrDecays int `yaml:"instr_decays"`
	ConnKds     int `yaml:"conn_kds"`
	ConnNs      int `yaml:"conn_ns"`
}

func DefaultLayout() Layout {
	return Layout{CellDecays: 1, CellKds: 2, CellNs: 2, InstrDecays: 1, ConnKds: 2, ConnNs: 2}
}

// Space maps integer genomes to counter parameters.
type Space struct {
	Pools  Pools
	Layout Layout
}

func DefaultSpace() Space {
	return Space{Pools: DefaultPools(), Layout: DefaultLayout()}
}

type segment struct {
	name  string
	count int
	pool  []float64
}

func (s Space) segments() []segment {
	return []segment{
		{"cell_decays", s.Layout.CellDecays, s.Pools.CellDecays},
		{"cell_kds", s.Layout.CellKds, s.Pools.CellKds},
		{"cell_ns", s.Layout.CellNs, s.Pools.CellNs},
		{"instr_decays", s.Layout.InstrDecays, s.Pools.InstrDecays},
		{"conn_kds", s.Layout.ConnKds, s.Pools.ConnKds},
		{"conn_ns", s.Layout.ConnNs, s.Pools.ConnNs},
	}
}

// Len is the genome length.
func (s Space) Len() int {
	n := 0
	for _, seg := range s.segments() {
		n += seg.count
	}
	return n
}

// Bounds returns the pool size of every gene position.
func (s Space) Bounds() []int {
	bounds := make([]int, 0, s.Len())
	for _, seg := range s.segments() {
		for i := 0; i < seg.count; i++ {
			bounds = append(bounds, len(seg.pool))
		}
	}
	return bounds
}

func (s Space) Validate() error {
	if s.Len() == 0 {
		return fmt.Errorf("%w: search space has no genes", ErrInvalidSearch)
	}
	for _, seg := range s.segments() {
		if seg.count < 0 {
			return fmt.Errorf("%w: %s: negative gene count", ErrInvalidSearch, seg.name)
		}
		if seg.count > 0 && len(seg.pool) == 0 {
			return fmt.Errorf("%w: %s: empty value pool", ErrInvalidSearch, seg.name)
		}
	}
	return nil
}

// Decode converts a genome to counter parameters.
func (s Space) Decode(genes []int) (circuits.CounterParams, error) {
	if len(genes) != s.Len() {
		return circuits.CounterParams{}, fmt.Errorf("%w: genome has %d genes, space has %d", ErrInvalidSearch, len(genes), s.Len())
	}

	values := make([][]float64, 0, 6)
	pos := 0
	for _, seg := range s.segments() {
		var vals []float64
		for i := 0; i < seg.count; i++ {
			g := genes[pos]
			if g < 0 || g >= len(seg.pool) {
				return circuits.CounterParams{}, fmt.Errorf("%w: %s gene %d out of range", ErrInvalidSearch, seg.name, g)
			}
			vals = append(vals, seg.pool[g])
			pos++
		}
		values = append(values, vals)
	}

	return circuits.CounterParams{
		Cell: circuits.CellParams{
			Decays: values[0],
			Kds:    values[1],
			Ns:     values[2],
		},
		InstrDecays: values[3],
		ConnKds:     values[4],
		ConnNs:      values[5],
	}, nil
}

// ParamsFromMap builds counter parameters from single named values, the form
// produced by GridSearch. Unknown keys are ignored.
func ParamsFromMap(values map[string]float64) circuits.CounterParams {
	one := func(key string) []float64 {
		if v, ok := values[key]; ok {
			return []float64{v}
		}
		return nil
	}
	return circuits.CounterParams{
		Cell: circuits.CellParams{
			Decays: one("cell_decay"),
			Kds:    one("cell_kd"),
			Ns:     one("cell_n"),
		},
		InstrDecays: one("instr_decay"),
		ConnKds:     one("conn_kd"),
		ConnNs:      one("conn_n"),
	}
}
