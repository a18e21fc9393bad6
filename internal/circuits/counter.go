package circuits

import (
	"fmt"

	"github.com/san-kum/grnsim/internal/grn"
)

// DefaultClock is the clock species name used when none is given.
const DefaultClock = "CLK"

// CellName returns the prefix of counter cell c (1-based).
func CellName(c int) string { return fmt.Sprintf("CELL_%d", c) }

// InstructionName returns the species name of decoder output i (1-based).
func InstructionName(i int) string { return fmt.Sprintf("INSTRUCTION_%d", i) }

// Counter adds a Johnson counter of depth cells and its 2*depth-output
// decoder to net. Cell 1 latches the last cell's QBAR and cell c latches cell
// c-1's Q, so the register walks through 2*depth states per full cycle. The
// clock species is registered as an input when net does not have it yet;
// clk "" selects DefaultClock.
//
// Decoder outputs, one per register state:
//
//	INSTRUCTION_1         NOR(CELL_1_Q, CELL_d_Q)
//	INSTRUCTION_i         CELL_{i-1}_Q and not CELL_i_Q      (2 <= i <= d)
//	INSTRUCTION_{d+1}     AND(CELL_1_Q, CELL_d_Q)
//	INSTRUCTION_{d+i}     not CELL_{i-1}_Q and CELL_i_Q      (2 <= i <= d)
func Counter(net *grn.Network, depth int, clk string, p CounterParams) error {
	if depth < 1 {
		return fmt.Errorf("%w: counter depth must be at least 1, got %d", grn.ErrInvalidParameter, depth)
	}
	if clk == "" {
		clk = DefaultClock
	}
	if _, ok := net.Index(clk); !ok {
		if err := net.AddInputSpecies(clk); err != nil {
			return err
		}
	}

	q := func(c int) string { return SpeciesName(CellName(c), "Q") }

	if err := RegisterCell(net, CellName(1), clk, SpeciesName(CellName(depth), "QBAR"), p.Cell); err != nil {
		return err
	}
	for c := 2; c <= depth; c++ {
		if err := RegisterCell(net, CellName(c), clk, q(c-1), p.Cell); err != nil {
			return err
		}
	}

	type conn struct {
		species string
		sign    grn.Sign
	}
	gates := make([][2]conn, 0, 2*depth)
	gates = append(gates, [2]conn{{q(1), grn.Repressor}, {q(depth), grn.Repressor}})
	for i := 2; i <= depth; i++ {
		gates = append(gates, [2]conn{{q(i - 1), grn.Activator}, {q(i), grn.Repressor}})
	}
	gates = append(gates, [2]conn{{q(1), grn.Activator}, {q(depth), grn.Activator}})
	for i := 2; i <= depth; i++ {
		gates = append(gates, [2]conn{{q(i - 1), grn.Repressor}, {q(i), grn.Activator}})
	}

	signs := make([]grn.Sign, 0, 4*depth)
	for _, g := range gates {
		signs = append(signs, g[0].sign, g[1].sign)
	}

	decays, err := perItem("instruction decays", p.InstrDecays, DefaultDecay, 2*depth)
	if err != nil {
		return err
	}
	kds, err := perRegulator("connection kds", p.ConnKds, DefaultKd, signs)
	if err != nil {
		return err
	}
	ns, err := perRegulator("connection ns", p.ConnNs, DefaultN, signs)
	if err != nil {
		return err
	}

	for i := 1; i <= 2*depth; i++ {
		if err := net.AddSpecies(InstructionName(i), decays[i-1]); err != nil {
			return err
		}
	}
	for gi, g := range gates {
		regs := make([]grn.Regulator, 2)
		for j, c := range g {
			k := 2*gi + j
			regs[j] = grn.Regulator{Species: c.species, Sign: c.sign, Kd: kds[k], N: ns[k]}
		}
		if err := net.AddGene(DefaultRate, regs, []string{InstructionName(gi + 1)}, grn.And); err != nil {
			return fmt.Errorf("decoder %s: %w", InstructionName(gi+1), err)
		}
	}
	return nil
}

// NewCounter returns a fresh network holding a counter of the given depth
// driven by DefaultClock.
func NewCounter(depth int, p CounterParams) (*grn.Network, error) {
	net := grn.New()
	if err := Counter(net, depth, DefaultClock, p); err != nil {
		return nil, err
	}
	return net, nil
}

// Instructions returns the decoder output names of a counter of depth cells.
func Instructions(depth int) []string {
	names := make([]string, 2*depth)
	for i := range names {
		names[i] = InstructionName(i + 1)
	}
	return names
}
