package circuits

import (
	"fmt"

	"github.com/san-kum/grnsim/internal/grn"
)

// Cell species, in registration order. A cell adds them as prefix_NAME.
var CellSpecies = []string{"MNAND1", "MNAND2", "MNAND3", "MNAND4", "SNAND1", "SNAND2", "Q", "QBAR"}

type source int

const (
	fromCell source = iota
	fromData
	fromClock
)

type input struct {
	from  source
	local string
	sign  grn.Sign
}

func data(s grn.Sign) input               { return input{from: fromData, sign: s} }
func clock(s grn.Sign) input              { return input{from: fromClock, sign: s} }
func local(name string, s grn.Sign) input { return input{from: fromCell, local: name, sign: s} }

type gate struct {
	output string
	inputs []input
}

// cellGates wires a positive-edge master-slave D flip-flop. While the clock is
// low the master latch (MNAND3/MNAND4) follows D; while it is high the master
// holds and the slave latch (Q/QBAR) copies it.
var cellGates = []gate{
	{"MNAND1", []input{data(grn.Repressor), clock(grn.Repressor)}},
	{"MNAND2", []input{data(grn.Activator), clock(grn.Repressor)}},
	{"MNAND3", []input{local("MNAND1", grn.Repressor), local("MNAND4", grn.Repressor)}},
	{"MNAND4", []input{local("MNAND2", grn.Repressor), local("MNAND3", grn.Repressor)}},
	{"SNAND1", []input{clock(grn.Activator), local("MNAND3", grn.Repressor)}},
	{"SNAND2", []input{clock(grn.Activator), local("MNAND4", grn.Repressor)}},
	{"Q", []input{local("SNAND1", grn.Repressor), local("QBAR", grn.Repressor)}},
	{"QBAR", []input{local("SNAND2", grn.Repressor), local("Q", grn.Repressor)}},
}

func cellSigns() []grn.Sign {
	var signs []grn.Sign
	for _, g := range cellGates {
		for _, in := range g.inputs {
			signs = append(signs, in.sign)
		}
	}
	return signs
}

// SpeciesName joins a cell prefix and a local species name.
func SpeciesName(prefix, name string) string {
	return prefix + "_" + name
}

// RegisterCell adds a D flip-flop named prefix to net. clk and dataName name the
// clock and data species; neither has to exist yet, since names are resolved
// when the network is assembled. On error the network may hold a partially
// registered cell.
func RegisterCell(net *grn.Network, prefix, clk, dataName string, p CellParams) error {
	signs := cellSigns()
	decays, err := perItem("cell decays", p.Decays, DefaultDecay, len(CellSpecies))
	if err != nil {
		return err
	}
	kds, err := perRegulator("cell kds", p.Kds, DefaultKd, signs)
	if err != nil {
		return err
	}
	ns, err := perRegulator("cell ns", p.Ns, DefaultN, signs)
	if err != nil {
		return err
	}

	for i, name := range CellSpecies {
		if err := net.AddSpecies(SpeciesName(prefix, name), decays[i]); err != nil {
			return fmt.Errorf("cell %s: %w", prefix, err)
		}
	}

	k := 0
	for _, g := range cellGates {
		regs := make([]grn.Regulator, len(g.inputs))
		for i, in := range g.inputs {
			var species string
			switch in.from {
			case fromData:
				species = dataName
			case fromClock:
				species = clk
			default:
				species = SpeciesName(prefix, in.local)
			}
			regs[i] = grn.Regulator{Species: species, Sign: in.sign, Kd: kds[k], N: ns[k]}
			k++
		}
		if err := net.AddGene(DefaultRate, regs, []string{SpeciesName(prefix, g.output)}, grn.Or); err != nil {
			return fmt.Errorf("cell %s: gate %s: %w", prefix, g.output, err)
		}
	}
	return nil
}

// FlipFlop returns a network holding one cell named FF driven by the input
// species D and CLK, registered in that order.
func FlipFlop(p CellParams) (*grn.Network, error) {
	net := grn.New()
	if err := net.AddInputSpecies("D"); err != nil {
		return nil, err
	}
	if err := net.AddInputSpecies(DefaultClock); err != nil {
		return nil, err
	}
	if err := RegisterCell(net, "FF", DefaultClock, "D", p); err != nil {
		return nil, err
	}
	return net, nil
}
