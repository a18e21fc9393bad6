package grn

import "github.com/san-kum/grnsim/internal/dynamo"

type boundRegulator struct {
	index int
	sign  Sign
	kd    float64
	n     float64
}

type boundGene struct {
	maxRate    float64
	logic      Logic
	regulators []boundRegulator
	outputs    []int
}

// ODE is the derivative function of a network, with every species reference
// resolved to a state index. It is a snapshot: changes to the network after
// Assemble do not affect it.
type ODE struct {
	species []string
	decay   []float64
	inputs  []int
	genes   []boundGene
}

var _ dynamo.System = (*ODE)(nil)

// Assemble resolves every regulator and output of net and returns its ODE.
// It fails with ErrUnknownSpecies when a gene cites an unregistered species
// and with ErrInputProduced when a gene outputs an input species.
func Assemble(net *Network) (*ODE, error) {
	ode := &ODE{
		species: net.Species(),
		decay:   make([]float64, len(net.species)),
		genes:   make([]boundGene, 0, len(net.genes)),
	}

	for i, s := range net.species {
		if s.Input {
			ode.inputs = append(ode.inputs, i)
			continue
		}
		ode.decay[i] = s.Decay
	}

	for gi, g := range net.genes {
		bg := boundGene{
			maxRate:    g.MaxRate,
			logic:      g.Logic,
			regulators: make([]boundRegulator, len(g.Regulators)),
			outputs:    make([]int, len(g.Outputs)),
		}

		for ri, r := range g.Regulators {
			idx, ok := net.index[r.Species]
			if !ok {
				return nil, &ReferenceError{Gene: gi, Species: r.Species, Role: RoleRegulator, Wrapped: ErrUnknownSpecies}
			}
			bg.regulators[ri] = boundRegulator{index: idx, sign: r.Sign, kd: r.Kd, n: r.N}
		}

		for oi, name := range g.Outputs {
			idx, ok := net.index[name]
			if !ok {
				return nil, &ReferenceError{Gene: gi, Species: name, Role: RoleOutput, Wrapped: ErrUnknownSpecies}
			}
			if net.species[idx].Input {
				return nil, &ReferenceError{Gene: gi, Species: name, Role: RoleOutput, Wrapped: ErrInputProduced}
			}
			bg.outputs[oi] = idx
		}

		ode.genes = append(ode.genes, bg)
	}

	return ode, nil
}

func (o *ODE) StateDim() int { return len(o.species) }

// Species returns the state-vector column names.
func (o *ODE) Species() []string { return append([]string(nil), o.species...) }

// Inputs returns the state indices of the input species.
func (o *ODE) Inputs() []int { return append([]int(nil), o.inputs...) }

// Derive returns dx/dt. Input species always have a zero derivative.
func (o *ODE) Derive(x dynamo.State, t float64) dynamo.State {
	dx := make(dynamo.State, len(x))
	for i, k := range o.decay {
		dx[i] = -k * x[i]
	}

	for gi := range o.genes {
		g := &o.genes[gi]
		rate := g.maxRate * g.activity(x)
		for _, idx := range g.outputs {
			dx[idx] += rate
		}
	}

	return dx
}

func (g *boundGene) activity(x dynamo.State) float64 {
	p := newPromoter(g.logic)
	for _, r := range g.regulators {
		p.add(r.sign, hill(x[r.index], r.kd, r.n))
	}
	return p.activity()
}
