package grn

import (
	"fmt"
	"math"
)

// Species is one state variable of the network. Input species are driven from
// outside and carry no decay or production term.
type Species struct {
	Name  string  `json:"name" yaml:"name"`
	Input bool    `json:"input" yaml:"input"`
	Decay float64 `json:"decay" yaml:"decay"`
}

// Gene is a production rule: while evaluated it adds MaxRate times the
// promoter activity of its regulators to the derivative of every output.
type Gene struct {
	MaxRate    float64     `json:"max_rate" yaml:"max_rate"`
	Regulators []Regulator `json:"regulators" yaml:"regulators"`
	Outputs    []string    `json:"outputs" yaml:"outputs"`
	Logic      Logic       `json:"logic" yaml:"logic"`
}

func (g Gene) clone() Gene {
	c := g
	c.Regulators = append([]Regulator(nil), g.Regulators...)
	c.Outputs = append([]string(nil), g.Outputs...)
	return c
}

// Network is an ordered registry of species plus an ordered list of genes.
// The index a species receives when it is added is its column in every state
// vector and trajectory, and it never changes.
//
// A Network has a single owner and no internal locking.
type Network struct {
	species []Species
	index   map[string]int
	genes   []Gene
}

func New() *Network {
	return &Network{index: make(map[string]int)}
}

// AddInputSpecies registers an externally driven species.
func (n *Network) AddInputSpecies(name string) error {
	return n.add(Species{Name: name, Input: true})
}

// AddSpecies registers a species with first-order decay rate decay.
func (n *Network) AddSpecies(name string, decay float64) error {
	if !(decay >= 0) || math.IsInf(decay, 0) {
		return fmt.Errorf("%w: species %q: decay must be non-negative, got %g", ErrInvalidParameter, name, decay)
	}
	return n.add(Species{Name: name, Decay: decay})
}

func (n *Network) add(s Species) error {
	if s.Name == "" {
		return fmt.Errorf("%w: species name is empty", ErrInvalidParameter)
	}
	if _, ok := n.index[s.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, s.Name)
	}
	n.index[s.Name] = len(n.species)
	n.species = append(n.species, s)
	return nil
}

// AddGene appends a production rule. Parameters are checked here; species
// names are resolved later by Assemble, so a gene may cite species that are
// added after it.
func (n *Network) AddGene(maxRate float64, regulators []Regulator, outputs []string, logic Logic) error {
	if !(maxRate >= 0) || math.IsInf(maxRate, 0) {
		return fmt.Errorf("%w: max rate must be non-negative, got %g", ErrInvalidParameter, maxRate)
	}
	if logic != And && logic != Or {
		return fmt.Errorf("%w: unknown logic %d", ErrInvalidParameter, int(logic))
	}
	if len(outputs) == 0 {
		return fmt.Errorf("%w: gene has no outputs", ErrInvalidParameter)
	}
	for _, r := range regulators {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	for _, o := range outputs {
		if o == "" {
			return fmt.Errorf("%w: output species name is empty", ErrInvalidParameter)
		}
	}

	n.genes = append(n.genes, Gene{
		MaxRate:    maxRate,
		Regulators: regulators,
		Outputs:    outputs,
		Logic:      logic,
	}.clone())
	return nil
}

// Species returns the species names in state-vector order.
func (n *Network) Species() []string {
	names := make([]string, len(n.species))
	for i, s := range n.species {
		names[i] = s.Name
	}
	return names
}

// SpeciesInfo returns a copy of every registered species in state-vector order.
func (n *Network) SpeciesInfo() []Species {
	return append([]Species(nil), n.species...)
}

func (n *Network) Lookup(name string) (Species, bool) {
	i, ok := n.index[name]
	if !ok {
		return Species{}, false
	}
	return n.species[i], true
}

func (n *Network) Index(name string) (int, bool) {
	i, ok := n.index[name]
	return i, ok
}

// Inputs returns the names of the input species in state-vector order.
func (n *Network) Inputs() []string {
	var names []string
	for _, s := range n.species {
		if s.Input {
			names = append(names, s.Name)
		}
	}
	return names
}

// Genes returns a deep copy of the gene list in insertion order.
func (n *Network) Genes() []Gene {
	genes := make([]Gene, len(n.genes))
	for i, g := range n.genes {
		genes[i] = g.clone()
	}
	return genes
}

func (n *Network) Len() int      { return len(n.species) }
func (n *Network) NumGenes() int { return len(n.genes) }
