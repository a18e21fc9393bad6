package grn

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Interaction is one regulator -> output edge of a gene.
type Interaction struct {
	From string
	To   string
	Sign Sign
	Gene int
}

// Interactions lists every regulator -> output edge in gene order.
func (n *Network) Interactions() []Interaction {
	var edges []Interaction
	for gi, g := range n.genes {
		for _, r := range g.Regulators {
			for _, o := range g.Outputs {
				edges = append(edges, Interaction{From: r.Species, To: o, Sign: r.Sign, Gene: gi})
			}
		}
	}
	return edges
}

// Graph returns the regulatory graph with one node per species, node IDs
// equal to state indices. Self-regulation is not represented as an edge.
func (n *Network) Graph() (*simple.DirectedGraph, error) {
	if _, err := Assemble(n); err != nil {
		return nil, err
	}

	g := simple.NewDirectedGraph()
	for i := range n.species {
		g.AddNode(simple.Node(int64(i)))
	}
	for _, e := range n.Interactions() {
		from, to := int64(n.index[e.From]), int64(n.index[e.To])
		if from == to {
			continue
		}
		g.SetEdge(g.NewEdge(simple.Node(from), simple.Node(to)))
	}
	return g, nil
}

// FeedbackLoops returns the species sets that regulate themselves, directly or
// through a cycle, ordered by their lowest state index. Bistable elements such
// as cross-coupled NAND latches show up here.
func (n *Network) FeedbackLoops() ([][]string, error) {
	g, err := n.Graph()
	if err != nil {
		return nil, err
	}

	var loops [][]int
	for _, scc := range topo.TarjanSCC(g) {
		if len(scc) < 2 {
			continue
		}
		ids := make([]int, len(scc))
		for i, node := range scc {
			ids[i] = int(node.ID())
		}
		loops = append(loops, ids)
	}
	for _, e := range n.Interactions() {
		if e.From == e.To {
			loops = append(loops, []int{n.index[e.From]})
		}
	}

	for _, ids := range loops {
		sort.Ints(ids)
	}
	sort.Slice(loops, func(i, j int) bool { return loops[i][0] < loops[j][0] })

	out := make([][]string, 0, len(loops))
	seen := make(map[int]bool)
	for _, ids := range loops {
		if len(ids) == 1 && seen[ids[0]] {
			continue
		}
		names := make([]string, len(ids))
		for i, id := range ids {
			names[i] = n.species[id].Name
			if len(ids) == 1 {
				seen[id] = true
			}
		}
		out = append(out, names)
	}
	return out, nil
}
