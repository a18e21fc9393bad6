package circuits_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/grnsim/internal/circuits"
	"github.com/san-kum/grnsim/internal/grn"
	"github.com/san-kum/grnsim/internal/sim"
)

var _ = Describe("Counter", func() {
	It("lays out the clock, the cells and the decoder in order", func() {
		net, err := circuits.NewCounter(3, circuits.CounterParams{})
		Expect(err).NotTo(HaveOccurred())

		species := net.Species()
		Expect(species).To(HaveLen(1 + 3*len(circuits.CellSpecies) + 6))
		Expect(species[0]).To(Equal("CLK"))
		Expect(species[7]).To(Equal("CELL_1_Q"))
		Expect(species[15]).To(Equal("CELL_2_Q"))
		Expect(species[23]).To(Equal("CELL_3_Q"))
		Expect(species[len(species)-6:]).To(Equal(circuits.Instructions(3)))
		Expect(net.NumGenes()).To(Equal(3*8 + 6))
		Expect(net.Inputs()).To(Equal([]string{"CLK"}))
	})

	It("closes the ring through the last cell's QBAR", func() {
		net, err := circuits.NewCounter(3, circuits.CounterParams{})
		Expect(err).NotTo(HaveOccurred())

		genes := net.Genes()
		Expect(genes[0].Regulators[0].Species).To(Equal("CELL_3_QBAR"))
		Expect(genes[8].Regulators[0].Species).To(Equal("CELL_1_Q"))
		Expect(genes[16].Regulators[0].Species).To(Equal("CELL_2_Q"))

		_, err = grn.Assemble(net)
		Expect(err).NotTo(HaveOccurred())
	})

	It("wires the decoder gates", func() {
		net, err := circuits.NewCounter(3, circuits.CounterParams{})
		Expect(err).NotTo(HaveOccurred())

		decoder := net.Genes()[24:]
		type wire struct {
			species string
			sign    grn.Sign
		}
		wires := func(g grn.Gene) []wire {
			var out []wire
			for _, r := range g.Regulators {
				out = append(out, wire{r.Species, r.Sign})
			}
			return out
		}

		Expect(wires(decoder[0])).To(Equal([]wire{{"CELL_1_Q", grn.Repressor}, {"CELL_3_Q", grn.Repressor}}))
		Expect(wires(decoder[1])).To(Equal([]wire{{"CELL_1_Q", grn.Activator}, {"CELL_2_Q", grn.Repressor}}))
		Expect(wires(decoder[2])).To(Equal([]wire{{"CELL_2_Q", grn.Activator}, {"CELL_3_Q", grn.Repressor}}))
		Expect(wires(decoder[3])).To(Equal([]wire{{"CELL_1_Q", grn.Activator}, {"CELL_3_Q", grn.Activator}}))
		Expect(wires(decoder[4])).To(Equal([]wire{{"CELL_1_Q", grn.Repressor}, {"CELL_2_Q", grn.Activator}}))
		Expect(wires(decoder[5])).To(Equal([]wire{{"CELL_2_Q", grn.Repressor}, {"CELL_3_Q", grn.Activator}}))

		for i, g := range decoder {
			Expect(g.Logic).To(Equal(grn.And))
			Expect(g.Outputs).To(Equal([]string{circuits.InstructionName(i + 1)}))
		}
	})

	It("maps two-value connection patterns by sign", func() {
		net, err := circuits.NewCounter(2, circuits.CounterParams{
			InstrDecays: []float64{0.3},
			ConnKds:     []float64{1, 10},
		})
		Expect(err).NotTo(HaveOccurred())

		for _, g := range net.Genes()[16:] {
			for _, r := range g.Regulators {
				if r.Sign == grn.Activator {
					Expect(r.Kd).To(Equal(1.0))
				} else {
					Expect(r.Kd).To(Equal(10.0))
				}
			}
		}
		info, _ := net.Lookup("INSTRUCTION_4")
		Expect(info.Decay).To(Equal(0.3))
	})

	It("reuses a clock that is already registered", func() {
		net := grn.New()
		Expect(net.AddInputSpecies("PHI")).To(Succeed())
		Expect(circuits.Counter(net, 1, "PHI", circuits.CounterParams{})).To(Succeed())
		Expect(net.Inputs()).To(Equal([]string{"PHI"}))

		other := grn.New()
		Expect(circuits.Counter(other, 1, "PHI", circuits.CounterParams{})).To(Succeed())
		Expect(other.Species()[0]).To(Equal("PHI"))
	})

	It("rejects invalid depths and parameter lists", func() {
		Expect(circuits.Counter(grn.New(), 0, "", circuits.CounterParams{})).To(MatchError(grn.ErrInvalidParameter))
		_, err := circuits.NewCounter(2, circuits.CounterParams{InstrDecays: []float64{0.1, 0.1, 0.1}})
		Expect(err).To(MatchError(grn.ErrInvalidParameter))
		_, err = circuits.NewCounter(2, circuits.CounterParams{ConnNs: []float64{1, 2, 3}})
		Expect(err).To(MatchError(grn.ErrInvalidParameter))
	})

	It("steps through every instruction once per clock cycle", func() {
		const depth = 2
		net, err := circuits.NewCounter(depth, circuits.CounterParams{})
		Expect(err).NotTo(HaveOccurred())

		clock := circuits.Clock(5, circuits.DefaultHigh)
		tr, err := sim.New(net, sim.WithSamples(51)).Run(context.Background(), sim.Scalar(clock...), 250, nil)
		Expect(err).NotTo(HaveOccurred())

		clk, _ := tr.Column("CLK")
		truth := circuits.CounterTruth(clk, depth, circuits.DefaultHigh)
		Expect(truth).To(HaveLen(2 * depth))

		for k := 1; k < len(clock); k++ {
			_, end := tr.Segment(k)
			row := end - 1
			for i, name := range circuits.Instructions(depth) {
				col, ok := tr.Column(name)
				Expect(ok).To(BeTrue())
				if truth[i][row] > 0 {
					Expect(col[row]).To(BeNumerically(">", 90), "%s at segment %d", name, k)
				} else {
					Expect(col[row]).To(BeNumerically("<", 5), "%s at segment %d", name, k)
				}
			}
		}
	})
})
