package circuits_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/grnsim/internal/circuits"
	"github.com/san-kum/grnsim/internal/grn"
	"github.com/san-kum/grnsim/internal/sim"
)

var _ = Describe("RegisterCell", func() {
	It("registers the eight cell species under the prefix", func() {
		net, err := circuits.FlipFlop(circuits.CellParams{})
		Expect(err).NotTo(HaveOccurred())

		Expect(net.Species()).To(Equal([]string{
			"D", "CLK",
			"FF_MNAND1", "FF_MNAND2", "FF_MNAND3", "FF_MNAND4",
			"FF_SNAND1", "FF_SNAND2", "FF_Q", "FF_QBAR",
		}))
		Expect(net.NumGenes()).To(Equal(8))
		for _, g := range net.Genes() {
			Expect(g.MaxRate).To(Equal(circuits.DefaultRate))
			for _, r := range g.Regulators {
				Expect(r.Kd).To(Equal(circuits.DefaultKd))
				Expect(r.N).To(Equal(circuits.DefaultN))
			}
		}
	})

	It("latches D on the rising clock edge", func() {
		net, err := circuits.FlipFlop(circuits.CellParams{})
		Expect(err).NotTo(HaveOccurred())

		seq := sim.Sequence{
			{100, 0},
			{100, 100},
			{0, 100},
			{0, 0},
			{0, 100},
			{100, 0},
			{100, 100},
		}
		tr, err := sim.New(net, sim.WithSamples(51)).Run(context.Background(), seq, 250, nil)
		Expect(err).NotTo(HaveOccurred())

		q, _ := tr.Column("FF_Q")
		qbar, _ := tr.Column("FF_QBAR")
		endOf := func(k int) int {
			_, end := tr.Segment(k)
			return end - 1
		}

		// Before any rising edge the slave latch has not been written.
		Expect(q[endOf(0)]).To(BeNumerically("~", qbar[endOf(0)], 1e-6))

		for _, k := range []int{1, 2, 3, 6} {
			Expect(q[endOf(k)]).To(BeNumerically(">", 90), "segment %d", k)
			Expect(qbar[endOf(k)]).To(BeNumerically("<", 1), "segment %d", k)
		}
		for _, k := range []int{4, 5} {
			Expect(q[endOf(k)]).To(BeNumerically("<", 1), "segment %d", k)
			Expect(qbar[endOf(k)]).To(BeNumerically(">", 90), "segment %d", k)
		}
	})

	It("reports both latches as feedback loops", func() {
		net, err := circuits.FlipFlop(circuits.CellParams{})
		Expect(err).NotTo(HaveOccurred())

		loops, err := net.FeedbackLoops()
		Expect(err).NotTo(HaveOccurred())
		Expect(loops).To(Equal([][]string{
			{"FF_MNAND3", "FF_MNAND4"},
			{"FF_Q", "FF_QBAR"},
		}))
	})

	It("splits two-value patterns into activators and repressors", func() {
		net := grn.New()
		err := circuits.RegisterCell(net, "C", "CLK", "D", circuits.CellParams{
			Decays: []float64{0.2},
			Kds:    []float64{2, 7},
			Ns:     []float64{1, 5},
		})
		Expect(err).NotTo(HaveOccurred())

		info, ok := net.Lookup("C_Q")
		Expect(ok).To(BeTrue())
		Expect(info.Decay).To(Equal(0.2))

		mnand2 := net.Genes()[1]
		Expect(mnand2.Regulators[0]).To(Equal(grn.Regulator{Species: "D", Sign: grn.Activator, Kd: 2, N: 1}))
		Expect(mnand2.Regulators[1]).To(Equal(grn.Regulator{Species: "CLK", Sign: grn.Repressor, Kd: 7, N: 5}))
	})

	It("takes one value per regulator in gate order", func() {
		kds := make([]float64, 16)
		for i := range kds {
			kds[i] = float64(i + 1)
		}
		net := grn.New()
		Expect(circuits.RegisterCell(net, "C", "CLK", "D", circuits.CellParams{Kds: kds})).To(Succeed())

		genes := net.Genes()
		Expect(genes[0].Regulators[0].Kd).To(Equal(1.0))
		Expect(genes[7].Regulators[1].Kd).To(Equal(16.0))
	})

	DescribeTable("rejects malformed parameters",
		func(p circuits.CellParams) {
			err := circuits.RegisterCell(grn.New(), "C", "CLK", "D", p)
			Expect(err).To(MatchError(grn.ErrInvalidParameter))
		},
		Entry("three decays", circuits.CellParams{Decays: []float64{0.1, 0.1, 0.1}}),
		Entry("three kds", circuits.CellParams{Kds: []float64{1, 2, 3}}),
		Entry("negative decay", circuits.CellParams{Decays: []float64{-1}}),
		Entry("zero hill coefficient", circuits.CellParams{Ns: []float64{0}}),
	)

	It("rejects a prefix that is already registered", func() {
		net := grn.New()
		Expect(circuits.RegisterCell(net, "C", "CLK", "D", circuits.CellParams{})).To(Succeed())
		err := circuits.RegisterCell(net, "C", "CLK", "D", circuits.CellParams{})
		Expect(err).To(MatchError(grn.ErrDuplicateName))
	})
})

var _ = Describe("Inverter", func() {
	It("is repressed by the clock", func() {
		net, err := circuits.Inverter(0, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(net.Species()).To(Equal([]string{"CLK", "Y"}))

		tr, err := sim.SimulateSequence(context.Background(), net, sim.Scalar(0, 100), 250, nil)
		Expect(err).NotTo(HaveOccurred())

		y, _ := tr.Column("Y")
		_, end := tr.Segment(0)
		Expect(y[end-1]).To(BeNumerically(">", 99))
		Expect(tr.Final()[1]).To(BeNumerically("<", 0.1))
	})
})
