package circuits_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/grnsim/internal/circuits"
	"github.com/san-kum/grnsim/internal/sim"
)

var _ = Describe("CounterTruth", func() {
	It("stays low until the first rising edge", func() {
		truth := circuits.CounterTruth([]float64{0, 0, 100, 100, 0, 100}, 1, 100)
		Expect(truth).To(Equal([][]float64{
			{0, 0, 0, 0, 0, 100},
			{0, 0, 100, 100, 100, 0},
		}))
	})

	It("keeps exactly one instruction high after the first edge", func() {
		clock := []float64{0}
		for _, v := range circuits.Clock(7, 100) {
			clock = append(clock, v, v)
		}
		truth := circuits.CounterTruth(clock, 3, 100)
		first := circuits.RisingEdges(clock, 100)[0]

		for s := first; s < len(clock); s++ {
			high := 0
			for _, row := range truth {
				if row[s] == 100 {
					high++
				}
			}
			Expect(high).To(Equal(1), "sample %d", s)
		}
	})

	It("ignores clock jitter below half the high level", func() {
		Expect(circuits.RisingEdges([]float64{0, 10, 40, 0, 100, 100, 0, 60}, 100)).To(Equal([]int{4, 7}))
	})

	It("returns nothing for an empty counter", func() {
		Expect(circuits.CounterTruth([]float64{0, 100}, 0, 100)).To(BeNil())
	})
})

var _ = Describe("input patterns", func() {
	DescribeTable("Clock",
		func(cycles int, want []float64) {
			Expect(circuits.Clock(cycles, 100)).To(Equal(want))
		},
		Entry("none", 0, []float64{}),
		Entry("three cycles", 3, []float64{0, 100, 0, 100, 0, 100}),
	)

	It("builds periodic pulses after a lead", func() {
		Expect(circuits.Pulses(2, 4, 2, 100)).To(Equal([]float64{0, 0, 100, 0, 0, 0, 100, 0, 0, 0}))
		Expect(circuits.Pulses(0, 0, 2, 1)).To(Equal([]float64{1, 1}))
	})

	It("zips input columns and holds the last value", func() {
		seq := circuits.Sequence([]float64{100, 0, 0}, []float64{0, 100}, nil)
		Expect(seq).To(Equal(sim.Sequence{
			{100, 0, 0},
			{0, 100, 0},
			{0, 100, 0},
		}))
	})
})
