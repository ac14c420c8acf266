package systolic_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mtsa/systolic"
)

var _ = Describe("PE", func() {
	var (
		west, north *systolic.InternalBuffer
		east, south *systolic.OutputBuffer
		pe          *systolic.PE
	)

	BeforeEach(func() {
		west = systolic.NewInputFIFO([][]systolic.Scalar{
			{systolic.NewValue(5), systolic.NewValue(3)},
		}, 0, -1, nil)
		north = systolic.NewInputFIFO([][]systolic.Scalar{
			{systolic.NewValue(4), systolic.NewValue(2)},
		}, -1, 0, nil)
		east = systolic.NewOutputBuffer(1, 0, 0)
		south = systolic.NewOutputBuffer(1, 0, 0)
		pe = systolic.NewPE(0, 0, 1, false, west, north, east, south, nil)
	})

	Context("when two real nonzero operands arrive", func() {
		It("accumulates their product and pushes both through", func() {
			pe.Step()
			Expect(pe.Result(0)).To(Equal(int64(20)))
			Expect(pe.MacUtility()).To(Equal([]bool{true}))
			Expect(east.Lane(0)).To(HaveLen(1))
			Expect(south.Lane(0)).To(HaveLen(1))
		})

		It("accumulates across multiple cycles", func() {
			pe.Step()
			pe.Step()
			Expect(pe.Result(0)).To(Equal(int64(20 + 6)))
			Expect(pe.MacUtility()).To(Equal([]bool{true, true}))
		})
	})

	Context("when a thread's operands are exhausted", func() {
		It("marks the cycle idle instead of firing", func() {
			pe.Step()
			pe.Step()
			pe.Step()
			Expect(pe.MacUtility()).To(Equal([]bool{true, true, false}))
		})
	})
})

var _ = Describe("PE bubble and zero handling", func() {
	It("passes a Bubble-paired operand through without firing", func() {
		west := systolic.NewInputFIFO([][]systolic.Scalar{{systolic.Bubble}}, 0, -1, nil)
		north := systolic.NewInputFIFO([][]systolic.Scalar{{systolic.NewValue(9)}}, -1, 0, nil)
		east := systolic.NewOutputBuffer(1, 0, 0)
		south := systolic.NewOutputBuffer(1, 0, 0)
		pe := systolic.NewPE(0, 0, 1, false, west, north, east, south, nil)

		pe.Step()

		Expect(pe.Result(0)).To(Equal(int64(0)))
		Expect(pe.MacUtility()).To(Equal([]bool{false}))
		// the east sink is an OutputBuffer, which drops the forwarded Bubble.
		Expect(east.Lane(0)).To(BeEmpty())
		Expect(south.Lane(0)[0].Value()).To(Equal(int64(9)))
	})

	It("passes a Zero-paired operand through without firing", func() {
		west := systolic.NewInputFIFO([][]systolic.Scalar{{systolic.NewValue(0)}}, 0, -1, nil)
		north := systolic.NewInputFIFO([][]systolic.Scalar{{systolic.NewValue(7)}}, -1, 0, nil)
		east := systolic.NewOutputBuffer(1, 0, 0)
		south := systolic.NewOutputBuffer(1, 0, 0)
		pe := systolic.NewPE(0, 0, 1, false, west, north, east, south, nil)

		pe.Step()

		Expect(pe.Result(0)).To(Equal(int64(0)))
		Expect(pe.MacUtility()).To(Equal([]bool{false}))
		Expect(east.Lane(0)[0].Value()).To(Equal(int64(0)))
		Expect(south.Lane(0)[0].Value()).To(Equal(int64(7)))
	})
})

var _ = Describe("PE round-robin across threads", func() {
	It("fires at most one thread's MAC per cycle", func() {
		west := systolic.NewInputFIFO([][]systolic.Scalar{
			{systolic.NewValue(1)},
			{systolic.NewValue(2)},
		}, 0, -1, nil)
		north := systolic.NewInputFIFO([][]systolic.Scalar{
			{systolic.NewValue(10)},
			{systolic.NewValue(20)},
		}, -1, 0, nil)
		east := systolic.NewOutputBuffer(2, 0, 0)
		south := systolic.NewOutputBuffer(2, 0, 0)
		pe := systolic.NewPE(0, 0, 2, false, west, north, east, south, nil)

		pe.Step()

		fired := pe.Result(0) != 0
		idle := pe.Result(1) != 0
		Expect(fired != idle).To(BeTrue(), "exactly one thread should have fired this cycle")
	})
})

var _ = Describe("PE limited buffer backpressure", func() {
	It("stalls a real MAC when the downstream buffer is full", func() {
		west := systolic.NewInputFIFO([][]systolic.Scalar{{systolic.NewValue(3)}}, 0, -1, nil)
		north := systolic.NewInputFIFO([][]systolic.Scalar{{systolic.NewValue(4)}}, -1, 0, nil)
		east := systolic.NewInternalBuffer(1, 1, 0, 0, nil) // already at its depth limit of 1
		south := systolic.NewOutputBuffer(1, 0, 0)
		pe := systolic.NewPE(0, 0, 1, true, west, north, east, south, nil)

		pe.Step()

		Expect(pe.Result(0)).To(Equal(int64(0)))
		Expect(pe.MacUtility()).To(Equal([]bool{false}))
	})
})
