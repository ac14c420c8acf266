package systolic_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mtsa/systolic"
)

var _ = Describe("Array construction", func() {
	It("rejects a west/north thread count mismatch", func() {
		west, _ := systolic.TensorFromRows([][][]int64{{{1}}})
		north, _ := systolic.TensorFromRows([][][]int64{{{1}}, {{1}}})
		_, err := systolic.NewArray(1, -1, false, west, north, nil)
		Expect(err).To(HaveOccurred())
	})

	It("rejects an array size that does not match the operand shape", func() {
		west, _ := systolic.TensorFromRows([][][]int64{{{1, 2}, {3, 4}}})
		north, _ := systolic.TensorFromRows([][][]int64{{{1, 2}, {3, 4}}})
		_, err := systolic.NewArray(3, -1, false, west, north, nil)
		Expect(err).To(HaveOccurred())
	})

	It("rejects a limited buffer depth below 2", func() {
		west, _ := systolic.TensorFromRows([][][]int64{{{1, 2}, {3, 4}}})
		north, _ := systolic.TensorFromRows([][][]int64{{{1, 2}, {3, 4}}})
		_, err := systolic.NewArray(2, 1, true, west, north, nil)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Array end-to-end multiply", func() {
	It("computes the batched product and reports completion", func() {
		west, _ := systolic.TensorFromRows([][][]int64{
			{{1, 2}, {3, 4}},
		})
		north, _ := systolic.TensorFromRows([][][]int64{
			{{5, 6}, {7, 8}},
		})
		want := systolic.MatMul(west, north)

		arr, err := systolic.NewArray(2, -1, false, west, north, nil)
		Expect(err).NotTo(HaveOccurred())

		done := false
		for i := 0; i < 64; i++ {
			if arr.IsDone() {
				done = true
				break
			}
			arr.Tick()
		}
		Expect(done).To(BeTrue(), "array did not drain within the cycle budget")

		summary := arr.Summarize()
		Expect(summary.Results.Equal(want)).To(BeTrue())
	})

	It("produces the same result with a generous limited buffer depth", func() {
		west, _ := systolic.TensorFromRows([][][]int64{
			{{2, 0}, {0, 3}},
		})
		north, _ := systolic.TensorFromRows([][][]int64{
			{{1, 4}, {5, 6}},
		})
		want := systolic.MatMul(west, north)

		arr, err := systolic.NewArray(2, 4, true, west, north, nil)
		Expect(err).NotTo(HaveOccurred())

		for i := 0; i < 64 && !arr.IsDone(); i++ {
			arr.Tick()
		}
		Expect(arr.IsDone()).To(BeTrue())

		summary := arr.Summarize()
		Expect(summary.Results.Equal(want)).To(BeTrue())
	})
})

var _ = Describe("Array load history", func() {
	It("records occupancy only for internal buffers, never for outputs", func() {
		west, _ := systolic.TensorFromRows([][][]int64{{{1, 2}, {3, 4}}})
		north, _ := systolic.TensorFromRows([][][]int64{{{1, 2}, {3, 4}}})
		arr, err := systolic.NewArray(2, -1, false, west, north, nil)
		Expect(err).NotTo(HaveOccurred())

		for i := 0; i < 64 && !arr.IsDone(); i++ {
			arr.Tick()
		}

		// column 0 is an internal buffer; column 1 (size-1) is the east output.
		Expect(arr.LoadHistory(0, 0, true)).NotTo(BeEmpty())
		Expect(func() { arr.LoadHistory(0, 1, true) }).To(Panic())
	})
})
