// Package genmat generates random integer operand tensors with a target
// fraction of exact zeros, supplementing the core simulator's explicitly
// out-of-scope "random input generation" collaborator.
package genmat

import (
	"fmt"
	"math/rand/v2"

	"github.com/samber/lo"

	"github.com/sarchlab/mtsa/systolic"
)

// Options controls the distribution genmat samples from.
type Options struct {
	// Sparsity is the target fraction of entries that are exact zero,
	// in [0, 1]. Zero entries drive the PE's skip-the-MAC fast path.
	Sparsity float64

	// Min and Max bound the inclusive range nonzero entries are drawn
	// from. Max must be >= Min.
	Min, Max int64
}

// DefaultOptions returns a moderate sparsity with single-digit operand
// magnitudes, convenient for quick sweeps.
func DefaultOptions() Options {
	return Options{Sparsity: 0.3, Min: 1, Max: 9}
}

func (o Options) validate() error {
	if o.Sparsity < 0 || o.Sparsity > 1 {
		return fmt.Errorf("genmat: sparsity %f out of [0,1]", o.Sparsity)
	}
	if o.Max < o.Min {
		return fmt.Errorf("genmat: max %d is less than min %d", o.Max, o.Min)
	}
	return nil
}

// Generate builds a T×rows×cols tensor. Each entry is independently zero
// with probability opts.Sparsity, otherwise uniform in [opts.Min, opts.Max].
func Generate(t, rows, cols int, opts Options, rng *rand.Rand) (systolic.Tensor3, error) {
	if err := opts.validate(); err != nil {
		return systolic.Tensor3{}, err
	}

	span := opts.Max - opts.Min + 1
	threads := lo.Times(t, func(_ int) [][]int64 {
		return lo.Times(rows, func(_ int) []int64 {
			return lo.Times(cols, func(_ int) int64 {
				if rng.Float64() < opts.Sparsity {
					return 0
				}
				return opts.Min + rng.Int64N(span)
			})
		})
	})

	return systolic.TensorFromRows(threads)
}

// GeneratePair builds a matching west (T×n×k) and north (T×k×n) operand
// pair for an n×n array, sharing the same sparsity and value range.
func GeneratePair(t, n, k int, opts Options, rng *rand.Rand) (west, north systolic.Tensor3, err error) {
	west, err = Generate(t, n, k, opts, rng)
	if err != nil {
		return systolic.Tensor3{}, systolic.Tensor3{}, err
	}
	north, err = Generate(t, k, n, opts, rng)
	if err != nil {
		return systolic.Tensor3{}, systolic.Tensor3{}, err
	}
	return west, north, nil
}
