package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/sarchlab/mtsa/config"
	"github.com/sarchlab/mtsa/genmat"
	"github.com/sarchlab/mtsa/internal/simlog"
	"github.com/sarchlab/mtsa/runner"
	"github.com/sarchlab/mtsa/systolic"
)

// executeRun generates operands for cfg, builds and drives an array to
// completion, and returns the steady-state summary.
func executeRun(cfg config.SweepConfig, seed uint64) (systolic.Summary, error) {
	if err := cfg.Validate(); err != nil {
		return systolic.Summary{}, err
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	west, north, err := genmat.GeneratePair(cfg.ThreadNumber, cfg.ArraySize, cfg.ArraySize, genmat.Options{
		Sparsity: cfg.Sparsity,
		Min:      1,
		Max:      cfg.InputMultiplier,
	}, rng)
	if err != nil {
		return systolic.Summary{}, fmt.Errorf("mtsa: generating operands: %w", err)
	}

	logger := simlog.Discard()
	if cfg.LoggingNow {
		logger = simlog.Default(true)
	}

	depth := cfg.BufferDepth
	if !cfg.IsLimitedBuffer {
		depth = -1
	}

	arr, err := systolic.NewArray(cfg.ArraySize, depth, cfg.IsLimitedBuffer, west, north, logger)
	if err != nil {
		return systolic.Summary{}, fmt.Errorf("mtsa: building array: %w", err)
	}

	r := runner.NewBuilder().WithArray(arr).Build()
	summary, err := r.Run()
	if err != nil {
		return systolic.Summary{}, fmt.Errorf("mtsa: running array: %w", err)
	}

	return summary, nil
}
