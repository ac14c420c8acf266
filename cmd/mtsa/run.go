package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/mtsa/config"
	"github.com/sarchlab/mtsa/store"
	"github.com/sarchlab/mtsa/systolic"
)

func newRunCmd() *cobra.Command {
	cfg := config.DefaultSweepConfig()

	var configPath string
	var dbPath string
	var seed uint64

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one MTSA simulation and print its steady-state summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				loaded, err := config.LoadSweepConfig(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}

			summary, err := executeRun(cfg, seed)
			if err != nil {
				return err
			}

			printSummaryTable(cfg, summary)

			if dbPath != "" {
				if err := persistRun(dbPath, cfg, summary); err != nil {
					return err
				}
				fmt.Println("run persisted to", dbPath)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "", "YAML SweepConfig file (overrides the other flags below)")
	flags.IntVar(&cfg.ThreadNumber, "threads", cfg.ThreadNumber, "thread (batch) count")
	flags.IntVar(&cfg.ArraySize, "size", cfg.ArraySize, "mesh size N")
	flags.Float64Var(&cfg.Sparsity, "sparsity", cfg.Sparsity, "fraction of zero operand entries, in [0,1]")
	flags.BoolVar(&cfg.IsLimitedBuffer, "limited", cfg.IsLimitedBuffer, "enable depth-limited buffers")
	flags.IntVar(&cfg.BufferDepth, "depth", cfg.BufferDepth, "buffer depth when --limited is set (>= 2)")
	flags.Int64Var(&cfg.InputMultiplier, "multiplier", cfg.InputMultiplier, "max magnitude of nonzero operand entries")
	flags.BoolVar(&cfg.LoggingNow, "trace", cfg.LoggingNow, "enable full diagnostic tracing to stderr")
	flags.StringVar(&dbPath, "db", "", "optional SQLite database to persist this run into")
	flags.Uint64Var(&seed, "seed", 1, "random seed for operand generation")

	return cmd
}

func persistRun(dbPath string, cfg config.SweepConfig, summary systolic.Summary) error {
	s, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()

	utilJSON, err := store.MarshalFloatGrid(summary.UtilizationPerPE)
	if err != nil {
		return err
	}
	loadJSON, err := store.MarshalLoadHistories(summary.LoadHistories)
	if err != nil {
		return err
	}
	mean, std := store.MeanStd(summary.UtilizationPerPE)

	_, err = s.SaveRun(store.Run{
		ThreadNumber:      cfg.ThreadNumber,
		ArraySize:         cfg.ArraySize,
		Sparsity:          cfg.Sparsity,
		IsLimitedBuffer:   cfg.IsLimitedBuffer,
		BufferDepth:       cfg.BufferDepth,
		TotalClock:        summary.Clock,
		MeanUtilization:   mean,
		StdUtilization:    std,
		LoadHistoryJSON:   loadJSON,
		UtilizationPerPEJ: utilJSON,
	})
	return err
}
