package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/sarchlab/mtsa/config"
	"github.com/sarchlab/mtsa/store"
)

func newSweepCmd() *cobra.Command {
	var dbPath string
	var seed uint64

	cmd := &cobra.Command{
		Use:   "sweep <sweep-file.yaml>",
		Short: "Run every configuration in a YAML sweep file back-to-back",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := config.LoadSweepFile(args[0])
			if err != nil {
				return err
			}

			var s *store.Store
			if dbPath != "" {
				s, err = store.Open(dbPath)
				if err != nil {
					return err
				}
				defer s.Close()
			}

			results := table.NewWriter()
			results.SetTitle(fmt.Sprintf("Sweep: %d runs", len(file.Runs)))
			results.AppendHeader(table.Row{"#", "Size", "Threads", "Sparsity", "Limited", "Clock", "MeanUtil"})

			for i, cfg := range file.Runs {
				runSeed := seed + uint64(i)
				summary, err := executeRun(cfg, runSeed)
				if err != nil {
					return fmt.Errorf("mtsa sweep: run %d: %w", i, err)
				}

				mean, std := store.MeanStd(summary.UtilizationPerPE)
				results.AppendRow(table.Row{i, cfg.ArraySize, cfg.ThreadNumber, cfg.Sparsity, cfg.IsLimitedBuffer, summary.Clock, fmt.Sprintf("%.4f", mean)})

				if s != nil {
					utilJSON, err := store.MarshalFloatGrid(summary.UtilizationPerPE)
					if err != nil {
						return err
					}
					loadJSON, err := store.MarshalLoadHistories(summary.LoadHistories)
					if err != nil {
						return err
					}
					if _, err := s.SaveRun(store.Run{
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
					}); err != nil {
						return fmt.Errorf("mtsa sweep: persisting run %d: %w", i, err)
					}
				}
			}

			fmt.Println(results.Render())
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&dbPath, "db", "", "optional SQLite database to persist every run into")
	flags.Uint64Var(&seed, "seed", 1, "base random seed; run i uses seed+i")

	return cmd
}
