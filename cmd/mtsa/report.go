package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sarchlab/mtsa/config"
	"github.com/sarchlab/mtsa/store"
	"github.com/sarchlab/mtsa/systolic"
)

// printSummaryTable renders a run's steady-state summary the way
// core/util.go renders PE state: one titled table for the scalar figures,
// one for the per-PE utilization grid.
func printSummaryTable(cfg config.SweepConfig, summary systolic.Summary) {
	headline := table.NewWriter()
	headline.SetTitle(fmt.Sprintf("MTSA run: %dx%d mesh, %d threads", cfg.ArraySize, cfg.ArraySize, cfg.ThreadNumber))
	headline.AppendHeader(table.Row{"Clock", "Sparsity", "Limited", "BufferDepth"})
	headline.AppendRow(table.Row{summary.Clock, cfg.Sparsity, cfg.IsLimitedBuffer, cfg.BufferDepth})
	fmt.Println(headline.Render())
	fmt.Println()

	mean, std := store.MeanStd(summary.UtilizationPerPE)
	fmt.Printf("Mean MAC utilization: %.4f (stddev %.4f)\n\n", mean, std)

	util := table.NewWriter()
	util.SetTitle("MAC utilization per PE")
	header := table.Row{"i\\j"}
	for j := range summary.UtilizationPerPE {
		header = append(header, j)
	}
	util.AppendHeader(header)
	for i, row := range summary.UtilizationPerPE {
		r := table.Row{i}
		for _, v := range row {
			r = append(r, fmt.Sprintf("%.3f", v))
		}
		util.AppendRow(r)
	}
	fmt.Println(util.Render())
}
