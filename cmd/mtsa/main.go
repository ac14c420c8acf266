// Command mtsa runs and sweeps the multi-threaded systolic array simulator
// from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "mtsa",
		Short: "Multi-threaded systolic array simulator",
	}

	root.AddCommand(newRunCmd())
	root.AddCommand(newSweepCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
