// Package main provides the entry point for scoresim, a cycle-accurate
// Tomasulo scoreboard simulator.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/scoresim/loader"
	"github.com/sarchlab/scoresim/report"
	"github.com/sarchlab/scoresim/scoreboard"
)

var (
	printAll  bool
	maxCycles int
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scoresim <file> [file...]",
		Short: "Simulate a Tomasulo-style scoreboarding pipeline",
		Args:  cobra.MinimumNArgs(1),
		RunE:  run,
	}
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.Flags().BoolVarP(&printAll, "print-all", "p", false, "print the stage-cycle table after every simulated cycle")
	cmd.Flags().IntVar(&maxCycles, "max-cycles", 0, "optional deadlock cap (0 = unbounded)")
	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, program, err := loader.Load(args...)
	if err != nil {
		return err
	}

	for kind := range program.RequiredKinds() {
		if err := cfg.RequireKind(kind); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var opts []scoreboard.DriverOption
	if maxCycles > 0 {
		opts = append(opts, scoreboard.WithMaxCycles(maxCycles))
	}
	driver := scoreboard.NewCycleDriver(program, cfg, opts...)

	var onCycle func(scoreboard.Snapshot)
	if printAll {
		onCycle = func(snap scoreboard.Snapshot) {
			report.PrintSnapshot(cmd.OutOrStdout(), snap)
		}
	}

	sched, err := driver.Run(context.Background(), onCycle)
	if err != nil {
		return err
	}

	report.Print(cmd.OutOrStdout(), sched)
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
