package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/xtding233/refine-backend/internal/report"
)

func newSimulateCmd() *cobra.Command {
	var (
		f       runFlags
		runs    int
		workers int
		detail  bool
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a Monte Carlo batch and print min, max and average cost",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := f.input()
			if err != nil {
				return err
			}
			sim, err := f.simulator(cmd, workers, runs)
			if err != nil {
				return err
			}
			out, err := sim.Simulate(cmd.Context(), in)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "table=%s equipment=%s +%d -> +%d protection unit=%s\n",
				out.TableVersion, in.Params.Category, in.Params.InitialLevel, in.Params.TargetLevel,
				humanize.Comma(out.Prices.ProtectionUnit))
			if err := report.WriteBatch(w, out.Result, out.Summary, detail); err != nil {
				return err
			}
			if out.Plan != nil {
				fmt.Fprintf(w, "protection to buy for an average run: %d units, %s\n",
					out.Plan.TotalUnits, humanize.Comma(out.Plan.Total))
				for _, p := range out.Plan.Purchases {
					fmt.Fprintf(w, "  %dx %s\n", p.Qty, p.Name)
				}
			}
			return nil
		},
	}
	f.register(cmd)
	fs := cmd.Flags()
	fs.IntVar(&runs, "runs", 0, "number of runs (defaults to config)")
	fs.IntVar(&workers, "workers", 0, "parallel workers (defaults to config)")
	fs.BoolVar(&detail, "runs-detail", false, "list every run")
	return cmd
}
