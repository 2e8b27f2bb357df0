package main

import (
	"github.com/spf13/cobra"

	"github.com/xtding233/refine-backend/internal/report"
)

func newOnceCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "once",
		Short: "Run a single refine sequence and print every attempt",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := f.input()
			if err != nil {
				return err
			}
			sim, err := f.simulator(cmd, 1, 1)
			if err != nil {
				return err
			}
			out, err := sim.RunOnce(cmd.Context(), in)
			if err != nil {
				return err
			}
			return report.WriteRun(cmd.OutOrStdout(), out.Run)
		},
	}
	f.register(cmd)
	return cmd
}
