package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/xtding233/refine-backend/internal/config"
	"github.com/xtding233/refine-backend/internal/refine"
	"github.com/xtding233/refine-backend/internal/table"
)

func newTableCmd() *cobra.Command {
	var configPath, tableDir, server string
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Print the resolved level table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if tableDir != "" {
				cfg.TableDir = tableDir
			}
			if server != "" {
				cfg.Server = server
			}
			store, err := table.NewStore(table.NewLoader(cfg.TableDir), cfg.Server)
			if err != nil {
				return err
			}
			t := store.Current()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "version: %s\n", t.Version())
			fmt.Fprintln(w, "LEVEL\tCHANCE\tPROTECTION\tWEAPON\tARMOR")
			row := func(name string, e refine.LevelEntry) {
				fmt.Fprintf(w, "%s\t%.2f\t%d\t%s\t%s\n", name, e.SuccessProbability, e.ProtectionCount,
					humanize.Comma(e.PriceFor(refine.Weapon)), humanize.Comma(e.PriceFor(refine.Armor)))
			}
			for _, lvl := range t.Levels() {
				row(fmt.Sprintf("+%d", lvl), t.EntryFor(lvl))
			}
			row("other", t.Fallback())
			return w.Flush()
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&configPath, "config", "", "config file")
	fs.StringVar(&tableDir, "table-dir", "", "directory holding tables/")
	fs.StringVar(&server, "server", "", "server table overlay name")
	return cmd
}
