package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xtding233/refine-backend/internal/config"
	"github.com/xtding233/refine-backend/internal/logger"
	"github.com/xtding233/refine-backend/internal/pricing"
	"github.com/xtding233/refine-backend/internal/refine"
	"github.com/xtding233/refine-backend/internal/service"
	"github.com/xtding233/refine-backend/internal/table"
)

// version is set at build time via -ldflags.
var version = "dev"

// runFlags are shared by every subcommand that runs the engine.
type runFlags struct {
	configPath      string
	tableDir        string
	server          string
	initial         int
	target          int
	equipment       string
	protect         string
	noProtection    bool
	protectionPrice int64
	seed            uint64
	verbose         bool
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "refinesim",
		Short:         "Monte Carlo simulator for equipment refining",
		Long:          "refinesim estimates what it costs to refine an item from one level\nto another, with or without protection material.",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		Version: version,
	}
	root.AddCommand(newSimulateCmd())
	root.AddCommand(newOnceCmd())
	root.AddCommand(newTableCmd())
	return root
}

func (f *runFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.configPath, "config", "", "config file (defaults apply when empty)")
	fs.StringVar(&f.tableDir, "table-dir", "", "directory holding tables/ (overrides config)")
	fs.StringVar(&f.server, "server", "", "server table overlay name (overrides config)")
	fs.IntVar(&f.initial, "initial", 0, "initial refine level")
	fs.IntVar(&f.target, "target", 0, "target refine level (required)")
	fs.StringVar(&f.equipment, "equipment", "weapon", "equipment category: weapon or armor")
	fs.StringVar(&f.protect, "protect", "", "per-level protection, e.g. 5=false,9=true")
	fs.BoolVar(&f.noProtection, "no-protection", false, "disable protection for levels not listed in --protect")
	fs.Int64Var(&f.protectionPrice, "protection-price", -1, "protection unit price (negative keeps the configured price)")
	fs.Uint64Var(&f.seed, "seed", 0, "seed for reproducible runs (0 draws from crypto/rand)")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "log to stderr")
	_ = cmd.MarkFlagRequired("target")
}

// input converts the flags into a simulator input.
func (f *runFlags) input() (service.Input, error) {
	cat, err := refine.ParseCategory(f.equipment)
	if err != nil {
		return service.Input{}, err
	}
	protection, err := parseProtect(f.protect)
	if err != nil {
		return service.Input{}, err
	}
	in := service.Input{
		Params: refine.Params{
			InitialLevel:      f.initial,
			TargetLevel:       f.target,
			Category:          cat,
			Protection:        protection,
			DefaultProtection: !f.noProtection,
		},
	}
	if f.protectionPrice >= 0 {
		in.ProtectionPrice = &f.protectionPrice
	}
	if f.seed != 0 {
		in.Seed = &f.seed
	}
	return in, nil
}

// parseProtect reads "5=true,9=false". Bare levels mean true.
func parseProtect(s string) (map[int]bool, error) {
	out := make(map[int]bool)
	if strings.TrimSpace(s) == "" {
		return out, nil
	}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, val, hasVal := strings.Cut(part, "=")
		lvl, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil {
			return nil, fmt.Errorf("--protect: bad level %q", key)
		}
		on := true
		if hasVal {
			on, err = strconv.ParseBool(strings.TrimSpace(val))
			if err != nil {
				return nil, fmt.Errorf("--protect: bad value for level %d: %q", lvl, val)
			}
		}
		out[lvl] = on
	}
	return out, nil
}

// simulator wires config, table and prices the way the server does.
func (f *runFlags) simulator(cmd *cobra.Command, workers, runs int) (*service.Simulator, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	if f.tableDir != "" {
		cfg.TableDir = f.tableDir
	}
	if f.server != "" {
		cfg.Server = f.server
	}
	store, err := table.NewStore(table.NewLoader(cfg.TableDir), cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("load table: %w", err)
	}
	prices, err := cfg.Prices()
	if err != nil {
		return nil, err
	}
	market, err := pricing.NewMarket(prices)
	if err != nil {
		return nil, err
	}

	log := logger.Discard()
	if f.verbose {
		lc := cfg.Logging
		lc.FileEnabled = false
		lc.ConsoleEnabled = true
		log, _ = logger.New(lc, cmd.ErrOrStderr())
	}
	if workers <= 0 {
		workers = cfg.Simulation.Workers
	}
	if runs <= 0 {
		runs = cfg.Simulation.Runs
	}
	return service.NewSimulator(service.SimulatorDeps{
		Tables:      store,
		Market:      market,
		Catalog:     cfg.Catalog(),
		Logger:      log,
		DefaultRuns: runs,
		Workers:     workers,
		MaxAttempts: cfg.Simulation.MaxAttempts,
	}), nil
}
