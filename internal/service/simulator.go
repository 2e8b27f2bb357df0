package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/xtding233/refine-backend/internal/pricing"
	"github.com/xtding233/refine-backend/internal/refine"
	"github.com/xtding233/refine-backend/internal/report"
	"github.com/xtding233/refine-backend/internal/table"
)

// ErrInvalidInput marks caller mistakes that front-ends map to a client error.
var ErrInvalidInput = errors.New("invalid input")

// TableSource hands out the active level table snapshot.
type TableSource interface {
	Current() *table.Table
}

type SimulatorDeps struct {
	Tables  TableSource
	Market  *pricing.Market
	Catalog pricing.Catalog
	Logger  *slog.Logger

	DefaultRuns int
	Workers     int
	MaxAttempts int
}

// Simulator runs refine simulations with the current table and market prices.
type Simulator struct {
	tables  TableSource
	market  *pricing.Market
	catalog pricing.Catalog
	log     *slog.Logger

	defaultRuns int
	workers     int
	maxAttempts int
}

func NewSimulator(deps SimulatorDeps) *Simulator {
	runs := deps.DefaultRuns
	if runs <= 0 {
		runs = refine.DefaultRuns
	}
	log := deps.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Simulator{
		tables:      deps.Tables,
		market:      deps.Market,
		catalog:     deps.Catalog,
		log:         log.With("component", "simulator"),
		defaultRuns: runs,
		workers:     deps.Workers,
		maxAttempts: deps.MaxAttempts,
	}
}

// Input is one simulation request.
type Input struct {
	Params refine.Params

	// ProtectionPrice overrides the market protection price for this request only.
	ProtectionPrice *int64
	// Runs <= 0 uses the configured default.
	Runs int
	Seed *uint64
}

// BatchOutput is the outcome of Simulate.
type BatchOutput struct {
	ID           string
	TableVersion string
	Prices       pricing.Prices
	Result       refine.BatchResult
	Summary      report.Summary
	// Plan buys the average run's protection units; nil without a bundle catalog.
	Plan *pricing.Plan
}

// RunOutput is the outcome of RunOnce.
type RunOutput struct {
	ID           string
	TableVersion string
	Prices       pricing.Prices
	Run          refine.RunSummary
}

func (s *Simulator) engine(in Input) (*refine.Engine, *table.Table, pricing.Prices, error) {
	prices := s.market.Snapshot()
	if in.ProtectionPrice != nil {
		if *in.ProtectionPrice < 0 {
			return nil, nil, pricing.Prices{}, fmt.Errorf("%w: protection price: %w", ErrInvalidInput, pricing.ErrNegativePrice)
		}
		prices = prices.WithProtectionUnit(*in.ProtectionPrice)
	}
	tbl := s.tables.Current()
	return refine.NewEngine(tbl, prices).WithMaxAttempts(s.maxAttempts), tbl, prices, nil
}

// Simulate runs a Monte Carlo batch.
func (s *Simulator) Simulate(ctx context.Context, in Input) (BatchOutput, error) {
	eng, tbl, prices, err := s.engine(in)
	if err != nil {
		return BatchOutput{}, err
	}
	runs := in.Runs
	if runs <= 0 {
		runs = s.defaultRuns
	}

	id := uuid.NewString()
	log := s.log.With("batch_id", id, "table", tbl.Version())
	start := time.Now()

	res, err := eng.RunBatch(ctx, in.Params, runs, refine.BatchOptions{Workers: s.workers, Seed: in.Seed})
	if err != nil {
		log.Warn("batch failed", "error", err)
		return BatchOutput{}, classify(err)
	}

	out := BatchOutput{
		ID:           id,
		TableVersion: tbl.Version(),
		Prices:       prices,
		Result:       res,
		Summary:      report.Summarize(res),
	}
	if len(s.catalog.Bundles) > 0 && res.Average.ProtectionUnits > 0 {
		plan := pricing.MinCostAtLeastUnits(s.catalog, int(res.Average.ProtectionUnits))
		out.Plan = &plan
	}

	log.Info("batch finished",
		"initial", in.Params.InitialLevel,
		"target", in.Params.TargetLevel,
		"equipment", in.Params.Category.String(),
		"runs", len(res.Runs),
		"truncated", res.Truncated,
		"avg_total", res.Average.Total,
		"elapsed", time.Since(start))
	return out, nil
}

// RunOnce runs a single refine sequence.
func (s *Simulator) RunOnce(ctx context.Context, in Input) (RunOutput, error) {
	eng, tbl, prices, err := s.engine(in)
	if err != nil {
		return RunOutput{}, err
	}
	var rng refine.RandomSource
	if in.Seed != nil {
		rng = refine.NewSeededRNG(*in.Seed)
	}
	run, err := eng.RunOnce(in.Params, rng)
	if err != nil {
		return RunOutput{}, classify(err)
	}
	id := uuid.NewString()
	s.log.DebugContext(ctx, "run finished", "run_id", id, "final", run.FinalLevel, "attempts", run.AttemptCount)
	return RunOutput{ID: id, TableVersion: tbl.Version(), Prices: prices, Run: run}, nil
}

// Table returns the active table snapshot.
func (s *Simulator) Table() *table.Table { return s.tables.Current() }

// Prices returns the current market prices.
func (s *Simulator) Prices() pricing.Prices { return s.market.Snapshot() }

// SetPrices replaces the market prices.
func (s *Simulator) SetPrices(p pricing.Prices) error {
	if err := s.market.Set(p); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	s.log.Info("market prices updated", "protection_unit", p.ProtectionUnit)
	return nil
}

func classify(err error) error {
	if errors.Is(err, refine.ErrInvalidRange) || errors.Is(err, refine.ErrUnknownCategory) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
