package refine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// BatchOptions controls how a batch draws randomness and schedules runs.
type BatchOptions struct {
	// Workers > 1 spreads runs over a bounded pool; otherwise runs are sequential.
	Workers int

	// Seed makes a batch reproducible: run i draws from NewStreamRNG(*Seed, i),
	// so the result is identical for any Workers value.
	Seed *uint64

	// Source overrides Seed and returns the source for run i. Sources handed to
	// different runs must not share state when Workers > 1.
	Source func(run int) RandomSource
}

func (o BatchOptions) sourceFunc() func(int) RandomSource {
	switch {
	case o.Source != nil:
		return o.Source
	case o.Seed != nil:
		seed := *o.Seed
		return func(i int) RandomSource { return NewStreamRNG(seed, uint64(i)) }
	default:
		return func(int) RandomSource { return DefaultRNG() }
	}
}

// RunBatch repeats RunOnce `runs` times and aggregates the outcomes.
// Min and Max compare Costs.Total and keep the first run on ties. When ctx
// ends early no new runs are started and the completed runs are reduced;
// if none completed, the context error is returned.
func (e *Engine) RunBatch(ctx context.Context, p Params, runs int, opts BatchOptions) (BatchResult, error) {
	if runs <= 0 {
		return BatchResult{}, fmt.Errorf("%w: run count %d must be positive", ErrInvalidRange, runs)
	}
	if err := p.Validate(); err != nil {
		return BatchResult{}, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	results := make([]RunSummary, runs)
	done := make([]bool, runs)
	source := opts.sourceFunc()

	if opts.Workers <= 1 {
		for i := 0; i < runs; i++ {
			if ctx.Err() != nil {
				break
			}
			s, err := e.run(p, source(i))
			if err != nil {
				return BatchResult{}, err
			}
			results[i], done[i] = s, true
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(opts.Workers)
		for i := 0; i < runs; i++ {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				if gctx.Err() != nil {
					return nil
				}
				s, err := e.run(p, source(i))
				if err != nil {
					return err
				}
				// each worker owns slot i; the reduction below runs after Wait
				results[i], done[i] = s, true
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return BatchResult{}, err
		}
	}

	out := reduce(results, done, runs)
	if len(out.Runs) == 0 {
		return BatchResult{}, fmt.Errorf("batch stopped before any run completed: %w", ctx.Err())
	}
	return out, nil
}

// reduce folds completed runs in index order.
func reduce(results []RunSummary, done []bool, requested int) BatchResult {
	out := BatchResult{
		Requested: requested,
		Runs:      make([]RunSummary, 0, requested),
	}
	var sum Average
	for i, s := range results {
		if !done[i] {
			continue
		}
		if len(out.Runs) == 0 {
			out.Min, out.Max = s, s
		} else {
			if s.Costs.Total < out.Min.Costs.Total {
				out.Min = s
			}
			if s.Costs.Total > out.Max.Costs.Total {
				out.Max = s
			}
		}
		out.Runs = append(out.Runs, s)

		sum.MaterialUnits += int64(s.Resources.MaterialUnits)
		sum.ProtectionUnits += int64(s.Resources.ProtectionUnits)
		sum.LevelCost += s.Costs.Level
		sum.ProtectionCost += s.Costs.Protection
		sum.MaterialCost += s.Costs.Material
		sum.Total += s.Costs.Total
	}

	n := int64(len(out.Runs))
	if n == 0 {
		return out
	}
	out.Truncated = len(out.Runs) < requested
	out.Average = Average{
		MaterialUnits:   floorDiv(sum.MaterialUnits, n),
		ProtectionUnits: floorDiv(sum.ProtectionUnits, n),
		LevelCost:       floorDiv(sum.LevelCost, n),
		ProtectionCost:  floorDiv(sum.ProtectionCost, n),
		MaterialCost:    floorDiv(sum.MaterialCost, n),
		Total:           floorDiv(sum.Total, n),
	}
	return out
}

// floorDiv rounds toward negative infinity, unlike Go's / operator.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
