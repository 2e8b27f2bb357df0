package report

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/xtding233/refine-backend/internal/refine"
)

// WriteBatch renders MIN, MAX and AVG lines followed by the summary.
// With detail set every run is listed as well.
func WriteBatch(w io.Writer, res refine.BatchResult, s Summary, detail bool) error {
	ew := &errWriter{w: w}
	ew.printf("MIN  %s\n", runLine(res.Min))
	ew.printf("MAX  %s\n", runLine(res.Max))
	a := res.Average
	ew.printf("AVG  material=%d protection=%d | level=%s protection=%s material=%s total=%s\n",
		a.MaterialUnits, a.ProtectionUnits,
		money(a.LevelCost), money(a.ProtectionCost), money(a.MaterialCost), money(a.Total))
	ew.printf("---\n")
	ew.printf("runs=%d success=%d destroyed=%d success_rate=%s%% destruction_rate=%s%%\n",
		s.Runs, s.Successes, s.Destroyed,
		s.SuccessRate.Shift(2).StringFixed(2), s.DestructionRate.Shift(2).StringFixed(2))
	if s.Successes > 0 {
		ew.printf("cost per success=%s\n", humanize.BigComma(s.CostPerSuccess.BigInt()))
	}
	ew.printf("total cost p50=%s p90=%s p99=%s\n",
		humanize.Commaf(s.TotalCost.P50), humanize.Commaf(s.TotalCost.P90), humanize.Commaf(s.TotalCost.P99))
	if res.Truncated {
		ew.printf("stopped early: %d of %d runs completed\n", len(res.Runs), res.Requested)
	}

	if detail {
		ew.printf("---\n")
		for i, r := range res.Runs {
			ew.printf("#%-5d %s\n", i+1, runLine(r))
		}
	}
	return ew.err
}

// WriteRun renders one run with every attempt.
func WriteRun(w io.Writer, r refine.RunSummary) error {
	ew := &errWriter{w: w}
	ew.printf("%s\n", runLine(r))
	for i, a := range r.Attempts {
		ew.printf("  %3d  +%d -> %s  %-8s protection=%d total=%s\n",
			i+1, a.FromLevel, levelName(a.ToLevel), a.Material, a.ProtectionUnits, money(a.Cost.Total))
	}
	return ew.err
}

func runLine(r refine.RunSummary) string {
	return fmt.Sprintf("tries=%d +%d -> %s | material=%d protection=%d | level=%s protection=%s material=%s total=%s",
		r.AttemptCount, r.InitialLevel, levelName(r.FinalLevel),
		r.Resources.MaterialUnits, r.Resources.ProtectionUnits,
		money(r.Costs.Level), money(r.Costs.Protection), money(r.Costs.Material), money(r.Costs.Total))
}

func levelName(l int) string {
	if l == refine.Destroyed {
		return "destroyed"
	}
	return fmt.Sprintf("+%d", l)
}

func money(v int64) string { return humanize.Comma(v) }

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
