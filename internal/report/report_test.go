package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/xtding233/refine-backend/internal/refine"
)

func run(final, attempts int, total int64) refine.RunSummary {
	recs := make([]refine.AttemptRecord, attempts)
	recs[len(recs)-1].ToLevel = final
	return refine.RunSummary{
		AttemptCount: attempts,
		InitialLevel: 8,
		FinalLevel:   final,
		Resources:    refine.Resources{MaterialUnits: attempts},
		Costs:        refine.Cost{Total: total},
		Attempts:     recs,
	}
}

func batch() refine.BatchResult {
	runs := []refine.RunSummary{
		run(10, 2, 1000),
		run(refine.Destroyed, 1, 400),
		run(10, 5, 2500),
		run(10, 3, 1600),
	}
	return refine.BatchResult{
		Min:       runs[1],
		Max:       runs[2],
		Average:   refine.Average{MaterialUnits: 2, Total: 1375},
		Runs:      runs,
		Requested: 4,
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(batch())
	if s.Runs != 4 || s.Successes != 3 || s.Destroyed != 1 {
		t.Fatalf("counts = %+v", s)
	}
	if !s.SuccessRate.Equal(decimal.RequireFromString("0.75")) {
		t.Fatalf("success rate = %s", s.SuccessRate)
	}
	if !s.DestructionRate.Equal(decimal.RequireFromString("0.25")) {
		t.Fatalf("destruction rate = %s", s.DestructionRate)
	}
	// 5500 spent over 3 successes
	if !s.CostPerSuccess.Equal(decimal.NewFromInt(1833)) {
		t.Fatalf("cost per success = %s", s.CostPerSuccess)
	}
	want := []LevelCount{{Level: refine.Destroyed, Runs: 1}, {Level: 10, Runs: 3}}
	if diff := cmp.Diff(want, s.FinalLevels); diff != "" {
		t.Fatalf("final levels (-want +got):\n%s", diff)
	}
	if s.TotalCost.P50 != 1300 || s.Attempts.Mean != 2.75 {
		t.Fatalf("stats total=%+v attempts=%+v", s.TotalCost, s.Attempts)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(refine.BatchResult{})
	if s.Runs != 0 || !s.CostPerSuccess.IsZero() {
		t.Fatalf("empty summary = %+v", s)
	}
}

func TestCalcStats(t *testing.T) {
	got := calcStats([]int64{4, 1, 3, 2})
	want := Stats{Mean: 2.5, StdDev: 1.118033988749895, P50: 2.5, P90: 3.7, P99: 3.97}
	opt := cmp.Comparer(func(a, b float64) bool { d := a - b; return d < 1e-9 && d > -1e-9 })
	if diff := cmp.Diff(want, got, opt); diff != "" {
		t.Fatalf("stats (-want +got):\n%s", diff)
	}
}

func TestWriteBatch(t *testing.T) {
	res := batch()
	var buf bytes.Buffer
	if err := WriteBatch(&buf, res, Summarize(res), true); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, frag := range []string{
		"MIN  tries=1 +8 -> destroyed",
		"MAX  tries=5 +8 -> +10",
		"total=2,500",
		"AVG  material=2 protection=0",
		"total=1,375",
		"success_rate=75.00%",
		"cost per success=1,833",
		"#4     tries=3",
	} {
		if !strings.Contains(out, frag) {
			t.Fatalf("output missing %q:\n%s", frag, out)
		}
	}
}

func TestWriteRun(t *testing.T) {
	r := refine.RunSummary{
		AttemptCount: 1, InitialLevel: 9, FinalLevel: 10,
		Resources: refine.Resources{MaterialUnits: 1, ProtectionUnits: 8},
		Costs:     refine.Cost{Level: 90000, Protection: 20000000, Material: 1200000, Total: 21290000},
		Attempts: []refine.AttemptRecord{{
			FromLevel: 9, ToLevel: 10, Material: refine.Enriched, ProtectionUnits: 8,
			Cost: refine.Cost{Level: 90000, Protection: 20000000, Material: 1200000, Total: 21290000},
		}},
	}
	var buf bytes.Buffer
	if err := WriteRun(&buf, r); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "+9 -> +10  enriched") || !strings.Contains(buf.String(), "total=21,290,000") {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}
