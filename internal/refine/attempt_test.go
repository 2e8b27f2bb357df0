package refine

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAttemptOutcomes(t *testing.T) {
	eng := testEngine()
	cases := []struct {
		name    string
		level   int
		cat     EquipmentCategory
		protect bool
		draw    float64
		want    AttemptRecord
	}{
		{
			name: "success with protection", level: 7, cat: Armor, protect: true, draw: 0.1,
			want: AttemptRecord{
				FromLevel: 7, ToLevel: 8, Material: Enriched, ProtectionUnits: 4,
				Cost: Cost{Level: 45000, Protection: 10000000, Material: 1200000, Total: 11245000},
			},
		},
		{
			name: "failure with protection keeps level", level: 7, cat: Armor, protect: true, draw: 0.9,
			want: AttemptRecord{
				FromLevel: 7, ToLevel: 7, Material: Enriched, ProtectionUnits: 4,
				Cost: Cost{Level: 45000, Protection: 10000000, Material: 1200000, Total: 11245000},
			},
		},
		{
			name: "failure with perfect material drops one level", level: 7, cat: Weapon, protect: false, draw: 0.4,
			want: AttemptRecord{
				FromLevel: 7, ToLevel: 6, Material: Perfect, ProtectionUnits: 0,
				Cost: Cost{Level: 50000, Protection: 0, Material: 5600000, Total: 5650000},
			},
		},
		{
			name: "success without protection", level: 4, cat: Weapon, protect: false, draw: 0.59,
			want: AttemptRecord{
				FromLevel: 4, ToLevel: 5, Material: Perfect, ProtectionUnits: 0,
				Cost: Cost{Level: 20000, Protection: 0, Material: 5600000, Total: 5620000},
			},
		},
		{
			name: "missing level uses fallback entry", level: 10, cat: Weapon, protect: true, draw: 0.05,
			want: AttemptRecord{
				FromLevel: 10, ToLevel: 11, Material: Enriched, ProtectionUnits: 10,
				Cost: Cost{Level: 100000, Protection: 25000000, Material: 1200000, Total: 26300000},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rng := &script{draws: []float64{tc.draw}}
			got := eng.Attempt(tc.level, tc.cat, tc.protect, rng)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("attempt mismatch (-want +got):\n%s", diff)
			}
			if rng.pos != 1 {
				t.Fatalf("attempt consumed %d draws, want 1", rng.pos)
			}
		})
	}
}

func TestAttemptCertainLevelStillConsumesOneDraw(t *testing.T) {
	rng := &script{draws: []float64{0.999}}
	got := testEngine().Attempt(0, Weapon, false, rng)
	if got.ToLevel != 1 {
		t.Fatalf("p=1 level should always succeed; got to=%d", got.ToLevel)
	}
	if rng.pos != 1 {
		t.Fatalf("consumed %d draws, want 1", rng.pos)
	}
}

func TestAttemptPerfectFailureClampsAtDestroyed(t *testing.T) {
	eng := NewEngine(mapTable{-1: entry(0, 0, 1, 1)}, testPrices())
	got := eng.Attempt(0, Armor, false, &script{draws: []float64{0.5}})
	if got.ToLevel != Destroyed {
		t.Fatalf("failure from level 0 with perfect material should land on %d; got %d", Destroyed, got.ToLevel)
	}
}

func TestNextLevelRules(t *testing.T) {
	cases := []struct {
		level    int
		success  bool
		material MaterialType
		protect  bool
		want     int
	}{
		{5, true, Enriched, true, 6},
		{5, true, Perfect, false, 6},
		{5, false, Enriched, true, 5},
		{5, false, Perfect, false, 4},
		{5, false, Enriched, false, Destroyed},
		{0, false, Perfect, false, Destroyed},
		{Destroyed, false, Perfect, false, Destroyed},
	}
	for _, tc := range cases {
		if got := nextLevel(tc.level, tc.success, tc.material, tc.protect); got != tc.want {
			t.Fatalf("nextLevel(%d,%v,%v,%v)=%d want %d", tc.level, tc.success, tc.material, tc.protect, got, tc.want)
		}
	}
}

func TestAttemptSuccessRateApprox(t *testing.T) {
	const n = 100000
	eng := testEngine()
	table := testTable()
	for level := 4; level <= 10; level++ {
		p := table.EntryFor(level + 1).SuccessProbability
		rng := NewSeededRNG(uint64(42 + level))
		hits := 0
		for i := 0; i < n; i++ {
			if eng.Attempt(level, Weapon, true, rng).Succeeded() {
				hits++
			}
		}
		freq := float64(hits) / float64(n)
		if diff := freq - p; diff > 0.01 || diff < -0.01 {
			t.Fatalf("level %d: freq=%f not close to p=%f", level, freq, p)
		}
	}
}

func TestAttemptInvalidProbabilityNeverHits(t *testing.T) {
	for _, p := range []float64{-0.5, 1.5, math.NaN(), math.Inf(1)} {
		eng := NewEngine(mapTable{-1: entry(p, 2, 1, 1)}, testPrices())
		rng := &script{draws: []float64{0}}
		got := eng.Attempt(3, Weapon, true, rng)
		if got.Succeeded() || got.ToLevel != 3 {
			t.Fatalf("p=%v: attempt should fail and keep the level, got to=%d", p, got.ToLevel)
		}
		if rng.pos != 1 {
			t.Fatalf("p=%v: consumed %d draws, want 1", p, rng.pos)
		}
	}
}
