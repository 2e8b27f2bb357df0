package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/xtding233/refine-backend/internal/refine"
)

// Summary condenses a batch into the figures a player decides on.
type Summary struct {
	Runs      int `json:"runs"`
	Successes int `json:"successes"`
	Destroyed int `json:"destroyed"`

	// Rates are fractions in [0,1] rounded to four places.
	SuccessRate     decimal.Decimal `json:"success_rate"`
	DestructionRate decimal.Decimal `json:"destruction_rate"`

	// CostPerSuccess spreads the spend of every run, destroyed ones included,
	// over the items that reached the target. Zero when nothing succeeded.
	CostPerSuccess decimal.Decimal `json:"cost_per_success"`

	TotalCost Stats `json:"total_cost"`
	Attempts  Stats `json:"attempts"`

	// FinalLevels counts runs per final level, ascending.
	FinalLevels []LevelCount `json:"final_levels"`
}

type LevelCount struct {
	Level int `json:"level"`
	Runs  int `json:"runs"`
}

// Summarize derives a Summary from res.
func Summarize(res refine.BatchResult) Summary {
	s := Summary{Runs: len(res.Runs)}
	if s.Runs == 0 {
		return s
	}

	spent := decimal.Zero
	totals := make([]int64, 0, s.Runs)
	attempts := make([]int64, 0, s.Runs)
	byLevel := make(map[int]int)
	for _, r := range res.Runs {
		if r.Destroyed() {
			s.Destroyed++
		} else {
			s.Successes++
		}
		spent = spent.Add(decimal.NewFromInt(r.Costs.Total))
		totals = append(totals, r.Costs.Total)
		attempts = append(attempts, int64(r.AttemptCount))
		byLevel[r.FinalLevel]++
	}

	n := decimal.NewFromInt(int64(s.Runs))
	s.SuccessRate = decimal.NewFromInt(int64(s.Successes)).DivRound(n, 4)
	s.DestructionRate = decimal.NewFromInt(int64(s.Destroyed)).DivRound(n, 4)
	if s.Successes > 0 {
		s.CostPerSuccess = spent.DivRound(decimal.NewFromInt(int64(s.Successes)), 0)
	}
	s.TotalCost = calcStats(totals)
	s.Attempts = calcStats(attempts)

	for lvl, c := range byLevel {
		s.FinalLevels = append(s.FinalLevels, LevelCount{Level: lvl, Runs: c})
	}
	sort.Slice(s.FinalLevels, func(i, j int) bool { return s.FinalLevels[i].Level < s.FinalLevels[j].Level })
	return s
}
