package pricing

import (
	"math"
	"sort"
)

// MinCostAtLeastUnits finds the cheapest combination of bundles that yields at
// least units protection units. Quantities are unbounded.
func MinCostAtLeastUnits(cat Catalog, units int) Plan {
	if units <= 0 || len(cat.Bundles) == 0 {
		return Plan{}
	}

	var offers []Bundle
	maxUnits := 0
	for _, b := range cat.Bundles {
		if b.Units <= 0 || b.Price < 0 {
			continue
		}
		offers = append(offers, b)
		if b.Units > maxUnits {
			maxUnits = b.Units
		}
	}
	if len(offers) == 0 {
		return Plan{}
	}

	// DP over units up to target + largest bundle so a slight overshoot can win.
	limit := units + maxUnits

	const inf = int64(math.MaxInt64)
	dp := make([]int64, limit+1) // min cost to reach exactly u units
	pick := make([]int, limit+1) // chosen offer index
	prev := make([]int, limit+1) // previous u
	for u := range dp {
		dp[u] = inf
		pick[u] = -1
		prev[u] = -1
	}
	dp[0] = 0

	for u := 0; u <= limit; u++ {
		if dp[u] == inf {
			continue
		}
		for i, b := range offers {
			nu := u + b.Units
			if nu > limit {
				nu = limit
			}
			cost := dp[u] + b.Price
			if cost < dp[nu] {
				dp[nu] = cost
				pick[nu] = i
				prev[nu] = u
			}
		}
	}

	// pick best u >= units
	bestU, bestCost := units, dp[units]
	for u := units; u <= limit; u++ {
		if dp[u] < bestCost {
			bestU, bestCost = u, dp[u]
		}
	}
	if bestCost == inf {
		return Plan{}
	}

	counts := make(map[int]int)
	for u := bestU; u > 0 && pick[u] != -1; u = prev[u] {
		counts[pick[u]]++
	}

	var plan Plan
	for i, qty := range counts {
		b := offers[i]
		sub := b.Price * int64(qty)
		plan.Purchases = append(plan.Purchases, Purchase{
			BundleID:  b.ID,
			Name:      b.Name,
			Qty:       qty,
			UnitPrice: b.Price,
			Units:     b.Units,
			Subtotal:  sub,
		})
		plan.Sub += sub
		plan.TotalUnits += b.Units * qty
	}
	sort.Slice(plan.Purchases, func(i, j int) bool {
		return plan.Purchases[i].BundleID < plan.Purchases[j].BundleID
	})
	plan.Tax, plan.Total = applyTax(plan.Sub, cat.TaxRate)
	return plan
}
