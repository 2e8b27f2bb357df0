package refine

// Engine runs refine attempts against a level table and a price list.
// It holds no mutable state; the same Engine may serve concurrent runs as long
// as each run has its own RandomSource.
type Engine struct {
	table       LevelSource
	prices      Prices
	maxAttempts int
}

// DefaultMaxAttempts bounds a single run. A table that gives some level a zero
// success chance would otherwise loop forever while protection is engaged.
const DefaultMaxAttempts = 1_000_000

// NewEngine binds a level table and a price list.
func NewEngine(table LevelSource, prices Prices) *Engine {
	return &Engine{table: table, prices: prices, maxAttempts: DefaultMaxAttempts}
}

// WithMaxAttempts returns a copy of the engine with a different per-run bound.
// n <= 0 keeps the default.
func (e *Engine) WithMaxAttempts(n int) *Engine {
	cp := *e
	if n > 0 {
		cp.maxAttempts = n
	}
	return &cp
}

// MaterialFor returns the material paired with a protection choice:
// protection always goes with Enriched, no protection with Perfect.
func MaterialFor(useProtection bool) MaterialType {
	if useProtection {
		return Enriched
	}
	return Perfect
}

// nextLevel applies the failure rules to one attempt outcome.
// - success: level+1
// - protection engaged: level unchanged
// - Perfect material: level-1, never below Destroyed
// - anything else: Destroyed
func nextLevel(level int, success bool, material MaterialType, useProtection bool) int {
	if success {
		return level + 1
	}
	if useProtection {
		return level
	}
	if material == Perfect {
		if level-1 < Destroyed {
			return Destroyed
		}
		return level - 1
	}
	return Destroyed
}

// Attempt performs one refine attempt from level and consumes exactly one draw
// from rng. Probability, protection count and level price all come from the
// entry of the attempted level (level+1).
func (e *Engine) Attempt(level int, category EquipmentCategory, useProtection bool, rng RandomSource) AttemptRecord {
	if rng == nil {
		rng = DefaultRNG()
	}
	entry := e.table.EntryFor(level + 1)
	material := MaterialFor(useProtection)

	// table probabilities are validated at load time; anything else never hits
	success := hit(entry.SuccessProbability, rng)

	units := 0
	if useProtection {
		units = entry.ProtectionCount
	}
	cost := Cost{
		Level:      entry.PriceFor(category),
		Protection: int64(units) * e.prices.ProtectionUnitPrice(),
		Material:   e.prices.MaterialPrice(category, material),
	}
	cost.Total = cost.Level + cost.Protection + cost.Material

	return AttemptRecord{
		FromLevel:       level,
		ToLevel:         nextLevel(level, success, material, useProtection),
		Material:        material,
		ProtectionUnits: units,
		Cost:            cost,
	}
}
