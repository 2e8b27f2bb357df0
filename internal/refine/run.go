package refine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRange = errors.New("invalid range")
	ErrAttemptLimit = errors.New("attempt limit reached")
)

// Params describes one run request.
type Params struct {
	InitialLevel int
	TargetLevel  int
	Category     EquipmentCategory

	// Protection overrides the protection choice for the attempt made from a
	// given level. Levels without an entry use DefaultProtection.
	Protection        map[int]bool
	DefaultProtection bool
}

// Validate rejects ranges that cannot produce a run.
func (p Params) Validate() error {
	if p.InitialLevel < 0 {
		return fmt.Errorf("%w: initial level %d is below 0", ErrInvalidRange, p.InitialLevel)
	}
	if p.TargetLevel <= p.InitialLevel {
		return fmt.Errorf("%w: target level %d must be above initial level %d", ErrInvalidRange, p.TargetLevel, p.InitialLevel)
	}
	if p.Category != Weapon && p.Category != Armor {
		return fmt.Errorf("%w: %d", ErrUnknownCategory, int(p.Category))
	}
	return nil
}

// UsesProtection returns the protection choice for an attempt from level.
func (p Params) UsesProtection(level int) bool {
	if v, ok := p.Protection[level]; ok {
		return v
	}
	return p.DefaultProtection
}

// RunOnce drives an item from p.InitialLevel until it reaches p.TargetLevel or
// is destroyed. Destruction is a valid outcome, not an error.
func (e *Engine) RunOnce(p Params, rng RandomSource) (RunSummary, error) {
	if err := p.Validate(); err != nil {
		return RunSummary{}, err
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	return e.run(p, rng)
}

// run assumes p is valid.
func (e *Engine) run(p Params, rng RandomSource) (RunSummary, error) {
	sum := RunSummary{
		InitialLevel: p.InitialLevel,
		FinalLevel:   p.InitialLevel,
	}

	level := p.InitialLevel
	for level < p.TargetLevel && level != Destroyed {
		if len(sum.Attempts) >= e.maxAttempts {
			return RunSummary{}, fmt.Errorf("%w: %d attempts from level %d without finishing", ErrAttemptLimit, e.maxAttempts, p.InitialLevel)
		}
		rec := e.Attempt(level, p.Category, p.UsesProtection(level), rng)
		sum.Attempts = append(sum.Attempts, rec)

		sum.Resources.MaterialUnits++
		sum.Resources.ProtectionUnits += rec.ProtectionUnits
		sum.Costs = sum.Costs.add(rec.Cost)

		level = rec.ToLevel
	}

	sum.AttemptCount = len(sum.Attempts)
	sum.FinalLevel = level
	return sum, nil
}
