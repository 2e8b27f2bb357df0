package refine

import (
	"errors"
	"fmt"
	"strings"
)

// Destroyed is the level an item lands on when a failed attempt breaks it.
const Destroyed = -1

// DefaultRuns is the batch size used when a caller does not pick one.
const DefaultRuns = 1000

var ErrUnknownCategory = errors.New("unknown equipment category")

// EquipmentCategory selects the price column of the level table and the
// material price row.
type EquipmentCategory int

const (
	Weapon EquipmentCategory = iota
	Armor
)

func (c EquipmentCategory) String() string {
	switch c {
	case Weapon:
		return "weapon"
	case Armor:
		return "armor"
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// ParseCategory accepts "weapon" or "armor" in any case.
func ParseCategory(s string) (EquipmentCategory, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "weapon":
		return Weapon, nil
	case "armor", "armour":
		return Armor, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Categories lists every equipment category in declaration order.
func Categories() []EquipmentCategory { return []EquipmentCategory{Weapon, Armor} }

// MaterialType is the refining material consumed by one attempt.
// Enriched is always paired with protection; Perfect is used alone and turns
// a breaking failure into a one level downgrade.
type MaterialType int

const (
	Enriched MaterialType = iota
	Perfect
)

func (m MaterialType) String() string {
	switch m {
	case Enriched:
		return "enriched"
	case Perfect:
		return "perfect"
	}
	return fmt.Sprintf("material(%d)", int(m))
}

// Materials lists every material type in declaration order.
func Materials() []MaterialType { return []MaterialType{Enriched, Perfect} }

// ParseMaterial accepts "enriched" or "perfect" in any case.
func ParseMaterial(s string) (MaterialType, error) {
	for _, m := range Materials() {
		if strings.EqualFold(strings.TrimSpace(s), m.String()) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown material %q", s)
}

// CategoryPrices holds one price per equipment category, indexed by category.
type CategoryPrices [2]int64

// LevelEntry is one row of the level table. It is a plain value, so handing
// it out never exposes table state.
type LevelEntry struct {
	SuccessProbability float64
	ProtectionCount    int
	Price              CategoryPrices
}

// PriceFor returns the level price for c, zero for an unknown category.
func (e LevelEntry) PriceFor(c EquipmentCategory) int64 {
	if c < 0 || int(c) >= len(e.Price) {
		return 0
	}
	return e.Price[c]
}

// LevelSource resolves the table entry for a level. Levels without an explicit
// entry resolve to the fallback entry; a miss is never an error.
type LevelSource interface {
	EntryFor(level int) LevelEntry
}

// Prices supplies the run-time material prices.
type Prices interface {
	ProtectionUnitPrice() int64
	MaterialPrice(c EquipmentCategory, m MaterialType) int64
}

// Cost is the per-attempt cost breakdown.
type Cost struct {
	Level      int64 `json:"level"`
	Protection int64 `json:"protection"`
	Material   int64 `json:"material"`
	Total      int64 `json:"total"`
}

func (c Cost) add(o Cost) Cost {
	return Cost{
		Level:      c.Level + o.Level,
		Protection: c.Protection + o.Protection,
		Material:   c.Material + o.Material,
		Total:      c.Total + o.Total,
	}
}

// AttemptRecord is the outcome of one refine attempt.
type AttemptRecord struct {
	FromLevel       int          `json:"from_level"`
	ToLevel         int          `json:"to_level"`
	Material        MaterialType `json:"material"`
	ProtectionUnits int          `json:"protection_units"`
	Cost            Cost         `json:"cost"`
}

// Succeeded reports whether the attempt raised the level.
func (a AttemptRecord) Succeeded() bool { return a.ToLevel > a.FromLevel }

// Resources counts the consumables used by a run.
type Resources struct {
	MaterialUnits   int `json:"material_units"`
	ProtectionUnits int `json:"protection_units"`
}

// RunSummary describes one run from the initial level to the target or to
// destruction. Attempts is never empty and FinalLevel equals the last
// attempt's ToLevel.
type RunSummary struct {
	AttemptCount int             `json:"attempt_count"`
	InitialLevel int             `json:"initial_level"`
	FinalLevel   int             `json:"final_level"`
	Resources    Resources       `json:"resources"`
	Costs        Cost            `json:"costs"`
	Attempts     []AttemptRecord `json:"attempts"`
}

// Destroyed reports whether the run ended with the item broken.
func (r RunSummary) Destroyed() bool { return r.FinalLevel == Destroyed }

// Average holds per-field floor means over a batch. Every field is divided
// from its own raw sum.
type Average struct {
	MaterialUnits   int64 `json:"material_units"`
	ProtectionUnits int64 `json:"protection_units"`
	LevelCost       int64 `json:"level_cost"`
	ProtectionCost  int64 `json:"protection_cost"`
	MaterialCost    int64 `json:"material_cost"`
	Total           int64 `json:"total"`
}

// BatchResult aggregates the runs of one Monte Carlo batch.
type BatchResult struct {
	Min     RunSummary   `json:"min"`
	Max     RunSummary   `json:"max"`
	Average Average      `json:"average"`
	Runs    []RunSummary `json:"runs"`

	// Requested is the run count asked for. Truncated is set when the context
	// ended before every run completed; Runs then holds the completed ones.
	Requested int  `json:"requested"`
	Truncated bool `json:"truncated,omitempty"`
}
