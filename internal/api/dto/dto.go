package dto

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xtding233/refine-backend/internal/report"
)

// SimulateRequest mirrors the refine form: level range, equipment, per-level
// protection toggles and an optional market price for protection material.
type SimulateRequest struct {
	InitialLevel      int             `json:"initial_level"`
	TargetLevel       int             `json:"target_level"`
	Equipment         string          `json:"equipment"`                    // "weapon" | "armor"
	Protection        map[string]bool `json:"protection,omitempty"`         // level -> use protection
	DefaultProtection *bool           `json:"default_protection,omitempty"` // defaults to true
	ProtectionPrice   *int64          `json:"protection_price,omitempty"`
	Runs              *int            `json:"runs,omitempty"` // nil uses the server default
	Seed              *Seed           `json:"seed,omitempty"`
	IncludeRuns       bool            `json:"include_runs,omitempty"`
}

// Seed is a batch seed. It decodes from a JSON number or a decimal string and
// encodes as a string, so values above 2^53 survive transports that carry
// numbers as float64.
type Seed uint64

func (s Seed) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(strconv.FormatUint(uint64(s), 10))), nil
}

func (s *Seed) UnmarshalJSON(b []byte) error {
	raw := string(b)
	if unq, err := strconv.Unquote(raw); err == nil {
		raw = unq
	}
	v, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return fmt.Errorf("seed must be an unsigned 64-bit integer: %s", b)
	}
	*s = Seed(v)
	return nil
}

type Cost struct {
	Level      int64 `json:"level"`
	Protection int64 `json:"protection"`
	Material   int64 `json:"material"`
	Total      int64 `json:"total"`
}

type Attempt struct {
	FromLevel       int    `json:"from_level"`
	ToLevel         int    `json:"to_level"`
	Material        string `json:"material"`
	ProtectionUnits int    `json:"protection_units"`
	Cost            Cost   `json:"cost"`
}

type Run struct {
	Tries           int       `json:"tries"`
	InitialLevel    int       `json:"initial_level"`
	FinalLevel      int       `json:"final_level"`
	Destroyed       bool      `json:"destroyed"`
	MaterialUnits   int       `json:"material_units"`
	ProtectionUnits int       `json:"protection_units"`
	Costs           Cost      `json:"costs"`
	Attempts        []Attempt `json:"attempts,omitempty"`
}

type Average struct {
	MaterialUnits   int64 `json:"material_units"`
	ProtectionUnits int64 `json:"protection_units"`
	LevelCost       int64 `json:"level_cost"`
	ProtectionCost  int64 `json:"protection_cost"`
	MaterialCost    int64 `json:"material_cost"`
	Total           int64 `json:"total"`
}

type PlanItem struct {
	BundleID string `json:"bundle_id"`
	Name     string `json:"name"`
	Qty      int    `json:"qty"`
	Units    int    `json:"units"`
	Subtotal int64  `json:"subtotal"`
}

type Plan struct {
	Items      []PlanItem `json:"items"`
	TotalUnits int        `json:"total_units"`
	Tax        int64      `json:"tax"`
	Total      int64      `json:"total"`
}

type SimulateResponse struct {
	ID           string         `json:"id"`
	TableVersion string         `json:"table_version"`
	Requested    int            `json:"requested"`
	Completed    int            `json:"completed"`
	Truncated    bool           `json:"truncated,omitempty"`
	Min          Run            `json:"min"`
	Max          Run            `json:"max"`
	Average      Average        `json:"average"`
	Summary      report.Summary `json:"summary"`
	Plan         *Plan          `json:"protection_plan,omitempty"`
	Runs         []Run          `json:"runs,omitempty"`
}

type RunResponse struct {
	ID           string `json:"id"`
	TableVersion string `json:"table_version"`
	Run          Run    `json:"run"`
}

type Entry struct {
	Level      int              `json:"level"`
	Chance     float64          `json:"chance"`
	Protection int              `json:"protection"`
	Price      map[string]int64 `json:"price"`
}

type TableResponse struct {
	Version  string  `json:"version"`
	Fallback Entry   `json:"fallback"`
	Levels   []Entry `json:"levels"`
}

// Prices is the market price list; materials keyed by equipment then material.
// On update, a nil ProtectionUnit and missing materials keep their price.
type Prices struct {
	ProtectionUnit *int64                      `json:"protection_unit,omitempty"`
	Materials      map[string]map[string]int64 `json:"materials"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
