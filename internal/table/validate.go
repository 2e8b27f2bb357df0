package table

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xtding233/refine-backend/internal/refine"
)

// ValidateRaw checks semantic constraints of a RawConfig.
func ValidateRaw(cfg RawConfig) error {
	var errs []string

	if cfg.Fallback == nil {
		errs = append(errs, "fallback entry is required")
	} else {
		errs = append(errs, validateEntry("fallback", cfg.Fallback)...)
	}

	levels := make([]int, 0, len(cfg.Levels))
	for lvl := range cfg.Levels {
		levels = append(levels, lvl)
	}
	sort.Ints(levels)
	for _, lvl := range levels {
		if lvl < 0 {
			errs = append(errs, fmt.Sprintf("levels.%d: level must be >= 0", lvl))
			continue
		}
		errs = append(errs, validateEntry(fmt.Sprintf("levels.%d", lvl), cfg.Levels[lvl])...)
	}

	if len(errs) > 0 {
		return fmt.Errorf("table validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateEntry(path string, e *RawEntry) []string {
	if e == nil {
		return []string{path + ": entry is empty"}
	}
	var errs []string
	if e.Chance == nil {
		errs = append(errs, path+".chance is required")
	} else if c := *e.Chance; !(c >= 0 && c <= 1) {
		errs = append(errs, path+".chance must be in [0,1]")
	}
	if e.Protection != nil && *e.Protection < 0 {
		errs = append(errs, path+".protection must be >= 0")
	}
	for _, c := range refine.Categories() {
		v, ok := e.Price[c.String()]
		if !ok {
			errs = append(errs, fmt.Sprintf("%s.price.%s is required", path, c))
			continue
		}
		if v < 0 {
			errs = append(errs, fmt.Sprintf("%s.price.%s must be >= 0", path, c))
		}
	}
	for k := range e.Price {
		if _, err := refine.ParseCategory(k); err != nil {
			errs = append(errs, fmt.Sprintf("%s.price.%s: unknown equipment", path, k))
		}
	}
	return errs
}
