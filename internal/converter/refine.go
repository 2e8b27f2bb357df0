package converter

import (
	"fmt"
	"strconv"

	"github.com/xtding233/refine-backend/internal/api/dto"
	"github.com/xtding233/refine-backend/internal/pricing"
	"github.com/xtding233/refine-backend/internal/refine"
	"github.com/xtding233/refine-backend/internal/service"
	"github.com/xtding233/refine-backend/internal/table"
)

// ToInput validates the request shape and builds a service input. An omitted
// run count uses the server default; an explicit one must be positive. Level
// range checks are left to the engine.
func ToInput(req dto.SimulateRequest) (service.Input, error) {
	cat, err := refine.ParseCategory(req.Equipment)
	if err != nil {
		return service.Input{}, fmt.Errorf("%w: %w", service.ErrInvalidInput, err)
	}
	protection := make(map[int]bool, len(req.Protection))
	for k, v := range req.Protection {
		lvl, err := strconv.Atoi(k)
		if err != nil {
			return service.Input{}, fmt.Errorf("%w: protection level %q is not a number", service.ErrInvalidInput, k)
		}
		protection[lvl] = v
	}
	def := true
	if req.DefaultProtection != nil {
		def = *req.DefaultProtection
	}
	runs := 0
	if req.Runs != nil {
		runs = *req.Runs
		if runs <= 0 {
			return service.Input{}, fmt.Errorf("%w: %w: run count %d must be positive", service.ErrInvalidInput, refine.ErrInvalidRange, runs)
		}
	}
	var seed *uint64
	if req.Seed != nil {
		v := uint64(*req.Seed)
		seed = &v
	}
	return service.Input{
		Params: refine.Params{
			InitialLevel:      req.InitialLevel,
			TargetLevel:       req.TargetLevel,
			Category:          cat,
			Protection:        protection,
			DefaultProtection: def,
		},
		ProtectionPrice: req.ProtectionPrice,
		Runs:            runs,
		Seed:            seed,
	}, nil
}

func ToSimulateResponse(out service.BatchOutput, includeRuns bool) dto.SimulateResponse {
	res := out.Result
	resp := dto.SimulateResponse{
		ID:           out.ID,
		TableVersion: out.TableVersion,
		Requested:    res.Requested,
		Completed:    len(res.Runs),
		Truncated:    res.Truncated,
		Min:          ToRun(res.Min, true),
		Max:          ToRun(res.Max, true),
		Average: dto.Average{
			MaterialUnits:   res.Average.MaterialUnits,
			ProtectionUnits: res.Average.ProtectionUnits,
			LevelCost:       res.Average.LevelCost,
			ProtectionCost:  res.Average.ProtectionCost,
			MaterialCost:    res.Average.MaterialCost,
			Total:           res.Average.Total,
		},
		Summary: out.Summary,
	}
	if out.Plan != nil {
		resp.Plan = toPlan(*out.Plan)
	}
	if includeRuns {
		resp.Runs = make([]dto.Run, len(res.Runs))
		for i, r := range res.Runs {
			resp.Runs[i] = ToRun(r, false)
		}
	}
	return resp
}

func ToRunResponse(out service.RunOutput) dto.RunResponse {
	return dto.RunResponse{
		ID:           out.ID,
		TableVersion: out.TableVersion,
		Run:          ToRun(out.Run, true),
	}
}

// ToRun converts a run summary; attempts are included only when asked for.
func ToRun(r refine.RunSummary, attempts bool) dto.Run {
	out := dto.Run{
		Tries:           r.AttemptCount,
		InitialLevel:    r.InitialLevel,
		FinalLevel:      r.FinalLevel,
		Destroyed:       r.Destroyed(),
		MaterialUnits:   r.Resources.MaterialUnits,
		ProtectionUnits: r.Resources.ProtectionUnits,
		Costs:           toCost(r.Costs),
	}
	if attempts {
		out.Attempts = make([]dto.Attempt, len(r.Attempts))
		for i, a := range r.Attempts {
			out.Attempts[i] = dto.Attempt{
				FromLevel:       a.FromLevel,
				ToLevel:         a.ToLevel,
				Material:        a.Material.String(),
				ProtectionUnits: a.ProtectionUnits,
				Cost:            toCost(a.Cost),
			}
		}
	}
	return out
}

func toCost(c refine.Cost) dto.Cost {
	return dto.Cost{Level: c.Level, Protection: c.Protection, Material: c.Material, Total: c.Total}
}

func toPlan(p pricing.Plan) *dto.Plan {
	out := &dto.Plan{TotalUnits: p.TotalUnits, Tax: p.Tax, Total: p.Total}
	for _, it := range p.Purchases {
		out.Items = append(out.Items, dto.PlanItem{
			BundleID: it.BundleID,
			Name:     it.Name,
			Qty:      it.Qty,
			Units:    it.Units,
			Subtotal: it.Subtotal,
		})
	}
	return out
}

func ToTableResponse(t *table.Table) dto.TableResponse {
	resp := dto.TableResponse{
		Version:  t.Version(),
		Fallback: toEntry(table.FallbackLevel, t.Fallback()),
	}
	for _, lvl := range t.Levels() {
		resp.Levels = append(resp.Levels, toEntry(lvl, t.EntryFor(lvl)))
	}
	return resp
}

func toEntry(level int, e refine.LevelEntry) dto.Entry {
	price := make(map[string]int64, len(e.Price))
	for _, c := range refine.Categories() {
		price[c.String()] = e.PriceFor(c)
	}
	return dto.Entry{Level: level, Chance: e.SuccessProbability, Protection: e.ProtectionCount, Price: price}
}

func ToPrices(p pricing.Prices) dto.Prices {
	unit := p.ProtectionUnit
	out := dto.Prices{
		ProtectionUnit: &unit,
		Materials:      make(map[string]map[string]int64),
	}
	for _, c := range refine.Categories() {
		row := make(map[string]int64)
		for _, m := range refine.Materials() {
			row[m.String()] = p.MaterialPrice(c, m)
		}
		out.Materials[c.String()] = row
	}
	return out
}

// FromPrices overlays d on base; fields missing from d keep base prices.
func FromPrices(d dto.Prices, base pricing.Prices) (pricing.Prices, error) {
	out := base
	if d.ProtectionUnit != nil {
		out.ProtectionUnit = *d.ProtectionUnit
	}
	for equip, row := range d.Materials {
		c, err := refine.ParseCategory(equip)
		if err != nil {
			return pricing.Prices{}, fmt.Errorf("%w: %w", service.ErrInvalidInput, err)
		}
		for name, v := range row {
			m, err := refine.ParseMaterial(name)
			if err != nil {
				return pricing.Prices{}, fmt.Errorf("%w: %w", service.ErrInvalidInput, err)
			}
			out.Materials[c][m] = v
		}
	}
	return out, nil
}
