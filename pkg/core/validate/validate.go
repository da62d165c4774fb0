// Package validate rejects malformed cases and run configurations before any
// computation starts. Validation errors are fatal for the whole run, unlike
// the per-trial failures isolated inside the sweeps.
package validate

import (
	"errors"
	"fmt"

	"smb_valuation/pkg/core/valuation"
	"smb_valuation/pkg/models"
)

// ErrInvalidInput marks an out-of-range or malformed input field.
var ErrInvalidInput = errors.New("invalid input")

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Case validates a FinancialCase record.
func Case(c models.FinancialCase) error {
	if c.TTMRevenue <= 0 {
		return invalid("ttm_revenue must be positive, got %v", c.TTMRevenue)
	}
	if err := fraction("tax_rate", c.TaxRate); err != nil {
		return err
	}
	if c.MaintenanceCapex < 0 {
		return invalid("maintenance_capex must not be negative, got %v", c.MaintenanceCapex)
	}
	if c.DepreciationAmortization < 0 {
		return invalid("depreciation_amortization must not be negative, got %v", c.DepreciationAmortization)
	}
	if len(c.Scenarios) == 0 {
		return invalid("at least one scenario is required")
	}

	for name, s := range c.Scenarios {
		if !name.Valid() {
			return invalid("unknown scenario %q", name)
		}
		if s.WACC <= 0 {
			return invalid("scenario %q: wacc must be positive, got %v", name, s.WACC)
		}
		for _, f := range []struct {
			label string
			value float64
		}{
			{"gross_margin", s.GrossMargin},
			{"payroll_pct", s.PayrollPct},
			{"marketing_pct", s.MarketingPct},
			{"other_opex_pct", s.OtherOpexPct},
			{"maintenance_capex_pct", s.MaintenanceCapexPct},
		} {
			if err := fraction(fmt.Sprintf("scenario %q: %s", name, f.label), f.value); err != nil {
				return err
			}
		}
	}
	return nil
}

// Config validates a RunConfig against a case.
func Config(cfg models.RunConfig, c models.FinancialCase) error {
	if len(cfg.Scenarios) == 0 {
		return invalid("at least one scenario must be selected")
	}
	for _, name := range cfg.Scenarios {
		if !name.Valid() {
			return invalid("unknown scenario %q", name)
		}
		if _, ok := c.Scenarios[name]; !ok {
			return fmt.Errorf("%w: scenario %q not present in case", valuation.ErrInvalidScenario, name)
		}
	}

	if len(cfg.MultipleGrid.Values()) == 0 {
		return invalid("multiple_grid is empty")
	}
	if len(cfg.LeverageGrid.Values()) == 0 {
		return invalid("leverage_grid is empty")
	}
	// Zero leverage has no debt service, so its DSCR is undefined.
	if cfg.LeverageGrid.Start <= 0 {
		return invalid("leverage_grid must start above zero, got %v", cfg.LeverageGrid.Start)
	}
	if cfg.StrategicPremium < 0 {
		return invalid("strategic_premium must not be negative, got %v", cfg.StrategicPremium)
	}
	for name, floor := range cfg.DSCRFloors {
		if !name.Valid() {
			return invalid("dscr_floors: unknown scenario %q", name)
		}
		if floor <= 0 {
			return invalid("dscr_floors[%s] must be positive, got %v", name, floor)
		}
	}
	if _, ok := cfg.DSCRFloors[models.ScenarioBase]; !ok {
		return invalid("dscr_floors must declare a base floor")
	}

	if cfg.Deal.EntryMultiple <= 0 {
		return invalid("deal.entry_multiple must be positive, got %v", cfg.Deal.EntryMultiple)
	}
	if cfg.Deal.ExitMultiple <= 0 {
		return invalid("deal.exit_multiple must be positive, got %v", cfg.Deal.ExitMultiple)
	}
	if cfg.Deal.HoldPeriodYears <= 0 {
		return invalid("deal.hold_period_years must be positive, got %d", cfg.Deal.HoldPeriodYears)
	}
	if cfg.Deal.Debt.TenorYears <= 0 {
		return invalid("deal.debt.tenor_years must be positive, got %d", cfg.Deal.Debt.TenorYears)
	}
	if cfg.Deal.Debt.Rate < 0 || cfg.Deal.Debt.MezzRate < 0 {
		return invalid("debt rates must not be negative")
	}

	if mc := cfg.MonteCarlo; mc != nil {
		if mc.Iterations <= 0 {
			return invalid("monte_carlo.iterations must be positive, got %d", mc.Iterations)
		}
		if len(mc.Variables) == 0 {
			return invalid("monte_carlo.variables is empty")
		}
		for _, v := range mc.Variables {
			if !v.Variable.Valid() {
				return invalid("monte_carlo: unknown variable %q", v.Variable)
			}
			if v.Dist != models.DistNormal && v.Dist != models.DistUniform {
				return invalid("monte_carlo: unsupported distribution %q", v.Dist)
			}
			if v.Std < 0 {
				return invalid("monte_carlo: variable %q has negative std", v.Variable)
			}
		}
		for _, p := range mc.Percentiles {
			if p < 0 || p > 1 {
				return invalid("monte_carlo: percentile %v outside [0,1]", p)
			}
		}
	}

	if sens := cfg.Sensitivity; sens != nil {
		for _, v := range sens.Variables {
			if !v.Variable.Valid() {
				return invalid("sensitivity: unknown variable %q", v.Variable)
			}
		}
		for _, f := range sens.PerturbationFactors {
			if f <= 0 {
				return invalid("sensitivity: perturbation factor must be positive, got %v", f)
			}
		}
		if hm := sens.Heatmap; hm != nil {
			if !hm.XVariable.Valid() || !hm.YVariable.Valid() {
				return invalid("heatmap: unknown variable")
			}
			if hm.XVariable == hm.YVariable {
				return invalid("heatmap: variables must differ")
			}
			if len(hm.XValues) == 0 || len(hm.YValues) == 0 {
				return invalid("heatmap: both value ranges must be non-empty")
			}
		}
	}

	return nil
}

func fraction(label string, v float64) error {
	if v < 0 || v > 1 {
		return invalid("%s must be a fraction in [0,1], got %v", label, v)
	}
	return nil
}
