package pipeline

import (
	"fmt"

	"smb_valuation/pkg/core/sensitivity"
	"smb_valuation/pkg/core/valuation"
	"smb_valuation/pkg/models"
)

// evaluator builds the pure function invoked by sensitivity and Monte Carlo
// drivers: given a set of absolute input overrides, recompute the requested
// scalar output from scratch. No state is shared between invocations, so the
// closure is safe to call from many goroutines at once.
func evaluator(c models.FinancialCase, cfg models.RunConfig, metric models.Metric) sensitivity.Evaluator {
	base := c.Scenarios[models.ScenarioBase]

	return func(ov models.Overrides) (float64, error) {
		get := func(v models.Variable, def float64) float64 {
			if x, ok := ov[v]; ok {
				return x
			}
			return def
		}

		ebitda := get(models.VarAdjustedEBITDA, adjustedEBITDA(c, ov))
		wacc := get(models.VarWACC, base.WACC)
		taxRate := get(models.VarTaxRate, c.TaxRate)

		switch metric {
		case models.MetricEnterpriseValue, models.MetricEquityValue:
			ownerEarnings := ownerEarningsFrom(ebitda, c.DepreciationAmortization, c.MaintenanceCapex, taxRate)
			epv, err := valuation.CalculateEPV(valuation.EPVInput{
				OwnerEarnings:       ownerEarnings,
				WACC:                wacc,
				NetDebt:             c.NetDebt,
				CrossCheckTolerance: cfg.EPVCrossCheckTolerance,
			})
			if err != nil {
				return 0, err
			}
			if metric == models.MetricEnterpriseValue {
				return epv.EnterpriseValue, nil
			}
			return epv.EquityValue, nil

		case models.MetricIRR:
			input := lboInput(c, cfg, models.ScenarioBase)
			input.EntryEBITDA = ebitda
			input.EntryMultiple = get(models.VarEntryMultiple, cfg.Deal.EntryMultiple)
			input.ExitMultiple = get(models.VarExitMultiple, cfg.Deal.ExitMultiple)
			input.Debt.Rate = get(models.VarSeniorRate, cfg.Deal.Debt.Rate)
			input.Operating.RevenueGrowth = get(models.VarRevenueGrowth, base.RevenueGrowth)
			input.Operating.EBITDAMargin = get(models.VarEBITDAMargin, base.EBITDAMargin())
			input.Operating.MaintenanceCapexPct = get(models.VarMaintCapexPct, input.Operating.MaintenanceCapexPct)
			input.Operating.TaxRate = taxRate

			res, err := valuation.SimulateLBO(input)
			if err != nil {
				return 0, err
			}
			return res.IRR, nil

		default:
			return 0, fmt.Errorf("unsupported output metric %q", metric)
		}
	}
}

// adjustedEBITDA recomputes the earnings base when margin or growth
// overrides move it; otherwise it is the case's normalized figure.
func adjustedEBITDA(c models.FinancialCase, ov models.Overrides) float64 {
	if margin, ok := ov[models.VarEBITDAMargin]; ok {
		return c.TTMRevenue * margin
	}
	return c.AdjustedEBITDA()
}

// ownerEarningsFrom steps from adjusted EBITDA down to owner earnings.
func ownerEarningsFrom(ebitda, da, maintenanceCapex, taxRate float64) float64 {
	ebit := ebitda - da
	nopat := ebit * (1 - taxRate)
	return nopat + da - maintenanceCapex
}

// lboInput assembles the canonical LBO template for one scenario.
func lboInput(c models.FinancialCase, cfg models.RunConfig, name models.ScenarioName) valuation.LBOInput {
	s := c.Scenarios[name]

	capexPct := s.MaintenanceCapexPct
	if capexPct == 0 && c.TTMRevenue > 0 {
		capexPct = c.MaintenanceCapex / c.TTMRevenue
	}
	var daPct float64
	if c.TTMRevenue > 0 {
		daPct = c.DepreciationAmortization / c.TTMRevenue
	}

	return valuation.LBOInput{
		EntryRevenue:  c.TTMRevenue,
		EntryEBITDA:   c.AdjustedEBITDA(),
		EntryMultiple: cfg.Deal.EntryMultiple,
		Debt:          cfg.Deal.Debt,
		Operating: valuation.OperatingAssumptions{
			RevenueGrowth:        s.RevenueGrowth,
			EBITDAMargin:         s.EBITDAMargin(),
			DAPctOfRevenue:       daPct,
			MaintenanceCapexPct:  capexPct,
			NWCPctOfRevenueDelta: cfg.Deal.NWCPctOfRevenueDelta,
			TaxRate:              c.TaxRate,
		},
		HoldYears:    cfg.Deal.HoldPeriodYears,
		ExitMultiple: cfg.Deal.ExitMultiple,
	}
}

// baseValueFor supplies the engine default when a sensitivity variable
// declares no base value of its own.
func baseValueFor(v models.Variable, c models.FinancialCase, cfg models.RunConfig) float64 {
	base := c.Scenarios[models.ScenarioBase]
	switch v {
	case models.VarAdjustedEBITDA:
		return c.AdjustedEBITDA()
	case models.VarWACC:
		return base.WACC
	case models.VarRevenueGrowth:
		return base.RevenueGrowth
	case models.VarEBITDAMargin:
		return base.EBITDAMargin()
	case models.VarEntryMultiple:
		return cfg.Deal.EntryMultiple
	case models.VarExitMultiple:
		return cfg.Deal.ExitMultiple
	case models.VarSeniorRate:
		return cfg.Deal.Debt.Rate
	case models.VarMaintCapexPct:
		return base.MaintenanceCapexPct
	case models.VarTaxRate:
		return c.TaxRate
	}
	return 0
}
