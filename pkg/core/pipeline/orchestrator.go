// Package pipeline wires the calculators into the full valuation run:
// normalization, EPV per scenario, the multiple grid, leverage sweeps, the
// combinatorial price-discipline check, sensitivity analysis, Monte Carlo,
// and the final recommendation.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"smb_valuation/pkg/core/calc"
	"smb_valuation/pkg/core/montecarlo"
	"smb_valuation/pkg/core/sensitivity"
	"smb_valuation/pkg/core/validate"
	"smb_valuation/pkg/core/valuation"
	"smb_valuation/pkg/models"
)

// Engine runs valuation cases. It is stateless between runs; the only
// injected dependencies are the logger and Monte Carlo execution options.
type Engine struct {
	log    zerolog.Logger
	mcOpts montecarlo.Options
}

// NewEngine creates an engine with the given logger.
func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{log: log}
}

// SetMonteCarloOptions tunes worker count, batch size, and progress
// reporting for the Monte Carlo stage. The options never affect the numbers.
func (e *Engine) SetMonteCarloOptions(opts montecarlo.Options) {
	e.mcOpts = opts
}

// Run executes the full pipeline for one case. Input validation failures are
// fatal; per-trial and per-draw failures are isolated and reported inside
// the result so a single bad grid point never blocks the rest of the sweep.
func (e *Engine) Run(ctx context.Context, c models.FinancialCase, cfg models.RunConfig) (*ValuationReport, error) {
	start := time.Now()

	// 1. Validation: reject before any computation.
	if err := validate.Case(c); err != nil {
		return nil, err
	}
	if err := validate.Config(cfg, c); err != nil {
		return nil, err
	}
	if _, ok := c.Scenarios[models.ScenarioBase]; !ok {
		return nil, fmt.Errorf("%w: base scenario is required", validate.ErrInvalidInput)
	}

	report := &ValuationReport{
		RunID:         uuid.NewString(),
		CompanyName:   c.CompanyName,
		GeneratedAt:   start.UTC(),
		EPVByScenario: make(map[models.ScenarioName]valuation.EPVResult),
		LBOSchedules:  make(map[models.ScenarioName]valuation.LBOResult),
		DSCRSweep:     make(map[models.ScenarioName]valuation.SweepResult),
	}

	log := e.log.With().Str("run_id", report.RunID).Str("company", c.CompanyName).Logger()
	log.Info().Msg("starting valuation run")

	// 2. Normalization.
	report.Normalized = calc.NormalizeCase(c)
	log.Debug().
		Float64("ebitda_adjusted", report.Normalized.EBITDAAdjusted).
		Float64("owner_earnings", report.Normalized.OwnerEarnings).
		Msg("normalized earnings")

	// 3. EPV per scenario. Owner earnings stay on the case-level normalized
	// base (strict EPV carries no scenario growth or margin assumption);
	// each scenario contributes its discount rate.
	for _, name := range cfg.Scenarios {
		s := c.Scenarios[name]
		epv, err := valuation.CalculateEPV(valuation.EPVInput{
			OwnerEarnings:       report.Normalized.OwnerEarnings,
			WACC:                s.WACC,
			NetDebt:             c.NetDebt,
			CrossCheckTolerance: cfg.EPVCrossCheckTolerance,
		})
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", name, err)
		}
		report.EPVByScenario[name] = epv
		report.Warnings = append(report.Warnings, epv.Warnings...)
	}

	// The discipline anchor is always the base-case EPV.
	baseEPV, ok := report.EPVByScenario[models.ScenarioBase]
	if !ok {
		epv, err := valuation.CalculateEPV(valuation.EPVInput{
			OwnerEarnings:       report.Normalized.OwnerEarnings,
			WACC:                c.Scenarios[models.ScenarioBase].WACC,
			NetDebt:             c.NetDebt,
			CrossCheckTolerance: cfg.EPVCrossCheckTolerance,
		})
		if err != nil {
			return nil, fmt.Errorf("base scenario: %w", err)
		}
		baseEPV = epv
	}

	// 4. Multiple grid.
	report.MultipleGrid = valuation.BuildMultipleGrid(
		report.Normalized.EBITDAAdjusted, c.NetDebt, c.TTMRevenue, cfg.MultipleGrid.Values())

	// 5. Canonical LBO and leverage sweep per scenario.
	for _, name := range cfg.Scenarios {
		template := lboInput(c, cfg, name)

		lbo, err := valuation.SimulateLBO(template)
		if err != nil {
			if report.LBOFailures == nil {
				report.LBOFailures = make(map[models.ScenarioName]string)
			}
			report.LBOFailures[name] = err.Error()
			log.Warn().Str("scenario", string(name)).Err(err).Msg("canonical structure infeasible")
		} else {
			report.LBOSchedules[name] = lbo
		}

		sweep := valuation.SweepLeverage(template, cfg.LeverageGrid.Values(), cfg.Floor(name))
		report.DSCRSweep[name] = sweep
		report.Warnings = append(report.Warnings, sweep.Warnings...)
		if sweep.Found {
			log.Info().Str("scenario", string(name)).
				Float64("max_leverage", sweep.MaxSustainableLeverage).
				Msg("maximum sustainable leverage")
		} else {
			log.Info().Str("scenario", string(name)).Msg("no leverage grid point meets the DSCR floor")
		}
	}

	// 6. Price discipline against the base-case EPV anchor.
	report.PriceDiscipline = valuation.CheckPriceDiscipline(
		baseEPV.EquityValue, cfg.StrategicPremium, report.MultipleGrid)

	// 7. Combinatorial deal trials: every price point paired with every
	// leverage point for the base scenario.
	baseFloor := cfg.Floor(models.ScenarioBase)
	lowFloor := cfg.Floor(models.ScenarioLow)
	baseTemplate := lboInput(c, cfg, models.ScenarioBase)
	for _, m := range cfg.MultipleGrid.Values() {
		template := baseTemplate
		template.EntryMultiple = m
		sweep := valuation.SweepLeverage(template, cfg.LeverageGrid.Values(), baseFloor)
		report.DealTrials = append(report.DealTrials, sweep.Trials...)
	}

	report.Recommendation = recommend(report.DealTrials, report.PriceDiscipline, baseFloor, lowFloor)
	log.Info().Str("recommendation", string(report.Recommendation)).
		Int("trials", len(report.DealTrials)).
		Msg("deal feasibility assessed")

	// 8. Sensitivity analysis.
	if sens := cfg.Sensitivity; sens != nil {
		output := sens.Output
		if output == "" {
			output = models.MetricIRR
		}
		eval := evaluator(c, cfg, output)

		vars := make([]models.SensitivityVariable, len(sens.Variables))
		copy(vars, sens.Variables)
		for i := range vars {
			if vars[i].BaseValue == 0 {
				vars[i].BaseValue = baseValueFor(vars[i].Variable, c, cfg)
			}
		}

		tornado, err := sensitivity.Tornado(vars, sens.PerturbationFactors, output, eval)
		if err != nil {
			return nil, fmt.Errorf("tornado analysis: %w", err)
		}
		report.Tornado = &tornado

		if sens.Heatmap != nil {
			heatmap, err := sensitivity.Heatmap(*sens.Heatmap, output, eval)
			if err != nil {
				return nil, fmt.Errorf("heatmap analysis: %w", err)
			}
			report.Heatmap = &heatmap
		}
	}

	// 9. Monte Carlo risk simulation.
	if mc := cfg.MonteCarlo; mc != nil {
		output := mc.Output
		if output == "" {
			output = models.MetricIRR
		}
		spec := *mc
		spec.Output = output

		result, err := montecarlo.Run(ctx, spec, evaluator(c, cfg, output), e.mcOpts)
		if err != nil {
			return nil, fmt.Errorf("monte carlo: %w", err)
		}
		report.MonteCarlo = &result
		if result.Excluded > 0 {
			log.Warn().Int("excluded", result.Excluded).Msg("draws excluded from aggregates")
		}
	}

	log.Info().Dur("elapsed", time.Since(start)).Msg("valuation run complete")
	return report, nil
}

// recommend derives the investment verdict from the combinatorial trials.
// PROCEED requires at least one {price, structure} pair passing both DSCR
// feasibility at the base floor and price discipline. When the only covered
// pairs sit between the low and base floors, the verdict is conditional.
// Zero passing pairs is a valid DEFER outcome, not an error.
func recommend(trials []valuation.DealStructureTrial, discipline valuation.DisciplineTable, baseFloor, lowFloor float64) Recommendation {
	disciplined := make(map[float64]bool, len(discipline.Rows))
	for _, row := range discipline.Rows {
		disciplined[row.Multiple] = row.Pass
	}

	anyConditional := false
	for _, trial := range trials {
		if trial.FailureReason != "" || !disciplined[trial.PriceMultiple] {
			continue
		}
		if trial.MinDSCR >= baseFloor {
			return RecommendProceed
		}
		if trial.MinDSCR >= lowFloor {
			anyConditional = true
		}
	}
	if anyConditional {
		return RecommendProceedWithConditions
	}
	return RecommendDefer
}
