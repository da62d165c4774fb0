package pipeline

import (
	"time"

	"smb_valuation/pkg/core/calc"
	"smb_valuation/pkg/core/montecarlo"
	"smb_valuation/pkg/core/sensitivity"
	"smb_valuation/pkg/core/valuation"
	"smb_valuation/pkg/models"
)

// Recommendation is the automated investment verdict.
type Recommendation string

const (
	// RecommendProceed: at least one {price, structure} pair passes both the
	// base DSCR floor and price discipline.
	RecommendProceed Recommendation = "PROCEED"
	// RecommendProceedWithConditions: no pair clears the base floor, but at
	// least one disciplined pair still covers at the declared low floor.
	RecommendProceedWithConditions Recommendation = "PROCEED_WITH_CONDITIONS"
	// RecommendDefer: zero pairs pass both checks.
	RecommendDefer Recommendation = "DEFER"
)

// ValuationReport is the structured result handed back to the (excluded)
// report/export layer. Everything in it is a value object assembled during a
// single run and never mutated afterwards.
type ValuationReport struct {
	RunID       string    `json:"run_id"`
	CompanyName string    `json:"company_name"`
	GeneratedAt time.Time `json:"generated_at"`

	Normalized calc.NormalizedEarnings `json:"normalized"`

	EPVByScenario map[models.ScenarioName]valuation.EPVResult `json:"epv_by_scenario"`

	MultipleGrid []valuation.MultipleGridRow `json:"multiple_grid"`

	// LBOSchedules holds the canonical-deal simulation per scenario.
	// Scenarios whose canonical structure is infeasible appear in
	// LBOFailures instead.
	LBOSchedules map[models.ScenarioName]valuation.LBOResult `json:"lbo_schedules"`
	LBOFailures  map[models.ScenarioName]string              `json:"lbo_failures,omitempty"`

	// DSCRSweep holds the leverage sweep at the canonical entry multiple per
	// scenario, including the maximum sustainable leverage.
	DSCRSweep map[models.ScenarioName]valuation.SweepResult `json:"dscr_sweep"`

	PriceDiscipline valuation.DisciplineTable `json:"price_discipline"`

	// DealTrials is the full combinatorial price x leverage evaluation for
	// the base scenario that drives the recommendation.
	DealTrials []valuation.DealStructureTrial `json:"deal_trials"`

	Tornado    *sensitivity.TornadoResult `json:"tornado,omitempty"`
	Heatmap    *sensitivity.HeatmapResult `json:"heatmap,omitempty"`
	MonteCarlo *montecarlo.Result         `json:"monte_carlo,omitempty"`

	Warnings []valuation.ConsistencyWarning `json:"warnings,omitempty"`

	Recommendation Recommendation `json:"recommendation"`
}
