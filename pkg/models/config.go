package models

// Metric selects the scalar pipeline output measured by sensitivity and
// Monte Carlo runs.
type Metric string

const (
	MetricEnterpriseValue Metric = "enterprise_value"
	MetricEquityValue     Metric = "equity_value"
	MetricIRR             Metric = "irr"
)

// Variable names a perturbable engine input. The set is closed: sensitivity
// and Monte Carlo specs may only reference these.
type Variable string

const (
	VarAdjustedEBITDA Variable = "adjusted_ebitda"
	VarWACC           Variable = "wacc"
	VarRevenueGrowth  Variable = "revenue_growth"
	VarEBITDAMargin   Variable = "ebitda_margin"
	VarEntryMultiple  Variable = "entry_multiple"
	VarExitMultiple   Variable = "exit_multiple"
	VarSeniorRate     Variable = "senior_rate"
	VarMaintCapexPct  Variable = "maintenance_capex_pct"
	VarTaxRate        Variable = "tax_rate"
)

// Valid reports whether the variable is one of the declared inputs.
func (v Variable) Valid() bool {
	switch v {
	case VarAdjustedEBITDA, VarWACC, VarRevenueGrowth, VarEBITDAMargin,
		VarEntryMultiple, VarExitMultiple, VarSeniorRate, VarMaintCapexPct, VarTaxRate:
		return true
	}
	return false
}

// Overrides maps variables to absolute replacement values for one evaluation.
// An absent variable keeps its base value.
type Overrides map[Variable]float64

// GridSpec describes an inclusive swept range, e.g. 4.5x..10.5x in 0.5x steps.
type GridSpec struct {
	Start float64 `json:"start" yaml:"start"`
	End   float64 `json:"end" yaml:"end"`
	Step  float64 `json:"step" yaml:"step"`
}

// Values expands the grid into an ordered slice. An empty or inverted spec
// yields nil. The end point is included when it lands within half a step,
// so 1.50..4.50 step 0.25 reliably contains 4.50 despite float rounding.
func (g GridSpec) Values() []float64 {
	if g.Step <= 0 || g.End < g.Start {
		return nil
	}
	var out []float64
	for v := g.Start; v <= g.End+g.Step/2; v += g.Step {
		out = append(out, v)
	}
	return out
}

// DebtStructure describes the acquisition financing template. Leverage is
// expressed as a multiple of entry EBITDA. The senior tranche amortizes as a
// level annuity over its tenor; the optional mezzanine tranche is
// interest-only with a bullet repayment at exit.
type DebtStructure struct {
	SeniorMultiple float64 `json:"senior_multiple" yaml:"senior_multiple"`
	Rate           float64 `json:"rate" yaml:"rate"`
	TenorYears     int     `json:"tenor_years" yaml:"tenor_years"`
	MezzMultiple   float64 `json:"mezz_multiple" yaml:"mezz_multiple"`
	MezzRate       float64 `json:"mezz_rate" yaml:"mezz_rate"`
}

// DealAssumptions is the canonical deal frame used for single LBO runs and
// for the IRR metric in sensitivity / Monte Carlo analysis.
type DealAssumptions struct {
	EntryMultiple   float64       `json:"entry_multiple" yaml:"entry_multiple"`
	ExitMultiple    float64       `json:"exit_multiple" yaml:"exit_multiple"`
	HoldPeriodYears int           `json:"hold_period_years" yaml:"hold_period_years"`
	Debt            DebtStructure `json:"debt" yaml:"debt"`
	// NWCPctOfRevenueDelta converts incremental revenue into incremental
	// working capital inside the hold-period projection.
	NWCPctOfRevenueDelta float64 `json:"nwc_pct_of_revenue_delta" yaml:"nwc_pct_of_revenue_delta"`
}

// Distribution identifies a Monte Carlo sampling distribution.
type Distribution string

const (
	DistNormal Distribution = "normal"
	// DistUniform is interpreted as a symmetric range around the mean with
	// half-width sigma: U(mu-sigma, mu+sigma).
	DistUniform Distribution = "uniform"
)

// MonteCarloVariable binds a perturbable input to a sampling distribution.
type MonteCarloVariable struct {
	Variable Variable     `json:"variable" yaml:"variable"`
	Dist     Distribution `json:"dist" yaml:"dist"`
	Mean     float64      `json:"mean" yaml:"mean"`
	Std      float64      `json:"std" yaml:"std"`
}

// MonteCarloSpec configures the risk simulation. Identical seed and inputs
// must produce bit-for-bit identical aggregates.
type MonteCarloSpec struct {
	Iterations  int                  `json:"iterations" yaml:"iterations"`
	Seed        uint64               `json:"seed" yaml:"seed"`
	Output      Metric               `json:"output" yaml:"output"`
	Variables   []MonteCarloVariable `json:"variables" yaml:"variables"`
	Percentiles []float64            `json:"percentiles" yaml:"percentiles"`
	// Thresholds requests P(output > threshold) statistics, e.g. 0.15 for
	// P(IRR > 15%).
	Thresholds []float64 `json:"thresholds" yaml:"thresholds"`
}

// SensitivityVariable declares one tornado input with its base value.
type SensitivityVariable struct {
	Variable  Variable `json:"variable" yaml:"variable"`
	BaseValue float64  `json:"base_value" yaml:"base_value"`
}

// HeatmapSpec selects exactly two variables and their discrete ranges for the
// two-factor grid.
type HeatmapSpec struct {
	XVariable Variable  `json:"x_variable" yaml:"x_variable"`
	YVariable Variable  `json:"y_variable" yaml:"y_variable"`
	XValues   []float64 `json:"x_values" yaml:"x_values"`
	YValues   []float64 `json:"y_values" yaml:"y_values"`
}

// SensitivitySpec configures tornado and heatmap analysis.
type SensitivitySpec struct {
	Output    Metric                `json:"output" yaml:"output"`
	Variables []SensitivityVariable `json:"variables" yaml:"variables"`
	// PerturbationFactors default to {0.8, 1.2} when empty.
	PerturbationFactors []float64    `json:"perturbation_factors" yaml:"perturbation_factors"`
	Heatmap             *HeatmapSpec `json:"heatmap,omitempty" yaml:"heatmap,omitempty"`
}

// RunConfig carries everything about a valuation run that is not a property
// of the business itself.
type RunConfig struct {
	Scenarios []ScenarioName `json:"scenarios" yaml:"scenarios"`

	MultipleGrid GridSpec `json:"multiple_grid" yaml:"multiple_grid"`
	LeverageGrid GridSpec `json:"leverage_grid" yaml:"leverage_grid"`

	// DSCRFloors declares the minimum acceptable coverage per scenario,
	// e.g. 1.70x base, 1.50x low.
	DSCRFloors map[ScenarioName]float64 `json:"dscr_floors" yaml:"dscr_floors"`

	// StrategicPremium is the allowed premium over EPV equity, as a fraction
	// (0.125 for 12.5%).
	StrategicPremium float64 `json:"strategic_premium" yaml:"strategic_premium"`

	Deal DealAssumptions `json:"deal" yaml:"deal"`

	// EPVCrossCheckTolerance bounds the allowed relative gap between the two
	// independent EV formula paths. Zero means the 3% default.
	EPVCrossCheckTolerance float64 `json:"epv_cross_check_tolerance" yaml:"epv_cross_check_tolerance"`

	MonteCarlo  *MonteCarloSpec  `json:"monte_carlo,omitempty" yaml:"monte_carlo,omitempty"`
	Sensitivity *SensitivitySpec `json:"sensitivity,omitempty" yaml:"sensitivity,omitempty"`
}

// Floor returns the DSCR floor for a scenario, falling back to the base floor.
func (c RunConfig) Floor(name ScenarioName) float64 {
	if f, ok := c.DSCRFloors[name]; ok {
		return f
	}
	return c.DSCRFloors[ScenarioBase]
}
