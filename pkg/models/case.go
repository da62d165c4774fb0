// Package models defines the input records consumed by the valuation engine.
// Everything here is a plain value object: constructed once by the caller,
// validated up front, and never mutated by the engine.
package models

// ScenarioName is a closed enumeration of operating scenarios. Scenarios are
// deliberately not an open string-keyed space so a missing scenario is caught
// before any computation runs.
type ScenarioName string

const (
	ScenarioLow  ScenarioName = "low"
	ScenarioBase ScenarioName = "base"
	ScenarioHigh ScenarioName = "high"
)

// KnownScenarios lists the valid scenario names in reporting order.
var KnownScenarios = []ScenarioName{ScenarioLow, ScenarioBase, ScenarioHigh}

// Valid reports whether the name is one of the enumerated scenarios.
func (s ScenarioName) Valid() bool {
	switch s {
	case ScenarioLow, ScenarioBase, ScenarioHigh:
		return true
	}
	return false
}

// Addback is one normalization adjustment to reported EBITDA, e.g. excess
// owner compensation or a one-time legal settlement. Recurring marks addbacks
// that represent a permanent cost difference rather than a one-off item.
type Addback struct {
	Label     string  `json:"label" yaml:"label"`
	Amount    float64 `json:"amount" yaml:"amount"`
	Recurring bool    `json:"recurring" yaml:"recurring"`
}

// Scenario holds the operating assumptions for one scenario. All percentage
// fields are fractions in [0,1], never "12" for 12%.
type Scenario struct {
	WACC                float64 `json:"wacc" yaml:"wacc"`
	RevenueGrowth       float64 `json:"revenue_growth" yaml:"revenue_growth"`
	GrossMargin         float64 `json:"gross_margin" yaml:"gross_margin"`
	PayrollPct          float64 `json:"payroll_pct" yaml:"payroll_pct"`
	MarketingPct        float64 `json:"marketing_pct" yaml:"marketing_pct"`
	OtherOpexPct        float64 `json:"other_opex_pct" yaml:"other_opex_pct"`
	MaintenanceCapexPct float64 `json:"maintenance_capex_pct" yaml:"maintenance_capex_pct"`
}

// EBITDAMargin derives the scenario EBITDA margin from the cost structure.
//
// FORMULA: margin = GrossMargin - Payroll% - Marketing% - OtherOpex%
func (s Scenario) EBITDAMargin() float64 {
	return s.GrossMargin - s.PayrollPct - s.MarketingPct - s.OtherOpexPct
}

// FinancialCase is the normalized financial snapshot of the target business,
// supplied by the (excluded) case-management layer. Immutable for the life of
// a valuation run.
type FinancialCase struct {
	CompanyName string `json:"company_name" yaml:"company_name"`

	TTMRevenue         float64   `json:"ttm_revenue" yaml:"ttm_revenue"`
	TTMEBITDAReported  float64   `json:"ttm_ebitda_reported" yaml:"ttm_ebitda_reported"`
	NormalizedAddbacks []Addback `json:"normalized_addbacks" yaml:"normalized_addbacks"`

	// DepreciationAmortization is the TTM D&A charge, needed to step from
	// EBITDA down to EBIT and back up to owner earnings.
	DepreciationAmortization float64 `json:"depreciation_amortization" yaml:"depreciation_amortization"`

	TaxRate          float64 `json:"tax_rate" yaml:"tax_rate"`
	MaintenanceCapex float64 `json:"maintenance_capex" yaml:"maintenance_capex"`
	NetDebt          float64 `json:"net_debt" yaml:"net_debt"`

	Scenarios map[ScenarioName]Scenario `json:"scenarios" yaml:"scenarios"`
}

// AdjustedEBITDA returns reported EBITDA plus the sum of all addbacks.
// Invariant: ttmEbitdaAdjusted = ttmEbitdaReported + sum(addbacks).
func (c FinancialCase) AdjustedEBITDA() float64 {
	total := c.TTMEBITDAReported
	for _, a := range c.NormalizedAddbacks {
		total += a.Amount
	}
	return total
}

// Scenario looks up a scenario by name.
func (c FinancialCase) Scenario(name ScenarioName) (Scenario, bool) {
	s, ok := c.Scenarios[name]
	return s, ok
}
