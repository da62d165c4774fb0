// Package calc provides the deterministic financial primitives shared by the
// valuation calculators: earnings normalization, time-value formulas, and
// descriptive statistics.
package calc

import (
	"smb_valuation/pkg/models"
)

// NormalizedEarnings is the normalized earnings base derived from a case.
// All downstream calculators (EPV, multiple grid, LBO entry) start here.
type NormalizedEarnings struct {
	EBITDAReported float64 `json:"ebitda_reported"`
	TotalAddbacks  float64 `json:"total_addbacks"`
	// NonRecurringAddbacks is the one-off portion of the addbacks, reported
	// separately so a reviewer can see how much of the adjustment is
	// permanent cost structure versus one-time items.
	NonRecurringAddbacks float64 `json:"non_recurring_addbacks"`
	EBITDAAdjusted       float64 `json:"ebitda_adjusted"`

	DepreciationAmortization float64 `json:"depreciation_amortization"`
	MaintenanceCapex         float64 `json:"maintenance_capex"`
	TaxRate                  float64 `json:"tax_rate"`

	EBIT          float64 `json:"ebit"`
	NOPAT         float64 `json:"nopat"`
	OwnerEarnings float64 `json:"owner_earnings"`
}

// NormalizeCase converts raw reported figures plus the addback list into the
// adjusted EBITDA and owner-earnings base.
//
// FORMULAS:
//
//	EBITDA_adj     = EBITDA_reported + sum(addbacks)
//	EBIT           = EBITDA_adj - D&A
//	NOPAT          = EBIT * (1 - taxRate)
//	OwnerEarnings  = NOPAT + D&A - MaintenanceCapex
//
// Owner earnings deliberately exclude growth capex: the base is what the
// business earns in cash without reinvesting for growth.
func NormalizeCase(c models.FinancialCase) NormalizedEarnings {
	var total, nonRecurring float64
	for _, a := range c.NormalizedAddbacks {
		total += a.Amount
		if !a.Recurring {
			nonRecurring += a.Amount
		}
	}

	adjusted := c.TTMEBITDAReported + total
	ebit := adjusted - c.DepreciationAmortization
	nopat := ebit * (1 - c.TaxRate)
	ownerEarnings := nopat + c.DepreciationAmortization - c.MaintenanceCapex

	return NormalizedEarnings{
		EBITDAReported:           c.TTMEBITDAReported,
		TotalAddbacks:            total,
		NonRecurringAddbacks:     nonRecurring,
		EBITDAAdjusted:           adjusted,
		DepreciationAmortization: c.DepreciationAmortization,
		MaintenanceCapex:         c.MaintenanceCapex,
		TaxRate:                  c.TaxRate,
		EBIT:                     ebit,
		NOPAT:                    nopat,
		OwnerEarnings:            ownerEarnings,
	}
}
