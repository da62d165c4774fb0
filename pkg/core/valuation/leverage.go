package valuation

import (
	"fmt"

	"smb_valuation/pkg/core/calc"
)

// DSCRResult is one grid point of the leverage sweep.
type DSCRResult struct {
	LeverageMultiple  float64 `json:"leverage_multiple"`
	DebtAmount        float64 `json:"debt_amount"`
	AnnualDebtService float64 `json:"annual_debt_service"`
	// CashDSCR is the minimum-year coverage across the hold period:
	// (EBITDA - cash taxes - maintenance capex) / annual debt service.
	CashDSCR      float64 `json:"cash_dscr"`
	PassesFloor   bool    `json:"passes_floor"`
	Infeasible    bool    `json:"infeasible"`
	FailureReason string  `json:"failure_reason,omitempty"`
}

// DealStructureTrial pairs one price with one capital structure and records
// its outcome. A trial is viable only if its minimum-year DSCR meets the
// scenario floor and the structure is feasible.
type DealStructureTrial struct {
	PriceMultiple    float64 `json:"price_multiple"`
	LeverageMultiple float64 `json:"leverage_multiple"`
	EntryEquity      float64 `json:"entry_equity"`
	ExitEquity       float64 `json:"exit_equity"`
	MOIC             float64 `json:"moic"`
	IRR              float64 `json:"irr"`
	MinDSCR          float64 `json:"min_dscr"`
	Viable           bool    `json:"viable"`
	FailureReason    string  `json:"failure_reason,omitempty"`
}

// SweepResult is the ordered DSCR sequence plus the maximum leverage whose
// minimum-year DSCR still meets the floor.
type SweepResult struct {
	Floor   float64      `json:"floor"`
	Results []DSCRResult `json:"results"`

	Trials []DealStructureTrial `json:"trials"`

	// MaxSustainableLeverage is meaningful only when Found is true.
	// "No grid point passes" is a valid, reportable outcome, distinct from a
	// computation failure.
	MaxSustainableLeverage float64 `json:"max_sustainable_leverage"`
	Found                  bool    `json:"found"`

	Warnings []ConsistencyWarning `json:"warnings,omitempty"`
}

// SweepLeverage drives the LBO simulator across a leverage grid, holding the
// rest of the template constant, and finds the maximum sustainable leverage.
//
// Grid points are evaluated independently: an infeasible structure is
// recorded on its row and the sweep continues. When several adjacent points
// pass, the highest is reported. DSCR is expected to decrease as leverage
// increases under level-annuity amortization; an observed increase is
// surfaced as a consistency warning rather than silently resolved.
func SweepLeverage(template LBOInput, grid []float64, floor float64) SweepResult {
	sweep := SweepResult{Floor: floor}

	for _, leverage := range grid {
		input := template
		input.Debt.SeniorMultiple = leverage

		seniorDebt := input.EntryEBITDA * leverage
		mezzDebt := input.EntryEBITDA * input.Debt.MezzMultiple
		service := calc.AnnuityPayment(seniorDebt, input.Debt.Rate, input.Debt.TenorYears) +
			mezzDebt*input.Debt.MezzRate

		row := DSCRResult{
			LeverageMultiple:  leverage,
			DebtAmount:        seniorDebt + mezzDebt,
			AnnualDebtService: service,
		}
		trial := DealStructureTrial{
			PriceMultiple:    input.EntryMultiple,
			LeverageMultiple: leverage,
		}

		res, err := SimulateLBO(input)
		if err != nil {
			row.Infeasible = true
			row.FailureReason = err.Error()
			if len(res.Schedule) > 0 {
				row.CashDSCR = res.MinDSCR
			}
			trial.MinDSCR = row.CashDSCR
			trial.FailureReason = err.Error()
		} else {
			row.CashDSCR = res.MinDSCR
			row.PassesFloor = res.MinDSCR >= floor

			trial.EntryEquity = res.EntryEquity
			trial.ExitEquity = res.ExitEquity
			trial.MOIC = res.MOIC
			trial.IRR = res.IRR
			trial.MinDSCR = res.MinDSCR
			trial.Viable = row.PassesFloor
		}

		sweep.Results = append(sweep.Results, row)
		sweep.Trials = append(sweep.Trials, trial)

		if row.PassesFloor {
			// Grid is ordered ascending, so the last passing point is the
			// highest sustainable leverage.
			sweep.MaxSustainableLeverage = leverage
			sweep.Found = true
		}
	}

	sweep.Warnings = append(sweep.Warnings, checkDSCRMonotonicity(sweep.Results)...)
	return sweep
}

// checkDSCRMonotonicity flags grid points where DSCR increases with
// leverage. This should not occur under level-annuity amortization.
func checkDSCRMonotonicity(results []DSCRResult) []ConsistencyWarning {
	const slack = 1e-9
	var warnings []ConsistencyWarning

	var prev *DSCRResult
	for i := range results {
		cur := &results[i]
		if cur.Infeasible {
			continue
		}
		if prev != nil && cur.CashDSCR > prev.CashDSCR+slack {
			warnings = append(warnings, ConsistencyWarning{
				Check: "dscr_monotonicity",
				Detail: fmt.Sprintf("DSCR rose from %.4f at %.2fx to %.4f at %.2fx",
					prev.CashDSCR, prev.LeverageMultiple, cur.CashDSCR, cur.LeverageMultiple),
				Gap: cur.CashDSCR - prev.CashDSCR,
			})
		}
		prev = cur
	}
	return warnings
}
