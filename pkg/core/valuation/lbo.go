package valuation

import (
	"fmt"
	"math"

	"smb_valuation/pkg/core/calc"
	"smb_valuation/pkg/models"
)

// OperatingAssumptions drives the per-year operating projection inside the
// LBO hold period. All percentages are fractions of revenue.
type OperatingAssumptions struct {
	RevenueGrowth        float64
	EBITDAMargin         float64
	DAPctOfRevenue       float64
	MaintenanceCapexPct  float64
	NWCPctOfRevenueDelta float64
	TaxRate              float64
}

// LBOInput parameterizes one capital-structure trial.
type LBOInput struct {
	EntryRevenue  float64
	EntryEBITDA   float64
	EntryMultiple float64
	Debt          models.DebtStructure
	Operating     OperatingAssumptions
	HoldYears     int
	ExitMultiple  float64
}

// YearRecord is one row of the debt schedule.
type YearRecord struct {
	Year                int     `json:"year"`
	Revenue             float64 `json:"revenue"`
	EBITDA              float64 `json:"ebitda"`
	EBIT                float64 `json:"ebit"`
	NOPAT               float64 `json:"nopat"`
	DeltaWorkingCapital float64 `json:"delta_working_capital"`
	MaintenanceCapex    float64 `json:"maintenance_capex"`
	FCFBeforeInterest   float64 `json:"fcf_before_interest"`
	InterestExpense     float64 `json:"interest_expense"`
	PrincipalPayment    float64 `json:"principal_payment"`
	DebtBalanceEnd      float64 `json:"debt_balance_end"`
	DSCR                float64 `json:"dscr"`
}

// LBOResult is the full schedule plus exit metrics for one trial.
type LBOResult struct {
	Schedule []YearRecord `json:"schedule"`

	EntryEV     float64 `json:"entry_ev"`
	EntryDebt   float64 `json:"entry_debt"`
	EntryEquity float64 `json:"entry_equity"`

	// SeniorDebtService is the constant level-annuity payment on the senior
	// tranche (interest + principal).
	SeniorDebtService float64 `json:"senior_debt_service"`

	ExitEV     float64 `json:"exit_ev"`
	ExitDebt   float64 `json:"exit_debt"`
	ExitEquity float64 `json:"exit_equity"`

	MOIC    float64 `json:"moic"`
	IRR     float64 `json:"irr"`
	MinDSCR float64 `json:"min_dscr"`
}

// SimulateLBO builds the multi-year amortizing debt schedule and exit
// returns for a given capital structure.
//
// Mechanics per year:
//  1. Revenue grows at the scenario rate; EBITDA follows the margin
//     assumption; EBIT = EBITDA - D&A; cash taxes = max(0, EBIT * t).
//  2. Free cash flow before interest = EBITDA - cash taxes - maintenance
//     capex - change in working capital.
//  3. Interest accrues on the opening balances. The senior tranche follows a
//     level-annuity schedule (constant annual service consistent with rate
//     and tenor); the mezzanine tranche is interest-only with a bullet at
//     exit. Balances are floored at zero.
//  4. DSCR = (EBITDA - cash taxes - maintenance capex) / total debt service.
//
// At exit, enterprise value = final-year EBITDA x exit multiple, the
// remaining balance is retired out of sale proceeds (so the final year's
// principal payment clears the schedule), and exit equity = exit EV minus
// the balance outstanding at exit.
//
// MOIC = exitEquity / entryEquity and IRR = MOIC^(1/N) - 1. The closed-form
// IRR is exact here because no interim cash is distributed to equity; see
// calc.IRRFromMOIC.
//
// Returns ErrInfeasibleStructure when the structure leaves no entry equity
// or when cash available for debt service goes negative in any year. The
// failure is reported, never clipped.
func SimulateLBO(input LBOInput) (LBOResult, error) {
	if input.HoldYears <= 0 {
		return LBOResult{}, fmt.Errorf("%w: hold period must be positive", ErrInfeasibleStructure)
	}

	entryEV := input.EntryEBITDA * input.EntryMultiple
	seniorBal := input.EntryEBITDA * input.Debt.SeniorMultiple
	mezzBal := input.EntryEBITDA * input.Debt.MezzMultiple
	entryDebt := seniorBal + mezzBal
	entryEquity := entryEV - entryDebt

	if entryEquity <= 0 {
		return LBOResult{}, fmt.Errorf("%w: debt %.2f meets or exceeds entry EV %.2f", ErrInfeasibleStructure, entryDebt, entryEV)
	}

	seniorService := calc.AnnuityPayment(seniorBal, input.Debt.Rate, input.Debt.TenorYears)

	res := LBOResult{
		Schedule:          make([]YearRecord, 0, input.HoldYears),
		EntryEV:           entryEV,
		EntryDebt:         entryDebt,
		EntryEquity:       entryEquity,
		SeniorDebtService: seniorService,
		MinDSCR:           math.Inf(1),
	}

	op := input.Operating
	revenue := input.EntryRevenue
	var ebitda float64

	for year := 1; year <= input.HoldYears; year++ {
		prevRevenue := revenue
		revenue = prevRevenue * (1 + op.RevenueGrowth)
		ebitda = revenue * op.EBITDAMargin
		da := revenue * op.DAPctOfRevenue
		ebit := ebitda - da

		cashTaxes := ebit * op.TaxRate
		if cashTaxes < 0 {
			cashTaxes = 0
		}
		nopat := ebit * (1 - op.TaxRate)

		capex := revenue * op.MaintenanceCapexPct
		deltaWC := (revenue - prevRevenue) * op.NWCPctOfRevenueDelta
		fcfBeforeInterest := ebitda - cashTaxes - capex - deltaWC

		// Interest on opening balances.
		seniorInterest := seniorBal * input.Debt.Rate
		mezzInterest := mezzBal * input.Debt.MezzRate
		interest := seniorInterest + mezzInterest

		var principal float64
		if seniorBal > 0 {
			principal = seniorService - seniorInterest
			if principal > seniorBal {
				principal = seniorBal
			}
			if principal < 0 {
				principal = 0
			}
		}
		seniorBal -= principal
		if seniorBal < 0 {
			seniorBal = 0
		}

		service := interest + principal

		cashForService := ebitda - cashTaxes - capex
		var dscr float64
		if service > 0 {
			dscr = cashForService / service
		} else {
			dscr = math.Inf(1)
		}
		if dscr < res.MinDSCR {
			res.MinDSCR = dscr
		}

		if fcfBeforeInterest < 0 || cashForService < 0 {
			return res, fmt.Errorf("%w: year %d cash available for debt service is negative (%.2f)", ErrInfeasibleStructure, year, cashForService)
		}

		record := YearRecord{
			Year:                year,
			Revenue:             revenue,
			EBITDA:              ebitda,
			EBIT:                ebit,
			NOPAT:               nopat,
			DeltaWorkingCapital: deltaWC,
			MaintenanceCapex:    capex,
			FCFBeforeInterest:   fcfBeforeInterest,
			InterestExpense:     interest,
			PrincipalPayment:    principal,
			DebtBalanceEnd:      seniorBal + mezzBal,
			DSCR:                dscr,
		}

		if year == input.HoldYears {
			// Full payoff at exit: the remaining senior and mezzanine
			// balances are retired from sale proceeds, so the schedule ends
			// at zero.
			remaining := seniorBal + mezzBal
			res.ExitDebt = remaining
			record.PrincipalPayment += remaining
			record.DebtBalanceEnd = 0
			seniorBal = 0
			mezzBal = 0
		}

		res.Schedule = append(res.Schedule, record)
	}

	res.ExitEV = ebitda * input.ExitMultiple
	res.ExitEquity = res.ExitEV - res.ExitDebt
	res.MOIC = res.ExitEquity / res.EntryEquity
	res.IRR = calc.IRRFromMOIC(res.MOIC, input.HoldYears)

	return res, nil
}
