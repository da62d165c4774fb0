package valuation

import (
	"fmt"
	"math"

	"smb_valuation/pkg/core/calc"
)

// DefaultEPVCrossCheckTolerance is the allowed relative gap between the two
// independent enterprise-value formula paths.
const DefaultEPVCrossCheckTolerance = 0.03

// crossCheckHorizonYears is the finite horizon used by the independent EV
// recomputation path.
const crossCheckHorizonYears = 30

// EPVInput carries the owner-earnings base and scenario discount rate.
type EPVInput struct {
	OwnerEarnings float64
	WACC          float64
	NetDebt       float64

	// CrossCheckTolerance bounds the regression guard below. Zero selects
	// the default 3%.
	CrossCheckTolerance float64
}

// EPVResult is the strict-perpetuity earnings power valuation.
type EPVResult struct {
	OwnerEarnings   float64 `json:"owner_earnings"`
	WACC            float64 `json:"wacc"`
	EnterpriseValue float64 `json:"enterprise_value"`
	EquityValue     float64 `json:"equity_value"`
	ImpliedCapRate  float64 `json:"implied_cap_rate"`

	Warnings []ConsistencyWarning `json:"warnings,omitempty"`
}

// CalculateEPV computes earnings power value under the strict no-growth
// perpetuity.
//
// FORMULA: EV = OwnerEarnings / WACC  (g fixed at 0)
//
// The growth term is deliberately absent: EPV removes the unobservable growth
// assumption from an earnings base that already excludes growth reinvestment.
// Any growth-bearing methodology is a different calculation and is not
// offered by this package under any name.
//
// The result carries a regression guard: EV is recomputed via an independent
// path (finite annuity of owner earnings plus a discounted terminal
// perpetuity) and a ConsistencyWarning is attached when the two paths
// diverge beyond the tolerance. The mismatch is reported, never corrected.
func CalculateEPV(input EPVInput) (EPVResult, error) {
	if input.WACC <= 0 {
		return EPVResult{}, fmt.Errorf("%w: wacc must be positive, got %v", ErrInvalidScenario, input.WACC)
	}

	ev := calc.CapitalizePerpetuity(input.OwnerEarnings, input.WACC)

	res := EPVResult{
		OwnerEarnings:   input.OwnerEarnings,
		WACC:            input.WACC,
		EnterpriseValue: ev,
		EquityValue:     ev - input.NetDebt,
		ImpliedCapRate:  input.WACC,
	}

	tolerance := input.CrossCheckTolerance
	if tolerance <= 0 {
		tolerance = DefaultEPVCrossCheckTolerance
	}
	if w, ok := crossCheckEV(input.OwnerEarnings, input.WACC, ev, tolerance); !ok {
		res.Warnings = append(res.Warnings, w)
	}

	return res, nil
}

// crossCheckEV recomputes enterprise value as the present value of a finite
// owner-earnings annuity plus a terminal perpetuity discounted back from the
// horizon. Analytically this equals OE/WACC exactly; the check exists to
// catch formula drift between the two code paths, not to enforce a business
// rule.
func crossCheckEV(ownerEarnings, wacc, ev, tolerance float64) (ConsistencyWarning, bool) {
	flows := make([]float64, crossCheckHorizonYears)
	for i := range flows {
		flows[i] = ownerEarnings
	}
	terminal := calc.CapitalizePerpetuity(ownerEarnings, wacc)
	alt := calc.PresentValueOfCashFlows(flows, wacc) +
		calc.PresentValue(terminal, wacc, crossCheckHorizonYears)

	if ev == 0 {
		return ConsistencyWarning{}, alt == 0
	}
	gap := math.Abs(alt-ev) / math.Abs(ev)
	if gap > tolerance {
		return ConsistencyWarning{
			Check:  "epv_cross_check",
			Detail: fmt.Sprintf("independent EV path %.2f vs %.2f exceeds %.1f%% tolerance", alt, ev, tolerance*100),
			Gap:    gap,
		}, false
	}
	return ConsistencyWarning{}, true
}
