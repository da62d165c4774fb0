package calc

import (
	"math"
)

// PresentValue calculates PV of a single cash flow.
//
// FORMULA: PV = CF / (1 + r)^t
func PresentValue(cashFlow, discountRate float64, periods int) float64 {
	if periods < 0 {
		return 0
	}
	return cashFlow / math.Pow(1+discountRate, float64(periods))
}

// PresentValueOfCashFlows calculates PV of a series of cash flows.
//
// FORMULA: PV = Σ [ CF_t / (1 + r)^t ]
//
// Cash flows are assumed to be at end of each period (ordinary annuity).
func PresentValueOfCashFlows(cashFlows []float64, discountRate float64) float64 {
	var pv float64
	for t, cf := range cashFlows {
		pv += cf / math.Pow(1+discountRate, float64(t+1))
	}
	return pv
}

// AnnuityPayment calculates the constant annual debt service (interest +
// principal) that fully amortizes a loan over its tenor.
//
// FORMULA: PMT = P * r / (1 - (1 + r)^-n)
//
// A zero rate degenerates to straight-line principal: PMT = P / n.
func AnnuityPayment(principal, rate float64, tenorYears int) float64 {
	if principal <= 0 || tenorYears <= 0 {
		return 0
	}
	if rate == 0 {
		return principal / float64(tenorYears)
	}
	return principal * rate / (1 - math.Pow(1+rate, -float64(tenorYears)))
}

// IRRFromMOIC backs the internal rate of return out of a multiple of
// invested capital over a holding period.
//
// FORMULA: IRR = MOIC^(1/N) - 1
//
// This is exact only when there are no interim distributions to equity: the
// entry investment is the single outflow and the exit proceeds the single
// inflow. The engine assumes all free cash flow sweeps to debt paydown, so
// the assumption holds and the closed form replaces an iterative NPV solve.
// Returns NaN when the inputs cannot produce a finite rate.
func IRRFromMOIC(moic float64, holdYears int) float64 {
	if holdYears <= 0 || moic < 0 {
		return math.NaN()
	}
	return math.Pow(moic, 1/float64(holdYears)) - 1
}

// CapitalizePerpetuity values a constant cash flow stream as a strict
// no-growth perpetuity.
//
// FORMULA: V = CF / r
//
// No growth term is permitted here. Gordon-Growth capitalization is a
// different methodology and must never be silently substituted.
func CapitalizePerpetuity(cashFlow, rate float64) float64 {
	if rate <= 0 {
		return 0
	}
	return cashFlow / rate
}
