package calc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnnuityPayment(t *testing.T) {
	// 1,000,000 at 10% over 5 years:
	// PMT = 1,000,000 * 0.1 / (1 - 1.1^-5) = 263,797.48
	pmt := AnnuityPayment(1_000_000, 0.10, 5)
	assert.InDelta(t, 263_797.48, pmt, 0.01)

	// Paying PMT each year must fully amortize the loan.
	balance := 1_000_000.0
	for y := 0; y < 5; y++ {
		interest := balance * 0.10
		balance -= pmt - interest
	}
	assert.InDelta(t, 0.0, balance, 1e-6)
}

func TestAnnuityPaymentZeroRate(t *testing.T) {
	// Zero rate degenerates to straight-line principal.
	assert.InDelta(t, 200_000.0, AnnuityPayment(1_000_000, 0, 5), 1e-9)
}

func TestAnnuityPaymentDegenerate(t *testing.T) {
	assert.Zero(t, AnnuityPayment(0, 0.1, 5))
	assert.Zero(t, AnnuityPayment(1_000_000, 0.1, 0))
}

func TestIRRFromMOIC(t *testing.T) {
	// 2.5x over 5 years: IRR = 2.5^(1/5) - 1 = 20.11%
	irr := IRRFromMOIC(2.5, 5)
	assert.InDelta(t, 0.20112, irr, 1e-5)

	// 1.0x is a zero return regardless of hold.
	assert.InDelta(t, 0.0, IRRFromMOIC(1.0, 7), 1e-12)

	// A negative multiple has no real rate; the failure must stay visible
	// as NaN rather than being coerced.
	assert.True(t, math.IsNaN(IRRFromMOIC(-0.5, 5)))
	assert.True(t, math.IsNaN(IRRFromMOIC(2.0, 0)))
}

func TestCapitalizePerpetuity(t *testing.T) {
	assert.InDelta(t, 10_000_000.0, CapitalizePerpetuity(1_000_000, 0.10), 1e-9)
	assert.Zero(t, CapitalizePerpetuity(1_000_000, 0))
}

func TestPresentValueOfCashFlows(t *testing.T) {
	// 100 for 3 years at 10%: 90.909 + 82.645 + 75.131 = 248.685
	pv := PresentValueOfCashFlows([]float64{100, 100, 100}, 0.10)
	assert.InDelta(t, 248.685, pv, 0.001)
}
