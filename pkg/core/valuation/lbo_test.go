package valuation

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smb_valuation/pkg/models"
)

func testLBOInput() LBOInput {
	return LBOInput{
		EntryRevenue:  7_431_000,
		EntryEBITDA:   2_211_000,
		EntryMultiple: 5.0,
		Debt: models.DebtStructure{
			SeniorMultiple: 2.0,
			Rate:           0.10,
			TenorYears:     7,
			MezzMultiple:   0.5,
			MezzRate:       0.14,
		},
		Operating: OperatingAssumptions{
			RevenueGrowth:        0.02,
			EBITDAMargin:         0.2975,
			DAPctOfRevenue:       400_000.0 / 7_431_000.0,
			MaintenanceCapexPct:  0.05,
			NWCPctOfRevenueDelta: 0.10,
			TaxRate:              0.25,
		},
		HoldYears:    5,
		ExitMultiple: 5.0,
	}
}

func TestSimulateLBO(t *testing.T) {
	input := testLBOInput()
	res, err := SimulateLBO(input)
	require.NoError(t, err)
	require.Len(t, res.Schedule, 5)

	// Entry: EV = 2,211,000 * 5.0 = 11,055,000; debt = 2.5x EBITDA.
	assert.InDelta(t, 11_055_000.0, res.EntryEV, 1e-6)
	assert.InDelta(t, 5_527_500.0, res.EntryDebt, 1e-6)
	assert.InDelta(t, 5_527_500.0, res.EntryEquity, 1e-6)

	// Senior service: 4,422,000 at 10% over 7 years = 908,303.13/yr.
	assert.InDelta(t, 908_303.13, res.SeniorDebtService, 0.5)

	// Year 1: revenue 7,579,620; EBITDA 2,254,936.95; senior interest
	// 442,200 plus mezz interest 154,770.
	y1 := res.Schedule[0]
	assert.InDelta(t, 7_579_620.0, y1.Revenue, 1e-6)
	assert.InDelta(t, 2_254_936.95, y1.EBITDA, 1e-6)
	assert.InDelta(t, 596_970.0, y1.InterestExpense, 0.01)
	assert.InDelta(t, 14_862.0, y1.DeltaWorkingCapital, 1e-6)

	var totalPrincipal float64
	prevBalance := res.EntryDebt
	for _, rec := range res.Schedule {
		assert.GreaterOrEqual(t, rec.DebtBalanceEnd, 0.0)
		assert.LessOrEqual(t, rec.DebtBalanceEnd, prevBalance)
		assert.Positive(t, rec.DSCR)
		prevBalance = rec.DebtBalanceEnd
		totalPrincipal += rec.PrincipalPayment
	}

	// The schedule must end clean: the exit-year payoff retires every
	// dollar that was borrowed.
	final := res.Schedule[len(res.Schedule)-1]
	assert.Zero(t, final.DebtBalanceEnd)
	assert.InDelta(t, res.EntryDebt, totalPrincipal, 1e-6)
	assert.Positive(t, res.ExitDebt)

	// Exit: EV = year-5 EBITDA x exit multiple; equity nets off the
	// balance outstanding at exit.
	assert.InDelta(t, final.EBITDA*5.0, res.ExitEV, 1e-6)
	assert.InDelta(t, res.ExitEV-res.ExitDebt, res.ExitEquity, 1e-6)

	// Return identities hold to machine precision.
	assert.InDelta(t, res.ExitEquity/res.EntryEquity, res.MOIC, 1e-9)
	assert.InDelta(t, math.Pow(res.MOIC, 1.0/5.0)-1, res.IRR, 1e-9)

	// Min DSCR is year 1: service is constant while coverage grows.
	assert.InDelta(t, res.Schedule[0].DSCR, res.MinDSCR, 1e-12)
}

func TestSimulateLBONegativeExitEquity(t *testing.T) {
	input := testLBOInput()
	// Exit at 0.5x leaves proceeds below the balance outstanding: equity is
	// wiped out. The loss stays visible as a negative MOIC and a NaN IRR,
	// and the result must still encode as valid JSON (null, never NaN).
	input.ExitMultiple = 0.5

	res, err := SimulateLBO(input)
	require.NoError(t, err)
	assert.Negative(t, res.ExitEquity)
	assert.Negative(t, res.MOIC)
	assert.True(t, math.IsNaN(res.IRR))

	out, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"irr":null`)
	assert.NotContains(t, string(out), "NaN")
}

func TestSimulateLBONoEntryEquity(t *testing.T) {
	input := testLBOInput()
	input.EntryMultiple = 2.5
	// Debt 2.5x meets entry EV 2.5x exactly: nothing left for equity.
	_, err := SimulateLBO(input)
	require.ErrorIs(t, err, ErrInfeasibleStructure)
}

func TestSimulateLBONegativeCashFlow(t *testing.T) {
	input := testLBOInput()
	input.Operating.MaintenanceCapexPct = 0.35
	// Capex above the EBITDA margin leaves nothing to service debt. The
	// failure must surface as an error, not a clamped schedule.
	_, err := SimulateLBO(input)
	require.ErrorIs(t, err, ErrInfeasibleStructure)
}

func TestSimulateLBOInvalidHold(t *testing.T) {
	input := testLBOInput()
	input.HoldYears = 0
	_, err := SimulateLBO(input)
	require.ErrorIs(t, err, ErrInfeasibleStructure)
}
