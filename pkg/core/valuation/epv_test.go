package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateEPV(t *testing.T) {
	// Owner earnings 1,385,079.32 at an 11.5% WACC:
	// EV     = 1,385,079.32 / 0.115 = 12,044,168
	// Equity = 12,044,168 - 850,000 = 11,194,168
	res, err := CalculateEPV(EPVInput{
		OwnerEarnings: 1_385_079.32,
		WACC:          0.115,
		NetDebt:       850_000,
	})
	require.NoError(t, err)

	assert.InDelta(t, 12_044_168.0, res.EnterpriseValue, 1.0)
	assert.InDelta(t, 11_194_168.0, res.EquityValue, 1.0)
	assert.Equal(t, 0.115, res.ImpliedCapRate)

	// Strict perpetuity: EV is exactly OE / WACC, no growth term.
	assert.Equal(t, res.OwnerEarnings/res.WACC, res.EnterpriseValue)

	// The independent formula path agrees analytically, so the regression
	// guard stays silent.
	assert.Empty(t, res.Warnings)
}

func TestCalculateEPVInvalidWACC(t *testing.T) {
	_, err := CalculateEPV(EPVInput{OwnerEarnings: 1_000_000, WACC: 0})
	require.ErrorIs(t, err, ErrInvalidScenario)

	_, err = CalculateEPV(EPVInput{OwnerEarnings: 1_000_000, WACC: -0.10})
	require.ErrorIs(t, err, ErrInvalidScenario)
}

func TestCrossCheckEVReportsDrift(t *testing.T) {
	// Feed the guard a deliberately wrong EV: the mismatch must be
	// reported, not corrected.
	w, ok := crossCheckEV(1_000_000, 0.10, 12_000_000, 0.03)
	assert.False(t, ok)
	assert.Equal(t, "epv_cross_check", w.Check)
	assert.Greater(t, w.Gap, 0.03)

	// The correct EV passes within the default tolerance.
	_, ok = crossCheckEV(1_000_000, 0.10, 10_000_000, 0.03)
	assert.True(t, ok)
}
