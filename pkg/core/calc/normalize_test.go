package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"smb_valuation/pkg/models"
)

func TestNormalizeCase(t *testing.T) {
	// Reported EBITDA 1,911,000 + 250,000 owner comp (recurring)
	// + 50,000 one-time legal (non-recurring) = 2,211,000 adjusted.
	// EBIT  = 2,211,000 - 400,000            = 1,811,000
	// NOPAT = 1,811,000 * (1 - 0.25)         = 1,358,250
	// OE    = 1,358,250 + 400,000 - 300,000  = 1,458,250
	c := models.FinancialCase{
		TTMRevenue:        7_431_000,
		TTMEBITDAReported: 1_911_000,
		NormalizedAddbacks: []models.Addback{
			{Label: "Owner compensation normalization", Amount: 250_000, Recurring: true},
			{Label: "One-time legal settlement", Amount: 50_000, Recurring: false},
		},
		DepreciationAmortization: 400_000,
		TaxRate:                  0.25,
		MaintenanceCapex:         300_000,
	}

	n := NormalizeCase(c)

	assert.Equal(t, 2_211_000.0, n.EBITDAAdjusted)
	assert.Equal(t, 300_000.0, n.TotalAddbacks)
	assert.Equal(t, 50_000.0, n.NonRecurringAddbacks)
	assert.Equal(t, 1_811_000.0, n.EBIT)
	assert.Equal(t, 1_358_250.0, n.NOPAT)
	assert.Equal(t, 1_458_250.0, n.OwnerEarnings)

	// Invariant: adjusted EBITDA is always reported plus the sum of all
	// addbacks, recurring or not.
	assert.Equal(t, n.EBITDAReported+n.TotalAddbacks, n.EBITDAAdjusted)
}

func TestNormalizeCaseNoAddbacks(t *testing.T) {
	c := models.FinancialCase{
		TTMEBITDAReported:        1_000_000,
		DepreciationAmortization: 100_000,
		TaxRate:                  0.30,
		MaintenanceCapex:         120_000,
	}

	n := NormalizeCase(c)

	assert.Equal(t, 1_000_000.0, n.EBITDAAdjusted)
	assert.Zero(t, n.TotalAddbacks)
	// OE = (1,000,000 - 100,000)*0.7 + 100,000 - 120,000 = 610,000
	assert.InDelta(t, 610_000.0, n.OwnerEarnings, 1e-9)
}
