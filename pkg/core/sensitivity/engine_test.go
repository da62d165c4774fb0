package sensitivity

import (
	"encoding/json"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smb_valuation/pkg/models"
)

// linearEval values a toy perpetuity: EV = ebitda / wacc with growth as a
// plain additive term. Linear enough that impacts are exactly predictable.
func linearEval(overrides models.Overrides) (float64, error) {
	ebitda := 1_000_000.0
	wacc := 0.10
	growth := 0.0
	if v, ok := overrides[models.VarAdjustedEBITDA]; ok {
		ebitda = v
	}
	if v, ok := overrides[models.VarWACC]; ok {
		wacc = v
	}
	if v, ok := overrides[models.VarRevenueGrowth]; ok {
		growth = v
	}
	if wacc <= 0 {
		return 0, fmt.Errorf("wacc must be positive")
	}
	return ebitda/wacc + growth, nil
}

func TestTornadoRanking(t *testing.T) {
	vars := []models.SensitivityVariable{
		{Variable: models.VarRevenueGrowth, BaseValue: 1_000},
		{Variable: models.VarAdjustedEBITDA, BaseValue: 1_000_000},
		{Variable: models.VarWACC, BaseValue: 0.10},
	}

	res, err := Tornado(vars, nil, models.MetricEnterpriseValue, linearEval)
	require.NoError(t, err)
	assert.InDelta(t, 10_000_000.0, res.BaseResult, 1e-6)
	require.Len(t, res.Entries, 3)

	// Impacts at the default 0.8/1.2 factors:
	//   EBITDA: |12M - 8M|          = 4,000,000
	//   WACC:   |1M/.12 - 1M/.08|   = 4,166,667
	//   growth: |1200 - 800|        = 400
	// Ranking is by descending impact.
	assert.Equal(t, models.VarWACC, res.Entries[0].Variable)
	assert.Equal(t, models.VarAdjustedEBITDA, res.Entries[1].Variable)
	assert.Equal(t, models.VarRevenueGrowth, res.Entries[2].Variable)

	assert.InDelta(t, 4_166_666.67, res.Entries[0].Impact, 0.01)
	assert.InDelta(t, 4_000_000.0, res.Entries[1].Impact, 1e-6)
	assert.InDelta(t, 400.0, res.Entries[2].Impact, 1e-6)

	// One factor at a time: each run carries exactly one override, so the
	// EBITDA entry's results are computed at base WACC.
	for _, fr := range res.Entries[1].Results {
		assert.InDelta(t, fr.Value/0.10, fr.Result, 1e-6)
	}
}

func TestTornadoFailedVariableKept(t *testing.T) {
	vars := []models.SensitivityVariable{
		{Variable: models.VarAdjustedEBITDA, BaseValue: 1_000_000},
		// Perturbing a zero base WACC drives it non-positive; the evaluator
		// rejects it.
		{Variable: models.VarWACC, BaseValue: 0},
	}

	res, err := Tornado(vars, nil, models.MetricEnterpriseValue, linearEval)
	require.NoError(t, err)
	require.Len(t, res.Entries, 2)

	// Failed entries sort last with zero impact but stay visible.
	failed := res.Entries[1]
	assert.Equal(t, models.VarWACC, failed.Variable)
	assert.True(t, failed.Failed)
	assert.NotEmpty(t, failed.FailureReason)
	assert.Zero(t, failed.Impact)

	assert.False(t, res.Entries[0].Failed)
}

func TestTornadoRejectsNonFiniteBase(t *testing.T) {
	// A non-finite base gives nothing to rank impacts against and would
	// land unserializable in the report.
	inf := func(models.Overrides) (float64, error) { return math.Inf(1), nil }
	vars := []models.SensitivityVariable{{Variable: models.VarWACC, BaseValue: 0.1}}
	_, err := Tornado(vars, nil, models.MetricIRR, inf)
	require.Error(t, err)
}

func TestTornadoCustomFactors(t *testing.T) {
	vars := []models.SensitivityVariable{
		{Variable: models.VarAdjustedEBITDA, BaseValue: 1_000_000},
	}

	res, err := Tornado(vars, []float64{0.9, 1.0, 1.1}, models.MetricEnterpriseValue, linearEval)
	require.NoError(t, err)
	require.Len(t, res.Entries[0].Results, 3)
	// Impact spans the extreme factors only: |11M - 9M|.
	assert.InDelta(t, 2_000_000.0, res.Entries[0].Impact, 1e-6)
}

func TestHeatmap(t *testing.T) {
	spec := models.HeatmapSpec{
		XVariable: models.VarAdjustedEBITDA,
		YVariable: models.VarWACC,
		XValues:   []float64{800_000, 1_000_000, 1_200_000},
		YValues:   []float64{0.08, 0.10},
	}

	res, err := Heatmap(spec, models.MetricEnterpriseValue, linearEval)
	require.NoError(t, err)
	require.Len(t, res.Cells, 2)
	require.Len(t, res.Cells[0], 3)
	assert.Zero(t, res.FailedCells)

	// Row-major: Cells[y][x].
	assert.InDelta(t, 800_000/0.08, res.Cells[0][0], 1e-6)
	assert.InDelta(t, 1_200_000/0.10, res.Cells[1][2], 1e-6)
}

func TestHeatmapFailedCells(t *testing.T) {
	spec := models.HeatmapSpec{
		XVariable: models.VarAdjustedEBITDA,
		YVariable: models.VarWACC,
		XValues:   []float64{1_000_000},
		YValues:   []float64{0.10, -0.05},
	}

	res, err := Heatmap(spec, models.MetricEnterpriseValue, linearEval)
	require.NoError(t, err)

	// The bad row is recorded as NaN and counted; the grid stays dense.
	assert.Equal(t, 1, res.FailedCells)
	assert.False(t, math.IsNaN(res.Cells[0][0]))
	assert.True(t, math.IsNaN(res.Cells[1][0]))
}

func TestHeatmapFailedCellsEncodeAsNull(t *testing.T) {
	spec := models.HeatmapSpec{
		XVariable: models.VarAdjustedEBITDA,
		YVariable: models.VarWACC,
		XValues:   []float64{1_000_000},
		YValues:   []float64{0.10, -0.05},
	}

	res, err := Heatmap(spec, models.MetricEnterpriseValue, linearEval)
	require.NoError(t, err)
	require.Equal(t, 1, res.FailedCells)

	// encoding/json rejects NaN outright; a failed cell must round-trip as
	// null so one bad cell never makes the whole matrix unserializable.
	out, err := json.Marshal(res)
	require.NoError(t, err)

	var decoded struct {
		Cells [][]*float64 `json:"cells"`
	}
	require.NoError(t, json.Unmarshal(out, &decoded))
	require.Len(t, decoded.Cells, 2)
	require.NotNil(t, decoded.Cells[0][0])
	assert.InDelta(t, 10_000_000.0, *decoded.Cells[0][0], 1e-6)
	assert.Nil(t, decoded.Cells[1][0])
}

func TestHeatmapRejectsDegenerateSpecs(t *testing.T) {
	_, err := Heatmap(models.HeatmapSpec{
		XVariable: models.VarWACC,
		YVariable: models.VarWACC,
		XValues:   []float64{0.1},
		YValues:   []float64{0.1},
	}, models.MetricEnterpriseValue, linearEval)
	require.Error(t, err)

	_, err = Heatmap(models.HeatmapSpec{
		XVariable: models.VarWACC,
		YVariable: models.VarAdjustedEBITDA,
	}, models.MetricEnterpriseValue, linearEval)
	require.Error(t, err)
}
