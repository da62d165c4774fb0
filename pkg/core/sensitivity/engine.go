// Package sensitivity measures how the valuation output moves when one or
// two inputs are perturbed. It knows nothing about the pipeline internals:
// callers hand it a pure evaluator closed over the base case, and the engine
// enumerates override combinations.
package sensitivity

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"smb_valuation/pkg/models"
)

// Evaluator recomputes the scalar output of interest for one set of input
// overrides. It must be pure: same overrides, same result.
type Evaluator func(models.Overrides) (float64, error)

// DefaultPerturbationFactors are applied when the run config declares none.
var DefaultPerturbationFactors = []float64{0.8, 1.2}

// FactorResult is the output at one perturbation factor.
type FactorResult struct {
	Factor float64 `json:"factor"`
	Value  float64 `json:"value"`
	Result float64 `json:"result"`
}

// TornadoEntry is one ranked variable in the tornado.
type TornadoEntry struct {
	Variable  models.Variable `json:"variable"`
	BaseValue float64         `json:"base_value"`
	Results   []FactorResult  `json:"results"`
	// Impact = |result at highest factor - result at lowest factor|.
	Impact        float64 `json:"impact"`
	Failed        bool    `json:"failed"`
	FailureReason string  `json:"failure_reason,omitempty"`
}

// TornadoResult ranks variables by descending output impact.
type TornadoResult struct {
	Output     models.Metric  `json:"output"`
	BaseResult float64        `json:"base_result"`
	Entries    []TornadoEntry `json:"entries"`
}

// Tornado perturbs each declared variable one at a time, holding every other
// variable at base. Joint perturbation is deliberately not supported here;
// one-factor-at-a-time is the defining contract of the tornado. Failing
// variables are kept in the result (marked, zero impact) so a single bad
// input never hides the rest of the ranking.
func Tornado(vars []models.SensitivityVariable, factors []float64, output models.Metric, eval Evaluator) (TornadoResult, error) {
	if len(factors) == 0 {
		factors = DefaultPerturbationFactors
	}

	base, err := eval(nil)
	if err != nil {
		return TornadoResult{}, fmt.Errorf("base evaluation: %w", err)
	}
	if !isFinite(base) {
		return TornadoResult{}, fmt.Errorf("base evaluation produced a non-finite result")
	}

	res := TornadoResult{Output: output, BaseResult: base}

	for _, v := range vars {
		entry := TornadoEntry{Variable: v.Variable, BaseValue: v.BaseValue}

		lo, hi := math.Inf(1), math.Inf(-1)
		var loResult, hiResult float64
		for _, factor := range factors {
			value := v.BaseValue * factor
			out, evalErr := eval(models.Overrides{v.Variable: value})
			if evalErr != nil || !isFinite(out) {
				entry.Failed = true
				if evalErr != nil {
					entry.FailureReason = evalErr.Error()
				} else {
					entry.FailureReason = "non-finite result"
				}
				break
			}
			entry.Results = append(entry.Results, FactorResult{Factor: factor, Value: value, Result: out})
			if factor < lo {
				lo, loResult = factor, out
			}
			if factor > hi {
				hi, hiResult = factor, out
			}
		}

		if !entry.Failed {
			entry.Impact = math.Abs(hiResult - loResult)
		}
		res.Entries = append(res.Entries, entry)
	}

	sort.SliceStable(res.Entries, func(i, j int) bool {
		return res.Entries[i].Impact > res.Entries[j].Impact
	})
	return res, nil
}

// HeatmapResult is the dense two-factor grid.
type HeatmapResult struct {
	Output    models.Metric   `json:"output"`
	XVariable models.Variable `json:"x_variable"`
	YVariable models.Variable `json:"y_variable"`
	XValues   []float64       `json:"x_values"`
	YValues   []float64       `json:"y_values"`
	// Cells is row-major: Cells[y][x]. Failed cells hold NaN.
	Cells       [][]float64 `json:"cells"`
	FailedCells int         `json:"failed_cells"`
}

// Heatmap recomputes the output at every cell of the Cartesian grid of the
// two variables' declared ranges. The matrix is dense: every cell is
// evaluated, and a per-cell failure is recorded as NaN and counted instead
// of aborting the grid.
func Heatmap(spec models.HeatmapSpec, output models.Metric, eval Evaluator) (HeatmapResult, error) {
	if len(spec.XValues) == 0 || len(spec.YValues) == 0 {
		return HeatmapResult{}, fmt.Errorf("heatmap requires non-empty ranges for both variables")
	}
	if spec.XVariable == spec.YVariable {
		return HeatmapResult{}, fmt.Errorf("heatmap variables must differ, got %q twice", spec.XVariable)
	}

	res := HeatmapResult{
		Output:    output,
		XVariable: spec.XVariable,
		YVariable: spec.YVariable,
		XValues:   spec.XValues,
		YValues:   spec.YValues,
		Cells:     make([][]float64, len(spec.YValues)),
	}

	for yi, y := range spec.YValues {
		row := make([]float64, len(spec.XValues))
		for xi, x := range spec.XValues {
			out, err := eval(models.Overrides{spec.XVariable: x, spec.YVariable: y})
			if err != nil || !isFinite(out) {
				row[xi] = math.NaN()
				res.FailedCells++
				continue
			}
			row[xi] = out
		}
		res.Cells[yi] = row
	}
	return res, nil
}

// MarshalJSON encodes failed cells as null. The in-memory matrix keeps NaN
// (callers can math.IsNaN on it), but encoding/json rejects NaN, and one
// failed cell must not make the whole report unserializable.
func (r HeatmapResult) MarshalJSON() ([]byte, error) {
	type alias HeatmapResult
	cells := make([][]*float64, len(r.Cells))
	for yi, row := range r.Cells {
		out := make([]*float64, len(row))
		for xi, v := range row {
			if isFinite(v) {
				value := v
				out[xi] = &value
			}
		}
		cells[yi] = out
	}
	return json.Marshal(struct {
		alias
		Cells [][]*float64 `json:"cells"`
	}{alias(r), cells})
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
