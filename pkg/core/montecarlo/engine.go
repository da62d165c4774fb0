// Package montecarlo runs the full valuation pipeline over randomly drawn
// input vectors and aggregates the output distribution. Draws are generated
// from a single seeded source before any evaluation starts, so results are
// bit-for-bit reproducible regardless of worker count.
package montecarlo

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"

	xrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"smb_valuation/pkg/core/calc"
	"smb_valuation/pkg/core/sensitivity"
	"smb_valuation/pkg/core/valuation"
	"smb_valuation/pkg/models"
)

const defaultBatchSize = 512

// PercentileValue is one requested percentile of the output distribution.
type PercentileValue struct {
	Percentile float64 `json:"percentile"`
	Value      float64 `json:"value"`
}

// ThresholdProbability is P(output > threshold) over the finite draws.
type ThresholdProbability struct {
	Threshold   float64 `json:"threshold"`
	Probability float64 `json:"probability"`
}

// Result aggregates the output distribution across all draws.
type Result struct {
	Output     models.Metric `json:"output"`
	Iterations int           `json:"iterations"`
	// Excluded counts draws whose evaluation failed or produced a non-finite
	// value. They are left out of the aggregates and reported here, never
	// coerced to zero.
	Excluded int `json:"excluded"`

	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`

	Percentiles      []PercentileValue      `json:"percentiles"`
	ProbabilityAbove []ThresholdProbability `json:"probability_above,omitempty"`
}

// Options tunes execution without affecting the numbers.
type Options struct {
	// Workers defaults to GOMAXPROCS.
	Workers int
	// BatchSize is the number of iterations between cancellation checks.
	BatchSize int
	// Progress, when set, is called after each completed batch.
	Progress func(done, total int)
}

// Run executes the simulation. For each iteration one value is drawn per
// declared variable, independently (no cross-variable correlation), the
// evaluator recomputes the pipeline output, and the scalar result is
// recorded. Evaluation is fanned out over a worker pool in batches with a
// cooperative cancellation check between batches.
func Run(ctx context.Context, spec models.MonteCarloSpec, eval sensitivity.Evaluator, opts Options) (Result, error) {
	if spec.Iterations <= 0 {
		return Result{}, fmt.Errorf("iterations must be positive, got %d", spec.Iterations)
	}
	if len(spec.Variables) == 0 {
		return Result{}, fmt.Errorf("at least one variable distribution is required")
	}

	samplers, err := buildSamplers(spec)
	if err != nil {
		return Result{}, err
	}

	// All draws come from one seeded source, generated up front in iteration
	// order. Parallelism below only spreads the evaluations.
	draws := make([]models.Overrides, spec.Iterations)
	for i := range draws {
		ov := make(models.Overrides, len(samplers))
		for _, s := range samplers {
			ov[s.variable] = s.dist.Rand()
		}
		draws[i] = ov
	}

	outputs := make([]float64, spec.Iterations)

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	for start := 0; start < spec.Iterations; start += batchSize {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		default:
		}

		end := start + batchSize
		if end > spec.Iterations {
			end = spec.Iterations
		}

		var wg sync.WaitGroup
		stride := (end - start + workers - 1) / workers
		for w := 0; w < workers; w++ {
			lo := start + w*stride
			hi := lo + stride
			if hi > end {
				hi = end
			}
			if lo >= hi {
				break
			}
			wg.Add(1)
			go func(lo, hi int) {
				defer wg.Done()
				for i := lo; i < hi; i++ {
					out, evalErr := eval(draws[i])
					if evalErr != nil {
						out = math.NaN()
					}
					outputs[i] = out
				}
			}(lo, hi)
		}
		wg.Wait()

		if opts.Progress != nil {
			opts.Progress(end, spec.Iterations)
		}
	}

	// Collect finite draws in iteration order so aggregates are independent
	// of scheduling.
	finite := make([]float64, 0, spec.Iterations)
	for _, v := range outputs {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}

	res := Result{
		Output:     spec.Output,
		Iterations: spec.Iterations,
		Excluded:   spec.Iterations - len(finite),
	}
	if len(finite) == 0 {
		return res, fmt.Errorf("%w: no draw produced a finite result", valuation.ErrConvergenceFailure)
	}

	res.Mean = calc.Mean(finite)
	res.Median = calc.Median(finite)
	res.StdDev = calc.StdDev(finite)

	for _, p := range spec.Percentiles {
		res.Percentiles = append(res.Percentiles, PercentileValue{
			Percentile: p,
			Value:      calc.Quantile(p, finite),
		})
	}
	for _, threshold := range spec.Thresholds {
		res.ProbabilityAbove = append(res.ProbabilityAbove, ThresholdProbability{
			Threshold:   threshold,
			Probability: calc.ProbabilityAbove(finite, threshold),
		})
	}

	return res, nil
}

type sampler struct {
	variable models.Variable
	dist     distuv.Rander
}

// buildSamplers maps the declared distributions onto gonum samplers sharing
// one seeded source. Uniform{mu, sigma} is interpreted as the symmetric
// range [mu-sigma, mu+sigma].
func buildSamplers(spec models.MonteCarloSpec) ([]sampler, error) {
	src := xrand.NewSource(spec.Seed)

	samplers := make([]sampler, 0, len(spec.Variables))
	for _, v := range spec.Variables {
		if !v.Variable.Valid() {
			return nil, fmt.Errorf("unknown variable %q", v.Variable)
		}
		if v.Std < 0 {
			return nil, fmt.Errorf("variable %q: negative std %v", v.Variable, v.Std)
		}

		var dist distuv.Rander
		switch v.Dist {
		case models.DistNormal:
			dist = distuv.Normal{Mu: v.Mean, Sigma: v.Std, Src: src}
		case models.DistUniform:
			dist = distuv.Uniform{Min: v.Mean - v.Std, Max: v.Mean + v.Std, Src: src}
		default:
			return nil, fmt.Errorf("variable %q: unsupported distribution %q", v.Variable, v.Dist)
		}
		samplers = append(samplers, sampler{variable: v.Variable, dist: dist})
	}
	return samplers, nil
}
