package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatsBasics(t *testing.T) {
	data := []float64{4, 1, 3, 2, 5}

	assert.InDelta(t, 3.0, Mean(data), 1e-12)
	assert.InDelta(t, 3.0, Median(data), 1e-12)
	// Sample stddev of 1..5 = sqrt(2.5)
	assert.InDelta(t, 1.5811, StdDev(data), 1e-4)

	// Quantile must not mutate the caller's slice.
	assert.Equal(t, []float64{4, 1, 3, 2, 5}, data)
}

func TestStatsEmpty(t *testing.T) {
	assert.Zero(t, Mean(nil))
	assert.Zero(t, StdDev(nil))
	assert.Zero(t, Quantile(0.5, nil))
	assert.Zero(t, ProbabilityAbove(nil, 0))
}

func TestProbabilityAbove(t *testing.T) {
	data := []float64{0.10, 0.12, 0.16, 0.20, 0.25}
	// Strictly greater than 0.15: three of five.
	assert.InDelta(t, 0.6, ProbabilityAbove(data, 0.15), 1e-12)
	assert.InDelta(t, 0.0, ProbabilityAbove(data, 0.25), 1e-12)
}
