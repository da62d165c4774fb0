package calc

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values.
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the sample standard deviation of a slice of float64 values.
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// Quantile returns the empirical p-quantile (p in [0,1]) of the data.
// The input is not modified; a sorted copy is taken internally.
func Quantile(p float64, data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// Median returns the empirical median of the data.
func Median(data []float64) float64 {
	return Quantile(0.5, data)
}

// ProbabilityAbove returns the fraction of observations strictly greater
// than the threshold.
func ProbabilityAbove(data []float64, threshold float64) float64 {
	if len(data) == 0 {
		return 0
	}
	count := 0
	for _, v := range data {
		if v > threshold {
			count++
		}
	}
	return float64(count) / float64(len(data))
}
