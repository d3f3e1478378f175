// Package metrics holds the decentralization coefficients shared by the generator and its tests.
package metrics

import (
	"math"
	"sort"
)

// NakamotoCoefficient returns how many of the largest holders are needed for their
// cumulative share to exceed fraction of the total. Non-positive totals yield 0.
func NakamotoCoefficient(stakes []float64, fraction float64) int {
	if len(stakes) == 0 {
		return 0
	}
	sorted := make([]float64, len(stakes))
	copy(sorted, stakes)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	total := 0.0
	for _, s := range sorted {
		total += s
	}
	if total <= 0 {
		return 0
	}

	threshold := total * fraction
	sum := 0.0
	count := 0
	for _, s := range sorted {
		sum += s
		count++
		if sum > threshold {
			break
		}
	}
	return count
}

// Gini returns the Gini coefficient of values in [0, 1]. Negative values are treated as 0.
func Gini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	for i, v := range values {
		sorted[i] = math.Max(v, 0)
	}
	sort.Float64s(sorted)

	var total, weighted float64
	for i, v := range sorted {
		total += v
		weighted += float64(i+1) * v
	}
	if total == 0 {
		return 0
	}
	return (2*weighted)/(float64(n)*total) - float64(n+1)/float64(n)
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
