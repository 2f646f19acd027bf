package stats

import (
	"math"
	"sort"
)

// KolmogorovSmirnov runs the two-sample KS test and returns the test
// statistic (max CDF distance) and the asymptotic two-sided p-value.
// Distribution-free: no normality assumption on either sample.
func KolmogorovSmirnov(ref, curr []float64) (float64, float64) {
	n, m := len(ref), len(curr)
	if n == 0 || m == 0 {
		return 0, 1.0
	}

	a := make([]float64, n)
	b := make([]float64, m)
	copy(a, ref)
	copy(b, curr)
	sort.Float64s(a)
	sort.Float64s(b)

	// Walk both empirical CDFs and track the largest gap
	maxDiff := 0.0
	i, j := 0, 0
	for i < n && j < m {
		v := math.Min(a[i], b[j])
		for i < n && a[i] <= v {
			i++
		}
		for j < m && b[j] <= v {
			j++
		}
		diff := math.Abs(float64(i)/float64(n) - float64(j)/float64(m))
		if diff > maxDiff {
			maxDiff = diff
		}
	}

	return maxDiff, ksPValue(maxDiff, n, m)
}

// ksPValue approximates the two-sample KS p-value via the Kolmogorov
// distribution with Stephens' small-sample correction
func ksPValue(d float64, n, m int) float64 {
	if d <= 0 {
		return 1.0
	}

	en := math.Sqrt(float64(n) * float64(m) / float64(n+m))
	lambda := (en + 0.12 + 0.11/en) * d

	// Q(λ) = 2 Σ (-1)^(j-1) exp(-2 j² λ²); terms shrink fast
	sum := 0.0
	sign := 1.0
	for j := 1; j <= 100; j++ {
		term := sign * math.Exp(-2.0*float64(j*j)*lambda*lambda)
		sum += term
		if math.Abs(term) < 1e-10 {
			break
		}
		sign = -sign
	}

	p := 2.0 * sum
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return p
}
