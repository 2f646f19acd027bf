package stats

import (
	"math"

	"creditwatch/domain/drift"
)

// Comparator computes per-feature distribution-shift scores. Both the
// numeric (KS) and categorical (chi-square) paths collapse to the same
// 1 − p-value scoring convention so scores are comparable across feature
// types. Empty or degenerate samples fail open with a neutral result.
type Comparator struct {
	threshold float64
}

// NewComparator creates a comparator with the given p-value threshold;
// values outside (0,1) fall back to the default 0.05
func NewComparator(threshold float64) *Comparator {
	if threshold <= 0 || threshold >= 1 {
		threshold = drift.DefaultPValueThreshold
	}
	return &Comparator{threshold: threshold}
}

// Threshold returns the p-value threshold in use
func (c *Comparator) Threshold() float64 {
	return c.threshold
}

// CompareNumeric compares two numeric samples with the two-sample
// Kolmogorov-Smirnov test
func (c *Comparator) CompareNumeric(feature string, ref, curr []float64) drift.FeatureResult {
	if len(ref) == 0 || len(curr) == 0 {
		return drift.NeutralResult(feature)
	}

	_, pValue := KolmogorovSmirnov(ref, curr)
	return c.score(feature, pValue)
}

// CompareCategorical compares two categorical samples with a chi-square
// test over their category-frequency contingency table
func (c *Comparator) CompareCategorical(feature string, ref, curr []string) drift.FeatureResult {
	if len(ref) == 0 || len(curr) == 0 {
		return drift.NeutralResult(feature)
	}

	table := BuildContingency(ref, curr)
	_, pValue := ChiSquareIndependence(table)
	return c.score(feature, pValue)
}

func (c *Comparator) score(feature string, pValue float64) drift.FeatureResult {
	if math.IsNaN(pValue) {
		// Undefined test outcome: substitute a neutral score
		return drift.NeutralResult(feature)
	}
	score := 1 - pValue
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return drift.FeatureResult{
		Feature:    feature,
		DriftScore: score,
		IsDrifted:  pValue < c.threshold,
	}
}
