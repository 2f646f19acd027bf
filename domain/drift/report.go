package drift

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"creditwatch/domain/core"
)

// BuildReport assembles per-feature, prediction, and performance results
// into one report, derives the alert level, and generates recommendations.
// Pure function of its inputs: recomputing with the same results yields the
// same verdicts.
func BuildReport(features []FeatureResult, prediction *PredictionDrift, performance *PerformanceDrift) *Report {
	report := &Report{
		ID:               core.ReportID(core.NewID()),
		FeatureScores:    make(map[string]FeatureResult, len(features)),
		DriftedFeatures:  []string{},
		PredictionDrift:  prediction,
		PerformanceDrift: performance,
		CreatedAt:        core.Now(),
	}

	total := 0.0
	for _, fr := range features {
		report.FeatureScores[fr.Feature] = fr
		total += fr.DriftScore
		if fr.IsDrifted {
			report.DriftedFeatures = append(report.DriftedFeatures, fr.Feature)
		}
	}
	sort.Strings(report.DriftedFeatures)

	if len(features) > 0 {
		report.DriftScore = total / float64(len(features))
	}

	// Union rule: one drifted feature is enough, regardless of the mean score
	report.DriftDetected = len(report.DriftedFeatures) > 0

	report.AlertLevel = deriveAlertLevel(report)
	report.Recommendations = generateRecommendations(report)

	return report
}

// deriveAlertLevel applies the severity rules in priority order,
// first match wins
func deriveAlertLevel(r *Report) AlertLevel {
	if r.PerformanceDrift != nil && r.PerformanceDrift.PerformanceDegraded {
		return AlertCritical
	}
	if r.DriftScore > CriticalScoreThreshold {
		return AlertCritical
	}
	if r.DriftScore > WarningScoreThreshold || r.DriftDetected {
		return AlertWarning
	}
	return AlertNone
}

// generateRecommendations emits ordered, deterministic guidance.
// Each condition appends independently; several may fire on one report.
func generateRecommendations(r *Report) []string {
	if !r.DriftDetected {
		return []string{"No significant drift detected. Continue monitoring."}
	}

	var recs []string

	if len(r.DriftedFeatures) > 0 {
		named := r.DriftedFeatures
		if len(named) > 3 {
			named = named[:3]
		}
		recs = append(recs, fmt.Sprintf(
			"Data drift detected in %d features: %s",
			len(r.DriftedFeatures), strings.Join(named, ", ")))
		recs = append(recs,
			"Consider retraining the model with recent data or investigating data quality issues")
	}

	if r.PredictionDrift != nil && r.PredictionDrift.SignificantDrift {
		recs = append(recs, fmt.Sprintf(
			"Prediction distribution shifted by %.1f%%. Model behavior may have changed.",
			r.PredictionDrift.RateChangePercent))
	}

	if r.PerformanceDrift != nil && r.PerformanceDrift.PerformanceDegraded {
		recs = append(recs, fmt.Sprintf(
			"Model accuracy dropped by %.1f percentage points. Immediate retraining recommended.",
			math.Abs(r.PerformanceDrift.AccuracyChange*100)))
	}

	if r.DriftScore > CriticalScoreThreshold {
		recs = append(recs,
			"High overall drift score. Data distribution has significantly changed. Model retraining is critical.")
	}

	return recs
}
