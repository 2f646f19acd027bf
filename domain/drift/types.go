package drift

import (
	"creditwatch/domain/core"
)

// DefaultPValueThreshold is the significance level below which a
// distribution comparison counts as drifted
const DefaultPValueThreshold = 0.05

// Alert thresholds over the overall drift score. Kept as named constants
// rather than configuration: deployments tune the p-value threshold, not
// the alerting bands.
const (
	WarningScoreThreshold  = 0.5
	CriticalScoreThreshold = 0.7
)

// DegradationThreshold is the signed accuracy change below which model
// performance counts as degraded (a five percentage point regression)
const DegradationThreshold = -0.05

// FeatureResult is the outcome of comparing one feature's reference and
// current distributions. Immutable once produced.
type FeatureResult struct {
	Feature    string  `json:"feature_name"`
	DriftScore float64 `json:"drift_score"`
	IsDrifted  bool    `json:"is_drifted"`
}

// NeutralResult is the fail-open outcome for empty or degenerate samples
func NeutralResult(feature string) FeatureResult {
	return FeatureResult{Feature: feature, DriftScore: 0.0, IsDrifted: false}
}

// PredictionDrift compares the model's output distribution between periods
type PredictionDrift struct {
	ReferenceApprovalRate float64 `json:"reference_approval_rate"`
	CurrentApprovalRate   float64 `json:"current_approval_rate"`
	RateChange            float64 `json:"rate_change"`
	RateChangePercent     float64 `json:"rate_change_percent"`
	PValue                float64 `json:"p_value"`
	SignificantDrift      bool    `json:"significant_drift"`
}

// PerformanceDrift compares model quality metrics between periods.
// Present only when ground-truth labels exist for both.
type PerformanceDrift struct {
	ReferenceAccuracy   float64 `json:"reference_accuracy"`
	CurrentAccuracy     float64 `json:"current_accuracy"`
	AccuracyChange      float64 `json:"accuracy_change"`
	PrecisionChange     float64 `json:"precision_change"`
	RecallChange        float64 `json:"recall_change"`
	F1Change            float64 `json:"f1_change"`
	PerformanceDegraded bool    `json:"performance_degraded"`
}

// AlertLevel classifies a report for the alerting pipeline
type AlertLevel string

const (
	AlertNone     AlertLevel = "none"
	AlertWarning  AlertLevel = "warning"
	AlertCritical AlertLevel = "critical"
)

// Report is the aggregate outcome of one detection run. Created fresh per
// run, persisted append-only, never mutated.
type Report struct {
	ID               core.ReportID             `json:"id"`
	DriftDetected    bool                      `json:"drift_detected"`
	DriftScore       float64                   `json:"drift_score"`
	DriftedFeatures  []string                  `json:"drifted_features"`
	FeatureScores    map[string]FeatureResult  `json:"feature_drift_scores"`
	PredictionDrift  *PredictionDrift          `json:"prediction_drift,omitempty"`
	PerformanceDrift *PerformanceDrift         `json:"model_performance_change,omitempty"`
	AlertLevel       AlertLevel                `json:"alert_level"`
	Recommendations  []string                  `json:"recommendations"`
	CreatedAt        core.Timestamp            `json:"created_at"`
}

// Alert is the event handed to the alerting collaborator when a report
// crosses the warning threshold
type Alert struct {
	Type     string                 `json:"type"` // "drift" or "system"
	Severity string                 `json:"severity"`
	Title    string                 `json:"title"`
	Message  string                 `json:"message"`
	Source   string                 `json:"source"`
	Data     map[string]interface{} `json:"data,omitempty"`
}
