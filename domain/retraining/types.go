package retraining

import (
	"time"

	"creditwatch/domain/core"
)

// Policy constants. The cooldown short-circuits every other trigger check.
const (
	MinRetrainingInterval = 24 * time.Hour
	WeeklyInterval        = 7 * 24 * time.Hour
	DriftScoreTrigger     = 0.7
	AccuracyFloor         = 0.80
)

// Priority orders retraining urgency: critical > high > normal
type Priority string

const (
	PriorityNormal   Priority = "normal"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

func (p Priority) rank() int {
	switch p {
	case PriorityCritical:
		return 2
	case PriorityHigh:
		return 1
	default:
		return 0
	}
}

// Max returns the higher-urgency of two priorities
func Max(a, b Priority) Priority {
	if b.rank() > a.rank() {
		return b
	}
	return a
}

// Decision is the outcome of one scheduler evaluation, computed fresh per
// tick from the latest persisted signals
type Decision struct {
	ShouldRetrain   bool     `json:"should_retrain"`
	Reasons         []string `json:"reasons"`
	Priority        Priority `json:"priority"`
	DriftScore      *float64 `json:"drift_score,omitempty"`
	CurrentAccuracy *float64 `json:"current_accuracy,omitempty"`
}

// TriggerEvent is appended to the audit log and handed to the external job
// system when a retraining run is launched
type TriggerEvent struct {
	JobID     core.JobID     `json:"job_id"`
	Reason    string         `json:"reason"`
	Priority  Priority       `json:"priority"`
	Status    string         `json:"status"`
	CreatedAt core.Timestamp `json:"timestamp"`
}
