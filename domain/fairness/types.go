package fairness

// ParityTolerance is the maximum rate difference across groups still
// considered fair
const ParityTolerance = 0.1

// DisparateImpactThreshold is the four-fifths rule: the least favored
// group's selection rate must be at least 80% of the most favored group's
const DisparateImpactThreshold = 0.8

// LowScoreThreshold marks an overall fairness score that warrants bias
// mitigation
const LowScoreThreshold = 70.0

// GroupRates maps a sensitive-group label to a rate in [0,1]
type GroupRates map[string]float64

// DemographicParity measures whether approval rates are equal across the
// groups of one sensitive feature
type DemographicParity struct {
	ApprovalRates    GroupRates `json:"approval_rates"`
	MaxRate          float64    `json:"max_rate"`
	MinRate          float64    `json:"min_rate"`
	ParityDifference float64    `json:"parity_difference"`
	FairnessScore    float64    `json:"fairness_score"`
	IsFair           bool       `json:"is_fair"`
}

// EqualOpportunity measures whether true positive rates are equal across
// groups. Groups with no positive samples score a TPR of zero.
type EqualOpportunity struct {
	TPRByGroup    GroupRates `json:"tpr_by_group"`
	MaxTPR        float64    `json:"max_tpr"`
	MinTPR        float64    `json:"min_tpr"`
	TPRDifference float64    `json:"tpr_difference"`
	FairnessScore float64    `json:"fairness_score"`
	IsFair        bool       `json:"is_fair"`
}

// DisparateImpact applies the four-fifths rule to group selection rates
type DisparateImpact struct {
	ApprovalRates GroupRates `json:"approval_rates"`
	Ratio         float64    `json:"disparate_impact_ratio"`
	Passes80Rule  bool       `json:"passes_80_rule"`
	FairnessScore float64    `json:"fairness_score"`
	Threshold     float64    `json:"threshold"`
}

// StatisticalParity reports all pairwise approval-rate differences
type StatisticalParity struct {
	ApprovalRates       GroupRates         `json:"approval_rates"`
	PairwiseDifferences map[string]float64 `json:"pairwise_differences"`
	MaxDifference       float64            `json:"max_difference"`
	IsFair              bool               `json:"is_fair"`
}

// Analysis is the complete fairness assessment across all analyzed
// sensitive features. Fairness scores are on a 0-100 scale.
type Analysis struct {
	OverallScore      float64                      `json:"overall_score"`
	DemographicParity map[string]DemographicParity `json:"demographic_parity"`
	EqualOpportunity  map[string]EqualOpportunity  `json:"equal_opportunity"`
	DisparateImpact   map[string]DisparateImpact   `json:"disparate_impact"`
	StatisticalParity map[string]StatisticalParity `json:"statistical_parity"`
	Recommendations   []string                     `json:"recommendations"`
}

// DefaultSensitiveFeatures are analyzed when the caller does not name any
var DefaultSensitiveFeatures = []string{"gender", "age_group"}
