package app

import (
	"context"
	"testing"

	"creditwatch/domain/dataset"
	"creditwatch/internal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFairnessService() *FairnessService {
	return NewFairnessService(internal.NewLogger(internal.LogLevelError))
}

// fairnessBatch builds records with a gender column and matching label and
// prediction slices. approveM/approveF control how many of each group's
// records are predicted approved.
func fairnessBatch(t *testing.T, perGroup, approveM, approveF int) (*dataset.Batch, []int) {
	t.Helper()
	var records []dataset.Record
	var predictions []int

	for i := 0; i < perGroup; i++ {
		records = append(records, dataset.Record{"gender": "male", "loan_status": 1})
		if i < approveM {
			predictions = append(predictions, 1)
		} else {
			predictions = append(predictions, 0)
		}
	}
	for i := 0; i < perGroup; i++ {
		records = append(records, dataset.Record{"gender": "female", "loan_status": 1})
		if i < approveF {
			predictions = append(predictions, 1)
		} else {
			predictions = append(predictions, 0)
		}
	}
	return dataset.NewBatch(records), predictions
}

func TestFairnessBalancedGroups(t *testing.T) {
	svc := newTestFairnessService()
	batch, predictions := fairnessBatch(t, 100, 60, 60)

	analysis, err := svc.Analyze(context.Background(), batch, predictions, []string{"gender"})
	require.NoError(t, err)

	dp := analysis.DemographicParity["gender"]
	assert.InDelta(t, 0.6, dp.ApprovalRates["male"], 0.001)
	assert.InDelta(t, 0.6, dp.ApprovalRates["female"], 0.001)
	assert.InDelta(t, 0.0, dp.ParityDifference, 0.001)
	assert.True(t, dp.IsFair)

	di := analysis.DisparateImpact["gender"]
	assert.True(t, di.Passes80Rule)
	assert.InDelta(t, 1.0, di.Ratio, 0.001)

	assert.InDelta(t, 100.0, analysis.OverallScore, 0.5)
	require.Len(t, analysis.Recommendations, 1)
	assert.Contains(t, analysis.Recommendations[0], "passes all fairness checks")
}

func TestFairnessDisparateImpactRatio(t *testing.T) {
	svc := newTestFairnessService()
	// 50% vs 30% approval: ratio 0.6, fails the four-fifths rule
	batch, predictions := fairnessBatch(t, 100, 50, 30)

	analysis, err := svc.Analyze(context.Background(), batch, predictions, []string{"gender"})
	require.NoError(t, err)

	di := analysis.DisparateImpact["gender"]
	assert.InDelta(t, 0.6, di.Ratio, 0.001)
	assert.False(t, di.Passes80Rule)
	assert.InDelta(t, 60.0, di.FairnessScore, 0.1)

	dp := analysis.DemographicParity["gender"]
	assert.InDelta(t, 0.2, dp.ParityDifference, 0.001)
	assert.False(t, dp.IsFair)

	assert.NotEmpty(t, analysis.Recommendations)
	joined := ""
	for _, rec := range analysis.Recommendations {
		joined += rec + "\n"
	}
	assert.Contains(t, joined, "Disparate impact detected for gender")
	assert.Contains(t, joined, "Demographic parity violation for gender")
	assert.Contains(t, joined, "reweighting samples")
}

func TestFairnessEqualOpportunityUsesLabels(t *testing.T) {
	svc := newTestFairnessService()

	var records []dataset.Record
	var predictions []int
	// Both groups have 10 truly-approved applicants; the model finds all of
	// one group's and only half of the other's.
	for i := 0; i < 10; i++ {
		records = append(records, dataset.Record{"gender": "male", "loan_status": 1})
		predictions = append(predictions, 1)
	}
	for i := 0; i < 10; i++ {
		records = append(records, dataset.Record{"gender": "female", "loan_status": 1})
		if i < 5 {
			predictions = append(predictions, 1)
		} else {
			predictions = append(predictions, 0)
		}
	}

	analysis, err := svc.Analyze(context.Background(), dataset.NewBatch(records), predictions, []string{"gender"})
	require.NoError(t, err)

	eo := analysis.EqualOpportunity["gender"]
	assert.InDelta(t, 1.0, eo.TPRByGroup["male"], 0.001)
	assert.InDelta(t, 0.5, eo.TPRByGroup["female"], 0.001)
	assert.InDelta(t, 0.5, eo.TPRDifference, 0.001)
	assert.False(t, eo.IsFair)
}

func TestFairnessGroupWithoutPositives(t *testing.T) {
	svc := newTestFairnessService()

	records := []dataset.Record{
		{"gender": "male", "loan_status": 1},
		{"gender": "male", "loan_status": 1},
		{"gender": "female", "loan_status": 0},
		{"gender": "female", "loan_status": 0},
	}
	predictions := []int{1, 1, 0, 0}

	analysis, err := svc.Analyze(context.Background(), dataset.NewBatch(records), predictions, []string{"gender"})
	require.NoError(t, err)

	eo := analysis.EqualOpportunity["gender"]
	assert.Equal(t, 0.0, eo.TPRByGroup["female"])
	assert.Equal(t, 1.0, eo.TPRByGroup["male"])
}

func TestFairnessSingleGroupDisparateImpact(t *testing.T) {
	svc := newTestFairnessService()

	records := []dataset.Record{
		{"gender": "male"},
		{"gender": "male"},
	}
	predictions := []int{1, 0}

	analysis, err := svc.Analyze(context.Background(), dataset.NewBatch(records), predictions, []string{"gender"})
	require.NoError(t, err)

	di := analysis.DisparateImpact["gender"]
	assert.Equal(t, 1.0, di.Ratio)
	assert.True(t, di.Passes80Rule)
	assert.Equal(t, 100.0, di.FairnessScore)
}

func TestFairnessStatisticalParityPairwise(t *testing.T) {
	svc := newTestFairnessService()

	records := []dataset.Record{
		{"age_group": "18-25"}, {"age_group": "18-25"},
		{"age_group": "26-40"}, {"age_group": "26-40"},
		{"age_group": "41-65"}, {"age_group": "41-65"},
	}
	predictions := []int{1, 1, 1, 0, 0, 0}

	analysis, err := svc.Analyze(context.Background(), dataset.NewBatch(records), predictions, []string{"age_group"})
	require.NoError(t, err)

	sp := analysis.StatisticalParity["age_group"]
	assert.Len(t, sp.PairwiseDifferences, 3)
	assert.InDelta(t, 1.0, sp.MaxDifference, 0.001)
	assert.InDelta(t, 0.5, sp.PairwiseDifferences["18-25_vs_26-40"], 0.001)
	assert.False(t, sp.IsFair)
}

func TestFairnessMissingSensitiveFeatureSkipped(t *testing.T) {
	svc := newTestFairnessService()

	records := []dataset.Record{{"gender": "male"}, {"gender": "female"}}
	predictions := []int{1, 1}

	analysis, err := svc.Analyze(context.Background(), dataset.NewBatch(records), predictions, []string{"gender", "ethnicity"})
	require.NoError(t, err)

	_, present := analysis.DemographicParity["ethnicity"]
	assert.False(t, present)
	_, present = analysis.DemographicParity["gender"]
	assert.True(t, present)
}

func TestFairnessInputValidation(t *testing.T) {
	svc := newTestFairnessService()

	_, err := svc.Analyze(context.Background(), nil, nil, nil)
	assert.Error(t, err)

	batch := dataset.NewBatch([]dataset.Record{{"gender": "male"}})
	_, err = svc.Analyze(context.Background(), batch, []int{1, 0}, nil)
	assert.Error(t, err)
}
