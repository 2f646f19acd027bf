package app

import (
	"context"
	"fmt"
	"sort"

	mstats "github.com/montanaflynn/stats"

	"creditwatch/domain/dataset"
	"creditwatch/domain/fairness"
	"creditwatch/internal"
	"creditwatch/internal/errors"
)

// FairnessService assesses a model's decisions for bias across sensitive
// groups: demographic parity, equal opportunity, disparate impact (the
// four-fifths rule), and statistical parity.
type FairnessService struct {
	logger *internal.Logger
}

// NewFairnessService creates a fairness analysis service
func NewFairnessService(logger *internal.Logger) *FairnessService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &FairnessService{logger: logger}
}

// groupSample holds the per-record values for one sensitive group
type groupSample struct {
	predictions []int
	actuals     []int
}

// Analyze runs the fairness assessment. predictions pairs positionally with
// the batch records. When sensitiveFeatures is nil the default set is used;
// features absent from the batch are skipped with a warning. Ground truth
// comes from the label column when present, otherwise predictions stand in
// for labels and equal opportunity degenerates to demographic parity.
func (s *FairnessService) Analyze(ctx context.Context, batch *dataset.Batch, predictions []int, sensitiveFeatures []string) (*fairness.Analysis, error) {
	if batch == nil || batch.Len() == 0 {
		return nil, errors.InvalidInput("a non-empty batch is required")
	}
	if len(predictions) != batch.Len() {
		return nil, errors.InvalidInput(fmt.Sprintf(
			"predictions length %d does not match batch size %d", len(predictions), batch.Len()))
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "fairness analysis cancelled")
	}

	if sensitiveFeatures == nil {
		sensitiveFeatures = fairness.DefaultSensitiveFeatures
	}

	actuals := s.resolveActuals(batch, predictions)

	analysis := &fairness.Analysis{
		DemographicParity: make(map[string]fairness.DemographicParity),
		EqualOpportunity:  make(map[string]fairness.EqualOpportunity),
		DisparateImpact:   make(map[string]fairness.DisparateImpact),
		StatisticalParity: make(map[string]fairness.StatisticalParity),
	}

	var analyzed []string
	var scores []float64

	for _, feature := range sensitiveFeatures {
		if !batch.HasColumn(feature) {
			s.logger.Warn("sensitive feature %s not found in data", feature)
			continue
		}
		groups := groupByFeature(batch, feature, predictions, actuals)
		if len(groups) == 0 {
			continue
		}
		analyzed = append(analyzed, feature)

		dp := demographicParity(groups)
		analysis.DemographicParity[feature] = dp
		scores = append(scores, dp.FairnessScore)

		eo := equalOpportunity(groups)
		analysis.EqualOpportunity[feature] = eo
		scores = append(scores, eo.FairnessScore)

		di := disparateImpact(groups)
		analysis.DisparateImpact[feature] = di
		scores = append(scores, di.FairnessScore)

		analysis.StatisticalParity[feature] = statisticalParity(groups)
	}

	if len(scores) > 0 {
		analysis.OverallScore, _ = mstats.Mean(scores)
	}
	analysis.Recommendations = fairnessRecommendations(analysis, analyzed)

	s.logger.Info("fairness analysis complete: overall score %.2f across %d features",
		analysis.OverallScore, len(analyzed))

	return analysis, nil
}

// resolveActuals picks ground truth from the label column; predictions are
// the fallback when no labels exist
func (s *FairnessService) resolveActuals(batch *dataset.Batch, predictions []int) []int {
	labelColumn := ""
	for _, candidate := range []string{dataset.ColumnLoanStatus, dataset.ColumnApproved} {
		if batch.HasColumn(candidate) {
			labelColumn = candidate
			break
		}
	}
	if labelColumn == "" {
		s.logger.Warn("no label column found, using predictions as ground truth")
		return predictions
	}

	actuals := make([]int, batch.Len())
	for i, rec := range batch.Records() {
		if label, ok := binaryValue(rec[labelColumn]); ok {
			actuals[i] = label
		} else {
			actuals[i] = predictions[i]
		}
	}
	return actuals
}

// groupByFeature partitions predictions and labels by the record's value of
// the sensitive feature. Records missing the feature are excluded.
func groupByFeature(batch *dataset.Batch, feature string, predictions, actuals []int) map[string]*groupSample {
	groups := make(map[string]*groupSample)
	for i, rec := range batch.Records() {
		v, ok := rec[feature]
		if !ok || v == nil {
			continue
		}
		label := dataset.Label(v)
		if label == "" {
			continue
		}
		g, ok := groups[label]
		if !ok {
			g = &groupSample{}
			groups[label] = g
		}
		g.predictions = append(g.predictions, predictions[i])
		g.actuals = append(g.actuals, actuals[i])
	}
	return groups
}

func approvalRates(groups map[string]*groupSample) fairness.GroupRates {
	rates := make(fairness.GroupRates, len(groups))
	for name, g := range groups {
		approved := 0
		for _, p := range g.predictions {
			if p == 1 {
				approved++
			}
		}
		rates[name] = float64(approved) / float64(len(g.predictions))
	}
	return rates
}

func rateBounds(rates fairness.GroupRates) (maxRate, minRate float64) {
	first := true
	for _, rate := range rates {
		if first {
			maxRate, minRate = rate, rate
			first = false
			continue
		}
		if rate > maxRate {
			maxRate = rate
		}
		if rate < minRate {
			minRate = rate
		}
	}
	return maxRate, minRate
}

func demographicParity(groups map[string]*groupSample) fairness.DemographicParity {
	rates := approvalRates(groups)
	maxRate, minRate := rateBounds(rates)
	diff := maxRate - minRate

	score := 100 - diff*100
	if score < 0 {
		score = 0
	}

	return fairness.DemographicParity{
		ApprovalRates:    rates,
		MaxRate:          maxRate,
		MinRate:          minRate,
		ParityDifference: diff,
		FairnessScore:    score,
		IsFair:           diff < fairness.ParityTolerance,
	}
}

func equalOpportunity(groups map[string]*groupSample) fairness.EqualOpportunity {
	tprs := make(fairness.GroupRates, len(groups))
	for name, g := range groups {
		positives, truePositives := 0, 0
		for i, actual := range g.actuals {
			if actual != 1 {
				continue
			}
			positives++
			if g.predictions[i] == 1 {
				truePositives++
			}
		}
		if positives == 0 {
			tprs[name] = 0.0
		} else {
			tprs[name] = float64(truePositives) / float64(positives)
		}
	}

	maxTPR, minTPR := rateBounds(tprs)
	diff := maxTPR - minTPR

	score := 100 - diff*100
	if score < 0 {
		score = 0
	}

	return fairness.EqualOpportunity{
		TPRByGroup:    tprs,
		MaxTPR:        maxTPR,
		MinTPR:        minTPR,
		TPRDifference: diff,
		FairnessScore: score,
		IsFair:        diff < fairness.ParityTolerance,
	}
}

func disparateImpact(groups map[string]*groupSample) fairness.DisparateImpact {
	rates := approvalRates(groups)

	// A single group cannot exhibit disparate impact
	if len(rates) < 2 {
		return fairness.DisparateImpact{
			ApprovalRates: rates,
			Ratio:         1.0,
			Passes80Rule:  true,
			FairnessScore: 100.0,
			Threshold:     fairness.DisparateImpactThreshold,
		}
	}

	maxRate, minRate := rateBounds(rates)
	ratio := 1.0
	if maxRate > 0 {
		ratio = minRate / maxRate
	}

	score := ratio * 100
	if score > 100 {
		score = 100
	}

	return fairness.DisparateImpact{
		ApprovalRates: rates,
		Ratio:         ratio,
		Passes80Rule:  ratio >= fairness.DisparateImpactThreshold,
		FairnessScore: score,
		Threshold:     fairness.DisparateImpactThreshold,
	}
}

func statisticalParity(groups map[string]*groupSample) fairness.StatisticalParity {
	rates := approvalRates(groups)

	names := make([]string, 0, len(rates))
	for name := range rates {
		names = append(names, name)
	}
	sort.Strings(names)

	pairwise := make(map[string]float64)
	maxDiff := 0.0
	for i, a := range names {
		for _, b := range names[i+1:] {
			diff := rates[a] - rates[b]
			if diff < 0 {
				diff = -diff
			}
			pairwise[fmt.Sprintf("%s_vs_%s", a, b)] = diff
			if diff > maxDiff {
				maxDiff = diff
			}
		}
	}

	return fairness.StatisticalParity{
		ApprovalRates:       rates,
		PairwiseDifferences: pairwise,
		MaxDifference:       maxDiff,
		IsFair:              maxDiff < fairness.ParityTolerance,
	}
}

// fairnessRecommendations walks the analyzed features in order and emits
// one line per violation, with a closing mitigation hint when any fired
func fairnessRecommendations(a *fairness.Analysis, analyzed []string) []string {
	var recs []string

	if a.OverallScore < fairness.LowScoreThreshold {
		recs = append(recs, "Overall fairness score is low. Consider bias mitigation techniques.")
	}

	for _, feature := range analyzed {
		if di, ok := a.DisparateImpact[feature]; ok && !di.Passes80Rule {
			recs = append(recs, fmt.Sprintf(
				"Disparate impact detected for %s. Ratio: %.2f (should be >= %.2f)",
				feature, di.Ratio, di.Threshold))
		}
	}
	for _, feature := range analyzed {
		if dp, ok := a.DemographicParity[feature]; ok && !dp.IsFair {
			recs = append(recs, fmt.Sprintf(
				"Demographic parity violation for %s. Approval rate difference: %.1f%%",
				feature, dp.ParityDifference*100))
		}
	}
	for _, feature := range analyzed {
		if eo, ok := a.EqualOpportunity[feature]; ok && !eo.IsFair {
			recs = append(recs, fmt.Sprintf(
				"Equal opportunity violation for %s. TPR difference: %.1f%%",
				feature, eo.TPRDifference*100))
		}
	}

	if len(recs) == 0 {
		return []string{"Model passes all fairness checks. Continue monitoring."}
	}
	recs = append(recs, "Consider reweighting samples, threshold optimization, or adversarial debiasing.")
	return recs
}
