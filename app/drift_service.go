package app

import (
	"context"
	"sort"

	"creditwatch/adapters/stats"
	"creditwatch/domain/dataset"
	"creditwatch/domain/drift"
	"creditwatch/domain/evaluation"
	"creditwatch/internal"
	"creditwatch/internal/errors"

	mstats "github.com/montanaflynn/stats"
)

// DriftService runs the full detection pass between a reference batch and a
// current batch: per-feature distribution comparison, prediction-output
// drift, and (when ground truth exists) performance drift.
type DriftService struct {
	comparator *stats.Comparator
	logger     *internal.Logger
}

// NewDriftService creates a drift detection service
func NewDriftService(comparator *stats.Comparator, logger *internal.Logger) *DriftService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DriftService{
		comparator: comparator,
		logger:     logger,
	}
}

// Detect compares the two batches and assembles a drift report.
// featureNames selects the monitored features explicitly; when nil, the
// intersection of column names present in both batches is used. Label and
// model-output columns are never compared as input features.
func (s *DriftService) Detect(ctx context.Context, reference, current *dataset.Batch, featureNames []string) (*drift.Report, error) {
	if reference == nil || current == nil {
		return nil, errors.InvalidInput("reference and current batches are required")
	}

	features := s.resolveFeatures(reference, current, featureNames)

	results := make([]drift.FeatureResult, 0, len(features))
	for _, feature := range features {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "drift detection cancelled")
		}
		results = append(results, s.compareFeature(reference, current, feature))
	}

	var prediction *drift.PredictionDrift
	if reference.HasColumn(dataset.ColumnPrediction) && current.HasColumn(dataset.ColumnPrediction) {
		prediction = s.analyzePredictionDrift(
			reference.NumericColumn(dataset.ColumnPrediction),
			current.NumericColumn(dataset.ColumnPrediction),
		)
	}

	performance := s.analyzePerformanceDrift(reference, current)

	report := drift.BuildReport(results, prediction, performance)
	s.logger.Info("drift detection complete: detected=%v score=%.3f features=%d",
		report.DriftDetected, report.DriftScore, len(results))

	return report, nil
}

// resolveFeatures returns the monitored feature set in deterministic order
func (s *DriftService) resolveFeatures(reference, current *dataset.Batch, featureNames []string) []string {
	candidates := featureNames
	if candidates == nil {
		candidates = reference.Columns()
	}

	var features []string
	for _, name := range candidates {
		if dataset.IsReservedColumn(name) {
			continue
		}
		if !reference.HasColumn(name) || !current.HasColumn(name) {
			continue
		}
		features = append(features, name)
	}
	sort.Strings(features)
	return features
}

// compareFeature dispatches on the inferred value type. A feature is only
// tested numerically when both batches observe it as numeric; anything else
// is compared on category frequencies.
func (s *DriftService) compareFeature(reference, current *dataset.Batch, feature string) drift.FeatureResult {
	refType := reference.TypeOf(feature)
	currType := current.TypeOf(feature)

	if refType == dataset.TypeUnknown || currType == dataset.TypeUnknown {
		s.logger.Warn("feature %s has no observed values in one period, skipping comparison", feature)
		return drift.NeutralResult(feature)
	}

	if refType == dataset.TypeNumeric && currType == dataset.TypeNumeric {
		return s.comparator.CompareNumeric(feature,
			reference.NumericColumn(feature),
			current.NumericColumn(feature))
	}

	return s.comparator.CompareCategorical(feature,
		reference.CategoricalColumn(feature),
		current.CategoricalColumn(feature))
}

// analyzePredictionDrift compares the model's output distribution between
// the two periods
func (s *DriftService) analyzePredictionDrift(refPredictions, currPredictions []float64) *drift.PredictionDrift {
	if len(refPredictions) == 0 || len(currPredictions) == 0 {
		s.logger.Warn("prediction column empty in one period, skipping prediction drift")
		return nil
	}

	refRate, _ := mstats.Mean(refPredictions)
	currRate, _ := mstats.Mean(currPredictions)

	rateChange := currRate - refRate
	rateChangePct := 0.0
	if refRate > 0 {
		rateChangePct = rateChange / refRate * 100
	}

	_, pValue := stats.KolmogorovSmirnov(refPredictions, currPredictions)

	return &drift.PredictionDrift{
		ReferenceApprovalRate: refRate,
		CurrentApprovalRate:   currRate,
		RateChange:            rateChange,
		RateChangePercent:     rateChangePct,
		PValue:                pValue,
		SignificantDrift:      pValue < s.comparator.Threshold(),
	}
}

// analyzePerformanceDrift computes full classification metrics for both
// periods when ground-truth labels exist for both; otherwise the analysis
// is skipped and the report carries no performance section
func (s *DriftService) analyzePerformanceDrift(reference, current *dataset.Batch) *drift.PerformanceDrift {
	labelColumn := ""
	for _, candidate := range []string{dataset.ColumnLoanStatus, dataset.ColumnApproved} {
		if reference.HasColumn(candidate) && current.HasColumn(candidate) {
			labelColumn = candidate
			break
		}
	}
	if labelColumn == "" {
		return nil
	}
	if !reference.HasColumn(dataset.ColumnPrediction) || !current.HasColumn(dataset.ColumnPrediction) {
		return nil
	}

	refActual, refPredicted := alignedBinaryPairs(reference, labelColumn)
	currActual, currPredicted := alignedBinaryPairs(current, labelColumn)
	if len(refActual) == 0 || len(currActual) == 0 {
		s.logger.Warn("no labeled predictions in one period, skipping performance drift")
		return nil
	}

	refMetrics := evaluation.Compute(refActual, refPredicted)
	currMetrics := evaluation.Compute(currActual, currPredicted)

	accuracyChange := currMetrics.Accuracy - refMetrics.Accuracy

	return &drift.PerformanceDrift{
		ReferenceAccuracy:   refMetrics.Accuracy,
		CurrentAccuracy:     currMetrics.Accuracy,
		AccuracyChange:      accuracyChange,
		PrecisionChange:     currMetrics.Precision - refMetrics.Precision,
		RecallChange:        currMetrics.Recall - refMetrics.Recall,
		F1Change:            currMetrics.F1 - refMetrics.F1,
		PerformanceDegraded: accuracyChange < drift.DegradationThreshold,
	}
}

// alignedBinaryPairs extracts (label, prediction) pairs from records
// carrying both values, keeping the pairing intact when other records have
// missing entries
func alignedBinaryPairs(batch *dataset.Batch, labelColumn string) (actual, predicted []int) {
	for _, rec := range batch.Records() {
		label, labelOK := binaryValue(rec[labelColumn])
		pred, predOK := binaryValue(rec[dataset.ColumnPrediction])
		if labelOK && predOK {
			actual = append(actual, label)
			predicted = append(predicted, pred)
		}
	}
	return actual, predicted
}

func binaryValue(v interface{}) (int, bool) {
	one := dataset.NewBatch([]dataset.Record{{"v": v}})
	values := one.BinaryColumn("v")
	if len(values) != 1 {
		return 0, false
	}
	return values[0], true
}
