package monitor

import (
	"context"

	"creditwatch/app"
	"creditwatch/domain/drift"
	"creditwatch/internal"
	"creditwatch/internal/errors"
	"creditwatch/ports"
)

// DriftWorker runs the periodic drift check: load both data windows, detect
// drift, persist the report, and raise an alert when the report crosses the
// warning threshold.
type DriftWorker struct {
	provider ports.BatchProvider
	detector *app.DriftService
	store    ports.DriftReportStore
	alerts   ports.AlertSink
	schedule string
	logger   *internal.Logger
}

// NewDriftWorker creates the drift monitoring worker
func NewDriftWorker(
	provider ports.BatchProvider,
	detector *app.DriftService,
	store ports.DriftReportStore,
	alerts ports.AlertSink,
	schedule string,
	logger *internal.Logger,
) *DriftWorker {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DriftWorker{
		provider: provider,
		detector: detector,
		store:    store,
		alerts:   alerts,
		schedule: schedule,
		logger:   logger,
	}
}

func (w *DriftWorker) Name() string     { return "drift-monitor" }
func (w *DriftWorker) Schedule() string { return w.schedule }

// RunOnce performs one drift check. Missing data skips the check without
// error; a failed report save is logged but does not fail the run, so the
// alert still goes out.
func (w *DriftWorker) RunOnce(ctx context.Context) error {
	reference, err := w.provider.Reference(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to load reference data")
	}
	current, err := w.provider.Current(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to collect current data")
	}
	if reference == nil || reference.Len() == 0 || current == nil || current.Len() == 0 {
		w.logger.Warn("insufficient data for drift detection, skipping check")
		return nil
	}

	report, err := w.detector.Detect(ctx, reference, current, nil)
	if err != nil {
		return errors.Wrap(err, "drift detection failed")
	}

	if err := w.store.Save(ctx, report); err != nil {
		w.logger.Error("failed to save drift report %s: %v", report.ID, err)
	}

	if report.DriftDetected {
		w.logger.Warn("drift detected in features: %v", report.DriftedFeatures)
	}
	if report.AlertLevel == drift.AlertCritical {
		w.sendAlert(ctx, report)
	}

	return nil
}

// sendAlert publishes the report to the alert sink; delivery failures are
// logged, not escalated
func (w *DriftWorker) sendAlert(ctx context.Context, report *drift.Report) {
	if w.alerts == nil {
		return
	}
	alert := drift.Alert{
		Type:     "drift",
		Severity: string(report.AlertLevel),
		Title:    "Data drift detected",
		Message:  "Model input distribution has shifted from the reference period",
		Source:   w.Name(),
		Data: map[string]interface{}{
			"report_id":        report.ID,
			"drift_score":      report.DriftScore,
			"drifted_features": report.DriftedFeatures,
			"recommendations":  report.Recommendations,
		},
	}
	if err := w.alerts.Publish(ctx, alert); err != nil {
		w.logger.Error("failed to send drift alert: %v", err)
	}
}
