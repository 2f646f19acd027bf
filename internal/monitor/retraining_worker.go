package monitor

import (
	"context"

	"creditwatch/app"
	"creditwatch/internal"
	"creditwatch/internal/errors"
)

// RetrainingWorker evaluates the retraining conditions on a schedule and
// triggers a job when they are met
type RetrainingWorker struct {
	scheduler *app.RetrainingService
	schedule  string
	logger    *internal.Logger
}

// NewRetrainingWorker creates the retraining check worker
func NewRetrainingWorker(scheduler *app.RetrainingService, schedule string, logger *internal.Logger) *RetrainingWorker {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &RetrainingWorker{
		scheduler: scheduler,
		schedule:  schedule,
		logger:    logger,
	}
}

func (w *RetrainingWorker) Name() string     { return "retraining-scheduler" }
func (w *RetrainingWorker) Schedule() string { return w.schedule }

// RunOnce evaluates the conditions and triggers retraining on a positive
// decision
func (w *RetrainingWorker) RunOnce(ctx context.Context) error {
	decision, err := w.scheduler.Evaluate(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to evaluate retraining conditions")
	}

	if !decision.ShouldRetrain {
		if len(decision.Reasons) > 0 {
			w.logger.Info("no retraining needed: %s", decision.Reasons[0])
		} else {
			w.logger.Info("no retraining needed")
		}
		return nil
	}

	event, err := w.scheduler.Trigger(ctx, decision)
	if err != nil {
		return errors.Wrap(err, "failed to trigger retraining")
	}

	w.logger.Info("retraining triggered: job %s (priority %s)", event.JobID, event.Priority)
	return nil
}
