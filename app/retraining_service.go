package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"creditwatch/domain/core"
	"creditwatch/domain/retraining"
	"creditwatch/internal"
	"creditwatch/internal/errors"
	"creditwatch/ports"
)

// RetrainingService decides when the model should be retrained and triggers
// the external job system when it should. Decisions are computed fresh per
// evaluation from the latest persisted drift report and accuracy metric.
type RetrainingService struct {
	reports  ports.DriftReportStore
	metrics  ports.MetricsSource
	audit    ports.RetrainingAuditLog
	launcher ports.JobLauncher
	logger   *internal.Logger

	mu           sync.Mutex
	lastTraining time.Time
}

// NewRetrainingService creates a retraining scheduler service
func NewRetrainingService(
	reports ports.DriftReportStore,
	metrics ports.MetricsSource,
	audit ports.RetrainingAuditLog,
	launcher ports.JobLauncher,
	logger *internal.Logger,
) *RetrainingService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &RetrainingService{
		reports:  reports,
		metrics:  metrics,
		audit:    audit,
		launcher: launcher,
		logger:   logger,
	}
}

// SeedFromAuditLog restores the last-training time from the most recent
// audit event so the cooldown survives restarts
func (s *RetrainingService) SeedFromAuditLog(ctx context.Context) error {
	if s.audit == nil {
		return nil
	}
	event, err := s.audit.Latest(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to read retraining audit log")
	}
	if event == nil {
		return nil
	}
	s.markTrained(event.CreatedAt.Time())
	s.logger.Info("retraining cooldown seeded from audit event %s", event.JobID)
	return nil
}

// Evaluate checks the retraining conditions. The cooldown short-circuits
// every other check; otherwise each condition contributes independently and
// the highest-urgency priority wins.
func (s *RetrainingService) Evaluate(ctx context.Context) (*retraining.Decision, error) {
	s.mu.Lock()
	lastTraining := s.lastTraining
	s.mu.Unlock()

	if !lastTraining.IsZero() {
		elapsed := time.Since(lastTraining)
		if elapsed < retraining.MinRetrainingInterval {
			return &retraining.Decision{
				ShouldRetrain: false,
				Reasons: []string{fmt.Sprintf(
					"Too soon since last training (%.1f hours ago)", elapsed.Hours())},
				Priority: retraining.PriorityNormal,
			}, nil
		}
	}

	decision := &retraining.Decision{Priority: retraining.PriorityNormal}

	// A failed read means the signal is absent; the condition simply does
	// not fire and the tick goes on
	report, err := s.reports.Latest(ctx)
	if err != nil {
		s.logger.Warn("could not read latest drift report: %v", err)
		report = nil
	}
	if report != nil {
		score := report.DriftScore
		decision.DriftScore = &score
		if score > retraining.DriftScoreTrigger {
			decision.Reasons = append(decision.Reasons,
				fmt.Sprintf("High drift score: %.3f", score))
			decision.ShouldRetrain = true
			decision.Priority = retraining.Max(decision.Priority, retraining.PriorityHigh)
		}
	}

	accuracy, ok, err := s.metrics.LatestAccuracy(ctx)
	if err != nil {
		s.logger.Warn("could not read model accuracy: %v", err)
		ok = false
	}
	if ok {
		decision.CurrentAccuracy = &accuracy
		if accuracy < retraining.AccuracyFloor {
			decision.Reasons = append(decision.Reasons,
				fmt.Sprintf("Low accuracy: %.3f", accuracy))
			decision.ShouldRetrain = true
			decision.Priority = retraining.Max(decision.Priority, retraining.PriorityCritical)
		}
	}

	if !lastTraining.IsZero() && time.Since(lastTraining) > retraining.WeeklyInterval {
		decision.Reasons = append(decision.Reasons, "Scheduled weekly retraining")
		decision.ShouldRetrain = true
	}

	return decision, nil
}

// Trigger creates a retraining job from a positive decision, records it in
// the audit log, and hands it to the job launcher. A failed audit append is
// logged but does not block the launch.
func (s *RetrainingService) Trigger(ctx context.Context, decision *retraining.Decision) (*retraining.TriggerEvent, error) {
	if decision == nil || !decision.ShouldRetrain {
		return nil, errors.InvalidInput("trigger requires a positive retraining decision")
	}

	event := retraining.TriggerEvent{
		JobID:     core.NewJobID(),
		Reason:    strings.Join(decision.Reasons, ", "),
		Priority:  decision.Priority,
		Status:    "triggered",
		CreatedAt: core.Now(),
	}

	s.logger.Info("triggering model retraining (priority: %s): %s", event.Priority, event.Reason)

	if s.audit != nil {
		if err := s.audit.Append(ctx, event); err != nil {
			s.logger.Error("failed to record retraining event %s: %v", event.JobID, err)
		}
	}

	if s.launcher != nil {
		if err := s.launcher.Launch(ctx, event); err != nil {
			return nil, errors.Wrap(err, "failed to launch retraining job")
		}
	}

	s.markTrained(event.CreatedAt.Time())
	s.logger.Info("retraining job %s created", event.JobID)

	return &event, nil
}

// markTrained advances the cooldown clock; it never moves backwards
func (s *RetrainingService) markTrained(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if at.After(s.lastTraining) {
		s.lastTraining = at
	}
}
