package ports

import (
	"context"

	"creditwatch/domain/retraining"
)

// MetricsSource reads the latest known model accuracy from the external
// metrics store. ok is false when no accuracy has been recorded; that is
// signal-absent, not an error.
type MetricsSource interface {
	LatestAccuracy(ctx context.Context) (value float64, ok bool, err error)
}

// RetrainingAuditLog is the append-only record of retraining triggers.
// Latest returns (nil, nil) when the log is empty.
type RetrainingAuditLog interface {
	Append(ctx context.Context, event retraining.TriggerEvent) error
	Latest(ctx context.Context) (*retraining.TriggerEvent, error)
}

// JobLauncher hands a trigger to the external job-execution system
type JobLauncher interface {
	Launch(ctx context.Context, event retraining.TriggerEvent) error
}
