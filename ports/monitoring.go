package ports

import (
	"context"

	"creditwatch/domain/dataset"
	"creditwatch/domain/drift"
)

// BatchProvider supplies the two data windows a drift check compares
type BatchProvider interface {
	Reference(ctx context.Context) (*dataset.Batch, error)
	Current(ctx context.Context) (*dataset.Batch, error)
}

// DriftReportStore persists detection reports append-only.
// Latest returns the report with the highest created_at, or (nil, nil)
// when no report has been stored yet.
type DriftReportStore interface {
	Save(ctx context.Context, report *drift.Report) error
	Latest(ctx context.Context) (*drift.Report, error)
	ListRecent(ctx context.Context, limit int) ([]*drift.Report, error)
}

// AlertSink hands alert events to the external alerting collaborator
type AlertSink interface {
	Publish(ctx context.Context, alert drift.Alert) error
}
