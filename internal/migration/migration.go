package migration

import (
	"context"

	"github.com/jmoiron/sqlx"

	"creditwatch/internal/errors"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createPredictionLogTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create prediction_log table")
	}

	if err := r.createDriftReportsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create drift_reports table")
	}

	if err := r.createRetrainingEventsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create retraining_events table")
	}

	if err := r.createModelMetricsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create model_metrics table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createPredictionLogTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS prediction_log (
			id BIGSERIAL PRIMARY KEY,
			features JSONB NOT NULL,
			prediction INTEGER NOT NULL,
			loan_status INTEGER,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createDriftReportsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS drift_reports (
			id UUID PRIMARY KEY,
			payload JSONB NOT NULL,
			drift_score DOUBLE PRECISION NOT NULL,
			drift_detected BOOLEAN NOT NULL,
			alert_level VARCHAR(20) NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createRetrainingEventsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS retraining_events (
			id BIGSERIAL PRIMARY KEY,
			job_id UUID NOT NULL,
			reason TEXT NOT NULL,
			priority VARCHAR(20) NOT NULL,
			status VARCHAR(50) NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createModelMetricsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS model_metrics (
			id BIGSERIAL PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			value DOUBLE PRECISION NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_prediction_log_created_at ON prediction_log(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_drift_reports_created_at ON drift_reports(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_retraining_events_created_at ON retraining_events(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_model_metrics_name_created_at ON model_metrics(name, created_at DESC)`,
	}

	for _, index := range indexes {
		if _, err := db.ExecContext(ctx, index); err != nil {
			return err
		}
	}

	return nil
}
