package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"creditwatch/ports"
)

// accuracyMetric is the metric name the retraining scheduler reads
const accuracyMetric = "accuracy"

// metricsStore implements the MetricsSource interface over the
// model_metrics table
type metricsStore struct {
	db *sqlx.DB
}

// NewMetricsStore creates a new model metrics store
func NewMetricsStore(db *sqlx.DB) ports.MetricsSource {
	return &metricsStore{db: db}
}

// LatestAccuracy returns the newest recorded accuracy. A missing row means
// the signal is absent, not an error.
func (r *metricsStore) LatestAccuracy(ctx context.Context) (float64, bool, error) {
	query := `SELECT value FROM model_metrics
	WHERE name = $1 ORDER BY created_at DESC LIMIT 1`

	var value float64
	err := r.db.QueryRowContext(ctx, query, accuracyMetric).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get latest accuracy: %w", err)
	}

	return value, true, nil
}

// Record stores one metric observation
func (r *metricsStore) Record(ctx context.Context, name string, value float64) error {
	query := `INSERT INTO model_metrics (name, value, created_at) VALUES ($1, $2, NOW())`

	if _, err := r.db.ExecContext(ctx, query, name, value); err != nil {
		return fmt.Errorf("failed to record metric %s: %w", name, err)
	}

	return nil
}
