package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"creditwatch/domain/dataset"
)

// PredictionLog records served predictions and exposes them back to the
// drift monitor as time-partitioned batches: the current window covers the
// most recent period, the reference window the stretch before it.
type PredictionLog struct {
	db              *sqlx.DB
	referenceWindow time.Duration
	currentWindow   time.Duration
}

// NewPredictionLog creates a prediction log over the given windows
func NewPredictionLog(db *sqlx.DB, referenceWindow, currentWindow time.Duration) *PredictionLog {
	return &PredictionLog{
		db:              db,
		referenceWindow: referenceWindow,
		currentWindow:   currentWindow,
	}
}

// Insert records one served prediction. actual is nil until ground truth
// arrives.
func (r *PredictionLog) Insert(ctx context.Context, features dataset.Record, prediction int, actual *int) error {
	featuresJSON, err := json.Marshal(features)
	if err != nil {
		return fmt.Errorf("failed to marshal prediction features: %w", err)
	}

	query := `INSERT INTO prediction_log (features, prediction, loan_status, created_at)
	VALUES ($1, $2, $3, NOW())`

	if _, err := r.db.ExecContext(ctx, query, featuresJSON, prediction, actual); err != nil {
		return fmt.Errorf("failed to insert prediction: %w", err)
	}

	return nil
}

// Reference returns predictions from before the current window, reaching
// back through the reference window
func (r *PredictionLog) Reference(ctx context.Context) (*dataset.Batch, error) {
	query := `SELECT features, prediction, loan_status FROM prediction_log
	WHERE created_at < NOW() - $1::interval AND created_at >= NOW() - $2::interval
	ORDER BY created_at`

	return r.queryBatch(ctx, query, pgInterval(r.currentWindow), pgInterval(r.referenceWindow))
}

// Current returns predictions from the current window
func (r *PredictionLog) Current(ctx context.Context) (*dataset.Batch, error) {
	query := `SELECT features, prediction, loan_status FROM prediction_log
	WHERE created_at >= NOW() - $1::interval
	ORDER BY created_at`

	return r.queryBatch(ctx, query, pgInterval(r.currentWindow))
}

func (r *PredictionLog) queryBatch(ctx context.Context, query string, args ...interface{}) (*dataset.Batch, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query prediction log: %w", err)
	}
	defer rows.Close()

	var records []dataset.Record
	for rows.Next() {
		var featuresJSON []byte
		var prediction int
		var actual *int

		if err := rows.Scan(&featuresJSON, &prediction, &actual); err != nil {
			return nil, fmt.Errorf("failed to scan prediction row: %w", err)
		}

		rec := dataset.Record{}
		if len(featuresJSON) > 0 {
			if err := json.Unmarshal(featuresJSON, &rec); err != nil {
				return nil, fmt.Errorf("failed to unmarshal prediction features: %w", err)
			}
		}
		rec[dataset.ColumnPrediction] = prediction
		if actual != nil {
			rec[dataset.ColumnLoanStatus] = *actual
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read prediction log: %w", err)
	}

	return dataset.NewBatch(records), nil
}

// pgInterval renders a duration as a postgres interval literal
func pgInterval(d time.Duration) string {
	return fmt.Sprintf("%d seconds", int64(d.Seconds()))
}
