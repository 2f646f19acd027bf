package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"creditwatch/domain/drift"
	"creditwatch/ports"
)

// reportStore implements the DriftReportStore interface. Reports are stored
// append-only: the full report as jsonb plus the columns the scheduler and
// API query on.
type reportStore struct {
	db *sqlx.DB
}

// NewReportStore creates a new drift report store
func NewReportStore(db *sqlx.DB) ports.DriftReportStore {
	return &reportStore{db: db}
}

// Save inserts a new drift report
func (r *reportStore) Save(ctx context.Context, report *drift.Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal drift report: %w", err)
	}

	query := `INSERT INTO drift_reports (
		id, payload, drift_score, drift_detected, alert_level, created_at
	) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = r.db.ExecContext(ctx, query,
		report.ID, payload, report.DriftScore, report.DriftDetected,
		report.AlertLevel, report.CreatedAt.Time(),
	)
	if err != nil {
		return fmt.Errorf("failed to save drift report: %w", err)
	}

	return nil
}

// Latest returns the most recent report, or (nil, nil) when none exists
func (r *reportStore) Latest(ctx context.Context) (*drift.Report, error) {
	query := `SELECT payload FROM drift_reports ORDER BY created_at DESC LIMIT 1`

	var payload []byte
	err := r.db.QueryRowContext(ctx, query).Scan(&payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest drift report: %w", err)
	}

	return unmarshalReport(payload)
}

// ListRecent returns up to limit reports, newest first
func (r *reportStore) ListRecent(ctx context.Context, limit int) ([]*drift.Report, error) {
	query := `SELECT payload FROM drift_reports ORDER BY created_at DESC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query drift reports: %w", err)
	}
	defer rows.Close()

	var reports []*drift.Report
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan drift report: %w", err)
		}
		report, err := unmarshalReport(payload)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}

	return reports, rows.Err()
}

func unmarshalReport(payload []byte) (*drift.Report, error) {
	var report drift.Report
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal drift report: %w", err)
	}
	return &report, nil
}
