package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"creditwatch/domain/retraining"
	"creditwatch/ports"
)

// auditLog implements the RetrainingAuditLog interface over the
// retraining_events table
type auditLog struct {
	db *sqlx.DB
}

// NewAuditLog creates a new retraining audit log
func NewAuditLog(db *sqlx.DB) ports.RetrainingAuditLog {
	return &auditLog{db: db}
}

// Append records a retraining trigger event
func (r *auditLog) Append(ctx context.Context, event retraining.TriggerEvent) error {
	query := `INSERT INTO retraining_events (
		job_id, reason, priority, status, created_at
	) VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query,
		event.JobID, event.Reason, event.Priority, event.Status, event.CreatedAt.Time(),
	)
	if err != nil {
		return fmt.Errorf("failed to append retraining event: %w", err)
	}

	return nil
}

// Latest returns the most recent trigger event, or (nil, nil) when the log
// is empty
func (r *auditLog) Latest(ctx context.Context) (*retraining.TriggerEvent, error) {
	query := `SELECT job_id, reason, priority, status, created_at
	FROM retraining_events ORDER BY created_at DESC LIMIT 1`

	var event retraining.TriggerEvent
	err := r.db.QueryRowContext(ctx, query).Scan(
		&event.JobID, &event.Reason, &event.Priority, &event.Status, &event.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest retraining event: %w", err)
	}

	return &event, nil
}
