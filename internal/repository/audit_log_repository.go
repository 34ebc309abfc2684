package repository

import (
	"context"
	"fmt"

	"github.com/campushub/portal/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AuditLogRepository struct {
	pool *pgxpool.Pool
}

func NewAuditLogRepository(pool *pgxpool.Pool) *AuditLogRepository {
	return &AuditLogRepository{pool: pool}
}

// Insert appends an audit entry. The table is append-only.
func (r *AuditLogRepository) Insert(ctx context.Context, entry *model.AuditLog) error {
	query := `
		INSERT INTO audit_logs (id, actor, action, details, level, ts)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(
		ctx, query,
		entry.ID,
		entry.Actor,
		entry.Action,
		entry.Details,
		entry.Level,
		entry.Timestamp,
	)

	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}

	return nil
}

// ListRecent returns the newest entries, most recent first.
func (r *AuditLogRepository) ListRecent(ctx context.Context, limit int) ([]*model.AuditLog, error) {
	query := `
		SELECT id, actor, action, details, level, ts
		FROM audit_logs
		ORDER BY ts DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	var entries []*model.AuditLog
	for rows.Next() {
		var entry model.AuditLog
		err := rows.Scan(
			&entry.ID,
			&entry.Actor,
			&entry.Action,
			&entry.Details,
			&entry.Level,
			&entry.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		entries = append(entries, &entry)
	}

	return entries, nil
}
