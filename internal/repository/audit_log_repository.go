package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/enterprise-onboarding/internal/domain"
)

// AuditLogRepository stores append-only operational records.
type AuditLogRepository interface {
	Create(ctx context.Context, entry *domain.AuditEntry) error
	ListRecent(ctx context.Context, limit int) ([]domain.AuditEntry, error)
}

type auditLogRepository struct {
	pool *pgxpool.Pool
}

// NewAuditLogRepository constructs repository.
func NewAuditLogRepository(pool *pgxpool.Pool) AuditLogRepository {
	return &auditLogRepository{pool: pool}
}

func (r *auditLogRepository) Create(ctx context.Context, entry *domain.AuditEntry) error {
	const query = `
        INSERT INTO audit_logs (level, action_code, actor, org_id, message, params)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	params := entry.Params
	if params == nil {
		params = map[string]any{}
	}
	return r.pool.QueryRow(ctx, query,
		entry.Level,
		entry.ActionCode,
		entry.Actor,
		entry.OrgID,
		entry.Message,
		params,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *auditLogRepository) ListRecent(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	const query = `
        SELECT id, level, action_code, actor, org_id, message, params, created_at
        FROM audit_logs ORDER BY created_at DESC LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AuditEntry
	for rows.Next() {
		var entry domain.AuditEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.Level,
			&entry.ActionCode,
			&entry.Actor,
			&entry.OrgID,
			&entry.Message,
			&entry.Params,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
