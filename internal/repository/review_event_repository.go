package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/enterprise-onboarding/internal/domain"
)

// ReviewEventRepository stores the append-only review trail. Entries are only
// ever inserted; concurrent reviewers cannot lose each other's updates.
type ReviewEventRepository interface {
	Append(ctx context.Context, event *domain.ReviewEvent) error
	ListByRequest(ctx context.Context, requestID string) ([]domain.ReviewEvent, error)
}

type reviewEventRepository struct {
	pool *pgxpool.Pool
}

// NewReviewEventRepository builds repository.
func NewReviewEventRepository(pool *pgxpool.Pool) ReviewEventRepository {
	return &reviewEventRepository{pool: pool}
}

func (r *reviewEventRepository) Append(ctx context.Context, event *domain.ReviewEvent) error {
	const query = `
        INSERT INTO request_review_events (request_id, event, kind, actor)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		event.RequestID,
		event.Event,
		event.Kind,
		event.Actor,
	).Scan(&event.ID, &event.CreatedAt)
}

func (r *reviewEventRepository) ListByRequest(ctx context.Context, requestID string) ([]domain.ReviewEvent, error) {
	const query = `
        SELECT id, request_id, event, kind, actor, created_at
        FROM request_review_events WHERE request_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ReviewEvent
	for rows.Next() {
		var event domain.ReviewEvent
		if err := rows.Scan(
			&event.ID,
			&event.RequestID,
			&event.Event,
			&event.Kind,
			&event.Actor,
			&event.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, event)
	}
	return result, rows.Err()
}
