package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/enterprise-onboarding/internal/domain"
)

// MembershipRepository manages organization membership rows.
type MembershipRepository interface {
	// Upsert converges on exactly one row per (org_id, user_id) pair.
	Upsert(ctx context.Context, membership *domain.Membership) error
	CountByOrg(ctx context.Context, orgID string) (int, error)
}

type membershipRepository struct {
	pool *pgxpool.Pool
}

// NewMembershipRepository constructs repository.
func NewMembershipRepository(pool *pgxpool.Pool) MembershipRepository {
	return &membershipRepository{pool: pool}
}

func (r *membershipRepository) Upsert(ctx context.Context, membership *domain.Membership) error {
	const query = `
        INSERT INTO organization_members (org_id, user_id, role)
        VALUES ($1,$2,$3)
        ON CONFLICT (org_id, user_id) DO UPDATE SET role=EXCLUDED.role
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		membership.OrgID,
		membership.UserID,
		membership.Role,
	).Scan(&membership.ID, &membership.CreatedAt)
}

func (r *membershipRepository) CountByOrg(ctx context.Context, orgID string) (int, error) {
	const query = `SELECT COUNT(*) FROM organization_members WHERE org_id=$1`
	var count int
	if err := r.pool.QueryRow(ctx, query, orgID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
