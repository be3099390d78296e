package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/enterprise-onboarding/internal/domain"
)

// OrganizationRepository manages organization persistence.
type OrganizationRepository interface {
	// UpsertByRequest inserts or updates the single organization owned by the
	// request. Repeated calls converge to one row.
	UpsertByRequest(ctx context.Context, org *domain.Organization) error
	GetByRequest(ctx context.Context, requestID string) (*domain.Organization, error)
	ExistsForRequest(ctx context.Context, requestID string) (bool, error)
}

type organizationRepository struct {
	pool *pgxpool.Pool
}

// NewOrganizationRepository constructs repository.
func NewOrganizationRepository(pool *pgxpool.Pool) OrganizationRepository {
	return &organizationRepository{pool: pool}
}

func (r *organizationRepository) UpsertByRequest(ctx context.Context, org *domain.Organization) error {
	const query = `
        INSERT INTO organizations (request_id, name, domain, industry, company_size, website, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        ON CONFLICT (request_id) DO UPDATE SET
            name=EXCLUDED.name,
            industry=EXCLUDED.industry,
            company_size=EXCLUDED.company_size,
            website=EXCLUDED.website,
            updated_at=NOW()
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		org.RequestID,
		org.Name,
		org.Domain,
		org.Industry,
		org.CompanySize,
		org.Website,
		org.Status,
	).Scan(&org.ID, &org.CreatedAt, &org.UpdatedAt)
}

func (r *organizationRepository) GetByRequest(ctx context.Context, requestID string) (*domain.Organization, error) {
	const query = `
        SELECT id, request_id, name, domain, industry, company_size, website, status, created_at, updated_at
        FROM organizations WHERE request_id=$1`
	var org domain.Organization
	if err := r.pool.QueryRow(ctx, query, requestID).Scan(
		&org.ID,
		&org.RequestID,
		&org.Name,
		&org.Domain,
		&org.Industry,
		&org.CompanySize,
		&org.Website,
		&org.Status,
		&org.CreatedAt,
		&org.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *organizationRepository) ExistsForRequest(ctx context.Context, requestID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM organizations WHERE request_id=$1)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, requestID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
