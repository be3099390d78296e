package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/enterprise-onboarding/internal/domain"
)

// ReviewPatch captures a partial update to a request's review fields. Nil
// members are left untouched.
type ReviewPatch struct {
	AdminNotes *string
	Checklist  map[string]bool
	Status     *domain.RequestStatus
}

// RequestRepository encapsulates partnership request persistence.
type RequestRepository interface {
	Create(ctx context.Context, request *domain.EnterpriseRequest) error
	GetByID(ctx context.Context, id string) (*domain.EnterpriseRequest, error)
	UpdateReview(ctx context.Context, id string, patch ReviewPatch) error
	SetProvisioningRefs(ctx context.Context, id string, orgID, adminUserID string) error
	List(ctx context.Context) ([]domain.EnterpriseRequest, error)
}

type requestRepository struct {
	pool *pgxpool.Pool
}

// NewRequestRepository instantiates repository.
func NewRequestRepository(pool *pgxpool.Pool) RequestRepository {
	return &requestRepository{pool: pool}
}

func (r *requestRepository) Create(ctx context.Context, request *domain.EnterpriseRequest) error {
	const query = `
        INSERT INTO enterprise_requests (company_name, domain, industry, company_size, website, admin_name, admin_email, admin_phone, status, admin_notes, checklist)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		request.CompanyName,
		request.Domain,
		request.Industry,
		request.CompanySize,
		request.Website,
		request.AdminName,
		request.AdminEmail,
		request.AdminPhone,
		request.Status,
		request.AdminNotes,
		request.Checklist,
	).Scan(&request.ID, &request.CreatedAt, &request.UpdatedAt)
}

func (r *requestRepository) GetByID(ctx context.Context, id string) (*domain.EnterpriseRequest, error) {
	const query = `
        SELECT id, company_name, domain, industry, company_size, website, admin_name, admin_email, admin_phone,
               status, admin_notes, checklist, org_id, admin_user_id, created_at, updated_at
        FROM enterprise_requests WHERE id=$1`
	var request domain.EnterpriseRequest
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&request.ID,
		&request.CompanyName,
		&request.Domain,
		&request.Industry,
		&request.CompanySize,
		&request.Website,
		&request.AdminName,
		&request.AdminEmail,
		&request.AdminPhone,
		&request.Status,
		&request.AdminNotes,
		&request.Checklist,
		&request.OrgID,
		&request.AdminUserID,
		&request.CreatedAt,
		&request.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *requestRepository) UpdateReview(ctx context.Context, id string, patch ReviewPatch) error {
	sets := []string{"updated_at=NOW()"}
	args := []any{}

	if patch.AdminNotes != nil {
		args = append(args, *patch.AdminNotes)
		sets = append(sets, fmt.Sprintf("admin_notes=$%d", len(args)))
	}
	if patch.Checklist != nil {
		args = append(args, patch.Checklist)
		sets = append(sets, fmt.Sprintf("checklist=$%d", len(args)))
	}
	if patch.Status != nil {
		args = append(args, *patch.Status)
		sets = append(sets, fmt.Sprintf("status=$%d", len(args)))
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE enterprise_requests SET %s WHERE id=$%d",
		strings.Join(sets, ", "), len(args))

	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *requestRepository) SetProvisioningRefs(ctx context.Context, id string, orgID, adminUserID string) error {
	const query = `
        UPDATE enterprise_requests SET org_id=$1, admin_user_id=$2, updated_at=NOW()
        WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, orgID, adminUserID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *requestRepository) List(ctx context.Context) ([]domain.EnterpriseRequest, error) {
	const query = `
        SELECT id, company_name, domain, industry, company_size, website, admin_name, admin_email, admin_phone,
               status, admin_notes, checklist, org_id, admin_user_id, created_at, updated_at
        FROM enterprise_requests ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.EnterpriseRequest
	for rows.Next() {
		var request domain.EnterpriseRequest
		if err := rows.Scan(
			&request.ID,
			&request.CompanyName,
			&request.Domain,
			&request.Industry,
			&request.CompanySize,
			&request.Website,
			&request.AdminName,
			&request.AdminEmail,
			&request.AdminPhone,
			&request.Status,
			&request.AdminNotes,
			&request.Checklist,
			&request.OrgID,
			&request.AdminUserID,
			&request.CreatedAt,
			&request.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, request)
	}
	return result, rows.Err()
}
