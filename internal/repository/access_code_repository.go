package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/enterprise-onboarding/internal/domain"
)

// CodeWithRequest joins a code with metadata from its owning request.
type CodeWithRequest struct {
	Code        domain.AccessCode
	CompanyName string
	AdminName   string
	AdminEmail  string
	Industry    string
	CompanySize string
	Website     string
}

// AccessCodeRepository manages access code persistence.
type AccessCodeRepository interface {
	Create(ctx context.Context, code *domain.AccessCode) error
	GetActiveByRequest(ctx context.Context, requestID string) (*domain.AccessCode, error)
	GetByHash(ctx context.Context, hash string) (*CodeWithRequest, error)
	// Consume atomically flips an active code to used. It reports false when
	// the code was no longer active, guaranteeing at-most-once redemption.
	Consume(ctx context.Context, id string) (bool, error)
	Revoke(ctx context.Context, id string) (bool, error)
	ListWithRequests(ctx context.Context) ([]CodeWithRequest, error)
}

type accessCodeRepository struct {
	pool *pgxpool.Pool
}

// NewAccessCodeRepository constructs repository.
func NewAccessCodeRepository(pool *pgxpool.Pool) AccessCodeRepository {
	return &accessCodeRepository{pool: pool}
}

func (r *accessCodeRepository) Create(ctx context.Context, code *domain.AccessCode) error {
	const query = `
        INSERT INTO enterprise_access_codes (request_id, code, code_hash, status, expires_at, used_count)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		code.RequestID,
		code.Code,
		code.CodeHash,
		code.Status,
		code.ExpiresAt,
		code.UsedCount,
	).Scan(&code.ID, &code.CreatedAt, &code.UpdatedAt)
}

func (r *accessCodeRepository) GetActiveByRequest(ctx context.Context, requestID string) (*domain.AccessCode, error) {
	const query = `
        SELECT id, request_id, code, code_hash, status, expires_at, used_count, created_at, updated_at
        FROM enterprise_access_codes WHERE request_id=$1 AND status='active'`
	var code domain.AccessCode
	if err := r.pool.QueryRow(ctx, query, requestID).Scan(
		&code.ID,
		&code.RequestID,
		&code.Code,
		&code.CodeHash,
		&code.Status,
		&code.ExpiresAt,
		&code.UsedCount,
		&code.CreatedAt,
		&code.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, err
	}
	return &code, nil
}

func (r *accessCodeRepository) GetByHash(ctx context.Context, hash string) (*CodeWithRequest, error) {
	const query = `
        SELECT c.id, c.request_id, c.code, c.code_hash, c.status, c.expires_at, c.used_count, c.created_at, c.updated_at,
               r.company_name, r.admin_name, r.admin_email, r.industry, r.company_size, r.website
        FROM enterprise_access_codes c
        JOIN enterprise_requests r ON r.id = c.request_id
        WHERE c.code_hash=$1`
	var row CodeWithRequest
	if err := r.pool.QueryRow(ctx, query, hash).Scan(
		&row.Code.ID,
		&row.Code.RequestID,
		&row.Code.Code,
		&row.Code.CodeHash,
		&row.Code.Status,
		&row.Code.ExpiresAt,
		&row.Code.UsedCount,
		&row.Code.CreatedAt,
		&row.Code.UpdatedAt,
		&row.CompanyName,
		&row.AdminName,
		&row.AdminEmail,
		&row.Industry,
		&row.CompanySize,
		&row.Website,
	); err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *accessCodeRepository) Consume(ctx context.Context, id string) (bool, error) {
	const query = `
        UPDATE enterprise_access_codes SET status='used', used_count=1, updated_at=NOW()
        WHERE id=$1 AND status='active'`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *accessCodeRepository) Revoke(ctx context.Context, id string) (bool, error) {
	const query = `
        UPDATE enterprise_access_codes SET status='revoked', updated_at=NOW()
        WHERE id=$1 AND status='active'`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *accessCodeRepository) ListWithRequests(ctx context.Context) ([]CodeWithRequest, error) {
	const query = `
        SELECT c.id, c.request_id, c.code, c.code_hash, c.status, c.expires_at, c.used_count, c.created_at, c.updated_at,
               r.company_name, r.admin_name, r.admin_email, r.industry, r.company_size, r.website
        FROM enterprise_access_codes c
        JOIN enterprise_requests r ON r.id = c.request_id
        ORDER BY c.created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []CodeWithRequest
	for rows.Next() {
		var row CodeWithRequest
		if err := rows.Scan(
			&row.Code.ID,
			&row.Code.RequestID,
			&row.Code.Code,
			&row.Code.CodeHash,
			&row.Code.Status,
			&row.Code.ExpiresAt,
			&row.Code.UsedCount,
			&row.Code.CreatedAt,
			&row.Code.UpdatedAt,
			&row.CompanyName,
			&row.AdminName,
			&row.AdminEmail,
			&row.Industry,
			&row.CompanySize,
			&row.Website,
		); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
