package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/enterprise-onboarding/internal/auth"
)

// pgProvider stores identities in the local identities table. Used when no
// external provider URL is configured.
type pgProvider struct {
	pool       *pgxpool.Pool
	bcryptCost int
}

// NewPostgresProvider builds the local fallback provider.
func NewPostgresProvider(pool *pgxpool.Pool, bcryptCost int) Provider {
	return &pgProvider{pool: pool, bcryptCost: bcryptCost}
}

func (p *pgProvider) FindByEmail(ctx context.Context, email string) (*Identity, error) {
	const query = `
        SELECT id, email, metadata FROM identities WHERE LOWER(email)=LOWER($1)`
	var identity Identity
	if err := p.pool.QueryRow(ctx, query, strings.TrimSpace(email)).Scan(
		&identity.ID,
		&identity.Email,
		&identity.Metadata,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &identity, nil
}

func (p *pgProvider) CreateIdentity(ctx context.Context, email, password string, metadata map[string]string) (*Identity, error) {
	hash, err := auth.HashPassword(password, p.bcryptCost)
	if err != nil {
		return nil, err
	}
	if metadata == nil {
		metadata = map[string]string{}
	}
	const query = `
        INSERT INTO identities (email, password_hash, metadata)
        VALUES ($1,$2,$3)
        RETURNING id`
	identity := &Identity{Email: email, Metadata: metadata}
	if err := p.pool.QueryRow(ctx, query, strings.TrimSpace(email), hash, metadata).Scan(&identity.ID); err != nil {
		return nil, err
	}
	return identity, nil
}

func (p *pgProvider) UpdateIdentity(ctx context.Context, id string, password string, metadata map[string]string) (*Identity, error) {
	hash, err := auth.HashPassword(password, p.bcryptCost)
	if err != nil {
		return nil, err
	}
	if metadata == nil {
		metadata = map[string]string{}
	}
	const query = `
        UPDATE identities SET password_hash=$1, metadata=$2, updated_at=NOW()
        WHERE id=$3
        RETURNING id, email, metadata`
	var identity Identity
	if err := p.pool.QueryRow(ctx, query, hash, metadata, id).Scan(
		&identity.ID,
		&identity.Email,
		&identity.Metadata,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &identity, nil
}
