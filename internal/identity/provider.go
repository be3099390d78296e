package identity

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no identity exists for an email.
var ErrNotFound = errors.New("identity not found")

// Identity is an account held by the identity provider. The provider, not the
// relational store, is authoritative for credentials.
type Identity struct {
	ID       string
	Email    string
	Metadata map[string]string
}

// Provider abstracts the external identity service.
type Provider interface {
	FindByEmail(ctx context.Context, email string) (*Identity, error)
	CreateIdentity(ctx context.Context, email, password string, metadata map[string]string) (*Identity, error)
	UpdateIdentity(ctx context.Context, id string, password string, metadata map[string]string) (*Identity, error)
}
