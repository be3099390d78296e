package identity

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/spec-kit/enterprise-onboarding/internal/config"
)

// httpProvider talks to an external identity service over its admin REST API.
type httpProvider struct {
	client *resty.Client
}

// NewHTTPProvider builds a REST-backed identity provider.
func NewHTTPProvider(cfg config.IdentityConfig) Provider {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second).
		SetHeader("Authorization", "Bearer "+cfg.APIKey).
		SetRetryCount(2)
	return &httpProvider{client: client}
}

type identityPayload struct {
	ID       string            `json:"id"`
	Email    string            `json:"email"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type identityListPayload struct {
	Users []identityPayload `json:"users"`
}

type identityWriteRequest struct {
	Email    string            `json:"email,omitempty"`
	Password string            `json:"password,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func (p *httpProvider) FindByEmail(ctx context.Context, email string) (*Identity, error) {
	var payload identityListPayload
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParam("email", email).
		SetResult(&payload).
		Get("/admin/users")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusNotFound || len(payload.Users) == 0 {
		return nil, ErrNotFound
	}
	if resp.IsError() {
		return nil, fmt.Errorf("identity lookup: status %d", resp.StatusCode())
	}
	return toIdentity(payload.Users[0]), nil
}

func (p *httpProvider) CreateIdentity(ctx context.Context, email, password string, metadata map[string]string) (*Identity, error) {
	var payload identityPayload
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(identityWriteRequest{Email: email, Password: password, Metadata: metadata}).
		SetResult(&payload).
		Post("/admin/users")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("identity create: status %d", resp.StatusCode())
	}
	return toIdentity(payload), nil
}

func (p *httpProvider) UpdateIdentity(ctx context.Context, id string, password string, metadata map[string]string) (*Identity, error) {
	var payload identityPayload
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(identityWriteRequest{Password: password, Metadata: metadata}).
		SetResult(&payload).
		Put("/admin/users/" + id)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.IsError() {
		return nil, fmt.Errorf("identity update: status %d", resp.StatusCode())
	}
	return toIdentity(payload), nil
}

func toIdentity(payload identityPayload) *Identity {
	return &Identity{
		ID:       payload.ID,
		Email:    payload.Email,
		Metadata: payload.Metadata,
	}
}
