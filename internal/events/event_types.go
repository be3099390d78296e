package events

import (
	"time"

	"github.com/spec-kit/enterprise-onboarding/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRequestSubmitted      EventType = "request_submitted"
	EventRequestStatusChanged  EventType = "request_status_changed"
	EventAccessCodeIssued      EventType = "access_code_issued"
	EventAccessCodeRedeemed    EventType = "access_code_redeemed"
	EventProvisioningCompleted EventType = "provisioning_completed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	RequestID string      `json:"request_id"`
	Actor     string      `json:"actor,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// RequestSubmittedPayload payload.
type RequestSubmittedPayload struct {
	CompanyName string `json:"company_name"`
	AdminEmail  string `json:"admin_email"`
}

// RequestStatusChangedPayload payload.
type RequestStatusChangedPayload struct {
	OldStatus  domain.RequestStatus `json:"old_status"`
	NewStatus  domain.RequestStatus `json:"new_status"`
	Reason     string               `json:"reason,omitempty"`
	AdminEmail string               `json:"admin_email"`
	Company    string               `json:"company_name"`
}

// AccessCodeIssuedPayload payload. Carries whether an existing code was
// resent instead of a new one minted.
type AccessCodeIssuedPayload struct {
	CodeID    string    `json:"code_id"`
	Resent    bool      `json:"resent"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AccessCodeRedeemedPayload payload.
type AccessCodeRedeemedPayload struct {
	CodeID string `json:"code_id"`
	Email  string `json:"email"`
}

// ProvisioningCompletedPayload payload.
type ProvisioningCompletedPayload struct {
	OrgID  string `json:"org_id"`
	UserID string `json:"user_id"`
}
