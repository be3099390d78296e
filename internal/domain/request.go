package domain

import "time"

// RequestStatus enumerates lifecycle states for partnership requests.
type RequestStatus string

const (
	RequestStatusPending       RequestStatus = "pending"
	RequestStatusApproved      RequestStatus = "approved"
	RequestStatusRejected      RequestStatus = "rejected"
	RequestStatusClarification RequestStatus = "clarification_requested"
	RequestStatusCompleted     RequestStatus = "completed"
)

// EnterpriseRequest is the aggregate for B2B partnership applications.
type EnterpriseRequest struct {
	ID           string
	CompanyName  string
	Domain       string
	Industry     string
	CompanySize  string
	Website      string
	AdminName    string
	AdminEmail   string
	AdminPhone   string
	Status       RequestStatus
	AdminNotes   string
	Checklist    map[string]bool
	OrgID        *string
	AdminUserID  *string
	ReviewEvents []ReviewEvent
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ReviewEvent is an immutable entry in a request's review trail.
type ReviewEvent struct {
	ID        string
	RequestID string
	Event     string
	Kind      ReviewEventKind
	Actor     string
	CreatedAt time.Time
}

// ReviewEventKind tags how an event should be rendered.
type ReviewEventKind string

const (
	ReviewEventSuccess ReviewEventKind = "success"
	ReviewEventWarning ReviewEventKind = "warning"
	ReviewEventInfo    ReviewEventKind = "info"
)

// ReviewAction enumerates the admin decisions over a pending request.
type ReviewAction string

const (
	ReviewActionApprove ReviewAction = "approve"
	ReviewActionReject  ReviewAction = "reject"
	ReviewActionClarify ReviewAction = "clarify"
)

// ReviewDecision pairs an action with its reason. Reason is required for
// reject and clarify.
type ReviewDecision struct {
	Action ReviewAction
	Reason string
}
