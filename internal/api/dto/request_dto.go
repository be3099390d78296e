package dto

import "time"

// SubmitRequestPayload is the public application form.
type SubmitRequestPayload struct {
	CompanyName string `json:"company_name"`
	Industry    string `json:"industry"`
	CompanySize string `json:"company_size"`
	Website     string `json:"website"`
	AdminName   string `json:"admin_name"`
	AdminEmail  string `json:"admin_email"`
	AdminPhone  string `json:"admin_phone"`
}

// ReviewDecisionPayload is an admin decision over a request.
type ReviewDecisionPayload struct {
	Action string `json:"action"`
	Reason string `json:"reason,omitempty"`
}

// ReviewUpdatePayload is a partial update of review working state.
type ReviewUpdatePayload struct {
	AdminNotes *string         `json:"admin_notes,omitempty"`
	Checklist  map[string]bool `json:"checklist,omitempty"`
}

// ReviewEventView renders one review trail entry.
type ReviewEventView struct {
	Event     string    `json:"event"`
	Kind      string    `json:"kind"`
	Actor     string    `json:"actor,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// RequestView renders a request for the admin listing.
type RequestView struct {
	ID           string            `json:"id"`
	CompanyName  string            `json:"company_name"`
	Domain       string            `json:"domain"`
	Industry     string            `json:"industry"`
	CompanySize  string            `json:"company_size"`
	Website      string            `json:"website"`
	AdminName    string            `json:"admin_name"`
	AdminEmail   string            `json:"admin_email"`
	Status       string            `json:"status"`
	AdminNotes   string            `json:"admin_notes"`
	Checklist    map[string]bool   `json:"checklist"`
	ReviewEvents []ReviewEventView `json:"review_events"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}
