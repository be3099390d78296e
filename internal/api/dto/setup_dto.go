package dto

import "time"

// ValidateCodePayload is the applicant's code check.
type ValidateCodePayload struct {
	Code  string `json:"code"`
	Email string `json:"email,omitempty"`
}

// ValidateCodeResponse echoes request metadata plus routing booleans.
type ValidateCodeResponse struct {
	RequestID   string `json:"request_id"`
	CompanyName string `json:"company_name"`
	AdminEmail  string `json:"admin_email"`
	AdminName   string `json:"admin_name"`
	Industry    string `json:"industry"`
	CompanySize string `json:"company_size"`
	Website     string `json:"website"`
	OrgExists   bool   `json:"is_org_exists"`
	UserExists  bool   `json:"is_user_exists"`
}

// CompleteSetupPayload is the final provisioning submission.
type CompleteSetupPayload struct {
	Code        string `json:"code"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"full_name"`
	Phone       string `json:"phone,omitempty"`
	OrgName     string `json:"org_name,omitempty"`
	Industry    string `json:"industry,omitempty"`
	CompanySize string `json:"company_size,omitempty"`
	Website     string `json:"website,omitempty"`
}

// CompleteSetupResponse returns provisioned identifiers.
type CompleteSetupResponse struct {
	OrgID  string `json:"org_id"`
	UserID string `json:"user_id"`
}

// AccessCodeView renders one code in the admin overview. The plaintext code
// is intentionally absent.
type AccessCodeView struct {
	ID          string    `json:"id"`
	RequestID   string    `json:"request_id"`
	Status      string    `json:"status"`
	ExpiresAt   time.Time `json:"expires_at"`
	UsedCount   int       `json:"used_count"`
	CompanyName string    `json:"company_name"`
	AdminEmail  string    `json:"admin_email"`
	CreatedAt   time.Time `json:"created_at"`
}
