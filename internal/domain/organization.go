package domain

import "time"

// OrganizationStatus enumerates org lifecycle states.
type OrganizationStatus string

const (
	OrganizationStatusActive    OrganizationStatus = "active"
	OrganizationStatusSuspended OrganizationStatus = "suspended"
)

// Organization is the tenant created from an approved partnership request.
// RequestID is unique: one organization per request.
type Organization struct {
	ID          string
	RequestID   string
	Name        string
	Domain      string
	Industry    string
	CompanySize string
	Website     string
	Status      OrganizationStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
