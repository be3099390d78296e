package domain

import "time"

// Profile is the local row mirroring an identity-provider account, keyed by
// the identity id.
type Profile struct {
	UserID    string
	Email     string
	FullName  string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MembershipRole enumerates roles inside an organization. Provisioning only
// ever grants admin.
type MembershipRole string

const MembershipRoleAdmin MembershipRole = "admin"

// Membership links a user to an organization. (OrgID, UserID) is unique.
type Membership struct {
	ID        string
	OrgID     string
	UserID    string
	Role      MembershipRole
	CreatedAt time.Time
}
