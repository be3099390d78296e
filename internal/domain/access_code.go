package domain

import "time"

// AccessCodeStatus enumerates persisted code states. "expired" is derived at
// read time from ExpiresAt and is never written back.
type AccessCodeStatus string

const (
	AccessCodeStatusActive  AccessCodeStatus = "active"
	AccessCodeStatusUsed    AccessCodeStatus = "used"
	AccessCodeStatusExpired AccessCodeStatus = "expired"
	AccessCodeStatusRevoked AccessCodeStatus = "revoked"
)

// AccessCode is a single-use, domain-locked bearer credential gating
// enterprise self-service setup. The plaintext is retained so a second
// approval resends the same code; the hash is the lookup key.
type AccessCode struct {
	ID        string
	RequestID string
	Code      string
	CodeHash  string
	Status    AccessCodeStatus
	ExpiresAt time.Time
	UsedCount int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EffectiveStatus reports the code status as of now, deriving expiry for
// active rows past their deadline.
func (c AccessCode) EffectiveStatus(now time.Time) AccessCodeStatus {
	if c.Status == AccessCodeStatusActive && now.After(c.ExpiresAt) {
		return AccessCodeStatusExpired
	}
	return c.Status
}
