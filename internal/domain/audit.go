package domain

import "time"

// AuditLevel grades audit entries.
type AuditLevel string

const (
	AuditLevelInfo    AuditLevel = "info"
	AuditLevelWarning AuditLevel = "warning"
	AuditLevelError   AuditLevel = "error"
)

// AuditEntry is an append-only, best-effort operational record.
type AuditEntry struct {
	ID         string
	Level      AuditLevel
	ActionCode string
	Actor      string
	OrgID      *string
	Message    string
	Params     map[string]any
	CreatedAt  time.Time
}
