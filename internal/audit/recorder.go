package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/enterprise-onboarding/internal/domain"
	"github.com/spec-kit/enterprise-onboarding/internal/repository"
)

// Recorder appends audit entries best-effort. Failures are logged and never
// propagated to the caller.
type Recorder struct {
	logs   repository.AuditLogRepository
	logger *zap.Logger
}

// NewRecorder constructs the recorder.
func NewRecorder(logs repository.AuditLogRepository, logger *zap.Logger) *Recorder {
	return &Recorder{logs: logs, logger: logger}
}

// Record persists an audit entry, swallowing store errors.
func (r *Recorder) Record(ctx context.Context, level domain.AuditLevel, actionCode, actor string, orgID *string, message string, params map[string]any) {
	if r == nil || r.logs == nil {
		return
	}
	entry := &domain.AuditEntry{
		Level:      level,
		ActionCode: actionCode,
		Actor:      actor,
		OrgID:      orgID,
		Message:    message,
		Params:     params,
	}
	if err := r.logs.Create(ctx, entry); err != nil {
		r.logger.Warn("audit record failed",
			zap.String("action", actionCode),
			zap.Error(err))
	}
}

// Recent returns the latest entries for the overview activity feed.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	if r == nil || r.logs == nil {
		return nil, nil
	}
	return r.logs.ListRecent(ctx, limit)
}
