package mailer

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/enterprise-onboarding/internal/config"
	"github.com/spec-kit/enterprise-onboarding/internal/domain"
)

// Mailer delivers applicant notifications. Delivery is fire-and-forget:
// implementations return errors, callers log and move on.
type Mailer interface {
	SendAccessCode(ctx context.Context, adminName, companyName, email, code string) error
	SendStatusUpdate(ctx context.Context, email, companyName string, action domain.ReviewAction, reason string) error
}

// logMailer only logs what would have been sent. Used when no webhook URL is
// configured. The code itself is never logged.
type logMailer struct {
	logger *zap.Logger
	from   string
}

// NewLogMailer builds the logging stub.
func NewLogMailer(logger *zap.Logger, cfg config.MailerConfig) Mailer {
	return &logMailer{logger: logger, from: cfg.EmailFrom}
}

func (m *logMailer) SendAccessCode(_ context.Context, adminName, companyName, email, _ string) error {
	m.logger.Info("access code email",
		zap.String("from", m.from),
		zap.String("to", email),
		zap.String("admin_name", adminName),
		zap.String("company", companyName))
	return nil
}

func (m *logMailer) SendStatusUpdate(_ context.Context, email, companyName string, action domain.ReviewAction, reason string) error {
	m.logger.Info("status update email",
		zap.String("from", m.from),
		zap.String("to", email),
		zap.String("company", companyName),
		zap.String("action", string(action)),
		zap.String("reason", reason))
	return nil
}
