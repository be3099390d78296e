package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/spec-kit/enterprise-onboarding/internal/config"
	"github.com/spec-kit/enterprise-onboarding/internal/domain"
)

// webhookMailer posts mail jobs to an external delivery service.
type webhookMailer struct {
	client *resty.Client
	from   string
}

// NewWebhookMailer builds a mailer posting to MAIL_WEBHOOK_URL.
func NewWebhookMailer(cfg config.MailerConfig) Mailer {
	client := resty.New().
		SetBaseURL(cfg.WebhookURL).
		SetTimeout(10 * time.Second)
	return &webhookMailer{client: client, from: cfg.EmailFrom}
}

type mailJob struct {
	Template string            `json:"template"`
	From     string            `json:"from"`
	To       string            `json:"to"`
	Vars     map[string]string `json:"vars"`
}

func (m *webhookMailer) SendAccessCode(ctx context.Context, adminName, companyName, email, code string) error {
	return m.post(ctx, mailJob{
		Template: "enterprise_access_code",
		From:     m.from,
		To:       email,
		Vars: map[string]string{
			"admin_name":   adminName,
			"company_name": companyName,
			"access_code":  code,
		},
	})
}

func (m *webhookMailer) SendStatusUpdate(ctx context.Context, email, companyName string, action domain.ReviewAction, reason string) error {
	return m.post(ctx, mailJob{
		Template: "enterprise_status_update",
		From:     m.from,
		To:       email,
		Vars: map[string]string{
			"company_name": companyName,
			"action":       string(action),
			"reason":       reason,
		},
	})
}

func (m *webhookMailer) post(ctx context.Context, job mailJob) error {
	resp, err := m.client.R().
		SetContext(ctx).
		SetBody(job).
		Post("")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("mail webhook: status %d", resp.StatusCode())
	}
	return nil
}
