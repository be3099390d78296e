package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/enterprise-onboarding/internal/audit"
	"github.com/spec-kit/enterprise-onboarding/internal/domain"
	"github.com/spec-kit/enterprise-onboarding/internal/events"
	"github.com/spec-kit/enterprise-onboarding/internal/repository"
	util "github.com/spec-kit/enterprise-onboarding/pkg/util"
)

// SubmitInput is a validated partnership application.
type SubmitInput struct {
	CompanyName string
	Industry    string
	CompanySize string
	Website     string
	AdminName   string
	AdminEmail  string
	AdminPhone  string
}

// CodeOverviewRow is one code in the admin overview, with its effective
// status (expired derived at read time).
type CodeOverviewRow struct {
	Code            domain.AccessCode
	EffectiveStatus domain.AccessCodeStatus
	CompanyName     string
	AdminEmail      string
}

// OverviewStats aggregates code counters for the dashboard.
type OverviewStats struct {
	ActiveCount       int
	ExpiringSoonCount int
	TotalRedemptions  int
}

// Overview joins codes with request metadata plus recent activity.
type Overview struct {
	Codes    []CodeOverviewRow
	Stats    OverviewStats
	Activity []domain.AuditEntry
}

const expiringSoonWindow = 7 * 24 * time.Hour

// RegistryService persists and queries partnership requests.
type RegistryService struct {
	requests     repository.RequestRepository
	reviewEvents repository.ReviewEventRepository
	codes        repository.AccessCodeRepository
	auditor      *audit.Recorder
	dispatcher   events.Dispatcher
	logger       *zap.Logger
	now          func() time.Time
}

// RegistryDependencies bundles collaborators for the registry.
type RegistryDependencies struct {
	RequestRepo     repository.RequestRepository
	ReviewEventRepo repository.ReviewEventRepository
	CodeRepo        repository.AccessCodeRepository
	Auditor         *audit.Recorder
	Dispatcher      events.Dispatcher
	Logger          *zap.Logger
}

// NewRegistryService constructs the service.
func NewRegistryService(deps RegistryDependencies) *RegistryService {
	return &RegistryService{
		requests:     deps.RequestRepo,
		reviewEvents: deps.ReviewEventRepo,
		codes:        deps.CodeRepo,
		auditor:      deps.Auditor,
		dispatcher:   deps.Dispatcher,
		logger:       deps.Logger,
		now:          time.Now,
	}
}

// Submit inserts a new pending request.
func (s *RegistryService) Submit(ctx context.Context, input SubmitInput) (*domain.EnterpriseRequest, error) {
	missing := map[string]any{}
	if strings.TrimSpace(input.CompanyName) == "" {
		missing["company_name"] = "required"
	}
	if strings.TrimSpace(input.AdminName) == "" {
		missing["admin_name"] = "required"
	}
	if emailDomain(input.AdminEmail) == "" {
		missing["admin_email"] = "valid email required"
	}
	if len(missing) > 0 {
		return nil, util.NewValidationError("invalid submission", missing)
	}

	request := &domain.EnterpriseRequest{
		CompanyName: strings.TrimSpace(input.CompanyName),
		Domain:      emailDomain(input.AdminEmail),
		Industry:    input.Industry,
		CompanySize: input.CompanySize,
		Website:     input.Website,
		AdminName:   strings.TrimSpace(input.AdminName),
		AdminEmail:  strings.TrimSpace(input.AdminEmail),
		AdminPhone:  input.AdminPhone,
		Status:      domain.RequestStatusPending,
		Checklist:   map[string]bool{},
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, domain.AuditLevelInfo, "request.submitted", request.AdminEmail, nil,
		"partnership request submitted",
		map[string]any{"request_id": request.ID, "company": request.CompanyName})
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:      events.EventRequestSubmitted,
		RequestID: request.ID,
		Actor:     request.AdminEmail,
		Payload: events.RequestSubmittedPayload{
			CompanyName: request.CompanyName,
			AdminEmail:  request.AdminEmail,
		},
	})
	return request, nil
}

// UpdateReview applies a partial update to the request's review fields.
func (s *RegistryService) UpdateReview(ctx context.Context, requestID string, patch repository.ReviewPatch) error {
	if patch.AdminNotes == nil && patch.Checklist == nil && patch.Status == nil {
		return util.NewValidationError("empty review update", nil)
	}
	if err := s.requests.UpdateReview(ctx, requestID, patch); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return util.NewNotFound("request", map[string]any{"request_id": requestID})
		}
		return err
	}
	return nil
}

// List returns all requests, newest first, with their review trail attached.
func (s *RegistryService) List(ctx context.Context) ([]domain.EnterpriseRequest, error) {
	requests, err := s.requests.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range requests {
		trail, err := s.reviewEvents.ListByRequest(ctx, requests[i].ID)
		if err != nil {
			return nil, err
		}
		requests[i].ReviewEvents = trail
	}
	return requests, nil
}

// AccessCodesOverview aggregates every code with request metadata, counters
// and the latest audit activity.
func (s *RegistryService) AccessCodesOverview(ctx context.Context) (*Overview, error) {
	rows, err := s.codes.ListWithRequests(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	overview := &Overview{Codes: make([]CodeOverviewRow, 0, len(rows))}
	for _, row := range rows {
		effective := row.Code.EffectiveStatus(now)
		overview.Codes = append(overview.Codes, CodeOverviewRow{
			Code:            row.Code,
			EffectiveStatus: effective,
			CompanyName:     row.CompanyName,
			AdminEmail:      row.AdminEmail,
		})
		overview.Stats.TotalRedemptions += row.Code.UsedCount
		if effective == domain.AccessCodeStatusActive {
			overview.Stats.ActiveCount++
			if row.Code.ExpiresAt.Before(now.Add(expiringSoonWindow)) {
				overview.Stats.ExpiringSoonCount++
			}
		}
	}

	activity, err := s.auditor.Recent(ctx, 10)
	if err != nil {
		s.logger.Warn("overview activity load failed", zap.Error(err))
		activity = nil
	}
	overview.Activity = activity
	return overview, nil
}
