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
	"github.com/spec-kit/enterprise-onboarding/internal/identity"
	"github.com/spec-kit/enterprise-onboarding/internal/repository"
	util "github.com/spec-kit/enterprise-onboarding/pkg/util"
)

// SetupInput is the applicant's final setup submission.
type SetupInput struct {
	Code        string
	Email       string
	Password    string
	FullName    string
	Phone       string
	OrgName     string
	Industry    string
	CompanySize string
	Website     string
}

// SetupResult returns the provisioned identifiers.
type SetupResult struct {
	OrgID  string
	UserID string
}

// ProvisioningService converts a redeemed access code into a live
// organization, admin identity and membership. Every step is individually
// idempotent: a mid-pipeline failure leaves the code active and the whole
// call safe to retry.
type ProvisioningService struct {
	codes       repository.AccessCodeRepository
	requests    repository.RequestRepository
	orgs        repository.OrganizationRepository
	profiles    repository.ProfileRepository
	memberships repository.MembershipRepository
	identities  identity.Provider
	dispatcher  events.Dispatcher
	auditor     *audit.Recorder
	logger      *zap.Logger
	now         func() time.Time
}

// ProvisioningDependencies bundles collaborators for the provisioning engine.
type ProvisioningDependencies struct {
	CodeRepo       repository.AccessCodeRepository
	RequestRepo    repository.RequestRepository
	OrgRepo        repository.OrganizationRepository
	ProfileRepo    repository.ProfileRepository
	MembershipRepo repository.MembershipRepository
	Identities     identity.Provider
	Dispatcher     events.Dispatcher
	Auditor        *audit.Recorder
	Logger         *zap.Logger
}

// NewProvisioningService constructs the engine.
func NewProvisioningService(deps ProvisioningDependencies) *ProvisioningService {
	return &ProvisioningService{
		codes:       deps.CodeRepo,
		requests:    deps.RequestRepo,
		orgs:        deps.OrgRepo,
		profiles:    deps.ProfileRepo,
		memberships: deps.MembershipRepo,
		identities:  deps.Identities,
		dispatcher:  deps.Dispatcher,
		auditor:     deps.Auditor,
		logger:      deps.Logger,
		now:         time.Now,
	}
}

// CompleteSetup runs the provisioning pipeline. Upserts run before the code
// is consumed, so retries after partial failure converge on the same rows;
// the terminal used-transition is an atomic conditional update, so at most
// one caller completes redemption.
func (s *ProvisioningService) CompleteSetup(ctx context.Context, input SetupInput) (*SetupResult, error) {
	if strings.TrimSpace(input.Email) == "" || strings.TrimSpace(input.Password) == "" {
		return nil, util.NewValidationError("email and password required", nil)
	}

	// step 1: the code must still be active for this request
	row, err := s.codes.GetByHash(ctx, HashCode(input.Code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewInvalidCode()
		}
		return nil, err
	}
	if row.Code.Status != domain.AccessCodeStatusActive {
		return nil, util.NewInvalidStatus(string(row.Code.Status))
	}
	if s.now().After(row.Code.ExpiresAt) {
		return nil, util.NewExpired()
	}
	if !SameEmailDomain(input.Email, row.AdminEmail) {
		return nil, util.NewPermissionDenied("email domain does not match the approved company domain")
	}

	request, err := s.requests.GetByID(ctx, row.Code.RequestID)
	if err != nil {
		return nil, util.NewProvisioningFailure("load request", err)
	}

	// step 2: organization upsert keyed by request_id
	org := &domain.Organization{
		RequestID:   request.ID,
		Name:        firstNonEmpty(input.OrgName, request.CompanyName),
		Domain:      request.Domain,
		Industry:    firstNonEmpty(input.Industry, request.Industry),
		CompanySize: firstNonEmpty(input.CompanySize, request.CompanySize),
		Website:     firstNonEmpty(input.Website, request.Website),
		Status:      domain.OrganizationStatusActive,
	}
	if err := s.orgs.UpsertByRequest(ctx, org); err != nil {
		return nil, util.NewProvisioningFailure("organization upsert", err)
	}

	// step 3: resolve admin identity, then mirror the local profile
	account, err := s.resolveIdentity(ctx, input)
	if err != nil {
		return nil, err
	}
	profile := &domain.Profile{
		UserID:   account.ID,
		Email:    input.Email,
		FullName: input.FullName,
		Phone:    input.Phone,
	}
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return nil, util.NewProvisioningFailure("profile upsert", err)
	}

	// step 4: membership upsert on the unique (org_id, user_id) pair
	membership := &domain.Membership{
		OrgID:  org.ID,
		UserID: account.ID,
		Role:   domain.MembershipRoleAdmin,
	}
	if err := s.memberships.Upsert(ctx, membership); err != nil {
		return nil, util.NewProvisioningFailure("membership upsert", err)
	}

	// saga marker: a retried call resumes with the same identifiers
	if err := s.requests.SetProvisioningRefs(ctx, request.ID, org.ID, account.ID); err != nil {
		return nil, util.NewProvisioningFailure("request refs", err)
	}

	// step 5: consume the code; losing the race means someone else finished
	consumed, err := s.codes.Consume(ctx, row.Code.ID)
	if err != nil {
		return nil, util.NewProvisioningFailure("code consume", err)
	}
	if !consumed {
		return nil, util.NewInvalidStatus(string(domain.AccessCodeStatusUsed))
	}
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:      events.EventAccessCodeRedeemed,
		RequestID: request.ID,
		Actor:     input.Email,
		Payload:   events.AccessCodeRedeemedPayload{CodeID: row.Code.ID, Email: input.Email},
	})

	// step 6: finalize the request
	completed := domain.RequestStatusCompleted
	if err := s.requests.UpdateReview(ctx, request.ID, repository.ReviewPatch{Status: &completed}); err != nil {
		return nil, util.NewProvisioningFailure("request completion", err)
	}

	s.auditor.Record(ctx, domain.AuditLevelInfo, "provisioning.completed", input.Email, &org.ID,
		"enterprise setup completed",
		map[string]any{"request_id": request.ID, "org_id": org.ID, "user_id": account.ID})
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:      events.EventProvisioningCompleted,
		RequestID: request.ID,
		Actor:     input.Email,
		Payload:   events.ProvisioningCompletedPayload{OrgID: org.ID, UserID: account.ID},
	})

	return &SetupResult{OrgID: org.ID, UserID: account.ID}, nil
}

func (s *ProvisioningService) resolveIdentity(ctx context.Context, input SetupInput) (*identity.Identity, error) {
	metadata := map[string]string{
		"full_name": input.FullName,
		"phone":     input.Phone,
	}

	account, err := s.identities.FindByEmail(ctx, input.Email)
	switch {
	case err == nil:
		updated, err := s.identities.UpdateIdentity(ctx, account.ID, input.Password, metadata)
		if err != nil {
			return nil, util.NewProvisioningFailure("identity update", err)
		}
		return updated, nil
	case errors.Is(err, identity.ErrNotFound):
		created, err := s.identities.CreateIdentity(ctx, input.Email, input.Password, metadata)
		if err != nil {
			return nil, util.NewProvisioningFailure("identity create", err)
		}
		return created, nil
	default:
		return nil, util.NewProvisioningFailure("identity lookup", err)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
