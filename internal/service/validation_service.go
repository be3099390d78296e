package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/enterprise-onboarding/internal/domain"
	"github.com/spec-kit/enterprise-onboarding/internal/ratelimit"
	"github.com/spec-kit/enterprise-onboarding/internal/repository"
	util "github.com/spec-kit/enterprise-onboarding/pkg/util"
)

// CodeValidation is the successful result of redeeming a code for inspection.
// OrgExists and UserExists let the caller route to setup vs resume flows.
type CodeValidation struct {
	RequestID   string
	CompanyName string
	AdminEmail  string
	AdminName   string
	Industry    string
	CompanySize string
	Website     string
	OrgExists   bool
	UserExists  bool
}

// ValidationService verifies submitted access codes.
type ValidationService struct {
	codes    repository.AccessCodeRepository
	orgs     repository.OrganizationRepository
	profiles repository.ProfileRepository
	limiter  ratelimit.AttemptLimiter
	logger   *zap.Logger
	now      func() time.Time
}

// ValidationDependencies bundles collaborators for the validation service.
type ValidationDependencies struct {
	CodeRepo    repository.AccessCodeRepository
	OrgRepo     repository.OrganizationRepository
	ProfileRepo repository.ProfileRepository
	Limiter     ratelimit.AttemptLimiter
	Logger      *zap.Logger
}

// NewValidationService constructs the service.
func NewValidationService(deps ValidationDependencies) *ValidationService {
	limiter := deps.Limiter
	if limiter == nil {
		limiter = ratelimit.NewNoopLimiter()
	}
	return &ValidationService{
		codes:    deps.CodeRepo,
		orgs:     deps.OrgRepo,
		profiles: deps.ProfileRepo,
		limiter:  limiter,
		logger:   deps.Logger,
		now:      time.Now,
	}
}

// Validate checks a submitted code (and optionally the redeeming email)
// against the stored record, expiry and domain lock.
func (s *ValidationService) Validate(ctx context.Context, code, email string) (*CodeValidation, error) {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return nil, util.NewValidationError("access code required", nil)
	}
	hash := HashCode(normalized)

	if !s.limiter.Allowed(ctx, hash) {
		return nil, util.NewPermissionDenied("too many validation attempts, try again later")
	}

	row, err := s.codes.GetByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.limiter.RecordFailure(ctx, hash)
			return nil, util.NewInvalidCode()
		}
		return nil, err
	}

	if row.Code.Status != domain.AccessCodeStatusActive {
		return nil, util.NewInvalidStatus(string(row.Code.Status))
	}
	// expiry is enforced lazily here, not by a background sweeper
	if s.now().After(row.Code.ExpiresAt) {
		return nil, util.NewExpired()
	}

	if email != "" {
		if !SameEmailDomain(email, row.AdminEmail) {
			s.limiter.RecordFailure(ctx, hash)
			return nil, util.NewPermissionDenied("email domain does not match the approved company domain")
		}
	}

	orgExists, err := s.orgs.ExistsForRequest(ctx, row.Code.RequestID)
	if err != nil {
		return nil, err
	}

	userExists := false
	if email != "" {
		userExists, err = s.profiles.ExistsByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
	}

	return &CodeValidation{
		RequestID:   row.Code.RequestID,
		CompanyName: row.CompanyName,
		AdminEmail:  row.AdminEmail,
		AdminName:   row.AdminName,
		Industry:    row.Industry,
		CompanySize: row.CompanySize,
		Website:     row.Website,
		OrgExists:   orgExists,
		UserExists:  userExists,
	}, nil
}

// SameEmailDomain compares the domain portion of two emails, case-insensitively.
func SameEmailDomain(a, b string) bool {
	return emailDomain(a) != "" && emailDomain(a) == emailDomain(b)
}

func emailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(email[at+1:]))
}
